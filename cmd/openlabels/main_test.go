package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedOutput []string
		expectedError  bool
	}{
		{
			name: "no arguments shows help",
			args: []string{},
			expectedOutput: []string{
				"openlabels runs a multi-tier detection pipeline",
				"Usage:",
				"Available Commands:",
				"scan",
				"label",
				"version",
			},
			expectedError: false,
		},
		{
			name: "help flag shows help",
			args: []string{"--help"},
			expectedOutput: []string{
				"scan",
				"label",
				"version",
			},
			expectedError: false,
		},
		{
			name: "version command shows version",
			args: []string{"version"},
			expectedOutput: []string{
				"openlabels",
				"Version:",
				"Build:",
				"Go Version:",
			},
			expectedError: false,
		},
		{
			name:          "invalid command shows error",
			args:          []string{"invalid"},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			cmd := newRootCmd()
			cmd.SetOut(&stdout)
			cmd.SetErr(&stderr)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			output := stdout.String() + stderr.String()
			for _, expected := range tt.expectedOutput {
				assert.Contains(t, output, expected, "output should contain %q", expected)
			}
		})
	}
}

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("contact me at test@example.com, SSN 123-45-6789"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"scan", path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := stdout.String()
	assert.Contains(t, output, "Scanned")
	assert.Contains(t, output, "Findings:")
}

func TestScanCommandMissingPath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"scan", filepath.Join(t.TempDir(), "does-not-exist.txt")})

	assert.Error(t, cmd.Execute())
}

func TestScanCommandRejectsPathAndFromGitTogether(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"scan", "some/path", "--from-git", "owner/repo"})

	assert.Error(t, cmd.Execute())
}

func TestScanCommandRequiresPathOrFromGit(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"scan"})

	assert.Error(t, cmd.Execute())
}

func TestScanCommandJSONFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("no sensitive data here"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"scan", path, "--format", "json"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), `"summary"`)
}

func TestLabelCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("contact me at test@example.com"), 0o644))

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"label", path})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "wrote")

	_, err := os.Stat(path + ".labels.json")
	require.NoError(t, err)
}

func TestLabelCommandShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("contact me at test@example.com"), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"label", path})
	require.NoError(t, cmd.Execute())

	var stdout bytes.Buffer
	showCmd := newRootCmd()
	showCmd.SetOut(&stdout)
	showCmd.SetArgs([]string{"label", path + ".labels.json", "--show"})
	require.NoError(t, showCmd.Execute())

	assert.Contains(t, stdout.String(), "label id:")
	assert.Contains(t, stdout.String(), "content hash:")
}
