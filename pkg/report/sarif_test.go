package report

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/chillbot-io/openlabels/pkg/scoring"
	"github.com/chillbot-io/openlabels/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFindingSpan(t *testing.T, text, entityType string, confidence float64) types.Span {
	t.Helper()
	s, err := types.NewSpan(0, len(text), text, entityType, confidence, "test", types.TierPattern)
	require.NoError(t, err)
	return s
}

func TestNewSARIFExporter(t *testing.T) {
	exporter := NewSARIFExporter("OpenLabels Scanner", "1.0.0", "https://github.com/chillbot-io/openlabels")

	assert.Equal(t, "OpenLabels Scanner", exporter.toolName)
	assert.Equal(t, "1.0.0", exporter.toolVersion)
	assert.Empty(t, exporter.baseURI)
}

func TestSARIFExporter_SetBaseURI(t *testing.T) {
	exporter := NewSARIFExporter("OpenLabels Scanner", "1.0.0", "")
	exporter.SetBaseURI("/home/user/repo")
	assert.Equal(t, "/home/user/repo", exporter.baseURI)
}

func TestSARIFExporter_Export(t *testing.T) {
	findings := []Finding{
		{
			Span:     mustFindingSpan(t, "123-45-6789", "SSN", 0.95),
			Location: "customer.txt",
			ScoreResult: scoring.Score(map[string]int{"SSN": 1}, "PRIVATE", 0.95),
		},
		{
			Span:     mustFindingSpan(t, "a@b.com", "EMAIL", 0.8),
			Location: "contact.txt",
		},
	}

	metadata := ExportMetadata{
		ScanID:       "scan-123",
		Source:       "test-dataset",
		ScanDuration: 2 * time.Minute,
		ToolVersion:  "1.0.0",
		Timestamp:    time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC),
	}

	exporter := NewSARIFExporter("OpenLabels Scanner", "1.0.0", "https://github.com/chillbot-io/openlabels")

	var buf bytes.Buffer
	err := exporter.Export(&buf, findings, metadata)
	require.NoError(t, err)

	var report SARIFReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, SARIFVersion, report.Version)
	assert.Equal(t, SARIFSchema, report.Schema)
	require.Len(t, report.Runs, 1)

	run := report.Runs[0]
	assert.Equal(t, "OpenLabels Scanner", run.Tool.Driver.Name)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Contains(t, run.Results[0].Message.Text, "SSN")
}

func TestSARIFExporter_RuleIDsAreStable(t *testing.T) {
	exporter := NewSARIFExporter("OpenLabels Scanner", "1.0.0", "")
	first := exporter.getRuleID("SSN")
	second := exporter.getRuleID("SSN")
	assert.Equal(t, first, second)
	assert.Equal(t, "PI999", exporter.getRuleID("NOT_A_REAL_TYPE"))
}

func TestLevelForWeight(t *testing.T) {
	assert.Equal(t, "error", levelForWeight(10))
	assert.Equal(t, "warning", levelForWeight(5))
	assert.Equal(t, "note", levelForWeight(2))
}
