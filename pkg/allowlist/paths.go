package allowlist

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/chillbot-io/openlabels/pkg/types"
)

// TestPathPatterns are glob patterns (doublestar syntax: "**" matches
// across path separators) identifying test fixtures and golden files
// across the languages a scanned tree might contain, adapted from the
// teacher's detection.Config.TestPathPatterns.
var TestPathPatterns = []string{
	"**/*_test.go", "**/test/**", "**/tests/**", "**/testdata/**", "**/fixtures/**", "**/spec/**",
	"**/*Test.java", "**/*Tests.java", "**/src/test/**",
	"**/*Test.scala", "**/*Tests.scala", "**/*Spec.scala", "**/*Suite.scala",
	"**/test_*.py", "**/*_test.py", "**/test*.py", "**/conftest.py",
	"**/*.test.js", "**/*.test.ts", "**/*.spec.js", "**/*.spec.ts", "**/__tests__/**",
}

// MockPathPatterns identify generated or hand-written test doubles,
// adapted from the teacher's detection.Config.MockPathPatterns.
var MockPathPatterns = []string{
	"**/mock/**", "**/mocks/**", "**/mock_*.go", "**/*_mock.go",
	"**/example/**", "**/examples/**", "**/sample/**", "**/samples/**",
}

// testPathModifier and mockPathModifier are the confidence multipliers
// applied to spans found in a matching file: the teacher's
// getContextModifier returns 0.1 for both test and mock paths
// uniformly; this keeps that for test paths (test fixtures are the
// least likely to hold real sensitive data) and damps example/sample
// paths less aggressively, since sample data sometimes intentionally
// demonstrates a real-shaped value.
const (
	testPathModifier = 0.1
	mockPathModifier = 0.3
)

func matchesAny(patterns []string, path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, normalized); err == nil && ok {
			return true
		}
	}
	return false
}

// IsTestPath reports whether path looks like a test fixture or golden
// file by TestPathPatterns.
func IsTestPath(path string) bool { return matchesAny(TestPathPatterns, path) }

// IsMockPath reports whether path looks like a mock, example, or sample
// file by MockPathPatterns.
func IsMockPath(path string) bool { return matchesAny(MockPathPatterns, path) }

// PathConfidenceModifier returns the confidence multiplier spec.md §4.5's
// context-aware suppression pass applies based on where a span was
// found: 1.0 for an ordinary path, testPathModifier for a recognized
// test path, mockPathModifier for a recognized mock/example path.
func PathConfidenceModifier(path string) float64 {
	if path == "" {
		return 1.0
	}
	if IsTestPath(path) {
		return testPathModifier
	}
	if IsMockPath(path) {
		return mockPathModifier
	}
	return 1.0
}

// DampForPath applies PathConfidenceModifier(path) to every span's
// confidence. Called by pkg/engine.DetectFile, which is the only
// allowlist entry point that knows the file path a detection ran
// over — Apply itself only ever sees raw text, not a path.
func DampForPath(spans []types.Span, path string) []types.Span {
	modifier := PathConfidenceModifier(path)
	if modifier == 1.0 {
		return spans
	}
	out := make([]types.Span, len(spans))
	for i, s := range spans {
		out[i] = s.WithConfidence(s.Confidence * modifier)
	}
	return out
}
