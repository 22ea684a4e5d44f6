// Package report renders a scored DetectionResult into the export
// formats downstream tooling consumes: SARIF for code-scanning
// integrations, CSV for spreadsheet review, and HTML for a standalone
// summary page.
package report

import (
	"strings"
	"time"

	"github.com/chillbot-io/openlabels/pkg/scoring"
	"github.com/chillbot-io/openlabels/pkg/types"
)

// ExportMetadata carries the scan-level context every export format
// stamps alongside its findings.
type ExportMetadata struct {
	ScanID       string
	Source       string
	ScanDuration time.Duration
	ToolVersion  string
	Timestamp    time.Time
}

// Finding is one reported span, enriched with the scoring context a
// caller has already computed for it. ScoreResult is optional: a zero
// value means the caller exported before scoring.
type Finding struct {
	Span        types.Span
	Location    string
	ScoreResult scoring.ScoringResult
}

// MaskedValue returns the span's text with all but the first and last
// character replaced by asterisks, the default display-safe form used
// by every export format.
func (f Finding) MaskedValue() string {
	return maskValue(f.Span.Text)
}

func maskValue(value string) string {
	switch len(value) {
	case 0:
		return value
	case 1, 2:
		return strings.Repeat("*", len(value))
	default:
		return value[:1] + strings.Repeat("*", len(value)-2) + value[len(value)-1:]
	}
}

// ScanSummary aggregates a DetectionResult into per-tier counts for a
// report's headline numbers.
type ScanSummary struct {
	TotalFindings int
	CriticalCount int
	HighCount     int
	MediumCount   int
	LowCount      int
	MinimalCount  int
	UniqueTypes   []string
}

// Summarize builds a ScanSummary from findings that already carry a
// ScoreResult (see scoring.Score per entity type, or a single
// whole-document ScoringResult applied to every finding).
func Summarize(findings []Finding) ScanSummary {
	summary := ScanSummary{TotalFindings: len(findings)}
	seen := map[string]bool{}
	for _, f := range findings {
		switch f.ScoreResult.Tier {
		case scoring.TierCritical:
			summary.CriticalCount++
		case scoring.TierHigh:
			summary.HighCount++
		case scoring.TierMedium:
			summary.MediumCount++
		case scoring.TierLow:
			summary.LowCount++
		default:
			summary.MinimalCount++
		}
		if !seen[f.Span.EntityType] {
			seen[f.Span.EntityType] = true
			summary.UniqueTypes = append(summary.UniqueTypes, f.Span.EntityType)
		}
	}
	return summary
}

// FromDetectionResult converts every span in a DetectionResult into a
// Finding at the given location, without per-span scoring (callers that
// want per-finding risk tiers should score types.DetectionResult.EntityCounts
// once and attach the result to each Finding explicitly).
func FromDetectionResult(result types.DetectionResult, location string) []Finding {
	findings := make([]Finding, 0, len(result.Spans))
	for _, s := range result.Spans {
		findings = append(findings, Finding{Span: s, Location: location})
	}
	return findings
}
