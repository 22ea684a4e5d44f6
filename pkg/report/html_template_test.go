package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/chillbot-io/openlabels/pkg/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHTMLReportData(t *testing.T) {
	findings := []Finding{
		{
			Span:        mustFindingSpan(t, "123-45-6789", "SSN", 0.95),
			Location:    "a.txt",
			ScoreResult: scoring.ScoringResult{Tier: scoring.TierCritical, Score: 92},
		},
		{
			Span:        mustFindingSpan(t, "a@b.com", "EMAIL", 0.8),
			Location:    "b.txt",
			ScoreResult: scoring.ScoringResult{Tier: scoring.TierLow, Score: 15},
		},
	}
	metadata := ExportMetadata{
		Source:      "dataset",
		ToolVersion: "1.0.0",
		Timestamp:   time.Now(),
	}

	data := BuildHTMLReportData("report-1", findings, metadata)

	assert.Equal(t, "report-1", data.ReportID)
	assert.Len(t, data.CriticalFindings, 1)
	assert.Len(t, data.LowFindings, 1)
	assert.Equal(t, 2, data.Summary.TotalFindings)
	assert.Equal(t, 1, data.TypeDistribution["SSN"])
}

func TestGetHTMLTemplate(t *testing.T) {
	tmpl, err := GetHTMLTemplate()
	require.NoError(t, err)
	require.NotNil(t, tmpl)

	data := BuildHTMLReportData("report-2", nil, ExportMetadata{Timestamp: time.Now()})

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, "report", data)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Sensitive Data Scan Report")
}
