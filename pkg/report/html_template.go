package report

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"time"
)

//go:embed templates/*.html templates/*.css templates/*.js
var templatesFS embed.FS

// HTMLReportData is the data structure handed to the HTML report
// template.
type HTMLReportData struct {
	ReportID     string
	GeneratedAt  time.Time
	ScanDuration string
	ToolVersion  string
	Source       string

	Summary ScanSummary

	CriticalFindings []Finding
	HighFindings     []Finding
	MediumFindings   []Finding
	LowFindings      []Finding

	TypeDistribution map[string]int
}

// BuildHTMLReportData groups findings by risk tier and tallies entity
// type distribution for the report template.
func BuildHTMLReportData(reportID string, findings []Finding, metadata ExportMetadata) HTMLReportData {
	data := HTMLReportData{
		ReportID:         reportID,
		GeneratedAt:      metadata.Timestamp,
		ScanDuration:     metadata.ScanDuration.String(),
		ToolVersion:      metadata.ToolVersion,
		Source:           metadata.Source,
		Summary:          Summarize(findings),
		TypeDistribution: map[string]int{},
	}

	for _, f := range findings {
		data.TypeDistribution[f.Span.EntityType]++
		switch f.ScoreResult.Tier {
		case "CRITICAL":
			data.CriticalFindings = append(data.CriticalFindings, f)
		case "HIGH":
			data.HighFindings = append(data.HighFindings, f)
		case "MEDIUM":
			data.MediumFindings = append(data.MediumFindings, f)
		default:
			data.LowFindings = append(data.LowFindings, f)
		}
	}

	return data
}

// GetTemplateFuncMap returns the function map the report template relies on.
func GetTemplateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04:05 MST")
		},
		"formatScore": func(val float64) string {
			return fmt.Sprintf("%.2f", val)
		},
		"maskValue": func(val string) string {
			return maskValue(val)
		},
		"riskTierClass": func(tier string) string {
			switch tier {
			case "CRITICAL":
				return "risk-critical"
			case "HIGH":
				return "risk-high"
			case "MEDIUM":
				return "risk-medium"
			case "LOW":
				return "risk-low"
			default:
				return "risk-minimal"
			}
		},
		"jsonify": func(v interface{}) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("{}")
			}
			return template.JS(b)
		},
	}
}

// GetHTMLTemplate parses the embedded report template, stylesheet, and
// script into a single template set.
func GetHTMLTemplate() (*template.Template, error) {
	funcMap := GetTemplateFuncMap()

	tmplContent, err := templatesFS.ReadFile("templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("read report template: %w", err)
	}
	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}

	cssContent, err := templatesFS.ReadFile("templates/styles.css")
	if err != nil {
		return nil, fmt.Errorf("read styles: %w", err)
	}
	if _, err := tmpl.New("styles").Parse(string(cssContent)); err != nil {
		return nil, fmt.Errorf("parse styles: %w", err)
	}

	jsContent, err := templatesFS.ReadFile("templates/scripts.js")
	if err != nil {
		return nil, fmt.Errorf("read scripts: %w", err)
	}
	if _, err := tmpl.New("scripts").Parse(string(jsContent)); err != nil {
		return nil, fmt.Errorf("parse scripts: %w", err)
	}

	return tmpl, nil
}
