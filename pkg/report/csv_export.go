package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// CSVExporter writes findings as CSV rows for spreadsheet review.
type CSVExporter struct {
	includeContext bool
	includeMasked  bool
	dateFormat     string
}

// CSVExporterOption configures a CSVExporter.
type CSVExporterOption func(*CSVExporter)

// WithContext includes the surrounding text excerpt in the export.
func WithContext() CSVExporterOption {
	return func(e *CSVExporter) { e.includeContext = true }
}

// WithMaskedValues includes a masked rendering of the matched text.
func WithMaskedValues() CSVExporterOption {
	return func(e *CSVExporter) { e.includeMasked = true }
}

// WithDateFormat overrides the default timestamp layout.
func WithDateFormat(format string) CSVExporterOption {
	return func(e *CSVExporter) { e.dateFormat = format }
}

// NewCSVExporter builds a CSVExporter with the given options.
func NewCSVExporter(opts ...CSVExporterOption) *CSVExporter {
	e := &CSVExporter{dateFormat: "2006-01-02 15:04:05"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CSVRecord is a single exported row.
type CSVRecord struct {
	Timestamp          string
	Source              string
	Location            string
	EntityType           string
	Confidence           float64
	Match                string
	MaskedMatch          string
	Context              string
	RiskScore            int
	RiskTier             string
	CoOccurrenceRules    string
	ScanID               string
	ToolVersion          string
}

// ExportFindings converts findings to CSV records and writes them.
func (e *CSVExporter) ExportFindings(w io.Writer, findings []Finding, metadata ExportMetadata) error {
	records := make([]CSVRecord, 0, len(findings))
	for _, f := range findings {
		records = append(records, e.findingToRecord(f, metadata))
	}
	return e.Export(w, records)
}

// Export writes pre-built records as CSV.
func (e *CSVExporter) Export(w io.Writer, records []CSVRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(e.headers()); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(e.row(r)); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	return writer.Error()
}

func (e *CSVExporter) headers() []string {
	headers := []string{"Timestamp", "Source", "Location", "Entity Type", "Confidence"}
	if e.includeMasked {
		headers = append(headers, "Masked Value")
	}
	headers = append(headers, "Risk Score", "Risk Tier", "Co-Occurrence Rules")
	if e.includeContext {
		headers = append(headers, "Context")
	}
	headers = append(headers, "Scan ID", "Tool Version")
	return headers
}

func (e *CSVExporter) row(r CSVRecord) []string {
	row := []string{
		r.Timestamp,
		r.Source,
		r.Location,
		r.EntityType,
		fmt.Sprintf("%.2f", r.Confidence),
	}
	if e.includeMasked {
		row = append(row, r.MaskedMatch)
	}
	row = append(row, strconv.Itoa(r.RiskScore), r.RiskTier, r.CoOccurrenceRules)
	if e.includeContext {
		row = append(row, r.Context)
	}
	row = append(row, r.ScanID, r.ToolVersion)
	return row
}

func (e *CSVExporter) findingToRecord(f Finding, metadata ExportMetadata) CSVRecord {
	return CSVRecord{
		Timestamp:         metadata.Timestamp.Format(e.dateFormat),
		Source:            metadata.Source,
		Location:          f.Location,
		EntityType:        f.Span.EntityType,
		Confidence:        f.Span.Confidence,
		Match:             f.Span.Text,
		MaskedMatch:       f.MaskedValue(),
		RiskScore:         f.ScoreResult.Score,
		RiskTier:          string(f.ScoreResult.Tier),
		CoOccurrenceRules: joinRules(f.ScoreResult.CoOccurrenceRules),
		ScanID:            metadata.ScanID,
		ToolVersion:       metadata.ToolVersion,
	}
}

func joinRules(rules []string) string {
	out := ""
	for i, r := range rules {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}

// CSVSummaryExporter writes a ScanSummary as a short CSV table.
type CSVSummaryExporter struct {
	dateFormat string
}

// NewCSVSummaryExporter builds a CSVSummaryExporter with the default
// timestamp layout.
func NewCSVSummaryExporter() *CSVSummaryExporter {
	return &CSVSummaryExporter{dateFormat: "2006-01-02 15:04:05"}
}

// ExportSummary writes summary statistics to CSV.
func (e *CSVSummaryExporter) ExportSummary(w io.Writer, summary ScanSummary, metadata ExportMetadata) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value", "Percentage"}); err != nil {
		return fmt.Errorf("write summary headers: %w", err)
	}

	rows := [][]string{
		{"Source", metadata.Source, ""},
		{"Scan Date", metadata.Timestamp.Format(e.dateFormat), ""},
		{"Scan Duration", fmt.Sprintf("%.2f seconds", metadata.ScanDuration.Seconds()), ""},
		{"Total Findings", strconv.Itoa(summary.TotalFindings), "100.0%"},
		{"Critical", strconv.Itoa(summary.CriticalCount), e.percentage(summary.CriticalCount, summary.TotalFindings)},
		{"High", strconv.Itoa(summary.HighCount), e.percentage(summary.HighCount, summary.TotalFindings)},
		{"Medium", strconv.Itoa(summary.MediumCount), e.percentage(summary.MediumCount, summary.TotalFindings)},
		{"Low", strconv.Itoa(summary.LowCount), e.percentage(summary.LowCount, summary.TotalFindings)},
		{"Minimal", strconv.Itoa(summary.MinimalCount), e.percentage(summary.MinimalCount, summary.TotalFindings)},
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}
	return writer.Error()
}

func (e *CSVSummaryExporter) percentage(value, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(value)/float64(total)*100)
}
