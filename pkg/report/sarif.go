package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chillbot-io/openlabels/pkg/registry"
)

// SARIF version and schema constants.
const (
	SARIFVersion = "2.1.0"
	SARIFSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
)

// SARIFReport is the top-level SARIF log.
type SARIFReport struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun is a single run of the analysis tool.
type SARIFRun struct {
	Tool               SARIFTool                 `json:"tool"`
	Results            []SARIFResult             `json:"results"`
	Invocations        []SARIFInvocation         `json:"invocations,omitempty"`
	OriginalURIBaseIDs map[string]SARIFURIBaseID `json:"originalUriBaseIds,omitempty"`
	Properties         map[string]interface{}    `json:"properties,omitempty"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFToolComponent `json:"driver"`
}

// SARIFToolComponent contains tool details.
type SARIFToolComponent struct {
	Name            string                 `json:"name"`
	Version         string                 `json:"version,omitempty"`
	InformationURI  string                 `json:"informationUri,omitempty"`
	Rules           []SARIFRule            `json:"rules,omitempty"`
	SemanticVersion string                 `json:"semanticVersion,omitempty"`
	Properties      map[string]interface{} `json:"properties,omitempty"`
}

// SARIFRule is a static analysis rule, one per canonical entity type.
type SARIFRule struct {
	ID                   string                      `json:"id"`
	Name                 string                      `json:"name,omitempty"`
	ShortDescription     SARIFMultiformatMessage     `json:"shortDescription,omitempty"`
	FullDescription      SARIFMultiformatMessage     `json:"fullDescription,omitempty"`
	Help                 SARIFMultiformatMessage     `json:"help,omitempty"`
	DefaultConfiguration SARIFReportingConfiguration `json:"defaultConfiguration,omitempty"`
	Properties           map[string]interface{}      `json:"properties,omitempty"`
}

// SARIFMultiformatMessage contains text in multiple formats.
type SARIFMultiformatMessage struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown,omitempty"`
}

// SARIFReportingConfiguration contains rule configuration.
type SARIFReportingConfiguration struct {
	Enabled bool    `json:"enabled"`
	Level   string  `json:"level,omitempty"`
	Rank    float64 `json:"rank,omitempty"`
}

// SARIFResult is a single finding.
type SARIFResult struct {
	RuleID              string                 `json:"ruleId"`
	RuleIndex           int                    `json:"ruleIndex,omitempty"`
	Level               string                 `json:"level,omitempty"`
	Message             SARIFMessage           `json:"message"`
	Locations           []SARIFLocation        `json:"locations"`
	PartialFingerprints map[string]string      `json:"partialFingerprints,omitempty"`
	Properties          map[string]interface{} `json:"properties,omitempty"`
	Rank                float64                `json:"rank,omitempty"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text,omitempty"`
}

// SARIFLocation represents a location in the scanned text.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation represents a physical location in a document.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation represents a document location.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion represents a character range in a document.
type SARIFRegion struct {
	CharOffset int           `json:"charOffset,omitempty"`
	CharLength int           `json:"charLength,omitempty"`
	Snippet    *SARIFContent `json:"snippet,omitempty"`
}

// SARIFContent represents a text excerpt.
type SARIFContent struct {
	Text string `json:"text,omitempty"`
}

// SARIFInvocation records tool invocation details.
type SARIFInvocation struct {
	StartTimeUTC        string                 `json:"startTimeUtc,omitempty"`
	EndTimeUTC          string                 `json:"endTimeUtc,omitempty"`
	ExecutionSuccessful bool                   `json:"executionSuccessful"`
	Properties          map[string]interface{} `json:"properties,omitempty"`
}

// SARIFURIBaseID represents a URI base identifier.
type SARIFURIBaseID struct {
	URI         string                  `json:"uri"`
	Description SARIFMultiformatMessage `json:"description,omitempty"`
}

// SARIFExporter renders findings as a SARIF log.
type SARIFExporter struct {
	toolName    string
	toolVersion string
	infoURI     string
	baseURI     string
}

// NewSARIFExporter builds a SARIFExporter identifying the tool that
// produced the findings.
func NewSARIFExporter(toolName, toolVersion, infoURI string) *SARIFExporter {
	return &SARIFExporter{toolName: toolName, toolVersion: toolVersion, infoURI: infoURI}
}

// SetBaseURI sets the base URI locations are made relative to.
func (e *SARIFExporter) SetBaseURI(baseURI string) {
	e.baseURI = baseURI
}

// Export writes findings as a SARIF log.
func (e *SARIFExporter) Export(w io.Writer, findings []Finding, metadata ExportMetadata) error {
	report := e.createReport(findings, metadata)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (e *SARIFExporter) createReport(findings []Finding, metadata ExportMetadata) *SARIFReport {
	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFToolComponent{
				Name:            e.toolName,
				Version:         e.toolVersion,
				SemanticVersion: e.toolVersion,
				InformationURI:  e.infoURI,
				Rules:           e.rules(),
				Properties: map[string]interface{}{
					"tags": []string{"security", "privacy", "sensitive-data"},
				},
			},
		},
		Invocations: []SARIFInvocation{
			{
				StartTimeUTC:        metadata.Timestamp.UTC().Format(time.RFC3339),
				EndTimeUTC:          metadata.Timestamp.Add(metadata.ScanDuration).UTC().Format(time.RFC3339),
				ExecutionSuccessful: true,
			},
		},
		Properties: map[string]interface{}{
			"scanID":       metadata.ScanID,
			"scanDuration": metadata.ScanDuration.Seconds(),
			"source":       metadata.Source,
		},
	}

	run.Results = e.convertFindings(findings)

	if e.baseURI != "" {
		run.OriginalURIBaseIDs = map[string]SARIFURIBaseID{
			"SCAN_ROOT": {
				URI:         e.baseURI,
				Description: SARIFMultiformatMessage{Text: "Scan root"},
			},
		}
	}

	return &SARIFReport{Version: SARIFVersion, Schema: SARIFSchema, Runs: []SARIFRun{run}}
}

// ruleCatalogue lists the canonical entity types in a stable order so
// rule IDs and indices stay deterministic across runs.
func ruleCatalogue() []string {
	types := make([]string, 0, len(registry.Weights))
	for t := range registry.Weights {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (e *SARIFExporter) rules() []SARIFRule {
	catalogue := ruleCatalogue()
	rules := make([]SARIFRule, len(catalogue))
	for i, entityType := range catalogue {
		weight := registry.GetWeight(entityType)
		level := levelForWeight(weight)
		description := fmt.Sprintf("%s detected", strings.ToLower(strings.ReplaceAll(entityType, "_", " ")))
		rules[i] = SARIFRule{
			ID:               e.getRuleID(entityType),
			Name:             entityType,
			ShortDescription: SARIFMultiformatMessage{Text: description},
			FullDescription:  SARIFMultiformatMessage{Text: description},
			Help:             SARIFMultiformatMessage{Text: fmt.Sprintf("Review and remediate exposed %s values.", entityType)},
			DefaultConfiguration: SARIFReportingConfiguration{
				Enabled: true,
				Level:   level,
				Rank:    float64(weight) * 10,
			},
			Properties: map[string]interface{}{
				"category": string(registry.GetCategory(entityType)),
			},
		}
	}
	return rules
}

func (e *SARIFExporter) convertFindings(findings []Finding) []SARIFResult {
	results := make([]SARIFResult, len(findings))
	catalogue := ruleCatalogue()
	index := make(map[string]int, len(catalogue))
	for i, t := range catalogue {
		index[t] = i
	}

	for i, f := range findings {
		span := f.Span
		location := SARIFLocation{
			PhysicalLocation: SARIFPhysicalLocation{
				ArtifactLocation: SARIFArtifactLocation{URI: e.normalizeURI(f.Location)},
				Region: SARIFRegion{
					CharOffset: span.Start,
					CharLength: span.Len(),
					Snippet:    &SARIFContent{Text: f.MaskedValue()},
				},
			},
		}

		results[i] = SARIFResult{
			RuleID: e.getRuleID(span.EntityType),
			Level:  levelForWeight(registry.GetWeight(span.EntityType)),
			Message: SARIFMessage{
				Text: fmt.Sprintf("%s detected: %s", span.EntityType, f.MaskedValue()),
			},
			Locations: []SARIFLocation{location},
			PartialFingerprints: map[string]string{
				"primaryLocationHash": e.createFingerprint(f),
			},
			Properties: map[string]interface{}{
				"entityType": span.EntityType,
				"confidence": span.Confidence,
				"detector":   span.Detector,
				"tier":       span.Tier.String(),
			},
			Rank: float64(f.ScoreResult.Score),
		}
		if idx, ok := index[span.EntityType]; ok {
			results[i].RuleIndex = idx
		}
	}
	return results
}

func (e *SARIFExporter) getRuleID(entityType string) string {
	if !registry.IsKnownType(entityType) {
		return "PI999"
	}
	catalogue := ruleCatalogue()
	for i, t := range catalogue {
		if t == entityType {
			return fmt.Sprintf("PI%03d", i+1)
		}
	}
	return "PI999"
}

func levelForWeight(weight int) string {
	switch {
	case weight >= 8:
		return "error"
	case weight >= 5:
		return "warning"
	default:
		return "note"
	}
}

func (e *SARIFExporter) normalizeURI(location string) string {
	normalized := strings.ReplaceAll(location, "\\", "/")
	if e.baseURI != "" && strings.HasPrefix(normalized, e.baseURI) {
		normalized = strings.TrimPrefix(normalized, e.baseURI)
		normalized = strings.TrimPrefix(normalized, "/")
	}
	return normalized
}

func (e *SARIFExporter) createFingerprint(f Finding) string {
	data := fmt.Sprintf("%s:%s:%d:%s", f.Location, f.Span.EntityType, f.Span.Start, f.Span.Text)
	return fmt.Sprintf("%x", uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)))
}
