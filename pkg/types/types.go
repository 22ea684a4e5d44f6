// Package types defines the shared value types that flow through the
// detection, merge, and scoring pipeline: Span, Tier, and DetectionResult.
package types

import (
	"fmt"
	"strings"
)

// Tier is a detector's authority level. Higher tiers override lower ones
// when spans from different detectors cover the same text.
type Tier int

const (
	TierML Tier = iota + 1
	TierPattern
	TierStructured
	TierChecksum
)

func (t Tier) String() string {
	switch t {
	case TierML:
		return "ml"
	case TierPattern:
		return "pattern"
	case TierStructured:
		return "structured"
	case TierChecksum:
		return "checksum"
	default:
		return "unknown"
	}
}

// Less reports whether t has strictly lower authority than other.
func (t Tier) Less(other Tier) bool { return t < other }

// Span is an immutable detection result: a contiguous range of the source
// text carrying an entity type, confidence, and detector provenance.
//
// Construct only via NewSpan; every pipeline stage that needs to change a
// Span produces a new value via With* helpers rather than mutating one.
type Span struct {
	Start      int
	End        int
	Text       string
	EntityType string
	Confidence float64
	Detector   string
	Tier       Tier

	SafeHarborValue string
	NeedsReview     bool
	ReviewReason    string
	CorefAnchor     string
	Token           string
}

// NewSpan constructs a Span, enforcing the invariants from the spec:
// 0 <= start < end, text length matches the range, confidence in [0,1],
// and the entity type is canonicalized to trimmed upper case.
func NewSpan(start, end int, text, entityType string, confidence float64, detector string, tier Tier) (Span, error) {
	if start < 0 || start >= end {
		return Span{}, fmt.Errorf("%w: start=%d end=%d", ErrInvalidSpan, start, end)
	}
	if len(text) != end-start {
		return Span{}, fmt.Errorf("%w: text length %d != end-start %d", ErrInvalidSpan, len(text), end-start)
	}
	if confidence < 0.0 || confidence > 1.0 {
		return Span{}, fmt.Errorf("%w: confidence=%f", ErrInvalidSpan, confidence)
	}
	return Span{
		Start:      start,
		End:        end,
		Text:       text,
		EntityType: strings.ToUpper(strings.TrimSpace(entityType)),
		Confidence: confidence,
		Detector:   detector,
		Tier:       tier,
	}, nil
}

// Verify checks the span's text against the source it was detected in,
// as required at pipeline entry: the slice source[Start:End] must equal Text.
func (s Span) Verify(source string) error {
	if s.End > len(source) || s.Start < 0 {
		return fmt.Errorf("%w: range [%d,%d) outside source of length %d", ErrInvalidSpan, s.Start, s.End, len(source))
	}
	if source[s.Start:s.End] != s.Text {
		return fmt.Errorf("%w: text mismatch at [%d,%d)", ErrInvalidSpan, s.Start, s.End)
	}
	return nil
}

// Len returns the span's character length.
func (s Span) Len() int { return s.End - s.Start }

// AuthorityKey orders spans by the tuple the merge pipeline sorts on:
// tier descending, confidence descending, length descending, start ascending.
// Less reports whether s sorts before other under that ordering.
func (s Span) AuthorityLess(other Span) bool {
	if s.Tier != other.Tier {
		return s.Tier > other.Tier
	}
	if s.Confidence != other.Confidence {
		return s.Confidence > other.Confidence
	}
	if s.Len() != other.Len() {
		return s.Len() > other.Len()
	}
	return s.Start < other.Start
}

// Overlaps reports whether s and other's ranges intersect.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// Contains reports whether other lies entirely inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// WithType returns a copy of s with a different canonical entity type.
func (s Span) WithType(entityType string) Span {
	s.EntityType = strings.ToUpper(strings.TrimSpace(entityType))
	return s
}

// WithConfidence returns a copy of s with a different confidence.
func (s Span) WithConfidence(confidence float64) Span {
	s.Confidence = confidence
	return s
}

// WithRange returns a copy of s trimmed/expanded to [start,end) with new text.
func (s Span) WithRange(start, end int, text string) Span {
	s.Start = start
	s.End = end
	s.Text = text
	return s
}

// DetectionResult is the outcome of running the detector set over one
// piece of text.
type DetectionResult struct {
	Text              string
	Spans             []Span
	ProcessingTimeMs  float64
	DetectorsUsed     []string
	DetectorsFailed   []string
	Warnings          []string
	Degraded          bool
	AllDetectorsFailed bool
	EntityCounts      map[string]int
}

// HasPII reports whether any span survived to the final result.
func (r DetectionResult) HasPII() bool { return len(r.Spans) > 0 }

// Detector is implemented by every detection strategy the orchestrator
// dispatches: pattern, checksum, financial, secrets, additional-pattern,
// and (optionally) the ML tier.
type Detector interface {
	Name() string
	Tier() Tier
	Detect(text string) ([]Span, error)
}

// CompatibilityGroups partitions canonical entity types so the merge
// pipeline's containment-dedup stage can treat related subtypes as the
// same logical entity (NAME_* subtypes, ADDRESS parts, PHONE/FAX, SSN
// variants).
var CompatibilityGroups = [][]string{
	{"NAME", "NAME_PATIENT", "NAME_PROVIDER", "NAME_RELATIVE", "PERSON", "PER"},
	{"ADDRESS", "STREET", "CITY", "STATE", "ZIP"},
	{"PHONE", "FAX"},
	{"SSN", "SSN_PARTIAL"},
}

// CompatibleTypes reports whether a and b may be treated as the same
// entity for containment purposes: identical, one a prefix of the other,
// or members of the same compatibility group.
func CompatibleTypes(a, b string) bool {
	if a == b {
		return true
	}
	if strings.HasPrefix(a, b) || strings.HasPrefix(b, a) {
		return true
	}
	for _, group := range CompatibilityGroups {
		inA, inB := false, false
		for _, t := range group {
			if t == a {
				inA = true
			}
			if t == b {
				inB = true
			}
		}
		if inA && inB {
			return true
		}
	}
	return false
}

// ClinicalContextTypes are entity categories useful to the allowlist for
// context queries but dropped from final user-visible output (spec §4.4
// stage 2).
var ClinicalContextTypes = map[string]bool{
	"LAB_TEST":      true,
	"DIAGNOSIS":     true,
	"MEDICATION":    true,
	"PROCEDURE":     true,
	"PAYER":         true,
	"PHYSICAL_DESC": true,
}

// IsClinicalContext reports whether the canonical type is a clinical
// context type.
func IsClinicalContext(entityType string) bool {
	return ClinicalContextTypes[entityType]
}

// Config controls detection and merge behavior at the public API boundary
// (spec §6's Detection API config options).
type Config struct {
	MinConfidence            float64
	MaxTextSize              int
	DetectorTimeoutMs        int
	EnabledDetectors         map[string]bool
	IncludeClinicalContext   bool
}

// DefaultConfig returns the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		MinConfidence:          0.5,
		MaxTextSize:            1_000_000,
		DetectorTimeoutMs:      120_000,
		EnabledDetectors:       nil, // nil means "all registered detectors"
		IncludeClinicalContext: false,
	}
}
