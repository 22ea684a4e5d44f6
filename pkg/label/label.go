// Package label implements the compact, portable label primitives:
// label IDs, content hashes, value hashes, and the LabelSet codec that
// travels with a file (embedded) or lives in an index (virtual).
package label

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/chillbot-io/openlabels/pkg/types"
)

var (
	labelIDPattern      = regexp.MustCompile(`^ol_[a-f0-9]{12}$`)
	contentHashPattern  = regexp.MustCompile(`^[a-f0-9]{12}$`)
	valueHashPattern    = regexp.MustCompile(`^[a-f0-9]{6}$`)
)

// GenerateLabelID returns a new immutable label ID: "ol_" + 12 hex chars
// drawn from a CSPRNG.
func GenerateLabelID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate label id: %w", err)
	}
	return "ol_" + hex.EncodeToString(buf), nil
}

// IsValidLabelID reports whether s has the canonical label ID format.
func IsValidLabelID(s string) bool { return labelIDPattern.MatchString(s) }

// ComputeContentHash returns the first 12 hex chars of SHA-256(content).
func ComputeContentHash(content []byte) string {
	digest := sha256.Sum256(content)
	return strings.ToLower(hex.EncodeToString(digest[:]))[:12]
}

// IsValidContentHash reports whether s has the canonical content hash format.
func IsValidContentHash(s string) bool { return contentHashPattern.MatchString(s) }

// valueNormalizers holds per-entity-type normalization rules applied
// before hashing, so equivalent representations of the same value hash
// identically (spec §4.9).
var valueNormalizers = map[string]func(string) string{
	"SSN":         stripHyphensSpaces,
	"CREDIT_CARD": stripHyphensSpaces,
	"PHONE":       keepDigitsAndPlus,
	"IBAN":        func(v string) string { return strings.ToUpper(strings.ReplaceAll(v, " ", "")) },
	"EMAIL":       func(v string) string { return strings.ToLower(strings.TrimSpace(v)) },
}

func stripHyphensSpaces(v string) string {
	v = strings.ReplaceAll(v, "-", "")
	v = strings.ReplaceAll(v, " ", "")
	return v
}

func keepDigitsAndPlus(v string) string {
	var sb strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '+' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// NormalizeValue applies the per-type normalization rule (if any) after
// trimming whitespace.
func NormalizeValue(value, entityType string) string {
	value = strings.TrimSpace(value)
	if normalizer, ok := valueNormalizers[strings.ToUpper(entityType)]; ok {
		return normalizer(value)
	}
	return value
}

// ComputeValueHash returns the first 6 hex chars of SHA-256 of the
// normalized value, for cross-system correlation without storing raw PII.
func ComputeValueHash(value, entityType string) string {
	normalized := NormalizeValue(value, entityType)
	digest := sha256.Sum256([]byte(normalized))
	return strings.ToLower(hex.EncodeToString(digest[:]))[:6]
}

// IsValidValueHash reports whether s has the canonical value hash format.
func IsValidValueHash(s string) bool { return valueHashPattern.MatchString(s) }

// Label is a single detected entity, serialized with compact
// single-letter field names per spec §4.9.
type Label struct {
	Type       string
	Confidence float64
	Detector   string
	ValueHash  string
	Count      int
	Extensions map[string]any
}

type labelWire struct {
	T string         `json:"t"`
	C float64        `json:"c"`
	D string         `json:"d"`
	H string         `json:"h"`
	N int            `json:"n,omitempty"`
	X map[string]any `json:"x,omitempty"`
}

// MarshalJSON serializes the Label to the compact wire format.
func (l Label) MarshalJSON() ([]byte, error) {
	w := labelWire{
		T: l.Type,
		C: roundTo2(l.Confidence),
		D: l.Detector,
		H: l.ValueHash,
		X: l.Extensions,
	}
	if l.Count > 1 {
		w.N = l.Count
	}
	return json.Marshal(w)
}

// UnmarshalJSON deserializes a Label from the compact wire format,
// strictly validating each field's type (matching the original's
// from_dict type checks).
func (l *Label) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", types.ErrMalformedLabelSet, err)
	}
	t, ok := raw["t"].(string)
	if !ok {
		return fmt.Errorf("%w: label type must be string", types.ErrMalformedLabelSet)
	}
	c, ok := raw["c"].(float64)
	if !ok {
		return fmt.Errorf("%w: label confidence must be numeric", types.ErrMalformedLabelSet)
	}
	d, ok := raw["d"].(string)
	if !ok {
		return fmt.Errorf("%w: label detector must be string", types.ErrMalformedLabelSet)
	}
	h, ok := raw["h"].(string)
	if !ok {
		return fmt.Errorf("%w: label value_hash must be string", types.ErrMalformedLabelSet)
	}
	count := 1
	if n, present := raw["n"]; present {
		nf, ok := n.(float64)
		if !ok {
			return fmt.Errorf("%w: label count must be integer", types.ErrMalformedLabelSet)
		}
		count = int(nf)
	}
	var extensions map[string]any
	if x, present := raw["x"]; present {
		m, ok := x.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: label extensions must be object", types.ErrMalformedLabelSet)
		}
		extensions = m
	}
	l.Type, l.Confidence, l.Detector, l.ValueHash, l.Count, l.Extensions = t, c, d, h, count, extensions
	return nil
}

func roundTo2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// LabelSet is the portable collection of labels for one file/data unit.
type LabelSet struct {
	Version     int
	LabelID     string
	ContentHash string
	Labels      []Label
	Source      string
	Timestamp   int64
	Extensions  map[string]any
}

// NewLabelSet validates and constructs a LabelSet (version must be 1,
// label ID and content hash must match their canonical formats).
func NewLabelSet(labelID, contentHash string, labels []Label, source string, timestamp int64) (LabelSet, error) {
	if !IsValidLabelID(labelID) {
		return LabelSet{}, fmt.Errorf("%w: invalid label id %q", types.ErrMalformedLabelSet, labelID)
	}
	if !IsValidContentHash(contentHash) {
		return LabelSet{}, fmt.Errorf("%w: invalid content hash %q", types.ErrMalformedLabelSet, contentHash)
	}
	return LabelSet{
		Version:     1,
		LabelID:     labelID,
		ContentHash: contentHash,
		Labels:      labels,
		Source:      source,
		Timestamp:   timestamp,
	}, nil
}

// Create builds a new LabelSet from detection output, generating a fresh
// label ID unless an existing one is supplied (for re-scans).
func Create(labels []Label, content []byte, source string, existingLabelID string) (LabelSet, error) {
	labelID := existingLabelID
	if labelID == "" {
		var err error
		labelID, err = GenerateLabelID()
		if err != nil {
			return LabelSet{}, err
		}
	}
	if source == "" {
		source = "openlabels:1.0.0"
	}
	return NewLabelSet(labelID, ComputeContentHash(content), labels, source, time.Now().Unix())
}

type labelSetWire struct {
	V      int            `json:"v"`
	ID     string         `json:"id"`
	Hash   string         `json:"hash"`
	Labels []Label        `json:"labels"`
	Source string         `json:"src"`
	TS     int64          `json:"ts"`
	X      map[string]any `json:"x,omitempty"`
}

// ToJSON serializes the LabelSet to compact JSON (no indentation),
// matching the spec's wire format.
func (ls LabelSet) ToJSON() ([]byte, error) {
	w := labelSetWire{
		V: ls.Version, ID: ls.LabelID, Hash: ls.ContentHash,
		Labels: ls.Labels, Source: ls.Source, TS: ls.Timestamp, X: ls.Extensions,
	}
	return json.Marshal(w)
}

// FromJSON deserializes a LabelSet, strictly validating each top-level
// field's type before trusting it.
func FromJSON(data []byte) (LabelSet, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LabelSet{}, fmt.Errorf("%w: %v", types.ErrMalformedLabelSet, err)
	}
	vf, ok := raw["v"].(float64)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: version must be integer", types.ErrMalformedLabelSet)
	}
	id, ok := raw["id"].(string)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: id must be string", types.ErrMalformedLabelSet)
	}
	hash, ok := raw["hash"].(string)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: hash must be string", types.ErrMalformedLabelSet)
	}
	labelsRaw, ok := raw["labels"].([]any)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: labels must be array", types.ErrMalformedLabelSet)
	}
	src, ok := raw["src"].(string)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: src must be string", types.ErrMalformedLabelSet)
	}
	tsf, ok := raw["ts"].(float64)
	if !ok {
		return LabelSet{}, fmt.Errorf("%w: ts must be integer", types.ErrMalformedLabelSet)
	}
	if int(vf) != 1 {
		return LabelSet{}, fmt.Errorf("%w: unsupported version %d", types.ErrMalformedLabelSet, int(vf))
	}

	labels := make([]Label, 0, len(labelsRaw))
	for _, lr := range labelsRaw {
		b, err := json.Marshal(lr)
		if err != nil {
			return LabelSet{}, fmt.Errorf("%w: %v", types.ErrMalformedLabelSet, err)
		}
		var l Label
		if err := json.Unmarshal(b, &l); err != nil {
			return LabelSet{}, err
		}
		labels = append(labels, l)
	}

	var extensions map[string]any
	if x, present := raw["x"]; present {
		m, ok := x.(map[string]any)
		if !ok {
			return LabelSet{}, fmt.Errorf("%w: extensions must be object", types.ErrMalformedLabelSet)
		}
		extensions = m
	}

	return NewLabelSet2(int(vf), id, hash, labels, src, int64(tsf), extensions)
}

// NewLabelSet2 is the internal constructor used by FromJSON, which has
// already validated version and needs to preserve extensions.
func NewLabelSet2(version int, labelID, contentHash string, labels []Label, source string, timestamp int64, extensions map[string]any) (LabelSet, error) {
	ls, err := NewLabelSet(labelID, contentHash, labels, source, timestamp)
	if err != nil {
		return LabelSet{}, err
	}
	ls.Version = version
	ls.Extensions = extensions
	return ls, nil
}

// VirtualLabelPointer is stored in extended attributes for virtual
// labels: "{label_id}:{content_hash}".
type VirtualLabelPointer struct {
	LabelID     string
	ContentHash string
}

func (p VirtualLabelPointer) String() string { return p.LabelID + ":" + p.ContentHash }

// ParseVirtualLabelPointer parses the xattr value format.
func ParseVirtualLabelPointer(value string) (VirtualLabelPointer, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return VirtualLabelPointer{}, fmt.Errorf("%w: invalid virtual label format %q", types.ErrInvalidInput, value)
	}
	return VirtualLabelPointer{LabelID: parts[0], ContentHash: parts[1]}, nil
}

// FromSpans converts detection spans grouped by entity type into Labels,
// using the first value per type for the value hash and the average
// confidence across occurrences (mirrors labels_from_detection).
func FromSpans(spans []types.Span, entityCounts map[string]int, defaultDetector string) []Label {
	type accum struct {
		firstValue string
		confSum    float64
		n          int
		detector   string
	}
	byType := map[string]*accum{}
	order := []string{}
	for _, s := range spans {
		a, ok := byType[s.EntityType]
		if !ok {
			a = &accum{firstValue: s.Text, detector: defaultDetector}
			if s.Detector != "" {
				a.detector = s.Detector
			}
			byType[s.EntityType] = a
			order = append(order, s.EntityType)
		}
		a.confSum += s.Confidence
		a.n++
	}

	labels := make([]Label, 0, len(order))
	for _, etype := range order {
		a := byType[etype]
		count := a.n
		if c, ok := entityCounts[etype]; ok {
			count = c
		}
		labels = append(labels, Label{
			Type:       etype,
			Confidence: a.confSum / float64(a.n),
			Detector:   a.detector,
			ValueHash:  ComputeValueHash(a.firstValue, etype),
			Count:      count,
		})
	}
	return labels
}
