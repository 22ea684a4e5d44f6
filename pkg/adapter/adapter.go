// Package adapter defines the normalized input shape external
// classifiers (cloud DLP services, other scanners) hand to the scoring
// engine, and the merger that combines several such inputs into one.
package adapter

import (
	"fmt"
	"strings"
	"time"
)

// ExposureLevel is a normalized access-exposure level, ordered
// PRIVATE < INTERNAL < ORG_WIDE < PUBLIC.
type ExposureLevel int

const (
	ExposurePrivate ExposureLevel = iota
	ExposureInternal
	ExposureOrgWide
	ExposurePublic
)

var exposureNames = map[ExposureLevel]string{
	ExposurePrivate:  "PRIVATE",
	ExposureInternal: "INTERNAL",
	ExposureOrgWide:  "ORG_WIDE",
	ExposurePublic:   "PUBLIC",
}

func (e ExposureLevel) String() string { return exposureNames[e] }

var exposureByName = map[string]ExposureLevel{
	"PRIVATE":  ExposurePrivate,
	"INTERNAL": ExposureInternal,
	"ORG_WIDE": ExposureOrgWide,
	"PUBLIC":   ExposurePublic,
}

// NormalizeExposureLevel accepts a case-insensitive exposure string and
// returns its canonical upper-case form, rejecting unknown values rather
// than silently defaulting (spec §6 boundary rule).
func NormalizeExposureLevel(exposure string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(exposure))
	if _, ok := exposureByName[normalized]; !ok {
		return "", fmt.Errorf("invalid exposure level: %q", exposure)
	}
	return normalized, nil
}

// Entity is a detected entity with metadata, the shape an Adapter hands
// to the merger.
type Entity struct {
	Type       string
	Count      int
	Confidence float64
	Source     string
	Positions  [][2]int
}

// NormalizedContext is the normalized file/object context an Adapter
// extracts, used for exposure multiplication and protection-aware
// merging.
type NormalizedContext struct {
	Exposure            string // PRIVATE, INTERNAL, ORG_WIDE, PUBLIC
	CrossAccountAccess  bool
	AnonymousAccess     bool
	Encryption          string // none, platform, customer_managed
	Versioning          bool
	AccessLogging       bool
	RetentionPolicy     bool
	LastModified        string
	LastAccessed        string
	StalenessDays       int
	HasClassification   bool
	ClassificationSource string
	Path                string
	Owner               string
	SizeBytes           int64
	FileType            string
	IsArchive           bool
}

// NewNormalizedContext validates and normalizes the exposure field,
// defaulting to PRIVATE/none when unset.
func NewNormalizedContext(exposure string) (NormalizedContext, error) {
	if exposure == "" {
		exposure = "PRIVATE"
	}
	normalized, err := NormalizeExposureLevel(exposure)
	if err != nil {
		return NormalizedContext{}, err
	}
	return NormalizedContext{Exposure: normalized, Encryption: "none"}, nil
}

// NormalizedInput pairs an adapter's entities with its context; this is
// the standard input the scorer consumes.
type NormalizedInput struct {
	Entities []Entity
	Context  NormalizedContext
}

// Adapter is implemented by every external classifier integration:
// extract entities and context from a platform-specific source.
type Adapter interface {
	Extract(source any, metadata any) (NormalizedInput, error)
}

var archiveExtensions = map[string]bool{
	".zip": true, ".tar": true, ".gz": true, ".tgz": true,
	".7z": true, ".rar": true, ".bz2": true,
}

// IsArchive reports whether filename has a recognized archive extension.
func IsArchive(filename string) bool {
	lower := strings.ToLower(filename)
	for ext := range archiveExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// CalculateStalenessDays returns the number of days since lastModified
// (RFC3339), or 0 if it can't be parsed or is empty.
func CalculateStalenessDays(lastModified string) int {
	if lastModified == "" {
		return 0
	}
	t, err := time.Parse(time.RFC3339, lastModified)
	if err != nil {
		return 0
	}
	days := int(time.Since(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// EntityAggregator aggregates detected entities by type: counts sum,
// confidence takes the max, positions accumulate. Mirrors the common
// pattern every adapter needs before producing a NormalizedInput.
type EntityAggregator struct {
	source string
	data   map[string]*aggregatedEntity
	order  []string
}

type aggregatedEntity struct {
	count      int
	confidence float64
	positions  [][2]int
}

// NewEntityAggregator creates an aggregator tagging produced entities
// with the given source identifier.
func NewEntityAggregator(source string) *EntityAggregator {
	return &EntityAggregator{source: source, data: map[string]*aggregatedEntity{}}
}

// Add records a detection of entityType, merging into any existing
// aggregate for that type.
func (a *EntityAggregator) Add(entityType string, count int, confidence float64, positions [][2]int) {
	if entityType == "" {
		return
	}
	e, ok := a.data[entityType]
	if !ok {
		e = &aggregatedEntity{}
		a.data[entityType] = e
		a.order = append(a.order, entityType)
	}
	e.count += count
	if confidence > e.confidence {
		e.confidence = confidence
	}
	e.positions = append(e.positions, positions...)
}

// ToEntities converts the aggregated data into the []Entity the merger
// expects, one per unique entity type, in first-seen order.
func (a *EntityAggregator) ToEntities() []Entity {
	out := make([]Entity, 0, len(a.order))
	for _, t := range a.order {
		e := a.data[t]
		out = append(out, Entity{Type: t, Count: e.count, Confidence: e.confidence, Source: a.source, Positions: e.positions})
	}
	return out
}

// Len returns the number of distinct entity types aggregated so far.
func (a *EntityAggregator) Len() int { return len(a.data) }
