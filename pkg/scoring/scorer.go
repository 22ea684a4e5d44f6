// Package scoring turns entity counts and an exposure level into a
// bounded, monotonic risk score and tier classification.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/chillbot-io/openlabels/pkg/registry"
)

// WeightScale is the multiplier applied to each entity type's registry
// weight when computing its contribution to the content score.
const WeightScale = 4.0

// DefaultConfidence is used when a caller does not supply one.
const DefaultConfidence = 0.90

// RiskTier is the bucketed risk classification derived from a score.
type RiskTier string

const (
	TierMinimal  RiskTier = "MINIMAL"
	TierLow      RiskTier = "LOW"
	TierMedium   RiskTier = "MEDIUM"
	TierHigh     RiskTier = "HIGH"
	TierCritical RiskTier = "CRITICAL"
)

// tierThresholds maps the minimum score for each tier, checked from the
// top down.
var tierThresholds = []struct {
	tier RiskTier
	min  int
}{
	{TierCritical, 80},
	{TierHigh, 55},
	{TierMedium, 31},
	{TierLow, 11},
}

// ScoreToTier returns the risk tier for a score in [0,100].
func ScoreToTier(score int) RiskTier {
	for _, t := range tierThresholds {
		if score >= t.min {
			return t.tier
		}
	}
	return TierMinimal
}

// coOccurrenceRule is one static rule from the co-occurrence table: when
// every category in Categories is present among the scored entities, its
// Multiplier applies (the highest-multiplier matching rule wins).
type coOccurrenceRule struct {
	name       string
	categories []registry.Category
	multiplier float64
}

// CoOccurrenceRules mirrors the original scorer's static rule table.
var CoOccurrenceRules = []coOccurrenceRule{
	{"direct_id_quasi_id_financial", []registry.Category{registry.CategoryDirectIdentifier, registry.CategoryQuasiIdentifier, registry.CategoryFinancial}, 2.2},
	{"classification_marking", []registry.Category{registry.CategoryClassificationMarking}, 2.5},
	{"direct_id_health_info_hipaa", []registry.Category{registry.CategoryDirectIdentifier, registry.CategoryHealthInfo}, 2.0},
	{"direct_id_financial", []registry.Category{registry.CategoryDirectIdentifier, registry.CategoryFinancial}, 1.8},
	{"credential", []registry.Category{registry.CategoryCredential}, 1.5},
	{"quasi_id_health_info", []registry.Category{registry.CategoryQuasiIdentifier, registry.CategoryHealthInfo}, 1.5},
	{"contact_health_info", []registry.Category{registry.CategoryContact, registry.CategoryHealthInfo}, 1.4},
}

// ExposureMultipliers maps each normalized exposure level to its risk
// multiplier.
var ExposureMultipliers = map[string]float64{
	"PRIVATE":  1.0,
	"INTERNAL": 1.2,
	"ORG_WIDE": 1.8,
	"PUBLIC":   2.5,
}

// ScoringResult is the complete output of Score: the final bounded score,
// its tier, and the intermediate values needed for audit.
type ScoringResult struct {
	Score                  int
	Tier                   RiskTier
	ContentScore           float64
	ExposureMultiplier     float64
	CoOccurrenceMultiplier float64
	CoOccurrenceRules      []string
	Categories             map[registry.Category]bool
	Exposure               string
}

// getPresentCategories returns the set of categories represented among
// the given entity counts (a zero count does not count as present).
func getPresentCategories(counts map[string]int) map[registry.Category]bool {
	present := map[registry.Category]bool{}
	for etype, count := range counts {
		if count <= 0 {
			continue
		}
		present[registry.GetCategory(etype)] = true
	}
	return present
}

// getCoOccurrenceMultiplier returns the highest-multiplier rule whose
// every required category is present, and its name; 1.0/no rules if
// none match.
func getCoOccurrenceMultiplier(present map[registry.Category]bool) (float64, []string) {
	best := 1.0
	var triggered []string
	for _, rule := range CoOccurrenceRules {
		allPresent := true
		for _, c := range rule.categories {
			if !present[c] {
				allPresent = false
				break
			}
		}
		if !allPresent {
			continue
		}
		triggered = append(triggered, rule.name)
		if rule.multiplier > best {
			best = rule.multiplier
		}
	}
	sort.Strings(triggered)
	return best, triggered
}

// Score implements spec §4.7's algorithm: per-type weighted, log-damped,
// confidence-scaled contributions summed into a content score, amplified
// by the highest matching co-occurrence rule, then by the exposure
// multiplier, capped to [0,100] at each stage so the result is always a
// bounded integer and monotonic in both count and exposure.
func Score(entityCounts map[string]int, exposure string, confidence float64) ScoringResult {
	if confidence <= 0 {
		confidence = DefaultConfidence
	}
	exposure = strings.ToUpper(strings.TrimSpace(exposure))

	base := 0.0
	for etype, count := range entityCounts {
		if count <= 0 {
			continue
		}
		weight := float64(registry.GetWeight(etype))
		base += weight * WeightScale * (1 + math.Log(math.Max(1, float64(count)))) * confidence
	}

	present := getPresentCategories(entityCounts)
	coOccurrence, rules := getCoOccurrenceMultiplier(present)

	content := math.Min(100, base*coOccurrence)

	exposureMultiplier, ok := ExposureMultipliers[exposure]
	if !ok {
		exposureMultiplier = ExposureMultipliers["PRIVATE"]
	}

	final := math.Min(100, content*exposureMultiplier)
	score := int(math.Round(final))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return ScoringResult{
		Score:                  score,
		Tier:                   ScoreToTier(score),
		ContentScore:           content,
		ExposureMultiplier:     exposureMultiplier,
		CoOccurrenceMultiplier: coOccurrence,
		CoOccurrenceRules:      rules,
		Categories:             present,
		Exposure:               exposure,
	}
}
