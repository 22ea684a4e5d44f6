package detection

import (
	"regexp"

	"github.com/chillbot-io/openlabels/pkg/types"
)

// EnhancementAction is the post-pattern verdict the context enhancer
// returns for a span (spec §4.3).
type EnhancementAction string

const (
	ActionKeep   EnhancementAction = "keep"
	ActionReject EnhancementAction = "reject"
	ActionVerify EnhancementAction = "verify"
)

// EnhancementResult carries the enhancer's verdict and adjusted
// confidence for a single span.
type EnhancementResult struct {
	Action     EnhancementAction
	Confidence float64
	Reasons    []string
}

// mrnExcludePatterns structurally reject MRN-tagged matches that are
// actually something else entirely: dollar amounts, currency-prefixed
// numbers, user-agent version strings, and crypto-address-length
// alphanumeric blobs.
var mrnExcludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+\.\d{2}$`),
	regexp.MustCompile(`^[$€£¥₹]\d`),
	regexp.MustCompile(`^[A-Z]{1,3}[$€£¥₹]\d`),
	regexp.MustCompile(`(?i)(Chrome|Safari|Firefox|AppleWebKit|Gecko|Mozilla|MSIE|Trident)[/\d.]`),
	regexp.MustCompile(`^[a-zA-Z0-9]{30,}$`),
}

// ContextEnhancer is the post-pattern pass that routes ambiguous, low-
// tier spans to keep/reject/verify (spec §4.3). Only MRN-tagged spans
// are currently enhanced; every other type and every checksum-or-above
// tier span passes straight through as "keep" (mirroring the narrow,
// surgical scope the upstream detector settled on after broader NAME/
// USERNAME filtering caused recall regressions).
type ContextEnhancer struct {
	HighThreshold float64
	LowThreshold  float64
}

// NewContextEnhancer builds a ContextEnhancer with the default
// thresholds.
func NewContextEnhancer() *ContextEnhancer {
	return &ContextEnhancer{HighThreshold: 0.85, LowThreshold: 0.15}
}

var enhancedTypes = map[string]bool{"MRN": true}

// EnhanceSpan evaluates a single span against the deny-pattern and
// confidence-threshold rules and returns the routing decision.
func (c *ContextEnhancer) EnhanceSpan(span types.Span) EnhancementResult {
	if !enhancedTypes[span.EntityType] {
		return EnhancementResult{Action: ActionKeep, Confidence: span.Confidence, Reasons: []string{"non_enhanced_type"}}
	}

	if span.Tier >= types.TierChecksum {
		return EnhancementResult{Action: ActionKeep, Confidence: span.Confidence, Reasons: []string{"high_tier"}}
	}

	for _, p := range mrnExcludePatterns {
		if p.MatchString(span.Text) {
			return EnhancementResult{Action: ActionReject, Confidence: 0, Reasons: []string{"mrn_exclude_pattern"}}
		}
	}

	confidence := span.Confidence
	switch {
	case confidence >= c.HighThreshold:
		return EnhancementResult{Action: ActionKeep, Confidence: confidence, Reasons: []string{"high_confidence"}}
	case confidence <= c.LowThreshold:
		return EnhancementResult{Action: ActionReject, Confidence: confidence, Reasons: []string{"low_confidence"}}
	default:
		return EnhancementResult{Action: ActionVerify, Confidence: confidence, Reasons: []string{"needs_verification"}}
	}
}

// Enhance applies EnhanceSpan across a span list, dropping rejected
// spans and passing through kept and verify-routed spans with their
// adjusted confidence. Callers that wire an ML-tier verifier should
// intercept ActionVerify results before calling Enhance; without one,
// "verify" spans are kept at their adjusted confidence rather than
// silently dropped.
func (c *ContextEnhancer) Enhance(spans []types.Span) []types.Span {
	out := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		result := c.EnhanceSpan(s)
		if result.Action == ActionReject {
			continue
		}
		out = append(out, s.WithConfidence(result.Confidence))
	}
	return out
}
