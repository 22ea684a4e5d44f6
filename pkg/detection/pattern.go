package detection

import (
	"strconv"
	"strings"
	"time"

	"github.com/chillbot-io/openlabels/pkg/detection/patterns"
	"github.com/chillbot-io/openlabels/pkg/types"
)

// PatternBudget bounds total time spent running the catalogue against a
// single text. Go's regexp package is RE2-backed and runs in time linear
// in input length, so no single match can blow up catastrophically the
// way a backtracking engine's could; this budget exists to bound the
// aggregate cost of running hundreds of patterns over very large inputs,
// not to recover from a single pathological match.
const PatternBudget = 10 * time.Second

// PatternDetector runs the static regex catalogue (spec §4.3) and applies
// per-entity-type structural validation to the raw matches.
type PatternDetector struct {
	entries []patterns.Entry
	budget  time.Duration
}

// NewPatternDetector builds a PatternDetector over the default catalogue.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{entries: patterns.Catalogue, budget: PatternBudget}
}

func (d *PatternDetector) Name() string     { return "pattern" }
func (d *PatternDetector) Tier() types.Tier { return types.TierPattern }

func (d *PatternDetector) Detect(text string) ([]types.Span, error) {
	deadline := time.Now().Add(d.budget)
	var out []types.Span

	for _, entry := range d.entries {
		if time.Now().After(deadline) {
			break
		}
		for _, m := range entry.Regexp.FindAllStringSubmatchIndex(text, -1) {
			start, end := matchRange(m, entry.Group)
			if start < 0 || end <= start {
				continue
			}
			value := text[start:end]
			if strings.TrimSpace(value) == "" {
				continue
			}
			if !validateMatch(entry.EntityType, value, text, start) {
				continue
			}
			span, err := types.NewSpan(start, end, value, entry.EntityType, entry.Confidence, d.Name(), d.Tier())
			if err != nil {
				continue
			}
			out = append(out, span)
		}
	}
	return out, nil
}

// matchRange resolves a FindAllStringSubmatchIndex match to the
// start/end offsets of the requested capture group, falling back to the
// whole match when the group did not participate.
func matchRange(m []int, group int) (int, int) {
	if group > 0 && 2*group+1 < len(m) && m[2*group] >= 0 {
		return m[2*group], m[2*group+1]
	}
	return m[0], m[1]
}

func validateMatch(entityType, value, text string, start int) bool {
	switch entityType {
	case "PHONE":
		return validatePhone(value)
	case "DATE", "DATE_DOB":
		return validateDateString(value)
	case "AGE":
		return validateAgeString(value)
	case "SSN":
		return validateSSNContext(text, start)
	case "IP_ADDRESS":
		return validateIP(value)
	case "NAME", "NAME_PROVIDER", "NAME_PATIENT", "NAME_RELATIVE":
		return !isFalsePositiveName(value)
	default:
		return true
	}
}

func validatePhone(value string) bool {
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10 && digits <= 15
}

func validateDateString(value string) bool {
	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == '/' || r == '-' || r == '.'
	})
	if len(parts) != 3 {
		return true
	}
	nums := make([]int, 0, 3)
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return true
		}
		nums = append(nums, n)
	}
	var y, mo, da int
	switch {
	case nums[0] > 31:
		y, mo, da = nums[0], nums[1], nums[2]
	case nums[2] > 31:
		mo, da, y = nums[0], nums[1], nums[2]
	default:
		mo, da, y = nums[0], nums[1], nums[2]
		if y < 100 {
			if y < 50 {
				y += 2000
			} else {
				y += 1900
			}
		}
	}
	return validateDateParts(mo, da, y)
}

func validateDateParts(month, day, year int) bool {
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}
	if year < 1900 || year > time.Now().Year()+1 {
		return false
	}
	return true
}

func validateAgeString(value string) bool {
	digits := make([]rune, 0, len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return true
	}
	age, err := strconv.Atoi(string(digits))
	if err != nil {
		return true
	}
	return age >= 0 && age <= 120
}

// validateSSNContext downgrades (by rejecting outright at the pattern
// tier; the allowlist pass handles confidence damping) matches whose area,
// group, or serial components are structurally reserved.
func validateSSNContext(text string, start int) bool {
	end := start
	for end < len(text) && (text[end] == '-' || (text[end] >= '0' && text[end] <= '9')) {
		end++
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, text[start:end])
	if len(digits) != 9 {
		return true
	}
	area, group, serial := digits[0:3], digits[3:5], digits[5:9]
	if area == "000" || area == "666" || area[0] == '9' {
		return false
	}
	if group == "00" {
		return false
	}
	if serial == "0000" {
		return false
	}
	return true
}

func validateIP(value string) bool {
	octets := strings.Split(value, ".")
	if len(octets) != 4 {
		return false
	}
	for _, o := range octets {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 || n > 255 {
			return false
		}
	}
	return true
}

// isFalsePositiveName rejects single common words mistakenly matched as a
// person name by an over-broad capitalized-word heuristic elsewhere in the
// catalogue; the catalogue in this package does not currently emit bare
// NAME matches (that's the ML-tier detector's job), so this only guards
// future additions.
func isFalsePositiveName(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed == "" || len(strings.Fields(trimmed)) == 0
}
