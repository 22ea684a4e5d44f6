package detection

import (
	"regexp"
	"strconv"

	"github.com/chillbot-io/openlabels/pkg/types"
)

// patternEntryLike mirrors patterns.Entry's shape for labeled-pattern
// detectors (additional_patterns) that keep their own small catalogue
// separate from the static PII/healthcare/government one.
type patternEntryLike struct {
	Regexp     *regexp.Regexp
	EntityType string
	Confidence float64
	Group      int
}

var additionalEntries = []patternEntryLike{
	// AGE
	{regexp.MustCompile(`(?i)\b(\d{1,3})\s*[-–]?\s*(?:years?\s*old|year[-–]old|y/?o(?:ld)?|yo|yr\s*old)\b`), "AGE", 0.8, 1},
	{regexp.MustCompile(`(?i)\b(?:age[d]?|patient\s+age|pt\.?\s+age)\s*[:\s]\s*(\d{1,3})\b`), "AGE", 0.6, 1},
	{regexp.MustCompile(`(?i)\b(\d{1,3})[-–](?:year|yr)[-–]old\s+(?:male|female|patient|man|woman|child|infant|boy|girl|adult)\b`), "AGE", 0.93, 1},

	// EMPLOYER
	{regexp.MustCompile(`(?i)\b(?:employer|employed\s+(?:at|by)|works?\s+(?:at|for)|company)\s*[:\s]+([A-Z][A-Za-z0-9\s&'\-]{2,40}?)(?:[,.\n]|$)`), "EMPLOYER", 0.25, 1},
	{regexp.MustCompile(`\b([A-Z][A-Za-z0-9&'\-]*(?:\s+[A-Z][A-Za-z0-9&'\-]*){0,5})\s+(?:Inc\.?|Corp\.?|Corporation|Company|Co\.?|LLC|Ltd\.?|Limited|LLP|PLC|Group|Holdings|Partners|Industries|Enterprises)\b`), "EMPLOYER", 0.4, 1},

	// HEALTH_PLAN_ID / MEMBER_ID
	{regexp.MustCompile(`(?i)\b(?:member|subscriber|policy|group|plan|insurance|ins|beneficiary)\s*(?:id|#|no\.?|number|num)\s*[:\s#]*([A-Z0-9]{5,20})\b`), "HEALTH_PLAN_ID", 0.5, 1},
	{regexp.MustCompile(`\b((?:BCBS|UHC|UHG|AETNA|CIGNA|HUMANA|KAISER|ANTHEM|WPS|TRICARE|CHAMPUS)[A-Z0-9]{4,15})\b`), "HEALTH_PLAN_ID", 0.6, 1},
	{regexp.MustCompile(`(?i)\bmember\s*(?:id|#|number)\s*[:\s#]*([A-Z]{2,4}\d{6,12})\b`), "MEMBER_ID", 0.4, 1},
	{regexp.MustCompile(`(?i)\b(?:medicaid|medicare)\s*(?:id|#|number)?\s*[:\s#]*([A-Z0-9]{9,12})\b`), "HEALTH_PLAN_ID", 0.5, 1},

	// NPI without validator context (labeled variant; the validated form
	// is handled by the healthcare pattern catalogue + checksum detector)
	{regexp.MustCompile(`(?i)\bprovider\s*(?:id|#|number)?\s*[:\s#]*([12]\d{9})\b`), "NPI", 0.4, 1},

	// BANK_ROUTING (contextual; the checksum detector independently
	// validates any 9-digit candidate against the ABA algorithm)
	{regexp.MustCompile(`(?i)\b(?:routing|ABA|RTN)\s*(?:number|#|no\.?)?\s*[:\s#]*(\d{9})\b`), "BANK_ROUTING", 0.6, 1},

	// EMPLOYEE_ID
	{regexp.MustCompile(`(?i)\b(?:employee|staff|personnel|worker)\s*(?:id|#|number|no\.?)\s*[:\s#]*([A-Z0-9]{4,15})\b`), "EMPLOYEE_ID", 0.25, 1},
	{regexp.MustCompile(`(?i)\bemp(?:loyee)?\s*id\s*[:\s#]*([A-Z0-9]{4,12})\b`), "EMPLOYEE_ID", 0.3, 1},
}

// AdditionalPatternDetector catches the remaining labeled entity types
// the core catalogue doesn't cover: age, employer, health-plan/member
// IDs, bank routing, and employee IDs (spec §4.3). AGE matches are
// validated to fall within [0, 120]; out-of-range values are dropped
// rather than downgraded, since an age outside that range is almost
// certainly a different kind of number that happened to match the
// pattern.
type AdditionalPatternDetector struct {
	entries []patternEntryLike
}

// NewAdditionalPatternDetector builds an AdditionalPatternDetector over
// the default entry list.
func NewAdditionalPatternDetector() *AdditionalPatternDetector {
	return &AdditionalPatternDetector{entries: additionalEntries}
}

func (d *AdditionalPatternDetector) Name() string     { return "additional_patterns" }
func (d *AdditionalPatternDetector) Tier() types.Tier { return types.TierPattern }

func (d *AdditionalPatternDetector) Detect(text string) ([]types.Span, error) {
	var out []types.Span
	for _, entry := range d.entries {
		for _, m := range entry.Regexp.FindAllStringSubmatchIndex(text, -1) {
			start, end := matchRange(m, entry.Group)
			if start < 0 || end <= start {
				continue
			}
			value := text[start:end]
			if entry.EntityType == "AGE" && !isValidAge(value) {
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

func isValidAge(value string) bool {
	digits := make([]rune, 0, len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return false
	}
	age, err := strconv.Atoi(string(digits))
	if err != nil {
		return false
	}
	return age >= 0 && age <= 120
}
