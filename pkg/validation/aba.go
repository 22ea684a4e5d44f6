package validation

import "regexp"

var abaPattern = regexp.MustCompile(`^\d{9}$`)

var abaPrefixRanges = [][2]int{{0, 12}, {21, 32}, {61, 72}, {80, 80}}

// ABAValidator validates ABA/routing transit numbers: 9 digits, a
// restricted leading two-digit Federal Reserve district prefix, and a
// weighted mod-10 checksum with weights [3,7,1] repeating.
type ABAValidator struct{}

func (ABAValidator) Type() string { return "BANK_ROUTING" }

func (ABAValidator) Normalize(candidate string) string { return digitsOnly(candidate) }

func (v ABAValidator) Validate(candidate string) (bool, float64) {
	digits := v.Normalize(candidate)
	if !abaPattern.MatchString(digits) {
		return false, 0
	}
	prefix := int(digits[0]-'0')*10 + int(digits[1]-'0')
	validPrefix := false
	for _, r := range abaPrefixRanges {
		if prefix >= r[0] && prefix <= r[1] {
			validPrefix = true
			break
		}
	}
	if !validPrefix {
		return false, 0
	}
	weights := [3]int{3, 7, 1}
	sum := 0
	for i := 0; i < 9; i++ {
		sum += int(digits[i]-'0') * weights[i%3]
	}
	if sum%10 != 0 {
		return false, 0
	}
	return true, 0.9
}
