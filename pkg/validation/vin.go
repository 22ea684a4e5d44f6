package validation

import (
	"regexp"
	"strings"
)

var vinPattern = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

var vinTransliteration = map[byte]int{
	'A': 1, 'B': 2, 'C': 3, 'D': 4, 'E': 5, 'F': 6, 'G': 7, 'H': 8,
	'J': 1, 'K': 2, 'L': 3, 'M': 4, 'N': 5, 'P': 7, 'R': 9,
	'S': 2, 'T': 3, 'U': 4, 'V': 5, 'W': 6, 'X': 7, 'Y': 8, 'Z': 9,
}

var vinWeights = [17]int{8, 7, 6, 5, 4, 3, 2, 10, 0, 9, 8, 7, 6, 5, 4, 3, 2}

// VINValidator validates 17-character vehicle identification numbers
// (forbidding I/O/Q) via the positional-weight check digit at index 9.
type VINValidator struct{}

func (VINValidator) Type() string { return "VIN" }

func (VINValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func (v VINValidator) Validate(candidate string) (bool, float64) {
	vin := v.Normalize(candidate)
	if !vinPattern.MatchString(vin) {
		return false, 0
	}
	sum := 0
	for i := 0; i < 17; i++ {
		c := vin[i]
		var val int
		if c >= '0' && c <= '9' {
			val = int(c - '0')
		} else {
			tv, ok := vinTransliteration[c]
			if !ok {
				return false, 0
			}
			val = tv
		}
		sum += val * vinWeights[i]
	}
	remainder := sum % 11
	checkChar := vin[8]
	if remainder == 10 {
		if checkChar != 'X' {
			return false, 0
		}
	} else if int(checkChar-'0') != remainder {
		return false, 0
	}
	return true, 0.93
}
