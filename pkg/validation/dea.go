package validation

import "regexp"

var deaPattern = regexp.MustCompile(`^[A-Z]{2}\d{7}$`)

// DEAValidator validates DEA registration numbers: two letters followed
// by seven digits, with (d1+d3+d5) + 2*(d2+d4+d6) mod 10 == d7.
type DEAValidator struct{}

func (DEAValidator) Type() string { return "DEA" }

func (DEAValidator) Normalize(candidate string) string { return candidate }

func (v DEAValidator) Validate(candidate string) (bool, float64) {
	if !deaPattern.MatchString(candidate) {
		return false, 0
	}
	d := func(i int) int { return int(candidate[2+i] - '0') }
	sumOdd := d(0) + d(2) + d(4)
	sumEven := d(1) + d(3) + d(5)
	check := (sumOdd + 2*sumEven) % 10
	if check != d(6) {
		return false, 0
	}
	return true, 0.92
}
