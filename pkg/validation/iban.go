package validation

import (
	"math/big"
	"regexp"
	"strings"
)

var ibanPattern = regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z0-9]{11,30}$`)

// IBANValidator validates IBANs via ISO 7064 Mod-97.
type IBANValidator struct{}

func (IBANValidator) Type() string { return "IBAN" }

func (IBANValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.ReplaceAll(candidate, " ", ""))
}

func (v IBANValidator) Validate(candidate string) (bool, float64) {
	iban := v.Normalize(candidate)
	if !ibanPattern.MatchString(iban) {
		return false, 0
	}
	rotated := iban[4:] + iban[:4]
	var sb strings.Builder
	for _, r := range rotated {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			sb.WriteString(itoa(int(r-'A') + 10))
		default:
			return false, 0
		}
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return false, 0
	}
	rem := new(big.Int).Mod(n, big.NewInt(97))
	if rem.Int64() == 1 {
		return true, 0.96
	}
	return false, 0
}

func itoa(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}
