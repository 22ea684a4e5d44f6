package validation

import (
	"math/big"
	"regexp"
	"strings"
)

// alphaNumericValue remaps 0-9 to themselves and A-Z to 10-35, the
// convention CUSIP/ISIN check digits share.
func alphaNumericValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}

var cusipPattern = regexp.MustCompile(`^[0-9A-Z]{8}[0-9]$`)

// CUSIPValidator validates 9-character CUSIP securities identifiers via
// a weighted alphanumeric-remap checksum.
type CUSIPValidator struct{}

func (CUSIPValidator) Type() string { return "CUSIP" }

func (CUSIPValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func (v CUSIPValidator) Validate(candidate string) (bool, float64) {
	cusip := v.Normalize(candidate)
	if !cusipPattern.MatchString(cusip) {
		return false, 0
	}
	sum := 0
	for i := 0; i < 8; i++ {
		val, ok := alphaNumericValue(cusip[i])
		if !ok {
			return false, 0
		}
		if i%2 == 1 {
			val *= 2
		}
		sum += val/10 + val%10
	}
	check := (10 - sum%10) % 10
	if int(cusip[8]-'0') != check {
		return false, 0
	}
	return true, 0.9
}

var isinPattern = regexp.MustCompile(`^[A-Z]{2}[0-9A-Z]{9}[0-9]$`)

// ISINValidator validates 12-character ISIN securities identifiers:
// alphanumeric remap followed by a Luhn check over the remapped digits.
type ISINValidator struct{}

func (ISINValidator) Type() string { return "ISIN" }

func (ISINValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func (v ISINValidator) Validate(candidate string) (bool, float64) {
	isin := v.Normalize(candidate)
	if !isinPattern.MatchString(isin) {
		return false, 0
	}
	var sb strings.Builder
	for i := 0; i < 11; i++ {
		val, ok := alphaNumericValue(isin[i])
		if !ok {
			return false, 0
		}
		sb.WriteString(itoaSecurities(val))
	}
	if !LuhnChecksum(sb.String() + string(isin[11])) {
		return false, 0
	}
	return true, 0.91
}

func itoaSecurities(n int) string {
	if n < 10 {
		return string(rune('0' + n))
	}
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

var sedolPattern = regexp.MustCompile(`^[0-9BCDFGHJKLMNPQRSTVWXYZ]{6}[0-9]$`)

var sedolWeights = [6]int{1, 3, 1, 7, 3, 9}

// SEDOLValidator validates 7-character SEDOL securities identifiers,
// forbidding vowels, via a weighted-sum mod-10 checksum.
type SEDOLValidator struct{}

func (SEDOLValidator) Type() string { return "SEDOL" }

func (SEDOLValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func (v SEDOLValidator) Validate(candidate string) (bool, float64) {
	sedol := v.Normalize(candidate)
	if !sedolPattern.MatchString(sedol) {
		return false, 0
	}
	sum := 0
	for i := 0; i < 6; i++ {
		val, ok := alphaNumericValue(sedol[i])
		if !ok {
			return false, 0
		}
		sum += val * sedolWeights[i]
	}
	check := (10 - sum%10) % 10
	if int(sedol[6]-'0') != check {
		return false, 0
	}
	return true, 0.9
}

var leiPattern = regexp.MustCompile(`^[0-9A-Z]{18}[0-9]{2}$`)

// LEIValidator validates 20-character Legal Entity Identifiers via
// ISO 7064 Mod-97-10 over the alphanumeric remap.
type LEIValidator struct{}

func (LEIValidator) Type() string { return "LEI" }

func (LEIValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func (v LEIValidator) Validate(candidate string) (bool, float64) {
	lei := v.Normalize(candidate)
	if !leiPattern.MatchString(lei) {
		return false, 0
	}
	var sb strings.Builder
	for i := 0; i < len(lei); i++ {
		val, ok := alphaNumericValue(lei[i])
		if !ok {
			return false, 0
		}
		sb.WriteString(itoaSecurities(val))
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	if !ok {
		return false, 0
	}
	if new(big.Int).Mod(n, big.NewInt(97)).Int64() != 1 {
		return false, 0
	}
	return true, 0.92
}

var figiPattern = regexp.MustCompile(`^BBG[0-9A-Z]{9}$`)

// FIGIValidator checks the Bloomberg FIGI format. FIGI carries no public
// check-digit algorithm, so this is a format-only rule (spec §4.2); the
// lower confidence reflects that a format match alone is weaker evidence
// than the checksum-backed validators above.
type FIGIValidator struct{}

func (FIGIValidator) Type() string { return "FIGI" }

func (FIGIValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.TrimSpace(candidate))
}

func (v FIGIValidator) Validate(candidate string) (bool, float64) {
	if !figiPattern.MatchString(v.Normalize(candidate)) {
		return false, 0
	}
	return true, 0.6
}
