package validation

import "regexp"

var (
	uspsTrackingPattern  = regexp.MustCompile(`^(94\d{20}|93\d{20}|92\d{20}|\d{20,22})$`)
	fedexTrackingPattern = regexp.MustCompile(`^\d{12,15}$`)
	upsTrackingPattern   = regexp.MustCompile(`^1Z[A-Z0-9]{16}$`)
)

// USPSTrackingValidator validates USPS tracking numbers: 20-22 digit
// codes, commonly prefixed 92/93/94, with a weighted mod-10 checksum.
type USPSTrackingValidator struct{}

func (USPSTrackingValidator) Type() string { return "TRACKING_NUMBER" }

func (USPSTrackingValidator) Normalize(candidate string) string { return digitsOnly(candidate) }

func (v USPSTrackingValidator) Validate(candidate string) (bool, float64) {
	digits := v.Normalize(candidate)
	if !uspsTrackingPattern.MatchString(digits) {
		return false, 0
	}
	if !weightedMod10(digits) {
		return true, 0.6
	}
	return true, 0.85
}

// weightedMod10 implements the USPS tracking-number check digit: an
// alternating 3/1 weighted sum of all but the last digit, whose mod-10
// complement must equal the final digit.
func weightedMod10(digits string) bool {
	if len(digits) < 2 {
		return false
	}
	sum := 0
	weights := [2]int{3, 1}
	for i := 0; i < len(digits)-1; i++ {
		sum += int(digits[i]-'0') * weights[i%2]
	}
	check := (10 - sum%10) % 10
	return int(digits[len(digits)-1]-'0') == check
}

// FedExTrackingValidator validates FedEx tracking numbers (12-15 digit
// formats).
type FedExTrackingValidator struct{}

func (FedExTrackingValidator) Type() string { return "TRACKING_NUMBER" }

func (FedExTrackingValidator) Normalize(candidate string) string { return digitsOnly(candidate) }

func (v FedExTrackingValidator) Validate(candidate string) (bool, float64) {
	digits := v.Normalize(candidate)
	if !fedexTrackingPattern.MatchString(digits) {
		return false, 0
	}
	return true, 0.6
}

// UPSTrackingValidator validates UPS tracking numbers: "1Z" followed by
// 16 alphanumeric characters, with a weighted mod-10 checksum over the
// alphanumeric-remapped digits.
type UPSTrackingValidator struct{}

func (UPSTrackingValidator) Type() string { return "TRACKING_NUMBER" }

func (UPSTrackingValidator) Normalize(candidate string) string { return candidate }

func (v UPSTrackingValidator) Validate(candidate string) (bool, float64) {
	if !upsTrackingPattern.MatchString(candidate) {
		return false, 0
	}
	sum := 0
	for i := 2; i < len(candidate)-1; i++ {
		val, ok := alphaNumericValue(candidate[i])
		if !ok {
			return false, 0
		}
		sum += val % 10 * ((i % 2) + 1)
	}
	check := sum % 10
	if int(candidate[len(candidate)-1]-'0') != check {
		return true, 0.55
	}
	return true, 0.85
}
