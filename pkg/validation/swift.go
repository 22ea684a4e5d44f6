package validation

import "strings"

// swiftDenyList rejects common English words (and US state/city names)
// that happen to fall into the 8/11-character all-letter SWIFT/BIC shape.
// Kept short relative to the source deny-list: entries here are the ones
// most likely to appear in day-to-day business and healthcare text
// (reducing false positives on bare, unlabeled SWIFT matches).
var swiftDenyList = map[string]bool{
	"REFERRAL": true, "HOSPITAL": true, "TERMINAL": true, "NATIONAL": true,
	"REGIONAL": true, "MATERIAL": true, "PERSONAL": true, "OFFICIAL": true,
	"ORIGINAL": true, "APPROVAL": true, "CLINICAL": true, "PHYSICAL": true,
	"CHEMICAL": true, "CRITICAL": true, "INTERNAL": true, "EXTERNAL": true,
	"CRIMINAL": true, "MEMORIAL": true, "PROVIDER": true, "SERVICES": true,
	"PROTOCOL": true, "RESPONSE": true, "SYMPTOMS": true, "FINDINGS": true,
	"VERIFIED": true, "BASELINE": true, "COMPLETE": true, "ANALYSIS": true,
	"INSURANCE": true, "STATEMENT": true, "TREATMENT": true, "EQUIPMENT": true,
	"PROCEDURE": true, "DIAGNOSIS": true, "PROGNOSIS": true, "EMERGENCY": true,
	"ADMISSION": true, "DISCHARGE": true, "OUTPATIENT": true, "LABORATORY": true,
	"ALLERGIES": true, "ASSESSMENT": true, "MEDICATIONS": true,
	"INFORMATION": true, "APPLICATION": true, "DESCRIPTION": true,
	"INSTRUCTION": true, "OBSERVATION": true, "EXAMINATION": true,
	"TALLAHASSEE": true, "SACRAMENTO": true, "SPRINGFIELD": true,
	"CLEVELAND": true, "MILWAUKEE": true, "NASHVILLE": true, "PROVIDENCE": true,
	"CALIFORNIA": true, "WASHINGTON": true, "TENNESSEE": true, "LOUISIANA": true,
	"COMMERCIAL": true, "RESTRICTED": true, "PASSENGER": true, "DUPLICATE": true,
	"REQUIRED": true, "RECEIVED": true, "TRANSFER": true, "CUSTOMER": true,
	"EMPLOYER": true, "EMPLOYEE": true, "GUARDIAN": true, "OPERATOR": true,
	"SPECIMEN": true, "STANDARD": true,
}

// SWIFTValidator checks the SWIFT/BIC bank identifier format: 4-letter
// bank code, 2-letter country code, 2-alphanumeric location code, and an
// optional 3-alphanumeric branch code (8 or 11 characters total).
type SWIFTValidator struct{}

func (SWIFTValidator) Type() string { return "SWIFT" }

func (SWIFTValidator) Normalize(candidate string) string {
	return strings.ToUpper(strings.ReplaceAll(candidate, " ", ""))
}

func (v SWIFTValidator) Validate(candidate string) (bool, float64) {
	s := v.Normalize(candidate)
	if len(s) != 8 && len(s) != 11 {
		return false, 0
	}
	if swiftDenyList[s] {
		return false, 0
	}
	if !isAllAlpha(s[0:4]) || !isAllAlpha(s[4:6]) || !isAllAlnum(s[6:8]) {
		return false, 0
	}
	if len(s) == 11 && !isAllAlnum(s[8:11]) {
		return false, 0
	}
	return true, 0.95
}

func isAllAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return len(s) > 0
}

func isAllAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return len(s) > 0
}
