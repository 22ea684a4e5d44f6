package merge

import "regexp"

// emailPattern recognizes a full email address, used by stage 3 to
// reclassify NAME spans that are actually emails.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// idCardPatterns are markers that indicate the source text is from a
// driver's license / state ID rather than clinical notes (stage 11).
var idCardPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)DRIVER'?S?\s*LICENSE`),
	regexp.MustCompile(`(?i)\bDLN[:\s]`),
	regexp.MustCompile(`(?i)\bSTATE\s+ID\b`),
	regexp.MustCompile(`(?i)\bDUPS:\s*\d`),
	regexp.MustCompile(`(?i)\bCLASS:\s*[A-Z]`),
	regexp.MustCompile(`(?i)\bRESTR:`),
	regexp.MustCompile(`(?i)\b\d+[a-z]?(?:EXP|ISS):`),
	regexp.MustCompile(`(?i)\bORGAN\s+DONOR\b`),
}

// isIDCardContext reports whether text shows at least 2 ID-card markers.
func isIDCardContext(text string) bool {
	matches := 0
	for _, p := range idCardPatterns {
		if p.MatchString(text) {
			matches++
		}
	}
	return matches >= 2
}

// trackingNumberPatterns are carrier-shaped numeric/alphanumeric formats
// (stage 12), matched against the span text with whitespace/dashes
// stripped.
var trackingNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^94\d{18,20}$`),
	regexp.MustCompile(`^\d{20,22}$`),
	regexp.MustCompile(`^\d{12,15}$`),
	regexp.MustCompile(`(?i)^DT\d{12}$`),
	regexp.MustCompile(`(?i)^1Z[A-Z0-9]{16}$`),
	regexp.MustCompile(`^\d{9,11}$`),
}

var trackingContextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:USPS|UPS|FedEx|DHL|tracking)\s*[:#]?\s*$`),
	regexp.MustCompile(`(?i)\btrack(?:ing)?\s*(?:number|#|no\.?)?\s*[:#]?\s*$`),
	regexp.MustCompile(`(?i)\bshipment\s*[:#]?\s*$`),
	regexp.MustCompile(`(?i)\bdelivery\s*[:#]?\s*$`),
	regexp.MustCompile(`(?i)\bpackage\s*[:#]?\s*$`),
}

var carrierKeywords = []string{"usps", "ups", "fedex", "dhl", "tracking", "shipment", "package"}

// citySuffixes are common US city name endings (stage 10).
var citySuffixes = []string{
	"burg", "burgh", "boro", "borough", "ville", "view", "field", "ford",
	"port", "land", "wood", "dale", "vale", "ton", "town", "city", "springs",
	"falls", "beach", "heights", "hills", "park", "lake", "creek", "ridge",
	"haven", "grove", "mount", "point", "bay", "island",
}

// cityStatePattern matches "CITY, ST" or "CITY ST" (all 50 states + DC).
var cityStatePattern = regexp.MustCompile(`(?i)^([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)*)(?:,\s*|\s+)(AL|AK|AZ|AR|CA|CO|CT|DE|FL|GA|HI|ID|IL|IN|IA|KS|KY|LA|ME|MA|MI|MN|MS|MO|MT|NE|NV|NH|NJ|NM|NY|NC|ND|OH|OK|OR|PA|RI|SC|SD|TN|TX|UT|VT|VA|WA|WV|WI|WY|DC)$`)

// addressJoinerPattern matches the "≤20 chars of only whitespace, commas,
// hyphens, or apt/unit/suite marker" gap the adjacent-ADDRESS merge stage
// (13) requires between two spans to merge them.
var addressJoinerPattern = regexp.MustCompile(`(?i)^[\s,\-]*(apt|unit|suite|#)?[\s,\-.#0-9]*$`)
