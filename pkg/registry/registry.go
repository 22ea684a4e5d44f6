// Package registry is the process-wide, read-only source of truth for
// entity semantics: canonical type names, detector-alias resolution,
// per-type scoring weight, and per-type category.
package registry

import "strings"

// Category groups canonical entity types for co-occurrence scoring and
// reporting.
type Category string

const (
	CategoryDirectIdentifier      Category = "direct_identifier"
	CategoryQuasiIdentifier       Category = "quasi_identifier"
	CategoryContact               Category = "contact"
	CategoryFinancial             Category = "financial"
	CategoryHealthInfo            Category = "health_info"
	CategoryCredential            Category = "credential"
	CategoryClassificationMarking Category = "classification_marking"
	CategoryClinicalContext       Category = "clinical_context"
	CategoryOther                 Category = "other"
)

// Weights assigns each canonical entity type a risk weight in [1,10].
// Unknown types default to weight 1 (see GetWeight).
var Weights = map[string]int{
	"SSN":              10,
	"SSN_PARTIAL":      6,
	"CREDIT_CARD":      9,
	"BANK_ROUTING":     6,
	"ACCOUNT_NUMBER":   7,
	"IBAN":             8,
	"DRIVER_LICENSE":   7,
	"PASSPORT":         8,
	"MRN":              8,
	"NPI":              5,
	"MBI":              8,
	"NDC":              3,
	"DEA":              6,
	"HEALTH_PLAN_ID":   6,
	"MEMBER_ID":        5,
	"ID_NUMBER":        4,
	"DIAGNOSIS":        7,
	"MEDICATION":       4,
	"LAB_TEST":         4,
	"PROCEDURE":        5,
	"PAYER":            2,
	"PHYSICAL_DESC":    2,
	"NAME":             5,
	"NAME_PATIENT":     6,
	"NAME_PROVIDER":    3,
	"NAME_RELATIVE":    4,
	"EMAIL":            4,
	"PHONE":            4,
	"FAX":              3,
	"ADDRESS":          5,
	"STREET":           5,
	"CITY":             2,
	"STATE":            1,
	"ZIP":              2,
	"DATE":             2,
	"AGE":              2,
	"EMPLOYER":         2,
	"EMPLOYEE_ID":      3,
	"VIN":              4,
	"CUSIP":            5,
	"ISIN":             5,
	"SEDOL":            5,
	"LEI":              4,
	"SWIFT":            4,
	"BITCOIN_ADDRESS":  7,
	"ETHEREUM_ADDRESS": 7,
	"BIP39_SEED":       10,
	"TRACKING_NUMBER":  2,
	"AWS_KEY":          9,
	"GCP_KEY":          9,
	"AZURE_KEY":        9,
	"API_KEY":          8,
	"JWT":              8,
	"PRIVATE_KEY":      10,
	"DATABASE_URL":     9,
	"FACILITY":         1,
	"CLASSIFICATION":   10,
}

// Categories assigns each canonical entity type a Category.
var Categories = map[string]Category{
	"SSN":              CategoryDirectIdentifier,
	"SSN_PARTIAL":      CategoryDirectIdentifier,
	"CREDIT_CARD":      CategoryFinancial,
	"BANK_ROUTING":     CategoryFinancial,
	"ACCOUNT_NUMBER":   CategoryFinancial,
	"IBAN":             CategoryFinancial,
	"CUSIP":            CategoryFinancial,
	"ISIN":             CategoryFinancial,
	"SEDOL":            CategoryFinancial,
	"LEI":              CategoryFinancial,
	"SWIFT":            CategoryFinancial,
	"BITCOIN_ADDRESS":  CategoryFinancial,
	"ETHEREUM_ADDRESS": CategoryFinancial,
	"BIP39_SEED":       CategoryCredential,
	"DRIVER_LICENSE":   CategoryDirectIdentifier,
	"PASSPORT":         CategoryDirectIdentifier,
	"VIN":              CategoryQuasiIdentifier,
	"MRN":              CategoryHealthInfo,
	"NPI":              CategoryHealthInfo,
	"MBI":              CategoryHealthInfo,
	"NDC":              CategoryHealthInfo,
	"DEA":              CategoryHealthInfo,
	"HEALTH_PLAN_ID":   CategoryHealthInfo,
	"MEMBER_ID":        CategoryHealthInfo,
	"ID_NUMBER":        CategoryQuasiIdentifier,
	"DIAGNOSIS":        CategoryClinicalContext,
	"MEDICATION":       CategoryClinicalContext,
	"LAB_TEST":         CategoryClinicalContext,
	"PROCEDURE":        CategoryClinicalContext,
	"PAYER":            CategoryClinicalContext,
	"PHYSICAL_DESC":    CategoryClinicalContext,
	"NAME":             CategoryDirectIdentifier,
	"NAME_PATIENT":     CategoryDirectIdentifier,
	"NAME_PROVIDER":    CategoryQuasiIdentifier,
	"NAME_RELATIVE":    CategoryQuasiIdentifier,
	"EMAIL":            CategoryContact,
	"PHONE":            CategoryContact,
	"FAX":              CategoryContact,
	"ADDRESS":          CategoryContact,
	"STREET":           CategoryContact,
	"CITY":             CategoryQuasiIdentifier,
	"STATE":            CategoryQuasiIdentifier,
	"ZIP":              CategoryQuasiIdentifier,
	"DATE":             CategoryQuasiIdentifier,
	"AGE":              CategoryQuasiIdentifier,
	"EMPLOYER":         CategoryQuasiIdentifier,
	"EMPLOYEE_ID":      CategoryQuasiIdentifier,
	"TRACKING_NUMBER":  CategoryOther,
	"AWS_KEY":          CategoryCredential,
	"GCP_KEY":          CategoryCredential,
	"AZURE_KEY":        CategoryCredential,
	"API_KEY":          CategoryCredential,
	"JWT":              CategoryCredential,
	"PRIVATE_KEY":      CategoryCredential,
	"DATABASE_URL":     CategoryCredential,
	"FACILITY":         CategoryOther,
	"CLASSIFICATION":   CategoryClassificationMarking,
}

// Aliases rewrites detector-specific names into canonical names before
// merging. The ID -> MRN mapping follows the Stanford PHI-BERT convention
// the original implementation used (see DESIGN.md "Open Questions").
var Aliases = map[string]string{
	"PERSON":             "NAME",
	"PER":                "NAME",
	"US_SSN":             "SSN",
	"SOCIAL_SECURITY":    "SSN",
	"GPE":                "ADDRESS",
	"LOCATION":           "ADDRESS",
	"LOC":                "ADDRESS",
	"CREDITCARDNUMBER":   "CREDIT_CARD",
	"CREDIT_CARD_NUMBER": "CREDIT_CARD",
	"CC":                 "CREDIT_CARD",
	"PHONE_NUMBER":       "PHONE",
	"PHONENUMBER":        "PHONE",
	"EMAIL_ADDRESS":      "EMAIL",
	"EMAILADDRESS":       "EMAIL",
	"DL":                 "DRIVER_LICENSE",
	"DRIVERS_LICENSE":    "DRIVER_LICENSE",
	"MEDICAL_RECORD":     "MRN",
	"MEDICAL_RECORD_NUM": "MRN",
	"ID":                 "MRN",
	"NATIONAL_PROVIDER":  "NPI",
	"MEDICARE_ID":        "MBI",
	"BTC_ADDRESS":        "BITCOIN_ADDRESS",
	"ETH_ADDRESS":        "ETHEREUM_ADDRESS",
	"SWIFT_CODE":         "SWIFT",
	"BIC":                "SWIFT",
}

// NormalizeType strips, upper-cases, and resolves a detector-emitted name
// through the alias table. Unknown names pass through unchanged (upper-cased).
func NormalizeType(name string) string {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	if alias, ok := Aliases[canonical]; ok {
		return alias
	}
	return canonical
}

// GetWeight returns the scoring weight for a canonical type, defaulting
// to 1 for unknown types.
func GetWeight(entityType string) int {
	if w, ok := Weights[entityType]; ok {
		return w
	}
	return 1
}

// GetCategory returns the category for a canonical type, defaulting to
// "other" for unknown types.
func GetCategory(entityType string) Category {
	if c, ok := Categories[entityType]; ok {
		return c
	}
	return CategoryOther
}

// IsKnownType reports whether entityType has a registered weight or
// category entry.
func IsKnownType(entityType string) bool {
	_, w := Weights[entityType]
	_, c := Categories[entityType]
	return w || c
}
