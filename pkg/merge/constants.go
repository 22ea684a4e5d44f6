package merge

// Constants grounded in the original scanner's adapters/scanner/constants.py:
// MIN_NAME_LENGTH, NON_NAME_WORDS, NAME_CONNECTORS, and the span-merging
// window sizes the pipeline stages below use.
const (
	MinNameLength             = 3
	WordBoundaryExpansionLimit = 10
	AddressGapThreshold        = 20
	TrackingContextWindow      = 30
)

// NonNameWords are common words that should never end a trimmed NAME
// span; trailing occurrences are cut (stage 7).
var NonNameWords = map[string]bool{
	"appears": true, "is": true, "was": true, "were": true, "has": true,
	"have": true, "had": true, "does": true, "did": true, "said": true,
	"says": true, "went": true, "came": true, "will": true, "would": true,
	"could": true, "should": true, "being": true, "been": true, "are": true,
	"am": true, "the": true, "a": true, "an": true, "this": true, "that": true,
	"these": true, "those": true, "to": true, "of": true, "in": true, "on": true,
	"at": true, "for": true, "with": true, "by": true, "from": true, "about": true,
	"he": true, "she": true, "it": true, "they": true, "we": true, "you": true,
	"his": true, "her": true, "their": true, "its": true, "and": true, "or": true,
	"but": true, "if": true, "then": true, "because": true,
}

// NameConnectors are valid lowercase joining words within a person name
// (van, von, de, ...), exempt from NonNameWords trimming.
var NameConnectors = map[string]bool{
	"van": true, "von": true, "de": true, "del": true, "della": true,
	"la": true, "le": true, "du": true, "dos": true, "das": true,
	"ben": true, "ibn": true, "bin": true, "al": true, "el": true,
	"y": true, "di": true, "da": true, "der": true, "den": true, "ter": true,
}

// IDLikeTypes are entity types whose trailing punctuation is stripped in
// stage 5; NAME types are deliberately exempt (to preserve "Jr.", "Sr.").
var IDLikeTypes = map[string]bool{
	"EMAIL": true, "PHONE": true, "FAX": true, "SSN": true, "MRN": true,
	"NPI": true, "DEA": true, "HEALTH_PLAN_ID": true, "MEMBER_ID": true,
	"ACCOUNT_NUMBER": true, "ID_NUMBER": true, "CREDIT_CARD": true,
	"DRIVER_LICENSE": true, "PASSPORT": true,
}

func isNameType(entityType string) bool {
	return entityType == "NAME" || hasPrefix(entityType, "NAME_") || entityType == "PERSON" || entityType == "PER"
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
