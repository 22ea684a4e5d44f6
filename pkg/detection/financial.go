package detection

import (
	"regexp"
	"strings"

	"github.com/chillbot-io/openlabels/pkg/types"
	"github.com/chillbot-io/openlabels/pkg/validation"
)

// financialContextWindow is how many characters before/after a match are
// searched for a confirming keyword (spec §4.3: "±100 chars").
const financialContextWindow = 100

// financialContextBoost is added to confidence when a keyword is found;
// only applied below financialBoostCeiling (spec §4.3: "ambiguous
// low-confidence matches ... only boosts if confidence < 0.70").
const (
	financialContextBoost = 0.25
	financialBoostCeiling = 0.70
)

// financialCandidate pairs a bare-format regex with the validator type it
// feeds and the keywords that, found nearby, raise confidence in an
// otherwise ambiguous match (e.g. a bare SWIFT code).
type financialCandidate struct {
	Regexp         *regexp.Regexp
	EntityType     string
	Keywords       []string
	BaseConfidence float64 // 0 means "use the validator's own confidence"
}

var financialCandidates = []financialCandidate{
	{regexp.MustCompile(`\b[0-9]{3}[A-Z0-9]{5}[0-9]\b`), "CUSIP",
		[]string{"cusip", "security", "bond", "stock", "equity", "ticker", "sedol", "isin"}, 0},
	{regexp.MustCompile(`\b[A-Z]{2}[A-Z0-9]{9}[0-9]\b`), "ISIN",
		[]string{"isin", "security", "stock", "bond", "equity", "cusip", "sedol", "ticker"}, 0},
	{regexp.MustCompile(`\b[B-DF-HJ-NP-TV-Z0-9]{7}\b`), "SEDOL",
		[]string{"sedol", "london", "lse", "stock", "security", "uk", "exchange"}, 0},
	// Bare (unlabeled) SWIFT-shaped matches get a deliberately low base
	// confidence — a validator can only confirm the format, not that the
	// text is actually a bank code rather than an unrelated 8-letter
	// word, so the context-keyword bonus below carries most of the
	// signal for this one.
	{regexp.MustCompile(`\b[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}(?:[A-Z0-9]{3})?\b`), "SWIFT",
		[]string{"swift", "bic", "bank", "transfer", "wire", "iban", "routing", "payment"}, 0.40},
	{regexp.MustCompile(`\b[A-Z0-9]{18}[0-9]{2}\b`), "LEI",
		[]string{"lei", "legal", "entity", "identifier", "gleif", "corporate"}, 0},
	{regexp.MustCompile(`\bBBG[A-Z0-9]{9}\b`), "FIGI",
		[]string{"figi", "bloomberg", "instrument", "identifier"}, 0},
	{regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`), "ETHEREUM_ADDRESS",
		[]string{"ethereum", "eth", "crypto", "wallet", "address"}, 0},
	{regexp.MustCompile(`\b1[1-9A-HJ-NP-Za-km-z]{25,34}\b`), "BITCOIN_ADDRESS",
		[]string{"bitcoin", "btc", "crypto", "wallet", "address"}, 0},
	{regexp.MustCompile(`\b3[1-9A-HJ-NP-Za-km-z]{25,34}\b`), "BITCOIN_ADDRESS",
		[]string{"bitcoin", "btc", "crypto", "wallet", "address"}, 0},
	{regexp.MustCompile(`(?i)\bbc1[qp][0-9a-z]{38,59}\b`), "BITCOIN_ADDRESS",
		[]string{"bitcoin", "btc", "crypto", "wallet", "address"}, 0},
}

var seedPhrasePattern = regexp.MustCompile(`(?i)(?:seed|mnemonic|recovery|backup)\s*(?:phrase|words?)?[:\s]+([a-z]+(?:\s+[a-z]+){11,23})\b`)

// FinancialDetector detects securities identifiers and cryptocurrency
// addresses (tier CHECKSUM), lifting ambiguous short-format matches (e.g.
// bare SWIFT codes) with a context-keyword confidence bonus (spec §4.3).
type FinancialDetector struct {
	candidates []financialCandidate
	registry   *validation.Registry
}

// NewFinancialDetector builds a FinancialDetector over the default
// candidate list and validator registry.
func NewFinancialDetector() *FinancialDetector {
	return &FinancialDetector{candidates: financialCandidates, registry: validation.NewRegistry()}
}

func (d *FinancialDetector) Name() string     { return "financial" }
func (d *FinancialDetector) Tier() types.Tier { return types.TierChecksum }

func (d *FinancialDetector) Detect(text string) ([]types.Span, error) {
	lower := strings.ToLower(text)
	var out []types.Span

	for _, c := range d.candidates {
		validator, ok := d.registry.Get(c.EntityType)
		if !ok {
			continue
		}
		for _, loc := range c.Regexp.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			valid, validatorConfidence := validator.Validate(value)
			if !valid {
				continue
			}
			confidence := validatorConfidence
			if c.BaseConfidence > 0 {
				confidence = c.BaseConfidence
			}
			confidence = boostByContext(confidence, c.Keywords, lower, loc[0], loc[1])
			span, err := types.NewSpan(loc[0], loc[1], value, c.EntityType, confidence, d.Name(), d.Tier())
			if err != nil {
				continue
			}
			out = append(out, span)
		}
	}

	bip39, _ := d.registry.Get("BIP39_SEED")
	if bip39 != nil {
		for _, m := range seedPhrasePattern.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			value := text[start:end]
			valid, confidence := bip39.Validate(value)
			if !valid {
				continue
			}
			span, err := types.NewSpan(start, end, value, "BIP39_SEED", confidence, d.Name(), d.Tier())
			if err != nil {
				continue
			}
			out = append(out, span)
		}
	}

	return out, nil
}

// boostByContext raises confidence by financialContextBoost (capped at
// 1.0) when one of keywords appears within financialContextWindow
// characters of the match, but only for matches below
// financialBoostCeiling — a high-confidence labeled match (e.g. "CUSIP:
// ...") doesn't need the help a bare alphanumeric shape does.
func boostByContext(confidence float64, keywords []string, lowerText string, start, end int) float64 {
	if len(keywords) == 0 || confidence >= financialBoostCeiling {
		return confidence
	}
	winStart := start - financialContextWindow
	if winStart < 0 {
		winStart = 0
	}
	winEnd := end + financialContextWindow
	if winEnd > len(lowerText) {
		winEnd = len(lowerText)
	}
	window := lowerText[winStart:winEnd]
	for _, kw := range keywords {
		if strings.Contains(window, kw) {
			boosted := confidence + financialContextBoost
			if boosted > 1.0 {
				boosted = 1.0
			}
			return boosted
		}
	}
	return confidence
}
