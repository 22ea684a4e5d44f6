// Package validation implements the format-plus-checksum validators the
// checksum and financial detectors rely on: Luhn, ISO 7064 Mod-97, ABA
// routing, VIN, SSN structure, DEA, securities identifiers, Bitcoin/
// Ethereum addresses, carrier tracking numbers, and BIP-39 seed phrases.
//
// Each validator is a pure function over a candidate string; none retain
// mutable state between calls.
package validation

// Validator is a pure format-plus-checksum rule. Valid reports whether
// the candidate satisfies the format and checksum; Confidence is the
// detector-facing confidence to attach when Valid is true (spec §4.2
// allows "valid but downgraded", e.g. credit cards with a matching
// prefix that fail Luhn).
type Validator interface {
	Type() string
	Validate(candidate string) (valid bool, confidence float64)
	Normalize(candidate string) string
}

// Registry holds validators keyed by entity type, mirroring the teacher's
// first-match-wins validator registry.
type Registry struct {
	validators map[string]Validator
}

// NewRegistry builds a Registry pre-populated with every validator this
// package implements.
func NewRegistry() *Registry {
	r := &Registry{validators: map[string]Validator{}}
	for _, v := range []Validator{
		LuhnValidator{},
		IBANValidator{},
		ABAValidator{},
		VINValidator{},
		SSNValidator{},
		DEAValidator{},
		CUSIPValidator{},
		ISINValidator{},
		SEDOLValidator{},
		LEIValidator{},
		FIGIValidator{},
		SWIFTValidator{},
		BitcoinValidator{},
		EthereumValidator{},
		BIP39Validator{},
	} {
		r.Register(v)
	}
	return r
}

// Register adds or replaces the validator for its Type().
func (r *Registry) Register(v Validator) { r.validators[v.Type()] = v }

// Get returns the validator registered for entityType, if any.
func (r *Registry) Get(entityType string) (Validator, bool) {
	v, ok := r.validators[entityType]
	return v, ok
}

// ValidateAll tries every registered validator against candidate and
// returns the type of the first one that reports valid=true.
func (r *Registry) ValidateAll(candidate string) (entityType string, confidence float64, ok bool) {
	for t, v := range r.validators {
		if valid, conf := v.Validate(candidate); valid {
			return t, conf, true
		}
	}
	return "", 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			out = append(out, s[i])
		}
	}
	return string(out)
}
