package detection

import (
	"regexp"

	"github.com/chillbot-io/openlabels/pkg/types"
	"github.com/chillbot-io/openlabels/pkg/validation"
)

// checksumCandidate is a format regex paired with the entity type its
// matches should be validated against, mirroring checksum.py's
// format-plus-validator pairs.
type checksumCandidate struct {
	Regexp     *regexp.Regexp
	EntityType string
}

var checksumCandidates = []checksumCandidate{
	{regexp.MustCompile(`\b\d(?:[ -]?\d){12,18}\b`), "CREDIT_CARD"},
	{regexp.MustCompile(`\b[A-Z]{2}\d{2}[A-Z0-9]{10,30}\b`), "IBAN"},
	{regexp.MustCompile(`\b\d{9}\b`), "BANK_ROUTING"},
	{regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{17}\b`), "VIN"},
	{regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`), "SSN"},
	{regexp.MustCompile(`(?i)\b[A-Z]{2}\d{7}\b`), "DEA"},
}

// ChecksumDetector validates candidate matches against their format's
// checksum algorithm (spec §4.2/§4.3): a candidate only advances if the
// matching Validator reports valid=true. Output at this tier supersedes
// lower-tier detections of the same span, since a passing checksum is
// much stronger evidence than a bare format match.
type ChecksumDetector struct {
	candidates []checksumCandidate
	registry   *validation.Registry
}

// NewChecksumDetector builds a ChecksumDetector over the default
// candidate list and validator registry.
func NewChecksumDetector() *ChecksumDetector {
	return &ChecksumDetector{candidates: checksumCandidates, registry: validation.NewRegistry()}
}

func (d *ChecksumDetector) Name() string     { return "checksum" }
func (d *ChecksumDetector) Tier() types.Tier { return types.TierChecksum }

func (d *ChecksumDetector) Detect(text string) ([]types.Span, error) {
	var out []types.Span
	for _, c := range d.candidates {
		validator, ok := d.registry.Get(c.EntityType)
		if !ok {
			continue
		}
		for _, loc := range c.Regexp.FindAllStringIndex(text, -1) {
			value := text[loc[0]:loc[1]]
			valid, confidence := validator.Validate(value)
			if !valid {
				continue
			}
			span, err := types.NewSpan(loc[0], loc[1], value, c.EntityType, confidence, d.Name(), d.Tier())
			if err != nil {
				continue
			}
			out = append(out, span)
		}
	}
	return out, nil
}
