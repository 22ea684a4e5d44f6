package detection

import (
	"github.com/chillbot-io/openlabels/pkg/types"
)

// Default builds the full tiered detector set this engine ships with:
// the static pattern catalogue, checksum-backed validators, the
// financial/securities detector, credential scanning, and the
// additional-labeled-pattern catalogue. The ML tier (pkg/detection/ml.go)
// is intentionally excluded here since it requires an on-disk model and
// reports itself absent rather than failing when unconfigured; callers
// that have a model available append it themselves.
func Default() ([]types.Detector, error) {
	secrets, err := NewSecretsDetector()
	if err != nil {
		return nil, err
	}
	return []types.Detector{
		NewPatternDetector(),
		NewChecksumDetector(),
		NewFinancialDetector(),
		secrets,
		NewAdditionalPatternDetector(),
	}, nil
}
