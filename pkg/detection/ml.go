package detection

import (
	"context"

	"github.com/chillbot-io/openlabels/pkg/ml"
	"github.com/chillbot-io/openlabels/pkg/types"
)

// mlCandidateTypes are the entity types ambiguous enough at the pattern
// tier to be worth a second, model-backed opinion: bare person names,
// medical record numbers, generic ID-shaped numbers, and SSNs appearing
// without strong surrounding context.
var mlCandidateTypes = map[string]bool{
	"MRN":       true,
	"NAME":      true,
	"ID_NUMBER": true,
	"SSN":       true,
}

// MLValidatorDetector is the ML tier (spec §4.2): it re-scores the
// candidates the pattern tier already found for mlCandidateTypes using
// an ONNX model, rather than finding spans of its own. It reports
// itself absent (empty results, no error) whenever no model is
// configured or loading failed, so the orchestrator can run with or
// without it.
type MLValidatorDetector struct {
	candidates *PatternDetector
	validator  *ml.MLDetector
	ready      bool
}

// NewMLValidatorDetector builds the ML tier. An empty modelPath yields a
// detector that is permanently absent; a non-empty path attempts to load
// the ONNX model and tokenizer immediately, falling back to absent on
// any failure rather than returning an error, since a missing or
// unreadable model is an expected deployment state, not a bug.
func NewMLValidatorDetector(modelPath string) *MLValidatorDetector {
	d := &MLValidatorDetector{candidates: NewPatternDetector()}
	if modelPath == "" {
		return d
	}

	config := ml.DefaultMLDetectorConfig()
	config.ModelPath = modelPath

	validator, err := ml.NewMLDetector(config)
	if err != nil {
		return d
	}
	if err := validator.Initialize(); err != nil {
		return d
	}

	d.validator = validator
	d.ready = true
	return d
}

func (d *MLValidatorDetector) Name() string     { return "ml-validator" }
func (d *MLValidatorDetector) Tier() types.Tier { return types.TierML }

// Close releases the underlying ONNX runtime and tokenizer, if loaded.
func (d *MLValidatorDetector) Close() error {
	if !d.ready {
		return nil
	}
	return d.validator.Close()
}

// IsReady reports whether a model was successfully loaded.
func (d *MLValidatorDetector) IsReady() bool { return d.ready }

func (d *MLValidatorDetector) Detect(text string) ([]types.Span, error) {
	if !d.ready {
		return nil, nil
	}

	rawSpans, err := d.candidates.Detect(text)
	if err != nil {
		return nil, err
	}

	var out []types.Span
	ctx := context.Background()
	for _, span := range rawSpans {
		if !mlCandidateTypes[span.EntityType] {
			continue
		}

		result, err := d.validator.ValidateCandidate(ctx, ml.Candidate{
			Value:      span.Text,
			EntityType: span.EntityType,
			Start:      span.Start,
			End:        span.End,
		}, text)
		if err != nil || result == nil || !result.IsValid {
			continue
		}

		rescored, err := types.NewSpan(span.Start, span.End, span.Text, span.EntityType,
			float64(result.Confidence), d.Name(), d.Tier())
		if err != nil {
			continue
		}
		out = append(out, rescored)
	}
	return out, nil
}
