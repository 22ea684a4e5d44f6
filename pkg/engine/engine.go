// Package engine is the public entry point spec §6 describes: it wires
// the detector set, orchestrator, and config options together behind
// detect(text, config?) and detect_file(path, config?), the two
// boundary operations every adapter/CLI/report caller goes through.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/chillbot-io/openlabels/pkg/detection"
	"github.com/chillbot-io/openlabels/pkg/orchestrator"
	"github.com/chillbot-io/openlabels/pkg/types"
)

// Engine holds the registered detector set and the orchestrator options
// derived from the last Config it was asked to run with.
type Engine struct {
	allDetectors []types.Detector
}

// New builds an Engine over the default detector set (pattern, checksum,
// financial, secrets, additional-pattern), plus the ML tier if modelPath
// is non-empty.
func New(modelPath string) (*Engine, error) {
	detectors, err := detection.Default()
	if err != nil {
		return nil, fmt.Errorf("build default detectors: %w", err)
	}
	if modelPath != "" {
		detectors = append(detectors, detection.NewMLValidatorDetector(modelPath))
	}
	return &Engine{allDetectors: detectors}, nil
}

// NewWithDetectors builds an Engine over a caller-supplied detector set,
// for tests or callers that want a narrower pipeline.
func NewWithDetectors(detectors []types.Detector) *Engine {
	return &Engine{allDetectors: detectors}
}

func (e *Engine) selectDetectors(cfg types.Config) []types.Detector {
	if cfg.EnabledDetectors == nil {
		return e.allDetectors
	}
	var selected []types.Detector
	for _, d := range e.allDetectors {
		if cfg.EnabledDetectors[d.Name()] {
			selected = append(selected, d)
		}
	}
	return selected
}

// Detect runs the configured detectors over text and returns the merged,
// allowlisted DetectionResult (spec §6's Detection API). Zero-valued
// fields in cfg (MaxTextSize, DetectorTimeoutMs) fall back to
// types.DefaultConfig()'s values; MinConfidence is left at 0 only when
// the caller explicitly wants every span (use types.DefaultConfig() to
// get the documented 0.5 floor).
func (e *Engine) Detect(ctx context.Context, text string, cfg types.Config) (types.DetectionResult, error) {
	defaults := types.DefaultConfig()
	if cfg.MaxTextSize == 0 {
		cfg.MaxTextSize = defaults.MaxTextSize
	}
	if cfg.DetectorTimeoutMs == 0 {
		cfg.DetectorTimeoutMs = defaults.DetectorTimeoutMs
	}

	detectors := e.selectDetectors(cfg)
	if len(detectors) == 0 {
		return types.DetectionResult{}, types.ErrAllDetectorsFailed
	}

	timeout := time.Duration(cfg.DetectorTimeoutMs) * time.Millisecond
	o := orchestrator.New(detectors,
		orchestrator.WithMaxTextSize(cfg.MaxTextSize),
		orchestrator.WithDetectorTimeout(timeout),
	)

	result, err := o.Scan(ctx, text)
	if err != nil {
		return types.DetectionResult{}, err
	}

	result.Spans = filterResult(result.Spans, cfg)
	result.EntityCounts = recount(result.Spans)

	return result, nil
}

// filterResult applies the two config options the orchestrator/merge
// pipeline don't already know about: the min_confidence floor and the
// include_clinical_context toggle (clinical-context types are dropped by
// the merge pipeline's stage 2 already when false; IncludeClinicalContext
// re-admits them for callers who asked for the full detector output).
func filterResult(spans []types.Span, cfg types.Config) []types.Span {
	kept := make([]types.Span, 0, len(spans))
	for _, s := range spans {
		if s.Confidence < cfg.MinConfidence {
			continue
		}
		if types.IsClinicalContext(s.EntityType) && !cfg.IncludeClinicalContext {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func recount(spans []types.Span) map[string]int {
	counts := make(map[string]int, len(spans))
	for _, s := range spans {
		counts[s.EntityType]++
	}
	return counts
}
