// Package orchestrator dispatches the registered detectors concurrently
// over a single piece of text, merges their output into a final span
// list, and reports which detectors degraded or failed (spec §4.6).
package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/chillbot-io/openlabels/pkg/allowlist"
	"github.com/chillbot-io/openlabels/pkg/merge"
	"github.com/chillbot-io/openlabels/pkg/types"
)

// DefaultNumWorkers bounds concurrent detector dispatch regardless of how
// many detectors are registered.
const DefaultNumWorkers = 8

// DefaultDetectorTimeout is the deadline given to each individual
// detector before its result is discarded and the run marked degraded.
const DefaultDetectorTimeout = 120 * time.Second

// DefaultMaxTextSize is the input size gate; texts larger than this are
// rejected with ErrInputTooLarge rather than scanned.
const DefaultMaxTextSize = 1_000_000

// Orchestrator runs a fixed set of detectors against input text through a
// bounded worker pool.
type Orchestrator struct {
	detectors       []types.Detector
	numWorkers      int
	detectorTimeout time.Duration
	maxTextSize     int
	applyAllowlist  bool
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithNumWorkers overrides DefaultNumWorkers.
func WithNumWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.numWorkers = n
		}
	}
}

// WithDetectorTimeout overrides DefaultDetectorTimeout.
func WithDetectorTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.detectorTimeout = d
		}
	}
}

// WithMaxTextSize overrides DefaultMaxTextSize.
func WithMaxTextSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxTextSize = n
		}
	}
}

// WithAllowlist toggles the post-merge false-positive suppression pass
// (on by default).
func WithAllowlist(enabled bool) Option {
	return func(o *Orchestrator) { o.applyAllowlist = enabled }
}

// New builds an Orchestrator over the given detector set.
func New(detectors []types.Detector, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		detectors:       detectors,
		numWorkers:      DefaultNumWorkers,
		detectorTimeout: DefaultDetectorTimeout,
		maxTextSize:     DefaultMaxTextSize,
		applyAllowlist:  true,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.numWorkers > runtime.NumCPU()*4 {
		o.numWorkers = runtime.NumCPU() * 4
	}
	return o
}

type detectorOutcome struct {
	name   string
	spans  []types.Span
	err    error
	timing time.Duration
}

// Scan runs every registered detector concurrently (bounded by the
// worker pool), merges their spans, applies the allowlist pass, and
// returns a DetectionResult reporting which detectors degraded.
func (o *Orchestrator) Scan(ctx context.Context, text string) (types.DetectionResult, error) {
	start := time.Now()

	if len(text) > o.maxTextSize {
		return types.DetectionResult{}, fmt.Errorf("%w: %d bytes exceeds max %d", types.ErrInputTooLarge, len(text), o.maxTextSize)
	}

	if len(o.detectors) == 0 {
		return types.DetectionResult{}, types.ErrAllDetectorsFailed
	}

	outcomes := o.dispatch(ctx, text)

	var allSpans []types.Span
	var used, failed, warnings []string
	for _, oc := range outcomes {
		if oc.err != nil {
			failed = append(failed, oc.name)
			warnings = append(warnings, fmt.Sprintf("%s: %v", oc.name, oc.err))
			continue
		}
		used = append(used, oc.name)
		allSpans = append(allSpans, oc.spans...)
	}

	// Per spec §7, AllDetectorsFailed is surfaced on the result rather
	// than returned as an error, so callers can still inspect warnings.
	allDetectorsFailed := len(used) == 0 && len(failed) > 0

	var merged []types.Span
	if !allDetectorsFailed {
		merged = merge.Merge(allSpans, text)
		if o.applyAllowlist {
			merged = allowlist.Apply(text, merged)
		}
	}

	sort.Strings(used)
	sort.Strings(failed)

	counts := make(map[string]int, len(merged))
	for _, s := range merged {
		counts[s.EntityType]++
	}

	return types.DetectionResult{
		Text:               text,
		Spans:              merged,
		ProcessingTimeMs:   float64(time.Since(start).Microseconds()) / 1000.0,
		DetectorsUsed:      used,
		DetectorsFailed:    failed,
		Warnings:           warnings,
		Degraded:           len(failed) > 0,
		AllDetectorsFailed: allDetectorsFailed,
		EntityCounts:       counts,
	}, nil
}

// dispatch runs each detector on its own goroutine under a bounded
// worker pool, enforcing the per-detector deadline independently so one
// slow detector cannot stall the others.
func (o *Orchestrator) dispatch(ctx context.Context, text string) []detectorOutcome {
	outcomes := make([]detectorOutcome, len(o.detectors))
	sem := make(chan struct{}, o.numWorkers)
	var wg sync.WaitGroup

	for i, d := range o.detectors {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, d types.Detector) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = o.runOne(ctx, d, text)
		}(i, d)
	}

	wg.Wait()
	return outcomes
}

// runOne executes a single detector under its own timeout. Both this
// goroutine and the inner one actually calling Detect recover from
// panics so one misbehaving detector degrades rather than crashes the
// scan.
func (o *Orchestrator) runOne(ctx context.Context, d types.Detector, text string) (outcome detectorOutcome) {
	outcome.name = d.Name()
	start := time.Now()
	defer func() {
		outcome.timing = time.Since(start)
		if r := recover(); r != nil {
			outcome.err = fmt.Errorf("%w: %s panicked: %v", types.ErrDetectorFailed, d.Name(), r)
		}
	}()

	detCtx, cancel := context.WithTimeout(ctx, o.detectorTimeout)
	defer cancel()

	type result struct {
		spans []types.Span
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{nil, fmt.Errorf("panic: %v", r)}
			}
		}()
		spans, err := d.Detect(text)
		done <- result{spans, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			outcome.err = fmt.Errorf("%w: %s: %v", types.ErrDetectorFailed, d.Name(), r.err)
			return outcome
		}
		outcome.spans = r.spans
		return outcome
	case <-detCtx.Done():
		outcome.err = fmt.Errorf("%w: %s exceeded %s", types.ErrDetectorFailed, d.Name(), o.detectorTimeout)
		return outcome
	}
}
