package ml

import (
	"context"
	"fmt"
	"sync"

	"github.com/chillbot-io/openlabels/pkg/ml/inference"
	"github.com/chillbot-io/openlabels/pkg/ml/tokenization"
)

// MLDetector validates ambiguous pattern-tier candidates using an ONNX
// sequence-classification model and a HuggingFace-compatible tokenizer.
// It is a validator rather than a primary detector: pkg/detection/ml.go
// calls ValidateCandidate with the spans the pattern/checksum tiers
// already found, not raw text.
type MLDetector struct {
	runtime   *inference.ONNXRuntime
	model     *inference.ONNXModel
	tokenizer *tokenization.Tokenizer
	config    MLDetectorConfig
	mu        sync.RWMutex
}

// MLDetectorConfig holds configuration for the ML detector.
type MLDetectorConfig struct {
	ModelPath           string                  `json:"model_path"`
	TokenizerModel      string                  `json:"tokenizer_model"`
	ConfidenceThreshold float32                 `json:"confidence_threshold"`
	BatchSize           int                     `json:"batch_size"`
	MaxConcurrent       int                     `json:"max_concurrent"`
	EnableGPU           bool                    `json:"enable_gpu"`
	EntityTypeConfigs   map[string]EntityConfig `json:"entity_type_configs"`
}

// EntityConfig holds entity-type-specific ML validation settings.
type EntityConfig struct {
	Enabled             bool    `json:"enabled"`
	ConfidenceThreshold float32 `json:"confidence_threshold"`
	RequireContext      bool    `json:"require_context"`
}

// DefaultMLDetectorConfig returns default configuration targeting the
// entity types most prone to ambiguous pattern-tier matches: medical
// record numbers, bare person names, and generic ID-shaped numbers.
func DefaultMLDetectorConfig() MLDetectorConfig {
	return MLDetectorConfig{
		ModelPath:           "~/.openlabels/models/deberta-pi-validator.onnx",
		TokenizerModel:      "microsoft/deberta-v3-base",
		ConfidenceThreshold: 0.85,
		BatchSize:           32,
		MaxConcurrent:       4,
		EnableGPU:           false,
		EntityTypeConfigs: map[string]EntityConfig{
			"MRN": {
				Enabled:             true,
				ConfidenceThreshold: 0.90,
				RequireContext:      true,
			},
			"NAME": {
				Enabled:             true,
				ConfidenceThreshold: 0.85,
				RequireContext:      true,
			},
			"ID_NUMBER": {
				Enabled:             true,
				ConfidenceThreshold: 0.80,
				RequireContext:      false,
			},
			"SSN": {
				Enabled:             true,
				ConfidenceThreshold: 0.90,
				RequireContext:      true,
			},
		},
	}
}

// NewMLDetector creates a new ML-based detector.
func NewMLDetector(config MLDetectorConfig) (*MLDetector, error) {
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 4
	}
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = 0.85
	}

	return &MLDetector{
		config: config,
	}, nil
}

// Initialize sets up the ONNX runtime, loads the model, and initializes
// the tokenizer. Callers that don't have a model configured should skip
// calling this and treat the detector as absent.
func (d *MLDetector) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.runtime = inference.NewONNXRuntime()
	err := d.runtime.Initialize()
	if err != nil {
		return fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	modelConfig := inference.ModelConfig{
		ModelPath:   d.config.ModelPath,
		InputNames:  []string{"input_ids", "attention_mask", "token_type_ids"},
		OutputNames: []string{"logits"},
		MaxTokens:   512,
		BatchSize:   d.config.BatchSize,
		UseGPU:      d.config.EnableGPU,
		NumThreads:  d.config.MaxConcurrent,
	}

	d.model, err = d.runtime.LoadModelWithConfig(modelConfig)
	if err != nil {
		d.runtime.Cleanup()
		return fmt.Errorf("failed to load ONNX model: %w", err)
	}

	tokenizerConfig := tokenization.TokenizerConfig{
		ModelName:        d.config.TokenizerModel,
		MaxLength:        512,
		Padding:          true,
		Truncation:       true,
		AddSpecialTokens: true,
	}

	d.tokenizer, err = tokenization.NewTokenizer(tokenizerConfig)
	if err != nil {
		d.runtime.Cleanup()
		return fmt.Errorf("failed to create tokenizer: %w", err)
	}

	err = d.tokenizer.Initialize()
	if err != nil {
		d.runtime.Cleanup()
		return fmt.Errorf("failed to initialize tokenizer: %w", err)
	}

	return nil
}

// Close releases all resources.
func (d *MLDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error

	if d.tokenizer != nil {
		if err := d.tokenizer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close tokenizer: %w", err))
		}
		d.tokenizer = nil
	}

	if d.model != nil {
		d.model.Destroy()
		d.model = nil
	}

	if d.runtime != nil {
		d.runtime.Cleanup()
		d.runtime = nil
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing ML detector: %v", errs)
	}

	return nil
}

// IsReady reports whether Initialize has completed successfully.
func (d *MLDetector) IsReady() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tokenizer != nil && d.model != nil
}

// Candidate is a single ambiguous span to validate: its matched text,
// entity type, and surrounding source text for context extraction.
type Candidate struct {
	Value      string
	EntityType string
	Start      int
	End        int
}

// ValidationResult is the ML validation outcome for one candidate.
type ValidationResult struct {
	IsValid    bool
	Confidence float32
	EntityType string
	Reason     string
}

// ValidateCandidate uses the model to validate a single candidate span
// against its surrounding text.
func (d *MLDetector) ValidateCandidate(ctx context.Context, c Candidate, fullText string) (*ValidationResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.tokenizer == nil || d.model == nil {
		return nil, fmt.Errorf("ML detector not initialized")
	}

	entityConfig, exists := d.config.EntityTypeConfigs[c.EntityType]
	if !exists || !entityConfig.Enabled {
		return &ValidationResult{
			IsValid:    false,
			Confidence: 0,
			EntityType: c.EntityType,
			Reason:     "entity type not configured for ML validation",
		}, nil
	}

	contextWindow := 50
	encoding, err := d.tokenizer.ExtractPIContext(fullText, c.Start, c.End, contextWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize candidate context: %w", err)
	}

	input := inference.InferenceInput{
		InputIDs:      convertToInt64(encoding.IDs),
		AttentionMask: convertToInt64(encoding.AttentionMask),
		TokenTypeIDs:  convertToInt64(encoding.TypeIDs),
	}

	output, err := d.model.Predict(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to run ML inference: %w", err)
	}

	confidence := output.Confidence[0]
	isValid := confidence >= entityConfig.ConfidenceThreshold

	return &ValidationResult{
		IsValid:    isValid,
		Confidence: confidence,
		EntityType: c.EntityType,
		Reason:     d.generateReason(isValid, confidence, entityConfig),
	}, nil
}

// ValidateBatch validates multiple candidates against their shared
// source text, in batches of d.config.BatchSize.
func (d *MLDetector) ValidateBatch(ctx context.Context, candidates []Candidate, fullText string) ([]*ValidationResult, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.tokenizer == nil || d.model == nil {
		return nil, fmt.Errorf("ML detector not initialized")
	}

	results := make([]*ValidationResult, len(candidates))
	for i := 0; i < len(candidates); i += d.config.BatchSize {
		end := i + d.config.BatchSize
		if end > len(candidates) {
			end = len(candidates)
		}

		batchResults, err := d.processBatch(ctx, candidates[i:end], fullText)
		if err != nil {
			return nil, fmt.Errorf("failed to process batch: %w", err)
		}

		copy(results[i:end], batchResults)
	}

	return results, nil
}

func (d *MLDetector) processBatch(ctx context.Context, candidates []Candidate, fullText string) ([]*ValidationResult, error) {
	contextWindow := 50
	tokenizeInputs := make([]struct {
		Candidate string
		Context   string
		PIType    string
	}, len(candidates))

	for i, c := range candidates {
		contextStart := c.Start - contextWindow
		if contextStart < 0 {
			contextStart = 0
		}
		contextEnd := c.End + contextWindow
		if contextEnd > len(fullText) {
			contextEnd = len(fullText)
		}
		tokenizeInputs[i] = struct {
			Candidate string
			Context   string
			PIType    string
		}{Candidate: c.Value, Context: fullText[contextStart:contextEnd], PIType: c.EntityType}
	}

	encodings, err := d.tokenizer.BatchTokenizePICandidates(tokenizeInputs)
	if err != nil {
		return nil, fmt.Errorf("failed to tokenize batch: %w", err)
	}

	results := make([]*ValidationResult, len(candidates))
	for i, encoding := range encodings {
		input := inference.InferenceInput{
			InputIDs:      convertToInt64(encoding.IDs),
			AttentionMask: convertToInt64(encoding.AttentionMask),
			TokenTypeIDs:  convertToInt64(encoding.TypeIDs),
		}

		output, err := d.model.Predict(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to run inference for item %d: %w", i, err)
		}

		entityConfig := d.config.EntityTypeConfigs[candidates[i].EntityType]
		confidence := output.Confidence[0]
		isValid := confidence >= entityConfig.ConfidenceThreshold

		results[i] = &ValidationResult{
			IsValid:    isValid,
			Confidence: confidence,
			EntityType: candidates[i].EntityType,
			Reason:     d.generateReason(isValid, confidence, entityConfig),
		}
	}

	return results, nil
}

func (d *MLDetector) generateReason(isValid bool, confidence float32, config EntityConfig) string {
	if isValid {
		return fmt.Sprintf("ML validation passed with %.2f%% confidence (threshold: %.2f%%)",
			confidence*100, config.ConfidenceThreshold*100)
	}
	if confidence < 0.5 {
		return fmt.Sprintf("low confidence (%.2f%%) - likely false positive", confidence*100)
	}
	return fmt.Sprintf("below threshold - confidence: %.2f%%, required: %.2f%%",
		confidence*100, config.ConfidenceThreshold*100)
}

func convertToInt64(input []uint32) []int64 {
	result := make([]int64, len(input))
	for i, v := range input {
		result[i] = int64(v)
	}
	return result
}

// Stats reports detector readiness and configuration for diagnostics.
type Stats struct {
	Initialized    bool   `json:"initialized"`
	ModelPath      string `json:"model_path"`
	TokenizerModel string `json:"tokenizer_model"`
	BatchSize      int    `json:"batch_size"`
	GPUEnabled     bool   `json:"gpu_enabled"`
}

// GetStats returns detector statistics.
func (d *MLDetector) GetStats() Stats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return Stats{
		Initialized:    d.tokenizer != nil && d.model != nil,
		ModelPath:      d.config.ModelPath,
		TokenizerModel: d.config.TokenizerModel,
		BatchSize:      d.config.BatchSize,
		GPUEnabled:     d.config.EnableGPU,
	}
}
