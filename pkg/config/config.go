// Package config loads and validates the engine's on-disk YAML
// configuration: detector/orchestrator tuning, scoring defaults, report
// formats, and label-store paths. Follows the teacher's direct-unmarshal
// LoadConfig(path) pattern rather than routing the engine's own config
// through viper (viper stays scoped to the gitleaks sub-config, as in the
// teacher's secrets detector).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete engine configuration.
type Config struct {
	Version     string            `yaml:"version"`
	Engine      EngineConfig      `yaml:"engine"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Report      ReportConfig      `yaml:"report"`
	Label       LabelConfig       `yaml:"label"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// EngineConfig mirrors spec §6's Detection API options plus the
// orchestrator's worker-pool and file-size knobs.
type EngineConfig struct {
	Workers                int             `yaml:"workers"`
	MinConfidence          float64         `yaml:"min_confidence"`
	MaxTextSize            int             `yaml:"max_text_size"`
	MaxFileSize            int64           `yaml:"max_file_size"`
	DetectorTimeout        time.Duration   `yaml:"detector_timeout"`
	IncludeClinicalContext bool            `yaml:"include_clinical_context"`
	EnabledDetectors       []string        `yaml:"enabled_detectors"`
	ML                     MLConfig        `yaml:"ml"`
}

// MLConfig configures the optional ONNX-backed ML tier (spec §4.3); an
// empty ModelPath means the tier reports itself permanently absent.
type MLConfig struct {
	Enabled             bool    `yaml:"enabled"`
	ModelPath           string  `yaml:"model_path"`
	TokenizerPath       string  `yaml:"tokenizer_path"`
	ConfidenceThreshold float32 `yaml:"confidence_threshold"`
	BatchSize           int     `yaml:"batch_size"`
}

// ScoringConfig overrides the scorer's defaults (spec §4.7); thresholds
// are expressed on the same 0-100 scale scoring.ScoreToTier uses so a
// deployment can tighten or loosen tier boundaries without touching code.
type ScoringConfig struct {
	DefaultConfidence float64        `yaml:"default_confidence"`
	Thresholds        RiskThresholds `yaml:"thresholds"`
}

// RiskThresholds defines the minimum score for each tier, highest first.
type RiskThresholds struct {
	Critical int `yaml:"critical"`
	High     int `yaml:"high"`
	Medium   int `yaml:"medium"`
	Low      int `yaml:"low"`
}

// ReportConfig contains report generation settings.
type ReportConfig struct {
	Formats         []string    `yaml:"formats"`
	OutputDirectory string      `yaml:"output_directory"`
	IncludeContext  bool        `yaml:"include_context"`
	SARIF           SARIFConfig `yaml:"sarif"`
}

// SARIFConfig contains SARIF-specific settings.
type SARIFConfig struct {
	ToolName    string `yaml:"tool_name"`
	ToolVersion string `yaml:"tool_version"`
	InfoURI     string `yaml:"info_uri"`
}

// LabelConfig configures where the compact LabelSet JSON documents
// (spec §4.9) are read from and written to by the CLI's label command.
type LabelConfig struct {
	Source    string `yaml:"source"`
	StorePath string `yaml:"store_path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	OutputFile string `yaml:"output_file,omitempty"`
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadConfigWithDefaults loads config or returns the default if the file
// doesn't exist.
func LoadConfigWithDefaults(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}
	return DefaultConfig(), nil
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Engine.Workers < 1 {
		return fmt.Errorf("engine workers must be at least 1")
	}
	if c.Engine.MaxFileSize < 0 {
		return fmt.Errorf("max file size cannot be negative")
	}
	if c.Engine.MinConfidence < 0 || c.Engine.MinConfidence > 1 {
		return fmt.Errorf("min confidence must be in [0,1]")
	}

	t := c.Scoring.Thresholds
	if t.Critical < t.High || t.High < t.Medium || t.Medium < t.Low || t.Low < 0 {
		return fmt.Errorf("risk thresholds must be in descending order: critical > high > medium > low >= 0")
	}

	validFormats := map[string]bool{"html": true, "csv": true, "sarif": true, "json": true}
	for _, format := range c.Report.Formats {
		if !validFormats[format] {
			return fmt.Errorf("invalid report format: %s", format)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", c.Logging.Level)
	}

	return nil
}

// applyDefaults fills in zero-valued fields with the engine's defaults.
func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = "1.0"
	}

	if c.Engine.Workers == 0 {
		c.Engine.Workers = 8
	}
	if c.Engine.MinConfidence == 0 {
		c.Engine.MinConfidence = 0.5
	}
	if c.Engine.MaxTextSize == 0 {
		c.Engine.MaxTextSize = 1_000_000
	}
	if c.Engine.MaxFileSize == 0 {
		c.Engine.MaxFileSize = 100 * 1024 * 1024 // 100MB, spec §6
	}
	if c.Engine.DetectorTimeout == 0 {
		c.Engine.DetectorTimeout = 120 * time.Second
	}
	if c.Engine.ML.ConfidenceThreshold == 0 {
		c.Engine.ML.ConfidenceThreshold = 0.7
	}
	if c.Engine.ML.BatchSize == 0 {
		c.Engine.ML.BatchSize = 32
	}

	if c.Scoring.DefaultConfidence == 0 {
		c.Scoring.DefaultConfidence = 0.90
	}
	if c.Scoring.Thresholds.Critical == 0 {
		c.Scoring.Thresholds.Critical = 80
	}
	if c.Scoring.Thresholds.High == 0 {
		c.Scoring.Thresholds.High = 55
	}
	if c.Scoring.Thresholds.Medium == 0 {
		c.Scoring.Thresholds.Medium = 31
	}
	if c.Scoring.Thresholds.Low == 0 {
		c.Scoring.Thresholds.Low = 11
	}

	if len(c.Report.Formats) == 0 {
		c.Report.Formats = []string{"html"}
	}
	if c.Report.OutputDirectory == "" {
		c.Report.OutputDirectory = "reports"
	}
	if c.Report.SARIF.ToolName == "" {
		c.Report.SARIF.ToolName = "OpenLabels Scanner"
	}
	if c.Report.SARIF.ToolVersion == "" {
		c.Report.SARIF.ToolVersion = "1.0.0"
	}
	if c.Report.SARIF.InfoURI == "" {
		c.Report.SARIF.InfoURI = "https://github.com/chillbot-io/openlabels"
	}

	if c.Label.Source == "" {
		c.Label.Source = "openlabels:1.0"
	}
	if c.Label.StorePath == "" {
		c.Label.StorePath = "labels.json"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// MergeConfig merges two configurations, with override taking precedence
// over base for the fields it sets explicitly.
func MergeConfig(base, override *Config) *Config {
	result := *base

	if override.Version != "" {
		result.Version = override.Version
	}
	if override.Engine.Workers != 0 {
		result.Engine.Workers = override.Engine.Workers
	}
	if override.Engine.MinConfidence != 0 {
		result.Engine.MinConfidence = override.Engine.MinConfidence
	}
	if len(override.Engine.EnabledDetectors) > 0 {
		result.Engine.EnabledDetectors = override.Engine.EnabledDetectors
	}
	if len(override.Report.Formats) > 0 {
		result.Report.Formats = override.Report.Formats
	}

	return &result
}

// ConfigFromEnvironment loads configuration overrides from environment
// variables.
func ConfigFromEnvironment() *Config {
	config := &Config{}

	if level := os.Getenv("OPENLABELS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if path := os.Getenv("OPENLABELS_ML_MODEL_PATH"); path != "" {
		config.Engine.ML.ModelPath = path
		config.Engine.ML.Enabled = true
	}

	return config
}
