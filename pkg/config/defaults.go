package config

// DefaultConfig returns the engine's default configuration.
func DefaultConfig() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// DefaultFileTypes returns the file extensions the CLI's directory walk
// considers text by default when no extractor is registered for them.
func DefaultFileTypes() []string {
	return []string{
		".txt", ".md", ".csv", ".json", ".yaml", ".yml", ".xml",
		".log", ".env", ".ini", ".conf", ".config",
	}
}

// defaultExcludePaths returns default paths to exclude from directory
// scanning.
func defaultExcludePaths() []string {
	return []string{
		".git", ".svn", ".hg", "node_modules", "vendor", ".venv", "venv",
		"__pycache__", "dist", "build", "target", "bin", "obj",
	}
}

// ExampleConfig generates an example configuration with ML validation
// and every report format turned on, for GenerateExampleConfig to emit.
func ExampleConfig() (*Config, error) {
	config := DefaultConfig()

	config.Engine.Workers = 8
	config.Engine.ML.Enabled = true
	config.Engine.ML.ModelPath = "models/phi-bert.onnx"
	config.Engine.ML.TokenizerPath = "models/tokenizer.json"

	config.Report.Formats = []string{"html", "csv", "sarif"}

	return config, nil
}

// GenerateExampleConfig writes an example configuration file to path.
func GenerateExampleConfig(path string) error {
	config, err := ExampleConfig()
	if err != nil {
		return err
	}
	return SaveConfig(config, path)
}
