// Package config loads the bulletin search configuration from YAML with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Storage  StorageConfig  `yaml:"storage"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Fuzzy    FuzzyConfig    `yaml:"fuzzy"`
	Parser   ParserConfig   `yaml:"parser"`
	Search   SearchConfig   `yaml:"search"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageConfig locates the persistent corpus.
type StorageConfig struct {
	DataDir string `yaml:"dataDir"`
}

// AnalysisConfig selects the token normalizer shared by indexing and querying.
type AnalysisConfig struct {
	Normalizer  string `yaml:"normalizer"`
	LexiconPath string `yaml:"lexiconPath"`
}

// FuzzyConfig holds the lemmatizer knobs. MaxOverflow -1 means unbounded.
type FuzzyConfig struct {
	MinPrefixLen              int     `yaml:"minPrefixLen"`
	PrefixSimilarityThreshold float64 `yaml:"prefixSimilarityThreshold"`
	MaxOverflow               int     `yaml:"maxOverflow"`
}

// ParserConfig overrides the known rubric table. Empty keeps the built-in list.
type ParserConfig struct {
	KnownRubrics []string `yaml:"knownRubrics"`
}

// SearchConfig controls batch execution.
type SearchConfig struct {
	Workers int `yaml:"workers"`
}

// MetricsConfig controls the Prometheus exporter. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads a YAML config file (if provided) over the defaults and applies
// BULLETINS_* environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Storage: StorageConfig{
			DataDir: ".bulletins",
		},
		Analysis: AnalysisConfig{
			Normalizer: "lowercase",
		},
		Fuzzy: FuzzyConfig{
			MinPrefixLen:              3,
			PrefixSimilarityThreshold: 0.6,
			MaxOverflow:               -1,
		},
		Search: SearchConfig{
			Workers: 4,
		},
	}
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Analysis.Normalizer {
	case "lowercase", "stem":
	case "lexicon":
		if c.Analysis.LexiconPath == "" {
			return fmt.Errorf("analysis.lexiconPath is required for the lexicon normalizer")
		}
	default:
		return fmt.Errorf("unknown analysis.normalizer %q", c.Analysis.Normalizer)
	}
	if c.Fuzzy.MinPrefixLen < 0 {
		return fmt.Errorf("fuzzy.minPrefixLen must be >= 0, got %d", c.Fuzzy.MinPrefixLen)
	}
	if c.Fuzzy.PrefixSimilarityThreshold <= 0 || c.Fuzzy.PrefixSimilarityThreshold > 1 {
		return fmt.Errorf("fuzzy.prefixSimilarityThreshold must be in (0,1], got %v", c.Fuzzy.PrefixSimilarityThreshold)
	}
	if c.Fuzzy.MaxOverflow < -1 {
		return fmt.Errorf("fuzzy.maxOverflow must be >= -1, got %d", c.Fuzzy.MaxOverflow)
	}
	if c.Search.Workers < 1 {
		return fmt.Errorf("search.workers must be >= 1, got %d", c.Search.Workers)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BULLETINS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("BULLETINS_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("BULLETINS_DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("BULLETINS_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("BULLETINS_SEARCH_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.Workers = n
		}
	}
}
