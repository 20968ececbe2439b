package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: debug
  format: json
fuzzy:
  minPrefixLen: 2
  prefixSimilarityThreshold: 0.5
  maxOverflow: 4
parser:
  knownRubrics: ["focus", "a lire"]
search:
  workers: 2
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Fuzzy != (FuzzyConfig{MinPrefixLen: 2, PrefixSimilarityThreshold: 0.5, MaxOverflow: 4}) {
		t.Errorf("fuzzy = %+v", cfg.Fuzzy)
	}
	if !reflect.DeepEqual(cfg.Parser.KnownRubrics, []string{"focus", "a lire"}) {
		t.Errorf("knownRubrics = %v", cfg.Parser.KnownRubrics)
	}
	if cfg.Storage.DataDir != ".bulletins" {
		t.Errorf("dataDir default lost: %q", cfg.Storage.DataDir)
	}
	if cfg.Search.Workers != 2 {
		t.Errorf("workers = %d", cfg.Search.Workers)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BULLETINS_LOG_LEVEL", "warn")
	t.Setenv("BULLETINS_DATA_DIR", "/tmp/corpus")
	t.Setenv("BULLETINS_METRICS_ADDR", ":9100")
	t.Setenv("BULLETINS_SEARCH_WORKERS", "8")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Storage.DataDir != "/tmp/corpus" {
		t.Errorf("dataDir = %q", cfg.Storage.DataDir)
	}
	if cfg.Metrics.Addr != ":9100" {
		t.Errorf("metrics addr = %q", cfg.Metrics.Addr)
	}
	if cfg.Search.Workers != 8 {
		t.Errorf("workers = %d", cfg.Search.Workers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"stem normalizer", func(c *Config) { c.Analysis.Normalizer = "stem" }, false},
		{"unknown normalizer", func(c *Config) { c.Analysis.Normalizer = "spacy" }, true},
		{"lexicon without path", func(c *Config) { c.Analysis.Normalizer = "lexicon" }, true},
		{"lexicon with path", func(c *Config) {
			c.Analysis.Normalizer = "lexicon"
			c.Analysis.LexiconPath = "lexicon.txt"
		}, false},
		{"zero threshold", func(c *Config) { c.Fuzzy.PrefixSimilarityThreshold = 0 }, true},
		{"threshold above one", func(c *Config) { c.Fuzzy.PrefixSimilarityThreshold = 1.5 }, true},
		{"negative prefix", func(c *Config) { c.Fuzzy.MinPrefixLen = -1 }, true},
		{"unbounded overflow", func(c *Config) { c.Fuzzy.MaxOverflow = -1 }, false},
		{"negative overflow", func(c *Config) { c.Fuzzy.MaxOverflow = -2 }, true},
		{"no workers", func(c *Config) { c.Search.Workers = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, "fuzzy:\n  prefixSimilarityThreshold: 2\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}
