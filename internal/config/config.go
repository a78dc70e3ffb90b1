// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; secrets go to OS keychain.
package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"sqlsage/cli/internal/xdg"
)

// Config holds non-sensitive CLI settings.
type Config struct {
	LogLevel string         `json:"log_level"`
	DB       DBConfig       `json:"db"`
	Oracle   OracleConfig   `json:"oracle"`
	Pipeline PipelineConfig `json:"pipeline"`

	// SemanticLayerPath points at the YAML file describing the data dictionary,
	// entity mappings, business metrics and table lexicon. Empty means
	// <config dir>/semantic_layer.yaml.
	SemanticLayerPath string `json:"semantic_layer_path"`

	// FeedbackDBPath is the sqlite file holding feedback history and few-shot
	// examples. Empty means <state dir>/feedback.db.
	FeedbackDBPath string `json:"feedback_db_path"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	DSN      string `json:"dsn"`
	Provided bool   `json:"provided"`
	// Pool bounds for the pgx pool shared across requests.
	MinConns int `json:"min_conns"`
	MaxConns int `json:"max_conns"`
}

// OracleConfig holds text-generation service settings. The API key is not
// stored here; it lives in the OS keychain.
type OracleConfig struct {
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// PipelineConfig holds tunables for the query synthesis pipeline.
type PipelineConfig struct {
	// CacheTTLSeconds bounds how long a synthesized query is reused for the
	// same question.
	CacheTTLSeconds int `json:"cache_ttl_seconds"`
	// FewShotK caps how many positive and negative examples are injected into
	// the synthesis prompt (each).
	FewShotK int `json:"few_shot_k"`
}

// path returns the path to the config file.
func path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// defaults returns the configuration used when no file exists yet.
func defaults() Config {
	return Config{
		LogLevel: "info",
		DB: DBConfig{
			// No default DSN - fail-fast if not provided via env/keychain
			MinConns: 1,
			MaxConns: 10,
		},
		Oracle: OracleConfig{
			BaseURL:        "https://api.groq.com/openai/v1",
			Model:          "meta-llama/llama-4-maverick-17b-128e-instruct",
			TimeoutSeconds: 30,
		},
		Pipeline: PipelineConfig{
			CacheTTLSeconds: 3600,
			FewShotK:        3,
		},
	}
}

// Load reads configuration; missing file returns defaults.
func Load() (Config, error) {
	var c Config
	p, err := path()
	if err != nil {
		return c, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults(), nil
		}
		return c, err
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, err
	}
	c.fillZeroes()
	return c, nil
}

// fillZeroes backfills settings a hand-edited config file may omit.
func (c *Config) fillZeroes() {
	d := defaults()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.DB.MinConns == 0 {
		c.DB.MinConns = d.DB.MinConns
	}
	if c.DB.MaxConns == 0 {
		c.DB.MaxConns = d.DB.MaxConns
	}
	if c.Oracle.BaseURL == "" {
		c.Oracle.BaseURL = d.Oracle.BaseURL
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = d.Oracle.Model
	}
	if c.Oracle.TimeoutSeconds == 0 {
		c.Oracle.TimeoutSeconds = d.Oracle.TimeoutSeconds
	}
	if c.Pipeline.CacheTTLSeconds == 0 {
		c.Pipeline.CacheTTLSeconds = d.Pipeline.CacheTTLSeconds
	}
	if c.Pipeline.FewShotK == 0 {
		c.Pipeline.FewShotK = d.Pipeline.FewShotK
	}
}

// SemanticLayerFile resolves the semantic layer path, applying the default
// location when unset.
func (c Config) SemanticLayerFile() (string, error) {
	if c.SemanticLayerPath != "" {
		return c.SemanticLayerPath, nil
	}
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "semantic_layer.yaml"), nil
}

// FeedbackDBFile resolves the feedback database path, applying the default
// location when unset.
func (c Config) FeedbackDBFile() (string, error) {
	if c.FeedbackDBPath != "" {
		return c.FeedbackDBPath, nil
	}
	dir, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "feedback.db"), nil
}

// Save writes configuration with 0600 permissions.
func Save(c Config) error {
	p, err := path()
	if err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
