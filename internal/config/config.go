// Package config loads pagetalk configuration from YAML with environment
// overrides. Precedence, lowest to highest: built-in defaults, user
// config (~/.config/pagetalk/config.yaml), project config
// (.pagetalk.yaml in the working directory), PAGETALK_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pagetalk/pagetalk/internal/errors"
)

// ProjectConfigName is the per-directory config file name.
const ProjectConfigName = ".pagetalk.yaml"

// Config is the complete pagetalk configuration.
type Config struct {
	Version    int              `yaml:"version"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Relevance  RelevanceConfig  `yaml:"relevance"`
	Storage    StorageConfig    `yaml:"storage"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ChunkingConfig controls how documents are split into passages.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// EmbeddingsConfig selects and configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is "openai" or "static".
	Provider string `yaml:"provider"`

	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	APIKeyEnv  string        `yaml:"api_key_env"`
	Model      string        `yaml:"model"`
	Dimensions int           `yaml:"dimensions"`
	BatchSize  int           `yaml:"batch_size"`
	Timeout    time.Duration `yaml:"timeout"`

	// CacheSize bounds the embedding LRU cache; negative disables it.
	CacheSize int `yaml:"cache_size"`
}

// GeneratorConfig configures the chat completion service.
type GeneratorConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// RetrievalConfig tunes the retriever.
type RetrievalConfig struct {
	K int `yaml:"k"`

	// FallbackTerms overrides the broad probe terms tried when every
	// query-derived search comes back empty. Empty keeps the defaults.
	FallbackTerms []string `yaml:"fallback_terms"`

	// DisableLexical turns off the keyword fallback stage.
	DisableLexical bool `yaml:"disable_lexical"`
}

// RelevanceConfig selects the grounding gate.
type RelevanceConfig struct {
	// Gate is "heuristic" (default) or "classifier". The classifier
	// gate always falls back to the heuristic rules when the service
	// is unavailable.
	Gate string `yaml:"gate"`
}

// StorageConfig selects the index store backend.
type StorageConfig struct {
	// Backend is "file" (default) or "sqlite".
	Backend string `yaml:"backend"`

	// Dir holds per-document JSON records for the file backend.
	Dir string `yaml:"dir"`

	// SQLitePath is the database path for the sqlite backend; empty
	// means in-memory.
	SQLitePath string `yaml:"sqlite_path"`
}

// WatchConfig configures the drop-directory watcher.
type WatchConfig struct {
	// Dir is the directory watched for text files to ingest.
	Dir string `yaml:"dir"`

	// Debounce coalesces rapid write events per file.
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	FilePath  string `yaml:"file_path"`
	MaxSizeMB int    `yaml:"max_size_mb"`
	MaxFiles  int    `yaml:"max_files"`
	Stderr    bool   `yaml:"stderr"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	home, _ := os.UserHomeDir()
	dataDir := filepath.Join(home, ".pagetalk")

	return &Config{
		Version: 1,
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Embeddings: EmbeddingsConfig{
			Provider:  "openai",
			APIKeyEnv: "OPENAI_API_KEY",
			Model:     "text-embedding-3-small",
			BatchSize: 32,
			Timeout:   60 * time.Second,
			CacheSize: 1024,
		},
		Generator: GeneratorConfig{
			APIKeyEnv:   "OPENAI_API_KEY",
			Model:       "gpt-4o-mini",
			MaxTokens:   1024,
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		Retrieval: RetrievalConfig{
			K: 5,
		},
		Relevance: RelevanceConfig{
			Gate: "heuristic",
		},
		Storage: StorageConfig{
			Backend: "file",
			Dir:     filepath.Join(dataDir, "indexes"),
		},
		Watch: WatchConfig{
			Dir:      filepath.Join(dataDir, "drop"),
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:     "info",
			FilePath:  filepath.Join(dataDir, "logs", "pagetalk.log"),
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
	}
}

// UserConfigPath returns the user-level config file path, honoring
// XDG_CONFIG_HOME.
func UserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pagetalk", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pagetalk", "config.yaml")
}

// Load builds the effective configuration for dir: defaults, then user
// config, then the project file in dir, then environment overrides.
// Missing files are fine; unparseable ones are config errors.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := UserConfigPath(); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	if dir != "" {
		if err := cfg.loadYAML(filepath.Join(dir, ProjectConfigName)); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML merges the file at path into the config. A missing file is
// not an error.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.ConfigError(fmt.Sprintf("failed to read config %s", path), err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid config %s", path), err)
	}
	return nil
}

// applyEnvOverrides applies PAGETALK_* variables, the highest-precedence
// layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PAGETALK_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("PAGETALK_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("PAGETALK_EMBEDDINGS_BASE_URL"); v != "" {
		c.Embeddings.BaseURL = v
	}
	if v := os.Getenv("PAGETALK_GENERATOR_MODEL"); v != "" {
		c.Generator.Model = v
	}
	if v := os.Getenv("PAGETALK_GENERATOR_BASE_URL"); v != "" {
		c.Generator.BaseURL = v
	}
	if v := os.Getenv("PAGETALK_RETRIEVAL_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Retrieval.K = k
		}
	}
	if v := os.Getenv("PAGETALK_RELEVANCE_GATE"); v != "" {
		c.Relevance.Gate = v
	}
	if v := os.Getenv("PAGETALK_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("PAGETALK_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("PAGETALK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"chunking.chunk_size must be positive", nil)
	}
	if c.Chunking.Overlap < 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"chunking.overlap must not be negative", nil)
	}
	if c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return errors.New(errors.ErrCodeConfigInvalid,
			"chunking.overlap must be smaller than chunking.chunk_size", nil)
	}

	switch c.Embeddings.Provider {
	case "openai", "static":
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown embeddings.provider %q", c.Embeddings.Provider), nil)
	}

	switch c.Relevance.Gate {
	case "", "heuristic", "classifier":
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown relevance.gate %q", c.Relevance.Gate), nil)
	}

	switch c.Storage.Backend {
	case "", "file", "sqlite":
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown storage.backend %q", c.Storage.Backend), nil)
	}

	if c.Retrieval.K <= 0 {
		return errors.New(errors.ErrCodeConfigInvalid,
			"retrieval.k must be positive", nil)
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown logging.level %q", c.Logging.Level), nil)
	}

	return nil
}

// WriteYAML writes the config to path, creating parent directories.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.ConfigError("failed to encode config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.ConfigError("failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to write config %s", path), err)
	}
	return nil
}
