// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for sarcheck configuration.
	DefaultConfigDir = ".sarcheck"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default SQLite file name inside the config directory.
	DefaultDatabaseFile = "sarcheck.db"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	LLM      LLMConfig      `yaml:"llm,omitempty"`
	Embedder EmbedderConfig `yaml:"embedder,omitempty"`
	Qdrant   QdrantConfig   `yaml:"qdrant,omitempty"`
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Log      LogConfig      `yaml:"log,omitempty"`
	Retry    RetryConfig    `yaml:"retry,omitempty"`
	Server   ServerConfig   `yaml:"server,omitempty"`
	Rules    RulesConfig    `yaml:"rules,omitempty"`
}

// LLMConfig holds configuration for the text-generation provider.
type LLMConfig struct {
	Provider  string        `yaml:"provider,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	APIKey    string        `yaml:"api_key,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	MaxTokens int           `yaml:"max_tokens,omitempty"`
}

// EmbedderConfig holds configuration for the embedding provider.
type EmbedderConfig struct {
	Provider string `yaml:"provider,omitempty"`
	Model    string `yaml:"model,omitempty"`
	APIKey   string `yaml:"api_key,omitempty"`
}

// QdrantConfig holds configuration for the Qdrant vector database.
type QdrantConfig struct {
	Host       string `yaml:"host,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Collection string `yaml:"collection,omitempty"`
	APIKey     string `yaml:"api_key,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite case store.
type SQLiteConfig struct {
	// Path is the database file. Relative paths resolve against the project root.
	Path string `yaml:"path,omitempty"`
}

// LogConfig configures the global zap logger.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"` // "console" or "json"
}

// RetryConfig holds the retry policy for text-generation calls.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts,omitempty"`
	InitialBackoff    time.Duration `yaml:"initial_backoff,omitempty"`
	MaxBackoff        time.Duration `yaml:"max_backoff,omitempty"`
	Multiplier        float64       `yaml:"multiplier,omitempty"`
	JitterFraction    float64       `yaml:"jitter_fraction,omitempty"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// RulesConfig overrides the compliance rule bounds.
type RulesConfig struct {
	MinLength          int      `yaml:"min_length,omitempty"`
	MaxLength          int      `yaml:"max_length,omitempty"`
	ClarityMinLength   int      `yaml:"clarity_min_length,omitempty"`
	SpeculativePhrases []string `yaml:"speculative_phrases,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   10 * time.Second,
			MaxTokens: 800,
		},
		Embedder: EmbedderConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Qdrant: QdrantConfig{
			Host:       "localhost",
			Port:       6334,
			Collection: "sarcheck_precedents",
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Retry: RetryConfig{
			MaxAttempts:    3,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     8 * time.Second,
			Multiplier:     2,
			JitterFraction: 0.25,
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		Rules: RulesConfig{
			MinLength:        100,
			MaxLength:        1000,
			ClarityMinLength: 50,
		},
	}
}

// Load loads configuration from the .sarcheck directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'sarcheck init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadOrDefault loads the config file when it exists and falls back to
// defaults otherwise. Environment overrides apply either way.
func LoadOrDefault(basePath string) (*Config, error) {
	if !Exists(basePath) {
		cfg := Default()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return Load(basePath)
}

// applyEnvOverrides applies environment variable overrides.
// File values win; the environment only fills what the file leaves empty.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" && c.LLM.Provider == "openai" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" && c.Embedder.Provider == "openai" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		if c.LLM.APIKey == "" && c.LLM.Provider == "anthropic" {
			c.LLM.APIKey = key
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		if c.LLM.APIKey == "" && c.LLM.Provider == "gemini" {
			c.LLM.APIKey = key
		}
		if c.Embedder.APIKey == "" && c.Embedder.Provider == "gemini" {
			c.Embedder.APIKey = key
		}
	}
	if key := os.Getenv("QDRANT_API_KEY"); key != "" {
		if c.Qdrant.APIKey == "" {
			c.Qdrant.APIKey = key
		}
	}
	// Generic endpoint settings for any OpenAI-compatible service.
	if url := os.Getenv("LLM_API_URL"); url != "" && c.LLM.BaseURL == "" {
		c.LLM.BaseURL = url
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" && c.LLM.APIKey == "" {
		c.LLM.APIKey = key
	}
}

// SQLitePath resolves the database path against basePath.
func (c *Config) SQLitePath(basePath string) string {
	if c.SQLite.Path == "" {
		return filepath.Join(basePath, DefaultConfigDir, DefaultDatabaseFile)
	}
	if filepath.IsAbs(c.SQLite.Path) {
		return c.SQLite.Path
	}
	return filepath.Join(basePath, c.SQLite.Path)
}

// ConfigDir returns the path to the .sarcheck config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a sarcheck config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
