package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
		"QDRANT_API_KEY", "LLM_API_URL", "LLM_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(ConfigDir(dir), 0755))
	require.NoError(t, os.WriteFile(ConfigFilePath(dir), []byte(content), 0644))
	return dir
}

func TestLoad_DefaultYAMLMatchesDefault(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysFile(t *testing.T) {
	clearEnv(t)
	dir := writeConfig(t, `
llm:
  provider: anthropic
  model: claude-sonnet-4-5
  timeout: 30s
retry:
  max_attempts: 5
rules:
  min_length: 200
`)

	cfg, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 800, cfg.LLM.MaxTokens)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.InitialBackoff)
	assert.Equal(t, 200, cfg.Rules.MinLength)
	assert.Equal(t, 1000, cfg.Rules.MaxLength)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sarcheck init")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := writeConfig(t, "llm: [unclosed")
		_, err := Load(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing config file")
	})
}

func TestLoadOrDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")

	cfg, err := LoadOrDefault(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "sk-env", cfg.LLM.APIKey)
	assert.Equal(t, "sk-env", cfg.Embedder.APIKey)
}

func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		cfg   func() *Config
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "file value wins over env",
			env:  map[string]string{"OPENAI_API_KEY": "sk-env"},
			cfg: func() *Config {
				c := Default()
				c.LLM.APIKey = "sk-file"
				return c
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "sk-file", cfg.LLM.APIKey)
				assert.Equal(t, "sk-env", cfg.Embedder.APIKey)
			},
		},
		{
			name: "provider specific keys",
			env:  map[string]string{"ANTHROPIC_API_KEY": "ant", "GEMINI_API_KEY": "gem"},
			cfg: func() *Config {
				c := Default()
				c.LLM.Provider = "anthropic"
				c.Embedder.Provider = "gemini"
				return c
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "ant", cfg.LLM.APIKey)
				assert.Equal(t, "gem", cfg.Embedder.APIKey)
			},
		},
		{
			name: "generic endpoint variables",
			env:  map[string]string{"LLM_API_URL": "https://gateway/v1", "LLM_API_KEY": "generic"},
			cfg:  Default,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://gateway/v1", cfg.LLM.BaseURL)
				assert.Equal(t, "generic", cfg.LLM.APIKey)
			},
		},
		{
			name: "qdrant key",
			env:  map[string]string{"QDRANT_API_KEY": "q"},
			cfg:  Default,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "q", cfg.Qdrant.APIKey)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg := tt.cfg()
			cfg.applyEnvOverrides()
			tt.check(t, cfg)
		})
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/repo", ".sarcheck", "sarcheck.db"), cfg.SQLitePath("/repo"))

	cfg.SQLite.Path = "/var/lib/sarcheck.db"
	assert.Equal(t, "/var/lib/sarcheck.db", cfg.SQLitePath("/repo"))

	cfg.SQLite.Path = ""
	assert.Equal(t, filepath.Join("/repo", ".sarcheck", "sarcheck.db"), cfg.SQLitePath("/repo"))
}

func TestWriteDefault_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteDefault(dir))

	err := WriteDefault(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.True(t, Exists(dir))
}

func TestWrite_RoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg := Default()
	cfg.LLM.Provider = "gemini"
	cfg.Server.AllowedOrigins = []string{"https://review.example.com"}

	require.NoError(t, Write(dir, cfg))
	loaded, err := Load(dir)

	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestInitLogger(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.True(t, zap.L().Core().Enabled(zap.DebugLevel))

	require.NoError(t, InitLogger(LogConfig{Format: "console"}))
	assert.False(t, zap.L().Core().Enabled(zap.DebugLevel))

	err := InitLogger(LogConfig{Level: "loud"})
	require.Error(t, err)
}
