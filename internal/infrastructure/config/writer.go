package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigYAML is the default configuration content.
const DefaultConfigYAML = `# sarcheck configuration

llm:
  provider: openai          # openai, anthropic, gemini or placeholder
  model: gpt-4o-mini
  timeout: 10s
  max_tokens: 800
  # api_key: your-api-key (or set OPENAI_API_KEY / LLM_API_KEY)
  # base_url: https://your-gateway/v1 (or set LLM_API_URL)

embedder:
  provider: openai          # openai or gemini
  model: text-embedding-3-small
  # api_key: your-api-key (or set OPENAI_API_KEY env var)

qdrant:
  host: localhost
  port: 6334
  collection: sarcheck_precedents
  # api_key: your-api-key (for Qdrant Cloud)

sqlite:
  path: .sarcheck/sarcheck.db

log:
  level: info
  format: console           # console or json

retry:
  max_attempts: 3
  initial_backoff: 500ms
  max_backoff: 8s
  multiplier: 2
  jitter_fraction: 0.25
  # requests_per_second: 2

server:
  port: 8080
  allowed_origins: ["*"]

rules:
  min_length: 100
  max_length: 1000
  clarity_min_length: 50
`

// WriteDefault creates the .sarcheck directory and writes a default config file.
func WriteDefault(basePath string) error {
	configDir := ConfigDir(basePath)
	configFile := ConfigFilePath(basePath)

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists: %s", configFile)
	}

	if err := os.WriteFile(configFile, []byte(DefaultConfigYAML), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Write writes the given config to the config file.
func Write(basePath string, cfg *Config) error {
	if err := os.MkdirAll(ConfigDir(basePath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(ConfigFilePath(basePath), data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
