package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	General   GeneralConfig          `yaml:"general"`
	Discovery DiscoveryConfig        `yaml:"discovery"`
	Routing   RoutingConfig          `yaml:"routing"`
	Providers map[string]ProviderCfg `yaml:"providers"`
	Logging   LoggingConfig          `yaml:"logging"`
}

type GeneralConfig struct {
	OutputDir    string `yaml:"output_dir"`
	Timeout      string `yaml:"timeout"`
	StorePrompts bool   `yaml:"store_prompts"`
}

type DiscoveryConfig struct {
	ExtraPaths   []string `yaml:"extra_paths"`
	TrustedPaths []string `yaml:"trusted_paths"`
}

type RoutingConfig struct {
	PreferenceOrder   []string `yaml:"preference_order"`
	OfflineOnly       bool     `yaml:"offline_only"`
	StreamingRequired bool     `yaml:"streaming_required"`
}

type ProviderCfg struct {
	Enabled        *bool    `yaml:"enabled"`
	Binary         string   `yaml:"binary"`
	DefaultModel   string   `yaml:"default_model"`
	FallbackModels []string `yaml:"fallback_models"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	RedactSecrets bool   `yaml:"redact_secrets"`
}

// IsEnabled treats an absent flag as enabled.
func (p ProviderCfg) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// Timeout returns the parsed general timeout.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.General.Timeout)
	if err != nil {
		return 300 * time.Second
	}
	return d
}

// Validate checks that required fields are present and sane.
func (c *Config) Validate() error {
	if c.General.OutputDir == "" {
		return fmt.Errorf("general.output_dir is required")
	}
	d, err := time.ParseDuration(c.General.Timeout)
	if err != nil {
		return fmt.Errorf("general.timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("general.timeout must be positive, got %s", c.General.Timeout)
	}
	return nil
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := defaults()

	// user-level config
	home, err := os.UserHomeDir()
	if err == nil {
		userPath := filepath.Join(home, ".mbench", "config.yaml")
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(".mbench", "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	// Refuse inline API keys before merging. Credentials belong in the
	// environment, never in a config file that may be committed.
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err == nil {
		if providers, ok := raw["providers"].(map[string]interface{}); ok {
			for name, v := range providers {
				entry, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				for _, key := range []string{"api_key", "apikey", "token"} {
					if _, has := entry[key]; has {
						return fmt.Errorf("configuration field 'providers.%s.%s' is not supported. "+
							"Remove it from %s and export the key via the provider's environment variable "+
							"(OPENAI_API_KEY, ANTHROPIC_API_KEY).", name, key, path)
					}
				}
			}
		}
	}
	return yaml.Unmarshal(data, dst)
}

func defaults() *Config {
	return &Config{
		General: GeneralConfig{
			OutputDir:    "benchmark_results",
			Timeout:      "300s",
			StorePrompts: true,
		},
		Discovery: DiscoveryConfig{
			TrustedPaths: []string{
				"/opt/homebrew/bin",
				"/usr/local/bin",
				"/usr/bin",
				"/bin",
				"~/.local/bin",
			},
		},
		Routing: RoutingConfig{
			PreferenceOrder: []string{"claude", "codex", "openai", "anthropic", "ollama", "vllm", "llamacpp"},
		},
		Providers: map[string]ProviderCfg{
			"claude": {
				Binary:         "claude",
				DefaultModel:   "claude-sonnet-4-5",
				FallbackModels: []string{"claude-haiku-4-5"},
			},
			"ollama": {
				Binary: "ollama",
			},
		},
		Logging: LoggingConfig{
			Level:         "info",
			RedactSecrets: true,
		},
	}
}
