package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.General.OutputDir != "benchmark_results" {
		t.Errorf("expected output dir 'benchmark_results', got %q", cfg.General.OutputDir)
	}
	if cfg.Timeout() != 300*time.Second {
		t.Errorf("expected 300s timeout, got %s", cfg.Timeout())
	}
	if !cfg.Logging.RedactSecrets {
		t.Error("redaction must be on by default")
	}
	if len(cfg.Routing.PreferenceOrder) == 0 {
		t.Error("expected a default preference order")
	}
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}

	cfg.General.OutputDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty general.output_dir")
	}

	cfg = defaults()
	cfg.General.Timeout = "-5s"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative timeout")
	}

	cfg.General.Timeout = "not-a-duration"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unparseable timeout")
	}
}

func TestProviderEnabledDefaultsTrue(t *testing.T) {
	var p ProviderCfg
	if !p.IsEnabled() {
		t.Error("absent enabled flag must mean enabled")
	}
	off := false
	p.Enabled = &off
	if p.IsEnabled() {
		t.Error("enabled: false must disable the provider")
	}
}

func TestMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("logging:\n  level: debug\nproviders:\n  ollama:\n    default_model: llama3.2\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := defaults()
	if err := mergeFile(cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected 'debug', got %q", cfg.Logging.Level)
	}
	if cfg.Providers["ollama"].DefaultModel != "llama3.2" {
		t.Errorf("expected ollama default model merged, got %q", cfg.Providers["ollama"].DefaultModel)
	}
	// Untouched defaults survive the merge.
	if cfg.Providers["claude"].DefaultModel != "claude-sonnet-4-5" {
		t.Errorf("claude default lost in merge: %q", cfg.Providers["claude"].DefaultModel)
	}
}

func TestMergeFileNotExist(t *testing.T) {
	cfg := defaults()
	err := mergeFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil || !os.IsNotExist(err) {
		t.Errorf("expected os.IsNotExist error, got %v", err)
	}
}

func TestMergeFileRejectsInlineAPIKeys(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "api_key field",
			content: "providers:\n  openai:\n    api_key: sk-abc123\n",
		},
		{
			name:    "token field",
			content: "providers:\n  anthropic:\n    token: sk-ant-abc123\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "-")+".yaml")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg := defaults()
			err := mergeFile(cfg, path)
			if err == nil {
				t.Error("expected error for inline credential field, got nil")
			}
		})
	}
}
