package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func TestProvidersSortedAndNonEmpty(t *testing.T) {
	providers := Providers()
	if len(providers) == 0 {
		t.Fatal("no providers registered")
	}
	if !sort.StringsAreSorted(providers) {
		t.Errorf("providers not sorted: %v", providers)
	}
}

func TestCheckProviderMissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	d := New(5 * time.Second)
	result := d.CheckProvider(context.Background(), "claude")
	if result.HasBinary {
		t.Error("binary must not be found on an empty PATH")
	}
	if result.AuthStatus != "unknown" {
		t.Errorf("auth status = %q, no probe must run without a binary", result.AuthStatus)
	}
	if result.Ready() {
		t.Error("provider without binary cannot be ready")
	}
}

func TestCheckProviderFindsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PATH", t.TempDir())
	if err := os.MkdirAll(filepath.Join(home, ".ollama"), 0o755); err != nil {
		t.Fatal(err)
	}

	d := New(5 * time.Second)
	result := d.CheckProvider(context.Background(), "ollama")
	if !result.HasConfig {
		t.Error("expected ~/.ollama to be detected")
	}
	if result.ConfigPath != filepath.Join(home, ".ollama") {
		t.Errorf("config path = %q", result.ConfigPath)
	}
}

func TestCheckProviderAuthProbe(t *testing.T) {
	bin := t.TempDir()
	script := filepath.Join(bin, "ollama")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho NAME\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)
	t.Setenv("HOME", t.TempDir())

	d := New(5 * time.Second)
	result := d.CheckProvider(context.Background(), "ollama")
	if !result.HasBinary {
		t.Fatal("stub binary not found")
	}
	if !result.HasAuth || result.AuthStatus != "authenticated" {
		t.Errorf("auth = %v status = %q, want authenticated", result.HasAuth, result.AuthStatus)
	}
	if !result.Ready() {
		t.Error("installed plus authenticated must be ready")
	}
}

func TestCheckProviderAuthFailure(t *testing.T) {
	bin := t.TempDir()
	script := filepath.Join(bin, "gh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", bin)
	t.Setenv("HOME", t.TempDir())

	d := New(5 * time.Second)
	result := d.CheckProvider(context.Background(), "gh")
	if result.HasAuth {
		t.Error("non-zero probe must mean unauthenticated")
	}
	if result.AuthStatus != "not_authenticated" {
		t.Errorf("auth status = %q", result.AuthStatus)
	}
}

func TestCheckProviderExtraPathLookup(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	extra := t.TempDir()
	script := filepath.Join(extra, "claude")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	d := New(5*time.Second, extra)
	result := d.CheckProvider(context.Background(), "claude")
	if !result.HasBinary {
		t.Fatal("binary in an extra path must be found")
	}
	if result.BinaryPath != script {
		t.Errorf("binary path = %q, want %q", result.BinaryPath, script)
	}
}

func TestCheckAvailableFiltersUninstalled(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	d := New(5 * time.Second)
	if got := d.CheckAvailable(context.Background()); len(got) != 0 {
		t.Errorf("available = %v, want none on an empty PATH", got)
	}
	if got := d.CheckAll(context.Background()); len(got) != len(Providers()) {
		t.Errorf("CheckAll returned %d results, want %d", len(got), len(Providers()))
	}
}
