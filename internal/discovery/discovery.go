// Package discovery locates AI CLI tools on the local machine and checks
// whether they are configured and authenticated.
package discovery

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

const checkOutputLimit = 500

// CheckResult describes one provider's readiness on this machine.
type CheckResult struct {
	Provider    string
	HasBinary   bool
	BinaryPath  string
	HasConfig   bool
	ConfigPath  string
	HasAuth     bool
	AuthStatus  string
	CheckOutput string
	Errors      []string
}

// Ready reports whether the tool is installed and either configured or
// authenticated.
func (r CheckResult) Ready() bool {
	return r.HasBinary && (r.HasConfig || r.HasAuth)
}

// configLocations maps providers to their usual config paths.
var configLocations = map[string][]string{
	"claude":   {"~/.claude", "~/.config/claude", "~/.claude.json"},
	"codex":    {"~/.codex", "~/.config/codex"},
	"gemini":   {"~/.config/gemini", "~/.gemini"},
	"ollama":   {"~/.ollama"},
	"goose":    {"~/.config/goose", "~/.goose"},
	"opencode": {"~/.opencode", "~/.config/opencode"},
	"aider":    {"~/.aider", "~/.config/aider", "~/.aider.conf.yml"},
	"cursor":   {"~/.cursor", "~/Library/Application Support/Cursor"},
	"continue": {"~/.continue"},
	"aws":      {"~/.aws/credentials", "~/.aws/config"},
	"gcloud":   {"~/.config/gcloud"},
	"azure":    {"~/.azure"},
}

// authCheckCommands maps providers to a cheap command whose exit code
// signals working auth.
var authCheckCommands = map[string][]string{
	"claude":   {"claude", "--version"},
	"codex":    {"codex", "--version"},
	"gemini":   {"gemini", "--version"},
	"ollama":   {"ollama", "list"},
	"goose":    {"goose", "--version"},
	"opencode": {"opencode", "--version"},
	"aws":      {"aws", "sts", "get-caller-identity"},
	"gcloud":   {"gcloud", "auth", "list"},
	"azure":    {"az", "account", "show"},
	"gh":       {"gh", "auth", "status"},
}

// Providers lists every provider the detector knows about, sorted for
// stable output.
func Providers() []string {
	out := make([]string, 0, len(configLocations))
	for name := range configLocations {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Detector probes provider binaries, config files, and auth state.
type Detector struct {
	exec       *executor.Executor
	home       string
	extraPaths []string
}

// New builds a detector; timeout bounds each auth probe. extraPaths are
// searched for binaries after PATH.
func New(timeout time.Duration, extraPaths ...string) *Detector {
	home, _ := os.UserHomeDir()
	return &Detector{exec: executor.New(timeout), home: home, extraPaths: extraPaths}
}

// CheckProvider inspects one provider.
func (d *Detector) CheckProvider(ctx context.Context, provider string) CheckResult {
	result := CheckResult{Provider: provider, AuthStatus: "unknown"}

	if path, ok := d.lookPath(provider); ok {
		result.HasBinary = true
		result.BinaryPath = path
	}

	for _, loc := range configLocations[provider] {
		expanded := d.expand(loc)
		if _, err := os.Stat(expanded); err == nil {
			result.HasConfig = true
			result.ConfigPath = expanded
			break
		}
	}

	cmd, ok := authCheckCommands[provider]
	if ok && result.HasBinary {
		res := d.exec.Run(ctx, cmd, executor.Options{})
		result.HasAuth = res.ExitCode == 0
		if result.HasAuth {
			result.AuthStatus = "authenticated"
		} else {
			result.AuthStatus = "not_authenticated"
		}
		if out := res.Stdout; out != "" {
			if len(out) > checkOutputLimit {
				out = out[:checkOutputLimit]
			}
			result.CheckOutput = out
		}
	}

	return result
}

// CheckAll inspects every known provider.
func (d *Detector) CheckAll(ctx context.Context) []CheckResult {
	var results []CheckResult
	for _, provider := range Providers() {
		results = append(results, d.CheckProvider(ctx, provider))
	}
	return results
}

// CheckAvailable inspects known providers and keeps only the installed
// ones.
func (d *Detector) CheckAvailable(ctx context.Context) []CheckResult {
	var results []CheckResult
	for _, provider := range Providers() {
		r := d.CheckProvider(ctx, provider)
		if r.HasBinary {
			results = append(results, r)
		}
	}
	return results
}

// lookPath resolves a binary via PATH, then via the configured extra
// directories.
func (d *Detector) lookPath(name string) (string, bool) {
	if path, err := exec.LookPath(name); err == nil {
		return path, true
	}
	for _, dir := range d.extraPaths {
		candidate := filepath.Join(d.expand(dir), name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, true
		}
	}
	return "", false
}

func (d *Detector) expand(path string) string {
	if strings.HasPrefix(path, "~/") && d.home != "" {
		return filepath.Join(d.home, path[2:])
	}
	return path
}
