package adapter

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// LlamaCppAdapter wraps the llama.cpp CLI. Models are .gguf files resolved
// from a local models directory.
type LlamaCppAdapter struct {
	binaryPath   string
	trustedPaths []string
	exec         runner
}

func NewLlamaCppAdapter(binaryPath string, timeout time.Duration, trustedPaths []string) *LlamaCppAdapter {
	if trustedPaths == nil {
		trustedPaths = DefaultTrustedPaths
	}
	return &LlamaCppAdapter{
		binaryPath:   binaryPath,
		trustedPaths: trustedPaths,
		exec:         executor.New(timeout),
	}
}

func (a *LlamaCppAdapter) Name() string { return "llamacpp" }

func (a *LlamaCppAdapter) binary() string {
	return resolveBinary(a.binaryPath, "llama-cli", "llama-server", "main")
}

func (a *LlamaCppAdapter) modelsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	candidates := []string{
		filepath.Join(home, ".cache", "llama.cpp", "models"),
		filepath.Join(home, ".local", "share", "llama.cpp", "models"),
		filepath.Join(home, "models"),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

func (a *LlamaCppAdapter) Detect() DetectionResult {
	binary := a.binary()
	if binary == "" {
		return DetectionResult{Detected: false, Error: "llama.cpp binary not found"}
	}

	var version string
	res := a.exec.Run(context.Background(), []string{binary, "--version"}, executor.Options{Timeout: 10 * time.Second})
	if res.ExitCode == 0 {
		version = strings.TrimSpace(res.Stdout)
	}

	return DetectionResult{
		Detected:   true,
		BinaryPath: binary,
		Version:    version,
		AuthStatus: AuthAuthenticated, // local inference, no auth
		Trusted:    TrustedPath(binary, a.trustedPaths),
	}
}

func (a *LlamaCppAdapter) ListModels() []string {
	dir := a.modelsDir()
	if dir == "" {
		return nil
	}
	var models []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".gguf") {
			models = append(models, strings.TrimSuffix(d.Name(), ".gguf"))
		}
		return nil
	})
	return models
}

func (a *LlamaCppAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	binary := a.binary()
	if binary == "" {
		return RunResult{ExitCode: 127, Error: "llama.cpp not found"}
	}

	modelPath := a.findModel(opts.Model)
	if modelPath == "" {
		return RunResult{ExitCode: 1, Error: fmt.Sprintf("model not found: %s", opts.Model)}
	}

	// Static flags plus the resolved model file only; "-p -" tells the CLI
	// to read the prompt from stdin.
	args := []string{
		binary,
		"-m", modelPath,
		"-p", "-",
		"--no-display-prompt",
		"-n", "512",
	}

	execOpts := executor.Options{Timeout: opts.Timeout}
	if opts.Stream && opts.OnChunk != nil {
		execOpts.OnLine = opts.OnChunk
	}
	res := a.exec.RunWithStdinPrompt(ctx, args, prompt, execOpts)

	return runResultFromExec(res)
}

// findModel resolves a model name to a .gguf path: exact match first, then
// the first substring match anywhere under the models dir.
func (a *LlamaCppAdapter) findModel(name string) string {
	dir := a.modelsDir()
	if dir == "" {
		return ""
	}

	exact := filepath.Join(dir, name+".gguf")
	if _, err := os.Stat(exact); err == nil {
		return exact
	}

	var match string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || match != "" {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".gguf") && strings.Contains(d.Name(), name) {
			match = path
		}
		return nil
	})
	return match
}

func (a *LlamaCppAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          false,
		SupportsSystemPrompt: true,
		Offline:              true,
	}
}
