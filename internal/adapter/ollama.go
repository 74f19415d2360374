package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// OllamaAdapter wraps the Ollama CLI for local model inference.
type OllamaAdapter struct {
	binaryPath   string
	trustedPaths []string
	exec         runner

	cachedBinary string
}

func NewOllamaAdapter(binaryPath string, timeout time.Duration, trustedPaths []string) *OllamaAdapter {
	if trustedPaths == nil {
		trustedPaths = DefaultTrustedPaths
	}
	return &OllamaAdapter{
		binaryPath:   binaryPath,
		trustedPaths: trustedPaths,
		exec:         executor.New(timeout),
	}
}

func (a *OllamaAdapter) Name() string { return "ollama" }

func (a *OllamaAdapter) binary() string {
	if a.cachedBinary != "" {
		return a.cachedBinary
	}
	path := resolveBinary(a.binaryPath, "ollama")
	if path != "" {
		a.cachedBinary = path
	}
	return path
}

func (a *OllamaAdapter) Detect() DetectionResult {
	binary := a.binary()
	if binary == "" {
		return DetectionResult{Detected: false, Error: "ollama binary not found in PATH"}
	}

	version := a.version(binary)

	// Listing models doubles as the auth probe: Ollama has no credentials,
	// a working list means the local server is reachable.
	auth := AuthUnknown
	if res := a.exec.Run(context.Background(), []string{binary, "list"}, executor.Options{Timeout: 10 * time.Second}); res.ExitCode == 0 {
		auth = AuthAuthenticated
	}

	return DetectionResult{
		Detected:   true,
		BinaryPath: binary,
		Version:    version,
		AuthStatus: auth,
		Trusted:    TrustedPath(binary, a.trustedPaths),
	}
}

func (a *OllamaAdapter) version(binary string) string {
	res := a.exec.Run(context.Background(), []string{binary, "--version"}, executor.Options{Timeout: 10 * time.Second})
	if res.ExitCode != 0 {
		return ""
	}
	// Output looks like "ollama version is 0.5.7".
	out := strings.TrimSpace(res.Stdout)
	if strings.Contains(strings.ToLower(out), "version") {
		fields := strings.Fields(out)
		if len(fields) >= 3 {
			return fields[len(fields)-1]
		}
	}
	return out
}

func (a *OllamaAdapter) ListModels() []string {
	binary := a.binary()
	if binary == "" {
		return nil
	}
	res := a.exec.Run(context.Background(), []string{binary, "list"}, executor.Options{Timeout: 10 * time.Second})
	if res.ExitCode != 0 {
		return nil
	}
	return parseOllamaList(res.Stdout)
}

// parseOllamaList extracts model names from `ollama list` output, skipping
// the header row.
func parseOllamaList(out string) []string {
	var models []string
	lines := strings.Split(strings.TrimSpace(out), "\n")
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) > 0 {
			models = append(models, fields[0])
		}
	}
	return models
}

func (a *OllamaAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	binary := a.binary()
	if binary == "" {
		return RunResult{ExitCode: 127, Error: "ollama not found"}
	}

	// Static flags plus the model only; the prompt goes over stdin.
	args := []string{binary, "run", opts.Model}

	execOpts := executor.Options{Timeout: opts.Timeout}
	if opts.Stream && opts.OnChunk != nil {
		execOpts.OnLine = opts.OnChunk
	}
	res := a.exec.RunWithStdinPrompt(ctx, args, prompt, execOpts)

	return runResultFromExec(res)
}

func (a *OllamaAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          false,
		SupportsSystemPrompt: true,
		Offline:              true,
		CostPer1KInput:       0,
		CostPer1KOutput:      0,
	}
}
