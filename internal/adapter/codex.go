package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// CodexAdapter wraps the OpenAI Codex CLI.
type CodexAdapter struct {
	binaryPath   string
	trustedPaths []string
	exec         runner
}

func NewCodexAdapter(binaryPath string, timeout time.Duration, trustedPaths []string) *CodexAdapter {
	if trustedPaths == nil {
		trustedPaths = DefaultTrustedPaths
	}
	return &CodexAdapter{
		binaryPath:   binaryPath,
		trustedPaths: trustedPaths,
		exec:         executor.New(timeout),
	}
}

func (a *CodexAdapter) Name() string { return "codex" }

func (a *CodexAdapter) binary() string {
	return resolveBinary(a.binaryPath, "codex")
}

func (a *CodexAdapter) Detect() DetectionResult {
	binary := a.binary()
	if binary == "" {
		return DetectionResult{Detected: false, Error: "codex binary not found"}
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
		AuthStatus: AuthUnknown, // login state lives in the CLI's own config
		Trusted:    TrustedPath(binary, a.trustedPaths),
	}
}

func (a *CodexAdapter) ListModels() []string {
	return []string{"o4-mini", "o3", "gpt-4.1"}
}

func (a *CodexAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	binary := a.binary()
	if binary == "" {
		return RunResult{ExitCode: 127, Error: "codex not found"}
	}

	// "exec -" makes the CLI read the prompt from stdin, keeping it out of
	// the process table.
	args := []string{binary, "exec", "-"}
	if opts.Model != "" {
		args = append(args, "--model", opts.Model)
	}

	execOpts := executor.Options{Timeout: opts.Timeout}
	if opts.Stream && opts.OnChunk != nil {
		execOpts.OnLine = opts.OnChunk
	}
	res := a.exec.RunWithStdinPrompt(ctx, args, prompt, execOpts)

	return runResultFromExec(res)
}

func (a *CodexAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          true,
		MaxTokens:            16384,
		MaxContext:           128000,
		SupportsSystemPrompt: true,
		Offline:              false,
	}
}
