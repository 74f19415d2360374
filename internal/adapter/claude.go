package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// ClaudeAdapter wraps the Claude Code CLI.
type ClaudeAdapter struct {
	binaryPath   string
	trustedPaths []string
	exec         runner
}

// NewClaudeAdapter builds the adapter. binaryPath overrides PATH lookup
// when non-empty; trustedPaths defaults to DefaultTrustedPaths when nil.
func NewClaudeAdapter(binaryPath string, timeout time.Duration, trustedPaths []string) *ClaudeAdapter {
	if trustedPaths == nil {
		trustedPaths = DefaultTrustedPaths
	}
	return &ClaudeAdapter{
		binaryPath:   binaryPath,
		trustedPaths: trustedPaths,
		exec:         executor.New(timeout),
	}
}

func (a *ClaudeAdapter) Name() string { return "claude" }

func (a *ClaudeAdapter) binary() string {
	return resolveBinary(a.binaryPath, "claude")
}

func (a *ClaudeAdapter) Detect() DetectionResult {
	binary := a.binary()
	if binary == "" {
		return DetectionResult{Detected: false, Error: "claude binary not found"}
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
		AuthStatus: AuthUnknown, // a real check would cost a billed call
		Trusted:    TrustedPath(binary, a.trustedPaths),
	}
}

func (a *ClaudeAdapter) ListModels() []string {
	// The CLI has no model-listing command; return common names.
	return []string{"claude-sonnet-4-5", "claude-opus-4-1", "claude-haiku-4-5"}
}

func (a *ClaudeAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	binary := a.binary()
	if binary == "" {
		return RunResult{ExitCode: 127, Error: "claude not found"}
	}

	// Static flags plus the model only; the prompt goes over stdin.
	args := []string{binary, "-p", "-", "--output-format", "text"}
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

func (a *ClaudeAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          true,
		MaxTokens:            8192,
		MaxContext:           200000,
		SupportsSystemPrompt: true,
		Offline:              false,
	}
}

// runResultFromExec maps an executor result onto the adapter contract:
// stderr becomes the error on non-zero exit, timing and chunks carry over.
func runResultFromExec(res executor.Result) RunResult {
	out := RunResult{
		Output:   res.Stdout,
		ExitCode: res.ExitCode,
		WallTime: res.WallTime,
		TTFT:     res.TTFT,
		Chunks:   res.Chunks,
	}
	if res.ExitCode != 0 {
		out.Error = strings.TrimSpace(res.Stderr)
		if out.Error == "" && res.TimedOut {
			out.Error = "timed out"
		}
	}
	return out
}
