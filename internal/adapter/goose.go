package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// GooseAdapter wraps the Goose CLI. Goose sessions are recipe-driven, so
// there is no model list; the model comes from its own profile config.
type GooseAdapter struct {
	binaryPath   string
	trustedPaths []string
	exec         runner
}

func NewGooseAdapter(binaryPath string, timeout time.Duration, trustedPaths []string) *GooseAdapter {
	if trustedPaths == nil {
		trustedPaths = DefaultTrustedPaths
	}
	return &GooseAdapter{
		binaryPath:   binaryPath,
		trustedPaths: trustedPaths,
		exec:         executor.New(timeout),
	}
}

func (a *GooseAdapter) Name() string { return "goose" }

func (a *GooseAdapter) binary() string {
	return resolveBinary(a.binaryPath, "goose")
}

func (a *GooseAdapter) Detect() DetectionResult {
	binary := a.binary()
	if binary == "" {
		return DetectionResult{Detected: false, Error: "goose binary not found"}
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
		AuthStatus: AuthUnknown,
		Trusted:    TrustedPath(binary, a.trustedPaths),
	}
}

func (a *GooseAdapter) ListModels() []string {
	return nil
}

func (a *GooseAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	binary := a.binary()
	if binary == "" {
		return RunResult{ExitCode: 127, Error: "goose not found"}
	}

	// "run -" reads the instruction from stdin; the prompt never hits argv.
	args := []string{binary, "run", "-"}

	execOpts := executor.Options{Timeout: opts.Timeout}
	if opts.Stream && opts.OnChunk != nil {
		execOpts.OnLine = opts.OnChunk
	}
	res := a.exec.RunWithStdinPrompt(ctx, args, prompt, execOpts)

	return runResultFromExec(res)
}

func (a *GooseAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          true,
		SupportsSystemPrompt: true,
		Offline:              false,
	}
}
