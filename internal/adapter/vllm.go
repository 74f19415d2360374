package adapter

import (
	"context"
	"strings"
	"time"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// VLLMAdapter wraps the vLLM CLI for local inference against a running
// vLLM server.
type VLLMAdapter struct {
	binaryPath   string
	trustedPaths []string
	exec         runner
}

func NewVLLMAdapter(binaryPath string, timeout time.Duration, trustedPaths []string) *VLLMAdapter {
	if trustedPaths == nil {
		trustedPaths = DefaultTrustedPaths
	}
	return &VLLMAdapter{
		binaryPath:   binaryPath,
		trustedPaths: trustedPaths,
		exec:         executor.New(timeout),
	}
}

func (a *VLLMAdapter) Name() string { return "vllm" }

func (a *VLLMAdapter) binary() string {
	return resolveBinary(a.binaryPath, "vllm")
}

func (a *VLLMAdapter) Detect() DetectionResult {
	binary := a.binary()
	if binary == "" {
		return DetectionResult{Detected: false, Error: "vllm binary not found"}
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
		AuthStatus: AuthAuthenticated, // local server, no credentials
		Trusted:    TrustedPath(binary, a.trustedPaths),
	}
}

func (a *VLLMAdapter) ListModels() []string {
	return []string{"meta-llama/Llama-2-7b-chat-hf", "mistralai/Mistral-7B-v0.1"}
}

func (a *VLLMAdapter) Run(ctx context.Context, prompt string, opts RunOptions) RunResult {
	binary := a.binary()
	if binary == "" {
		return RunResult{ExitCode: 127, Error: "vllm not found"}
	}

	// "complete --quick -" takes a single completion prompt from stdin.
	args := []string{binary, "complete", "--quick", "-"}
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

func (a *VLLMAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          false,
		SupportsSystemPrompt: true,
		Offline:              true,
	}
}
