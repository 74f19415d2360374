package adapter

import (
	"context"
	"strings"
	"time"
)

// FakeAdapter is a deterministic test double that needs no external tools.
// Its model names select a behavior: fake-fast returns immediately,
// fake-slow adds a small delay, fake-error always fails, fake-stream
// exercises the chunk callback.
type FakeAdapter struct{}

func NewFakeAdapter() *FakeAdapter { return &FakeAdapter{} }

func (a *FakeAdapter) Name() string { return "fake" }

func (a *FakeAdapter) Detect() DetectionResult {
	return DetectionResult{
		Detected:   true,
		BinaryPath: "fake",
		Version:    "1.0.0",
		AuthStatus: AuthAuthenticated,
		Trusted:    true,
	}
}

func (a *FakeAdapter) ListModels() []string {
	return []string{"fake-fast", "fake-slow", "fake-error", "fake-stream"}
}

func (a *FakeAdapter) Run(_ context.Context, prompt string, opts RunOptions) RunResult {
	start := time.Now()

	if opts.Model == "fake-error" {
		return RunResult{
			ExitCode: 1,
			WallTime: time.Since(start),
			Error:    "simulated error from fake-error model",
		}
	}

	if opts.Model == "fake-slow" {
		time.Sleep(150 * time.Millisecond)
	}

	preview := prompt
	if len(preview) > 50 {
		preview = preview[:50] + "..."
	}
	output := "Fake response to: " + preview

	var chunks []string
	var ttft time.Duration
	if opts.Stream && opts.OnChunk != nil {
		for _, word := range strings.Fields(output) {
			chunks = append(chunks, word)
			opts.OnChunk(word)
			if ttft == 0 {
				ttft = time.Since(start)
			}
		}
	}

	return RunResult{
		Output:          output,
		ExitCode:        0,
		WallTime:        time.Since(start),
		TTFT:            ttft,
		TokensIn:        len(strings.Fields(prompt)),
		TokensOut:       len(strings.Fields(output)),
		TokensEstimated: true,
		Chunks:          chunks,
	}
}

func (a *FakeAdapter) Capabilities() Capabilities {
	return Capabilities{
		Name:                 a.Name(),
		Streaming:            true,
		ToolCalling:          false,
		MaxTokens:            4096,
		MaxContext:           8192,
		SupportsSystemPrompt: true,
		Offline:              true,
	}
}
