package adapter

import (
	"context"
	"strings"
	"testing"

	"github.com/slittycode/model-benchmark/internal/executor"
)

// spyRunner captures executor inputs so tests can assert on the argv an
// adapter builds.
type spyRunner struct {
	lastArgs  []string
	stdin     string
	sawPrompt bool
}

func (s *spyRunner) Run(_ context.Context, args []string, opts executor.Options) executor.Result {
	s.lastArgs = args
	s.stdin = opts.Stdin
	return executor.Result{Stdout: "ok", ExitCode: 0}
}

func (s *spyRunner) RunWithStdinPrompt(_ context.Context, args []string, prompt string, _ executor.Options) executor.Result {
	s.lastArgs = args
	s.stdin = prompt
	s.sawPrompt = true
	return executor.Result{Stdout: "ok", ExitCode: 0}
}

func TestSubprocessAdaptersKeepPromptOutOfArgv(t *testing.T) {
	const prompt = "TOP-SECRET: this prompt must never appear in argv"

	claude := NewClaudeAdapter("/bin/claude", 0, nil)
	ollama := NewOllamaAdapter("/bin/ollama", 0, nil)
	codex := NewCodexAdapter("/bin/codex", 0, nil)
	goose := NewGooseAdapter("/bin/goose", 0, nil)
	vllm := NewVLLMAdapter("/bin/vllm", 0, nil)

	tests := []struct {
		name  string
		model string
		setup func(r runner) Adapter
	}{
		{"claude", "claude-sonnet-4-5", func(r runner) Adapter { claude.exec = r; return claude }},
		{"ollama", "llama3.2", func(r runner) Adapter { ollama.exec = r; return ollama }},
		{"codex", "o4-mini", func(r runner) Adapter { codex.exec = r; return codex }},
		{"goose", "", func(r runner) Adapter { goose.exec = r; return goose }},
		{"vllm", "mistralai/Mistral-7B-v0.1", func(r runner) Adapter { vllm.exec = r; return vllm }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spy := &spyRunner{}
			a := tt.setup(spy)

			result := a.Run(context.Background(), prompt, RunOptions{Model: tt.model})
			if result.ExitCode != 0 {
				t.Fatalf("exit code = %d", result.ExitCode)
			}
			if !spy.sawPrompt {
				t.Error("adapter did not use the stdin-prompt path")
			}
			if spy.stdin != prompt {
				t.Errorf("stdin = %q, want the prompt", spy.stdin)
			}
			for _, arg := range spy.lastArgs {
				if strings.Contains(arg, prompt) {
					t.Errorf("argv element %q leaks prompt text", arg)
				}
			}
		})
	}
}

func TestClaudeArgvIsStaticFlagsPlusModel(t *testing.T) {
	spy := &spyRunner{}
	a := NewClaudeAdapter("/bin/claude", 0, nil)
	a.exec = spy

	a.Run(context.Background(), "-p looks like a flag", RunOptions{Model: "claude-sonnet-4-5"})

	want := []string{"/bin/claude", "-p", "-", "--output-format", "text", "--model", "claude-sonnet-4-5"}
	if len(spy.lastArgs) != len(want) {
		t.Fatalf("argv = %v, want %v", spy.lastArgs, want)
	}
	for i := range want {
		if spy.lastArgs[i] != want[i] {
			t.Errorf("argv[%d] = %q, want %q", i, spy.lastArgs[i], want[i])
		}
	}
}

func TestSubprocessAdapterMissingBinaryReturns127(t *testing.T) {
	a := NewClaudeAdapter("", 0, nil) // PATH lookup will fail under a scrubbed PATH
	t.Setenv("PATH", t.TempDir())

	result := a.Run(context.Background(), "hello", RunOptions{Model: "claude-sonnet-4-5"})
	if result.ExitCode != 127 {
		t.Errorf("exit code = %d, want 127", result.ExitCode)
	}
	if result.Error == "" {
		t.Error("error message should be set when the binary is missing")
	}
	if result.WallTime != 0 {
		t.Errorf("wall time = %v, want zero for a resolution failure", result.WallTime)
	}
}
