package adapter

import (
	"context"
	"strings"
	"testing"
)

func TestFakeAdapterIsAlwaysDetected(t *testing.T) {
	a := NewFakeAdapter()
	res := a.Detect()
	if !res.Detected || res.AuthStatus != AuthAuthenticated {
		t.Errorf("detect = %+v, fake must always be ready", res)
	}
}

func TestFakeAdapterFastModel(t *testing.T) {
	a := NewFakeAdapter()
	result := a.Run(context.Background(), "what is 2+2", RunOptions{Model: "fake-fast"})

	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
	if !strings.Contains(result.Output, "what is 2+2") {
		t.Errorf("output = %q, should echo the prompt", result.Output)
	}
	if !result.TokensEstimated {
		t.Error("fake token counts are estimates")
	}
}

func TestFakeAdapterErrorModel(t *testing.T) {
	a := NewFakeAdapter()
	result := a.Run(context.Background(), "anything", RunOptions{Model: "fake-error"})

	if result.ExitCode == 0 {
		t.Fatal("fake-error must fail")
	}
	if result.Error == "" {
		t.Error("failure must carry an error message")
	}
}

func TestFakeAdapterStreaming(t *testing.T) {
	a := NewFakeAdapter()
	var chunks []string
	result := a.Run(context.Background(), "stream me", RunOptions{
		Model:   "fake-stream",
		Stream:  true,
		OnChunk: func(c string) { chunks = append(chunks, c) },
	})

	if result.ExitCode != 0 {
		t.Fatalf("exit code = %d", result.ExitCode)
	}
	if len(chunks) == 0 {
		t.Fatal("streaming produced no chunks")
	}
	if result.TTFT <= 0 {
		t.Error("TTFT should be recorded when streaming")
	}
	if len(result.Chunks) != len(chunks) {
		t.Errorf("result chunks = %d, callback chunks = %d", len(result.Chunks), len(chunks))
	}
}

func TestTrustedPath(t *testing.T) {
	tests := []struct {
		binary   string
		prefixes []string
		want     bool
	}{
		{"/usr/bin/ollama", []string{"/usr/bin"}, true},
		{"/usr/bin/ollama", []string{"/usr"}, true},
		{"/tmp/evil/ollama", []string{"/usr/bin", "/usr/local/bin"}, false},
		{"/usr/binx/ollama", []string{"/usr/bin"}, false},
		{"", []string{"/usr/bin"}, false},
	}
	for _, tt := range tests {
		if got := TrustedPath(tt.binary, tt.prefixes); got != tt.want {
			t.Errorf("TrustedPath(%q, %v) = %v, want %v", tt.binary, tt.prefixes, got, tt.want)
		}
	}
}

func TestParseOllamaList(t *testing.T) {
	out := `NAME            ID          SIZE    MODIFIED
llama3.2:latest abc123      2.0 GB  2 days ago
qwen2.5:7b      def456      4.7 GB  5 weeks ago
`
	models := parseOllamaList(out)
	if len(models) != 2 || models[0] != "llama3.2:latest" || models[1] != "qwen2.5:7b" {
		t.Errorf("models = %v", models)
	}
}
