package adapter

import (
	"os"
	"time"
)

// BuildOptions carries everything the built-in registry needs from the
// configuration layer, kept as plain values so this package stays free of
// config dependencies.
type BuildOptions struct {
	Timeout      time.Duration
	TrustedPaths []string

	// Binaries maps provider name to an explicit binary path override.
	Binaries map[string]string

	// Disabled lists provider names that must not be registered.
	Disabled map[string]bool
}

// BuiltinRegistry constructs a registry with every built-in adapter
// registered. It is called once at startup and the result is passed down
// explicitly; there is no lazy process-wide singleton.
func BuiltinRegistry(opts BuildOptions) *Registry {
	reg := NewRegistry()
	bin := func(name string) string { return opts.Binaries[name] }

	register := func(a Adapter) {
		if !opts.Disabled[a.Name()] {
			reg.Register(a)
		}
	}

	register(NewFakeAdapter())
	register(NewOllamaAdapter(bin("ollama"), opts.Timeout, opts.TrustedPaths))
	register(NewClaudeAdapter(bin("claude"), opts.Timeout, opts.TrustedPaths))
	register(NewCodexAdapter(bin("codex"), opts.Timeout, opts.TrustedPaths))
	register(NewGooseAdapter(bin("goose"), opts.Timeout, opts.TrustedPaths))
	register(NewVLLMAdapter(bin("vllm"), opts.Timeout, opts.TrustedPaths))
	register(NewLlamaCppAdapter(bin("llamacpp"), opts.Timeout, opts.TrustedPaths))
	register(NewOpenAIAdapter(os.Getenv("OPENAI_API_KEY"), "", opts.Timeout, nil))
	register(NewAnthropicAdapter(os.Getenv("ANTHROPIC_API_KEY"), "", opts.Timeout, nil))

	return reg
}
