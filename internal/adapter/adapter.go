// Package adapter defines the uniform provider contract and the concrete
// adapters for local CLIs and HTTP APIs. Every adapter converts whatever its
// provider does — subprocess exit codes, HTTP failures, SDK quirks — into
// plain RunResult values; operational failures never surface as errors.
package adapter

import (
	"context"
	"encoding/json"
	"time"
)

// AuthStatus classifies the outcome of an authentication probe.
type AuthStatus string

const (
	AuthAuthenticated   AuthStatus = "authenticated"
	AuthUnauthenticated AuthStatus = "unauthenticated"
	AuthUnknown         AuthStatus = "unknown"
	AuthError           AuthStatus = "error"
)

// Capabilities describes what an adapter supports. It is static per adapter
// instance and computed without side effects.
type Capabilities struct {
	Name                 string
	Streaming            bool
	ToolCalling          bool
	MaxTokens            int // 0 = unknown or model-dependent
	MaxContext           int // 0 = unknown or model-dependent
	SupportsSystemPrompt bool
	Offline              bool // true = fully local, no network egress
	CostPer1KInput       float64
	CostPer1KOutput      float64
}

// DetectionResult reports whether a provider is installed and usable.
type DetectionResult struct {
	Detected   bool
	BinaryPath string
	Version    string
	AuthStatus AuthStatus
	// Trusted is false when the resolved binary lives outside the
	// allow-listed directories, a weak supply-chain signal.
	Trusted bool
	Error   string
}

// RunOptions configures one Adapter.Run call. The caller constructs it; the
// adapter treats it as read-only.
type RunOptions struct {
	// Model is the target model identifier. Required, non-empty.
	Model string

	Stream  bool
	Timeout time.Duration // per-call override, executor default when zero

	MaxTokens    int
	Temperature  float64 // 0 = provider default
	SystemPrompt string

	// OnChunk receives each output chunk in order, on the calling
	// goroutine, never concurrently. Only used when Stream is true.
	OnChunk func(chunk string)
}

// RunResult is the outcome of one prompt execution. ExitCode 0 means the
// call succeeded for routing and fallback purposes; whenever ExitCode is
// non-zero and a reason is known, Error carries it.
type RunResult struct {
	Output   string
	ExitCode int
	WallTime time.Duration
	TTFT     time.Duration // zero when no first token was observed
	Error    string

	TokensIn        int
	TokensOut       int
	TokensEstimated bool // true when counts are heuristic, not provider-reported

	Raw    json.RawMessage // raw provider response body, when available
	Chunks []string
}

// Succeeded reports whether the run counts as a success.
func (r RunResult) Succeeded() bool { return r.ExitCode == 0 }

// Adapter is the uniform capability wrapping one AI provider: a local CLI,
// a cloud CLI, or an HTTP API.
type Adapter interface {
	// Name is the unique registry key, e.g. "ollama" or "claude".
	Name() string

	// Detect performs a cheap, never-billed check of whether the provider
	// is installed and configured. It must not make paid calls; API
	// adapters only validate credential format and configuration.
	Detect() DetectionResult

	// ListModels enumerates model identifiers, best effort. It returns an
	// empty slice when the provider has no enumerable list and must not
	// fail for operational reasons.
	ListModels() []string

	// Run executes one prompt. Subprocess adapters pass the prompt via
	// stdin exclusively; it must never appear in argv.
	Run(ctx context.Context, prompt string, opts RunOptions) RunResult

	// Capabilities is pure: no I/O, no side effects.
	Capabilities() Capabilities
}

// Available reports whether the adapter is detected and usable.
func Available(a Adapter) bool {
	return a.Detect().Detected
}
