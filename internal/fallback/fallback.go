// Package fallback retries a prompt across an ordered list of candidate
// models on one adapter, stopping at the first success.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"github.com/slittycode/model-benchmark/internal/adapter"
)

// Attempt records one failed model attempt.
type Attempt struct {
	Model  string
	Reason string
}

func (a Attempt) String() string { return a.Model + ": " + a.Reason }

// Outcome is the terminal result of a fallback chain: the last success, or
// the last failure annotated with the whole attempt history.
type Outcome struct {
	Result adapter.RunResult

	// Model is the candidate that produced Result.
	Model string

	// FallbackUsed is true when a candidate other than the primary
	// ultimately answered. A high fallback rate means the primary model
	// path is unreliable, so this is surfaced as a first-class metric.
	FallbackUsed bool

	// Attempts lists every failed attempt, in order. Empty on a
	// first-try success.
	Attempts []Attempt
}

// Run tries the primary model, then each fallback in order (duplicates of
// already-tried candidates are skipped), until one returns exit code 0.
// Earlier failures are discarded on success. When every candidate fails,
// the last result is returned with its error rewritten to carry the full
// attempt history.
func Run(ctx context.Context, a adapter.Adapter, prompt, primary string, fallbacks []string, base adapter.RunOptions) Outcome {
	candidates := dedupe(primary, fallbacks)

	var attempts []Attempt
	var last adapter.RunResult
	haveResult := false

	for i, model := range candidates {
		opts := base
		opts.Model = model

		result, panicked := safeRun(ctx, a, prompt, opts)
		if panicked != "" {
			attempts = append(attempts, Attempt{Model: model, Reason: panicked})
			continue
		}

		if result.Succeeded() {
			return Outcome{
				Result:       result,
				Model:        model,
				FallbackUsed: i > 0,
				Attempts:     attempts,
			}
		}

		reason := result.Error
		if reason == "" {
			reason = fmt.Sprintf("exit code %d", result.ExitCode)
		}
		attempts = append(attempts, Attempt{Model: model, Reason: reason})
		last = result
		haveResult = true
	}

	// Exhausted. Rewrite the terminal error so the consumer sees the whole
	// history, not just the last failure.
	summary := joinAttempts(attempts)
	if !haveResult {
		last = adapter.RunResult{ExitCode: 1, Error: summary}
	} else if last.Error != "" {
		last.Error = last.Error + " | attempts: " + summary
	} else {
		last.Error = "attempts: " + summary
	}

	lastModel := ""
	if len(candidates) > 0 {
		lastModel = candidates[len(candidates)-1]
	}

	return Outcome{
		Result:   last,
		Model:    lastModel,
		Attempts: attempts,
	}
}

// safeRun contains a panicking adapter: an adapter contractually never
// fails loudly for operational reasons, so a panic here is a bug signal,
// but it still must not abort the remaining candidates.
func safeRun(ctx context.Context, a adapter.Adapter, prompt string, opts adapter.RunOptions) (result adapter.RunResult, panicked string) {
	defer func() {
		if p := recover(); p != nil {
			panicked = fmt.Sprintf("%v", p)
		}
	}()
	return a.Run(ctx, prompt, opts), ""
}

func dedupe(primary string, fallbacks []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range append([]string{primary}, fallbacks...) {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func joinAttempts(attempts []Attempt) string {
	parts := make([]string, len(attempts))
	for i, a := range attempts {
		parts[i] = a.String()
	}
	return strings.Join(parts, "; ")
}
