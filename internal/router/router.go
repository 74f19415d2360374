// Package router selects a provider and model from the available adapters
// according to capability constraints and a configured preference order.
package router

import (
	"fmt"
	"sort"

	"github.com/slittycode/model-benchmark/internal/adapter"
)

// Constraints narrows the candidate set. Zero values impose nothing.
type Constraints struct {
	OfflineOnly         bool
	StreamingRequired   bool
	ToolCallingRequired bool

	// MinContext excludes adapters whose reported context window is
	// smaller. Adapters that report no context size are not excluded;
	// absence of information is not a violation.
	MinContext int
}

// Result is a routing decision.
type Result struct {
	Provider string
	Model    string

	// Reasons is a human-readable account of why this provider won.
	Reasons []string

	// Alternatives lists up to three runner-up provider names.
	Alternatives []string
}

// Router is a state-free selection policy over adapters.
type Router struct {
	// Preference orders providers by name; unlisted providers sort after
	// all listed ones, keeping their relative order.
	Preference []string
}

// New returns a Router with the given preference order.
func New(preference []string) *Router {
	return &Router{Preference: preference}
}

// Route picks one adapter and resolves its model. defaultModels maps
// provider name to a configured default model. A nil result means no
// adapter satisfied the constraints — an expected outcome, not an error.
func (r *Router) Route(adapters []adapter.Adapter, c Constraints, defaultModels map[string]string) *Result {
	var candidates []adapter.Adapter
	for _, a := range adapters {
		caps := a.Capabilities()
		if c.OfflineOnly && !caps.Offline {
			continue
		}
		if c.StreamingRequired && !caps.Streaming {
			continue
		}
		if c.ToolCallingRequired && !caps.ToolCalling {
			continue
		}
		if c.MinContext > 0 && caps.MaxContext > 0 && caps.MaxContext < c.MinContext {
			continue
		}
		candidates = append(candidates, a)
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return r.rank(candidates[i].Name()) < r.rank(candidates[j].Name())
	})

	selected := candidates[0]
	reasons := []string{fmt.Sprintf("%s is available", selected.Name())}
	if idx := r.prefIndex(selected.Name()); idx >= 0 {
		reasons = append(reasons, fmt.Sprintf("ranked #%d in preference order", idx+1))
	}

	var alternatives []string
	for _, a := range candidates[1:] {
		alternatives = append(alternatives, a.Name())
		if len(alternatives) == 3 {
			break
		}
	}

	return &Result{
		Provider:     selected.Name(),
		Model:        resolveModel(selected, defaultModels),
		Reasons:      reasons,
		Alternatives: alternatives,
	}
}

// resolveModel picks the model for a selected adapter: configured default,
// then the first listed model, then a literal placeholder.
func resolveModel(a adapter.Adapter, defaults map[string]string) string {
	if m := defaults[a.Name()]; m != "" {
		return m
	}
	if models := a.ListModels(); len(models) > 0 {
		return models[0]
	}
	return "default"
}

func (r *Router) prefIndex(name string) int {
	for i, p := range r.Preference {
		if p == name {
			return i
		}
	}
	return -1
}

func (r *Router) rank(name string) int {
	if idx := r.prefIndex(name); idx >= 0 {
		return idx
	}
	return len(r.Preference)
}
