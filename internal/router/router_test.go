package router

import (
	"context"
	"testing"

	"github.com/slittycode/model-benchmark/internal/adapter"
)

type capAdapter struct {
	name   string
	caps   adapter.Capabilities
	models []string
}

func (c *capAdapter) Name() string { return c.name }
func (c *capAdapter) Detect() adapter.DetectionResult {
	return adapter.DetectionResult{Detected: true, Trusted: true}
}
func (c *capAdapter) ListModels() []string { return c.models }
func (c *capAdapter) Run(context.Context, string, adapter.RunOptions) adapter.RunResult {
	return adapter.RunResult{ExitCode: 0}
}
func (c *capAdapter) Capabilities() adapter.Capabilities {
	caps := c.caps
	caps.Name = c.name
	return caps
}

func TestRouteOnlyAvailableAdapter(t *testing.T) {
	a := &capAdapter{name: "solo", models: []string{"m-first", "m-second"}}
	r := New(nil)

	result := r.Route([]adapter.Adapter{a}, Constraints{}, nil)
	if result == nil {
		t.Fatal("expected a routing decision")
	}
	if result.Provider != "solo" {
		t.Errorf("provider = %q", result.Provider)
	}
	if result.Model != "m-first" {
		t.Errorf("model = %q, want first listed model", result.Model)
	}
	if len(result.Reasons) == 0 {
		t.Error("routing decision must carry reasons")
	}
}

func TestRouteDefaultModelWinsOverListed(t *testing.T) {
	a := &capAdapter{name: "solo", models: []string{"listed"}}
	result := New(nil).Route([]adapter.Adapter{a}, Constraints{}, map[string]string{"solo": "configured"})
	if result.Model != "configured" {
		t.Errorf("model = %q, configured default must take precedence", result.Model)
	}
}

func TestRouteModelPlaceholderWhenNothingListed(t *testing.T) {
	a := &capAdapter{name: "bare"}
	result := New(nil).Route([]adapter.Adapter{a}, Constraints{}, nil)
	if result.Model != "default" {
		t.Errorf("model = %q, want the literal placeholder", result.Model)
	}
}

func TestRouteCapabilityFiltering(t *testing.T) {
	local := &capAdapter{name: "local", caps: adapter.Capabilities{Offline: true, Streaming: false}}
	cloud := &capAdapter{name: "cloud", caps: adapter.Capabilities{Offline: false, Streaming: true}}
	adapters := []adapter.Adapter{local, cloud}
	r := New(nil)

	if got := r.Route(adapters, Constraints{OfflineOnly: true}, nil); got == nil || got.Provider != "local" {
		t.Errorf("offline_only: got %+v, want local", got)
	}
	if got := r.Route(adapters, Constraints{StreamingRequired: true}, nil); got == nil || got.Provider != "cloud" {
		t.Errorf("streaming_required: got %+v, want cloud", got)
	}
	if got := r.Route(adapters, Constraints{OfflineOnly: true, StreamingRequired: true}, nil); got != nil {
		t.Errorf("both constraints: got %+v, want nil", got)
	}
}

func TestRouteUnknownContextDoesNotViolateMinContext(t *testing.T) {
	unknown := &capAdapter{name: "unknown-ctx"} // MaxContext 0 = unreported
	small := &capAdapter{name: "small", caps: adapter.Capabilities{MaxContext: 4096}}

	result := New(nil).Route([]adapter.Adapter{small, unknown}, Constraints{MinContext: 100000}, nil)
	if result == nil || result.Provider != "unknown-ctx" {
		t.Errorf("got %+v, absence of a context size must not exclude an adapter", result)
	}
}

func TestRoutePreferenceOrderAndAlternatives(t *testing.T) {
	a := &capAdapter{name: "a"}
	b := &capAdapter{name: "b"}
	c := &capAdapter{name: "c"}
	d := &capAdapter{name: "d"}
	r := New([]string{"c", "b"})

	result := r.Route([]adapter.Adapter{a, b, c, d}, Constraints{}, nil)
	if result.Provider != "c" {
		t.Fatalf("provider = %q, want preferred 'c'", result.Provider)
	}
	// Unlisted adapters keep their relative order after listed ones.
	want := []string{"b", "a", "d"}
	if len(result.Alternatives) != len(want) {
		t.Fatalf("alternatives = %v, want %v", result.Alternatives, want)
	}
	for i := range want {
		if result.Alternatives[i] != want[i] {
			t.Errorf("alternatives[%d] = %q, want %q", i, result.Alternatives[i], want[i])
		}
	}
}

func TestRouteNoAdaptersReturnsNil(t *testing.T) {
	if got := New(nil).Route(nil, Constraints{}, nil); got != nil {
		t.Errorf("got %+v, want nil for an empty adapter set", got)
	}
}
