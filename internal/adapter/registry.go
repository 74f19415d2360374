package adapter

import "fmt"

// Registry is a name-keyed collection of adapters. It preserves
// registration order for deterministic iteration. The reference usage is
// single-threaded after startup registration; concurrent callers must add
// their own synchronization.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter, overwriting any previous adapter with the same
// name while keeping its original position.
func (r *Registry) Register(a Adapter) {
	name := a.Name()
	if _, exists := r.adapters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.adapters[name] = a
}

// Get returns the adapter registered under name, or nil.
func (r *Registry) Get(name string) Adapter {
	return r.adapters[name]
}

// All returns every registered adapter in registration order.
func (r *Registry) All() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.adapters[name])
	}
	return out
}

// Names returns every registered adapter name in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// DetectAll runs detection on every adapter and returns the results of
// those that were detected, keyed implicitly by order.
func (r *Registry) DetectAll() []DetectionResult {
	var out []DetectionResult
	for _, a := range r.All() {
		res := safeDetect(a)
		if res.Detected {
			out = append(out, res)
		}
	}
	return out
}

// Available returns the adapters whose detection succeeded. One adapter's
// misbehaving Detect — including a panic — must not take the others down,
// so each detection is fault-isolated.
func (r *Registry) Available() []Adapter {
	var out []Adapter
	for _, a := range r.All() {
		if safeDetect(a).Detected {
			out = append(out, a)
		}
	}
	return out
}

func safeDetect(a Adapter) (res DetectionResult) {
	defer func() {
		if p := recover(); p != nil {
			res = DetectionResult{Detected: false, Error: fmt.Sprintf("detect panic: %v", p)}
		}
	}()
	return a.Detect()
}
