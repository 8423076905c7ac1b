package registry

import (
	"slices"
	"sync"

	"lingod/internal/capability"
)

// Checker answers whether a named capability exists in the environment.
type Checker interface {
	Has(name string) bool
}

// Registry is the in-process capability registry. Features consult it once
// at start; a missing capability makes the feature unsupported for the
// whole session.
type Registry struct {
	mu   sync.RWMutex
	caps map[string]struct{}
}

// New returns a registry holding names.
func New(names ...string) *Registry {
	r := &Registry{caps: make(map[string]struct{}, len(names))}
	for _, n := range names {
		r.caps[n] = struct{}{}
	}
	return r
}

// Full returns a registry with every known capability.
func Full() *Registry {
	return New(capability.NameTranslator, capability.NameSummarizer, capability.NameLanguageDetector)
}

func (r *Registry) Register(name string) {
	r.mu.Lock()
	r.caps[name] = struct{}{}
	r.mu.Unlock()
}

func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	delete(r.caps, name)
	r.mu.Unlock()
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.caps[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.caps))
	for n := range r.caps {
		out = append(out, n)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}
