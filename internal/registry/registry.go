package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/specialistvlad/stagegrid/internal/config"
	"github.com/specialistvlad/stagegrid/internal/task"
)

// Factory builds a new, unconfigured task instance.
type Factory func() task.Task

// Module is the interface that all task modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the task factories of a single application instance.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// New creates and initializes a new Registry instance.
func New(modules ...Module) *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register registers the factory for an implementation reference. It panics
// on an empty reference, a nil factory or a duplicate reference.
func (r *Registry) Register(ref string, f Factory) {
	if ref == "" {
		panic("task implementation reference must not be empty")
	}
	if f == nil {
		panic(fmt.Sprintf("task implementation '%s' registered with a nil factory", ref))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[ref]; exists {
		panic(fmt.Sprintf("task implementation '%s' already registered", ref))
	}
	slog.Debug("Registering task implementation.", "ref", ref)
	r.factories[ref] = f
}

// Resolve instantiates a new task for ref. An unknown reference is a
// configuration error.
func (r *Registry) Resolve(ref string) (task.Task, error) {
	r.mu.RLock()
	f, ok := r.factories[ref]
	r.mu.RUnlock()

	if !ok {
		return nil, config.Invalidf("no task implementation registered for %q", ref)
	}
	t := f()
	if t == nil {
		return nil, fmt.Errorf("factory for %q returned a nil task", ref)
	}
	return t, nil
}

// Has reports whether ref is registered.
func (r *Registry) Has(ref string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[ref]
	return ok
}

// Refs returns every registered reference, sorted.
func (r *Registry) Refs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make([]string, 0, len(r.factories))
	for ref := range r.factories {
		refs = append(refs, ref)
	}
	sort.Strings(refs)
	return refs
}
