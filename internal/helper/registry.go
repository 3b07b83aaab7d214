package helper

import (
	"sort"
	"sync"
)

// Registry records the helper classes of one session. Every name is built
// at most once, even when several transforms need it concurrently.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
}

type registryEntry struct {
	once  sync.Once
	class *Class
	err   error
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registryEntry)}
}

// Obtain returns the helper registered under name, running build when the
// name is new. created is true for exactly one caller per name: the one
// that registered it and is responsible for emitting the class. Callers
// arriving while build runs wait for its outcome.
func (r *Registry) Obtain(name string, build func() (*Class, error)) (class *Class, created bool, err error) {
	r.mu.Lock()
	e, ok := r.entries[name]
	if !ok {
		e = &registryEntry{}
		r.entries[name] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		e.class, e.err = build()
	})

	return e.class, !ok, e.err
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Len returns the number of registered names.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
