package game

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps game kinds to the factories that build their engines.
type Registry struct {
	factories map[Kind]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]Factory),
	}
}

// Register adds a factory. An existing factory for the same kind is replaced.
func (r *Registry) Register(kind Kind, f Factory) error {
	if f == nil {
		return fmt.Errorf("cannot register nil factory for %s", kind)
	}
	if kind == "" {
		return fmt.Errorf("game kind cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
	return nil
}

// Get returns the factory for a kind.
func (r *Registry) Get(kind Kind) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	return f, ok
}

// Build constructs an engine for kind.
func (r *Registry) Build(kind Kind, s Setup) (Engine, error) {
	f, ok := r.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownGame, kind)
	}
	if len(s.Players) != kind.Players() {
		return nil, fmt.Errorf("%w: %s needs %d player(s)", ErrBadParam, kind, kind.Players())
	}
	return f(s)
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Count returns the number of registered kinds.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
