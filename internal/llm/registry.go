package llm

import (
	"context"
	"fmt"
	"sync"
)

// Factory constructs a backend on first use.
type Factory func(ctx context.Context) (Provider, error)

// Registry builds providers lazily by name and caches successful constructions.
type Registry struct {
	mu        sync.Mutex
	factories map[Name]Factory
	built     map[Name]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Name]Factory),
		built:     make(map[Name]Provider),
	}
}

// Register installs the factory for name, replacing any cached instance.
func (r *Registry) Register(name Name, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	delete(r.built, name)
}

// Set installs an already constructed provider.
func (r *Registry) Set(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built[p.Name()] = p
}

// Get returns the provider for name. Unknown or credential-less backends yield ErrNotConfigured.
func (r *Registry) Get(ctx context.Context, name Name) (Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.built[name]; ok {
		return p, nil
	}
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, name)
	}
	p, err := f(ctx)
	if err != nil {
		return nil, err
	}
	r.built[name] = p
	return p, nil
}

// Configured reports which backends have a factory or instance.
func (r *Registry) Configured() []Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Name
	for _, n := range Names() {
		if _, ok := r.built[n]; ok {
			out = append(out, n)
			continue
		}
		if _, ok := r.factories[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
