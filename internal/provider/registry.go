package provider

import (
	"context"
	"fmt"
	"time"
)

// Registry maps provider ids to adapters. It is populated once at startup
// and read-only afterwards, so lookups need no synchronization.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry builds a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// DefaultRegistry returns the built-in provider set.
// ollamaTimeout bounds local generation calls; zero uses the default ceiling.
func DefaultRegistry(ollamaTimeout time.Duration) *Registry {
	return NewRegistry(
		NewOpenAI(""),
		NewAnthropic(""),
		NewOpenRouter(""),
		NewOllama(ollamaTimeout),
	)
}

// Register adds an adapter, replacing any previous adapter with the same id.
func (r *Registry) Register(a Adapter) {
	if _, exists := r.adapters[a.ID()]; !exists {
		r.order = append(r.order, a.ID())
	}
	r.adapters[a.ID()] = a
}

// Get returns the adapter for a provider id.
func (r *Registry) Get(providerID string) (Adapter, error) {
	a, ok := r.adapters[providerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, providerID)
	}
	return a, nil
}

// List returns all adapters in registration order.
func (r *Registry) List() []Adapter {
	out := make([]Adapter, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.adapters[id])
	}
	return out
}

// Generate resolves the adapter for providerID and delegates to it,
// propagating its result or failure unchanged.
func (r *Registry) Generate(ctx context.Context, providerID string, history []Message, model, credential string) (string, error) {
	a, err := r.Get(providerID)
	if err != nil {
		return "", err
	}
	return a.Generate(ctx, history, model, credential)
}
