// Package provider defines the LLM provider interface and implementations.
package provider

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrProviderNotFound is returned when a requested provider doesn't exist.
var ErrProviderNotFound = errors.New("provider not found")

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("no response choices")

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// CallOptions tune a single Chat call.
type CallOptions struct {
	// JSON asks the model to answer with a JSON document.
	JSON bool
}

// CallOption sets a CallOptions field.
type CallOption func(*CallOptions)

// WithJSONResponse asks for a JSON response. The answer is still untrusted.
func WithJSONResponse() CallOption {
	return func(o *CallOptions) {
		o.JSON = true
	}
}

func applyCallOptions(opts []CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// Chat sends messages and returns the complete response.
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (string, error)
}

// Registry holds available providers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[p.Name()] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return p, nil
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
