// ABOUTME: Named processor factory registry
// ABOUTME: Lets hosts construct processing nodes by name without a global table
package frontend

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// EncoderName is the registry name of the PCM16 frame encoder
const EncoderName = "pcm16-frame-encoder"

// ErrProcessorNotRegistered is returned by Registry.Create for unknown names
var ErrProcessorNotRegistered = errors.New("frontend: processor not registered")

// Factory constructs a processing node for one session
type Factory func(cfg Config, sink Sink) (Processor, error)

// Registry maps processor names to factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name, replacing any existing entry
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create constructs the processor registered under name
func (r *Registry) Create(name string, cfg Config, sink Sink) (Processor, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProcessorNotRegistered, name)
	}

	p, err := factory(cfg, sink)
	if err != nil {
		return nil, fmt.Errorf("failed to create processor %q: %w", name, err)
	}
	return p, nil
}

// Names returns the registered names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers the processors provided by this package
func RegisterBuiltins(r *Registry) {
	r.Register(EncoderName, func(cfg Config, sink Sink) (Processor, error) {
		return New(cfg, sink)
	})
}
