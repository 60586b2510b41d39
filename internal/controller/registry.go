package controller

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/alexisbeaulieu97/cadence/internal/ports"
)

// Built-in controller kinds.
const (
	KindLog    = "log"
	KindSpring = "spring"
)

// Settings carries the per-chain knobs a Factory may use.
type Settings struct {
	Logger    ports.Logger
	TimeScale float64
	Spring    SpringOptions
}

// Factory builds the controller for one target.
type Factory func(target string, settings Settings) (Controller, error)

// Registry maps controller kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the log and spring kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(KindLog, func(target string, s Settings) (Controller, error) {
		return NewLog(target, s.Logger, s.TimeScale), nil
	})
	_ = r.Register(KindSpring, func(target string, s Settings) (Controller, error) {
		return NewSpring(target, s.Spring), nil
	})
	return r
}

// Register adds a factory under kind.
func (r *Registry) Register(kind string, factory Factory) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return fmt.Errorf("controller kind is empty")
	}
	if factory == nil {
		return fmt.Errorf("controller kind '%s' has no factory", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("controller kind '%s' already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Kinds lists registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Build creates one controller of kind per target name.
func (r *Registry) Build(kind string, targets []string, settings Settings) (Map, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown controller %q (want one of %s)", kind, strings.Join(r.Kinds(), ", "))
	}

	out := make(Map, len(targets))
	for _, name := range targets {
		c, err := factory(name, settings)
		if err != nil {
			return nil, fmt.Errorf("build %s controller for %s: %w", kind, name, err)
		}
		out[name] = c
	}
	return out, nil
}
