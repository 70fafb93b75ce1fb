package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the catalogs a session may search, keyed by Name(). A
// catalog must be enabled before use, and catalogs that require auth must be
// configured first.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*registration
}

type registration struct {
	provider   Provider
	priority   int
	configured bool
	enabled    bool
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*registration)}
}

// Register adds providers under their names at their default priority.
func (r *Registry) Register(providers ...Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range providers {
		if p == nil {
			return fmt.Errorf("register: nil provider")
		}
		name := p.Name()
		if _, exists := r.entries[name]; exists {
			return fmt.Errorf("provider %s already registered", name)
		}
		r.entries[name] = &registration{provider: p, priority: p.Capabilities().Priority}
	}
	return nil
}

// Get returns a provider by name, enabled or not
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// List returns the registered names, highest priority first
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := r.entries[names[i]].priority, r.entries[names[j]].priority
		if pi == pj {
			return names[i] < names[j]
		}
		return pi > pj
	})
	return names
}

// Configure passes settings to the named provider.
func (r *Registry) Configure(name string, settings map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	if err := e.provider.Configure(settings); err != nil {
		return fmt.Errorf("failed to configure provider %s: %w", name, err)
	}
	e.configured = true
	return nil
}

// Enable marks the named provider usable.
func (r *Registry) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("provider %s not found", name)
	}
	if e.provider.Capabilities().RequiresAuth && !e.configured {
		return fmt.Errorf("provider %s requires configuration", name)
	}
	e.enabled = true
	return nil
}

// Enabled returns the named provider if it is enabled
func (r *Registry) Enabled(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", name)
	}
	if !e.enabled {
		return nil, fmt.Errorf("provider %s is not enabled", name)
	}
	return e.provider, nil
}

// Preferred returns the enabled provider with the highest priority.
func (r *Registry) Preferred() (Provider, error) {
	for _, name := range r.List() {
		if p, err := r.Enabled(name); err == nil {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no provider enabled")
}
