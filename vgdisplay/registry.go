package vgdisplay

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named alternatives for one extension point, with a
// single active entry. Notebook front ends register their own renderers
// here and enable the one matching their display protocol.
type Registry[T any] struct {
	mu      sync.Mutex
	entries map[string]T
	active  string
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{entries: make(map[string]T)}
}

// Register adds or replaces the entry under name.
func (r *Registry[T]) Register(name string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = v
}

// Enable makes name the active entry. It must have been registered.
func (r *Registry[T]) Enable(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; !ok {
		return fmt.Errorf("no renderer %q is registered (registered: %v)", name, r.names())
	}
	r.active = name
	return nil
}

// Active returns the currently enabled entry.
func (r *Registry[T]) Active() (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[r.active]
	if !ok {
		var zero T
		return zero, fmt.Errorf("no renderer is enabled (registered: %v)", r.names())
	}
	return v, nil
}

// Get returns the entry under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.entries[name]
	return v, ok
}

// Names lists registered names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.names()
}

func (r *Registry[T]) names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
