package controlpath

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// TypeRegistry maps computed handler type names to factory functions.
// Modules populate it while loading; the dispatcher only queries it.
type TypeRegistry struct {
	mu        sync.RWMutex
	factories map[string]any
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		factories: make(map[string]any),
	}
}

// Define registers factory under name. The factory must be a function whose
// first result implements Handler; its parameters are resolved from the
// injection map when the dispatcher instantiates the type.
func (r *TypeRegistry) Define(name string, factory any) error {
	if name == "" {
		return fmt.Errorf("%w: empty type name", ErrInvalidFactory)
	}
	if factory == nil || reflect.TypeOf(factory).Kind() != reflect.Func {
		return fmt.Errorf("%w: %s is not a function", ErrInvalidFactory, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("%w: %s", ErrTypeExists, name)
	}
	r.factories[name] = factory
	return nil
}

// Lookup returns the factory registered under name.
func (r *TypeRegistry) Lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Has returns true if a type is registered under name.
func (r *TypeRegistry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// List returns all registered type names, sorted.
func (r *TypeRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered types.
func (r *TypeRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.factories)
}
