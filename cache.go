package controlpath

import (
	"sync"

	"go.uber.org/atomic"
)

type loadedSentinel struct{}

// Loaded is what ModuleCache.FileLoad returns for a module whose handler
// type was registered by an earlier load. It is a trivial return value.
var Loaded any = loadedSentinel{}

// CacheStats reports how often modules were executed or skipped.
type CacheStats struct {
	Loads int64
	Hits  int64
}

// ModuleCache remembers which module files registered handler types so they
// are never executed twice. Files and types share the cache's lifetime; share
// one cache between dispatchers that serve the same module tree. Entries are
// kept per file and type name, so dispatchers with different namespaces may
// share a cache.
type ModuleCache struct {
	types *TypeRegistry

	mu    sync.Mutex
	files map[string]*fileEntry

	loads atomic.Int64
	hits  atomic.Int64
}

type fileEntry struct {
	mu     sync.Mutex
	loaded bool
}

// NewModuleCache creates an empty cache with its own type registry.
func NewModuleCache() *ModuleCache {
	return &ModuleCache{
		types: NewTypeRegistry(),
		files: make(map[string]*fileEntry),
	}
}

// Types returns the registry modules define their handler types in.
func (c *ModuleCache) Types() *TypeRegistry {
	return c.types
}

func entryKey(file, typeName string) string {
	return file + "\x00" + typeName
}

func (c *ModuleCache) entry(file, typeName string) *fileEntry {
	key := entryKey(file, typeName)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.files[key]
	if !ok {
		e = &fileEntry{}
		c.files[key] = e
	}
	return e
}

// FileLoad executes file through loader unless it is already known loaded,
// in which case Loaded is returned. The file is recorded as loaded when
// typeName is defined once the load returns. Concurrent calls for the same
// file and type are serialized, so a module never runs twice.
func (c *ModuleCache) FileLoad(file, typeName string, inj Injections, loader ModuleLoader) (any, error) {
	e := c.entry(file, typeName)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		c.hits.Inc()
		return Loaded, nil
	}

	c.loads.Inc()
	v, err := loader.Load(file, inj)
	if err != nil {
		return nil, err
	}
	if typeName != "" && c.types.Has(typeName) {
		e.loaded = true
	}
	return v, nil
}

// IsLoaded returns true if file registered the handler type typeName.
func (c *ModuleCache) IsLoaded(file, typeName string) bool {
	c.mu.Lock()
	e, ok := c.files[entryKey(file, typeName)]
	c.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loaded
}

// Stats returns a snapshot of the cache counters.
func (c *ModuleCache) Stats() CacheStats {
	return CacheStats{
		Loads: c.loads.Load(),
		Hits:  c.hits.Load(),
	}
}
