package controlpath

import (
	"fmt"
	"io/fs"
	"sync"
)

// ModuleLoader executes handler module files.
type ModuleLoader interface {
	// Extension is appended to section and page names to build file names.
	Extension() string

	// Exists reports whether file can be loaded.
	Exists(file string) bool

	// Load executes file with the given injections and returns what the
	// module produced: a plain value, a callable, or nil.
	Load(file string, inj Injections) (any, error)
}

// ModuleFunc is the body of an in-process module.
type ModuleFunc func(inj Injections) (any, error)

// Modules is a ModuleLoader over module bodies compiled into the program,
// keyed by the file path the dispatcher computes for them.
//
//	mods := controlpath.NewModules().
//		Add("app/Controller.go", func(inj controlpath.Injections) (any, error) {
//			return nil, inj.Flow().Define("Controller", newRootController)
//		})
type Modules struct {
	// Ext is the file extension, ".go" by default.
	Ext string

	mu    sync.RWMutex
	files map[string]ModuleFunc
	runs  map[string]int
}

// NewModules creates an empty module table.
func NewModules() *Modules {
	return &Modules{
		Ext:   ".go",
		files: make(map[string]ModuleFunc),
		runs:  make(map[string]int),
	}
}

// Add registers the body of file.
func (m *Modules) Add(file string, fn ModuleFunc) *Modules {
	if fn == nil {
		panic("module body must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[file] = fn
	return m
}

// Extension implements ModuleLoader.Extension.
func (m *Modules) Extension() string {
	return m.Ext
}

// Exists implements ModuleLoader.Exists.
func (m *Modules) Exists(file string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.files[file]
	return ok
}

// Load implements ModuleLoader.Load.
func (m *Modules) Load(file string, inj Injections) (any, error) {
	m.mu.Lock()
	fn, ok := m.files[file]
	if ok {
		m.runs[file]++
	}
	m.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("controlpath: module %s: %w", file, fs.ErrNotExist)
	}
	return fn(inj)
}

// Executions returns how many times file has been executed.
func (m *Modules) Executions(file string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runs[file]
}
