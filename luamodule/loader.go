// Package luamodule loads controlpath handler modules written in Lua.
//
// A module file receives a context table as its chunk argument:
//
//	local ctx = ...
//	ctx.define("Controller", {
//		_always = function(c) return "layout" end,
//		about   = function(c) return "about " .. c.get("site") end,
//	})
//
// A module may return a value, false to stop the flow, or a function that
// the dispatcher invokes with a fresh context table. Members of a defined
// handler whose name starts with "_" (except "_always") are not public.
//
// The context table offers token, path, get(name), share_get(key),
// share_set(key, value), stop() and define(name, members).
package luamodule

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pedia/controlpath"
	lua "github.com/yuin/gopher-lua"
)

// Extension is the file extension of Lua modules.
const Extension = ".lua"

// ErrClosed is returned once the loader has been closed.
var ErrClosed = errors.New("luamodule: loader is closed")

// Loader is a controlpath.ModuleLoader executing Lua files in a single
// sandboxed state. Every Lua call holds the loader's lock, so flows driven
// from different goroutines take turns.
type Loader struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool
}

// New creates a loader with the base, table, string and math libraries.
func New() *Loader {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	return &Loader{L: L}
}

func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	// modules must not reach other files or compile code
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Close releases the Lua state.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.closed {
		l.closed = true
		l.L.Close()
	}
}

// Extension implements controlpath.ModuleLoader.Extension.
func (l *Loader) Extension() string {
	return Extension
}

// Exists implements controlpath.ModuleLoader.Exists.
func (l *Loader) Exists(file string) bool {
	fi, err := os.Stat(file)
	return err == nil && fi.Mode().IsRegular()
}

// Load implements controlpath.ModuleLoader.Load.
func (l *Loader) Load(file string, inj controlpath.Injections) (any, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrClosed
	}

	fn, err := l.L.LoadFile(file)
	if err != nil {
		return nil, fmt.Errorf("luamodule: %w", err)
	}

	ret, err := l.pcall(fn, inj)
	if err != nil {
		return nil, fmt.Errorf("luamodule: %s: %w", file, err)
	}
	return ret, nil
}

// pcall runs fn with a context table and converts its single result.
// The caller holds l.mu.
func (l *Loader) pcall(fn *lua.LFunction, inj controlpath.Injections) (ret any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := l.L.GetTop()
	l.L.Push(fn)
	l.L.Push(l.context(inj))
	if err := l.L.PCall(1, 1, nil); err != nil {
		l.L.SetTop(top)
		return nil, err
	}

	lv := l.L.Get(-1)
	l.L.SetTop(top)
	return l.toGo(lv), nil
}

// callable wraps a Lua function so the dispatcher can invoke it.
func (l *Loader) callable(fn *lua.LFunction) func(controlpath.Injections) (any, error) {
	return func(inj controlpath.Injections) (any, error) {
		l.mu.Lock()
		defer l.mu.Unlock()

		if l.closed {
			return nil, ErrClosed
		}
		return l.pcall(fn, inj)
	}
}

// factory builds handlers from a members table passed to ctx.define.
func (l *Loader) factory(members *lua.LTable) func() controlpath.Handler {
	return func() controlpath.Handler {
		l.mu.Lock()
		defer l.mu.Unlock()

		h := controlpath.NewHandler()
		members.ForEach(func(k, v lua.LValue) {
			name, ok := k.(lua.LString)
			fn, isFn := v.(*lua.LFunction)
			if !ok || !isFn {
				return
			}

			member := string(name)
			if member == controlpath.AlwaysHook || !strings.HasPrefix(member, "_") {
				h.Handle(member, l.callable(fn))
			} else {
				h.Hide(member, l.callable(fn))
			}
		})
		return h
	}
}

// context builds the table a chunk or handler function receives.
func (l *Loader) context(inj controlpath.Injections) *lua.LTable {
	L := l.L
	ctx := L.NewTable()

	if f := inj.Flow(); f != nil {
		ctx.RawSetString("token", lua.LString(f.Token()))
		ctx.RawSetString("path", lua.LString(f.Path()))
	}

	ctx.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
		L.Push(l.toLua(controlpath.Value(inj, L.CheckString(1))))
		return 1
	}))

	ctx.RawSetString("share_get", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		if share := inj.Share(); share != nil {
			L.Push(l.toLua(share[key]))
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))

	ctx.RawSetString("share_set", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		share := inj.Share()
		if share == nil {
			L.RaiseError("no share in this context")
			return 0
		}
		share[key] = l.toGo(L.Get(2))
		return 0
	}))

	ctx.RawSetString("stop", L.NewFunction(func(L *lua.LState) int {
		if f := inj.Flow(); f != nil {
			f.Stop()
		}
		return 0
	}))

	ctx.RawSetString("define", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		members := L.CheckTable(2)

		f := inj.Flow()
		if f == nil {
			L.RaiseError("define %s: no flow in this context", name)
			return 0
		}
		if err := f.Define(name, l.factory(members)); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}))

	return ctx
}
