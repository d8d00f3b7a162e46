package luamodule

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pedia/controlpath"
)

var app = map[string]string{
	"Controller.lua": `
local ctx = ...
executions = (executions or 0) + 1
ctx.define("Controller", {
	_always = function(c)
		c.share_set("who", "bob")
		return "bob"
	end,
	index = function(c) return "section index" end,
	count = function(c) return executions end,
	site = function(c) return c.get("site") end,
	token = function(c) return c.token end,
	_hidden = function(c) return "hidden" end,
})
`,
	"page2.lua": `return "sue"`,
	"page3.lua": `
return function(c)
	return c.share_get("who") .. "!"
end
`,
	"page4.lua": `
local ctx = ...
ctx.define("page4", {
	_always = function(c) return {1, 2, 3} end,
})
`,
	"list.lua": `return { name = "list", size = 2.5 }`,
	"broken.lua": `error("broken module")`,
	"shared.lua": `
local t = {1, 2}
return { a = t, b = t }
`,
	"cycle.lua": `
local t = { name = "cycle" }
t.self = t
return t
`,
	"sandbox.lua": `
if load == nil and loadstring == nil and dofile == nil and loadfile == nil then
	return "sandboxed"
end
return "open"
`,
	"section1/Controller.lua": `
return function(c)
	c.stop()
	return "moe"
end
`,
	"section1/page.lua": `return "unreachable"`,
	"section2/Controller.lua": `return false`,
	"section2/page.lua": `return "unreachable"`,
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for name, src := range files {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return root
}

func newDispatcher(t *testing.T) *controlpath.Dispatcher {
	t.Helper()

	l := New()
	t.Cleanup(l.Close)

	d, err := controlpath.New(writeTree(t, app), l, controlpath.Options{
		Inject: controlpath.Injections{"site": "example"},
	})
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d
}

func TestLuaModules(t *testing.T) {
	d := newDispatcher(t)

	tests := []struct {
		path string
		want []any
	}{
		{"/", []any{"bob", "section index"}},
		{"/page2", []any{"bob", "sue"}},
		{"/page3", []any{"bob", "bob!"}},
		{"/page4", []any{"bob", []any{int64(1), int64(2), int64(3)}}},
		{"/list", []any{"bob", map[string]any{"name": "list", "size": 2.5}}},
		{"/shared", []any{"bob", map[string]any{
			"a": []any{int64(1), int64(2)},
			"b": []any{int64(1), int64(2)},
		}}},
		{"/cycle", []any{"bob", map[string]any{"name": "cycle", "self": nil}}},
		{"/sandbox", []any{"bob", "sandboxed"}},
		{"/site", []any{"bob", "example"}},
		{"/token", []any{"bob", "token"}},
		// non-public member
		{"/_hidden", []any{"bob"}},
		{"/section1/page", []any{"bob", "moe"}},
		{"/section2/page", []any{"bob"}},
	}

	for _, tt := range tests {
		got, err := d.Load(tt.path, controlpath.StartOptions{})
		if err != nil {
			t.Fatalf("load %s: %v", tt.path, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("load %s: want %#v, got %#v", tt.path, tt.want, got)
		}
	}
}

func TestLuaModulesRunOnce(t *testing.T) {
	d := newDispatcher(t)

	for i := 0; i < 3; i++ {
		got, err := d.Load("/count", controlpath.StartOptions{})
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !reflect.DeepEqual(got, []any{"bob", int64(1)}) {
			t.Errorf("load %d: got %v", i, got)
		}
	}
	if !d.Cache().Types().Has("App.Control.Controller") {
		t.Errorf("types: %v", d.Cache().Types().List())
	}
}

func TestLuaModuleErrors(t *testing.T) {
	d := newDispatcher(t)

	if _, err := d.Load("/broken", controlpath.StartOptions{}); err == nil {
		t.Error("expected error from broken module")
	}
	if _, err := d.Load("/missing", controlpath.StartOptions{}); !errors.Is(err, controlpath.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := d.Load("/_always", controlpath.StartOptions{}); !errors.Is(err, controlpath.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLoaderClosed(t *testing.T) {
	l := New()
	root := writeTree(t, map[string]string{"index.lua": `return 1`})
	l.Close()
	l.Close()

	if !l.Exists(filepath.Join(root, "index.lua")) {
		t.Error("expected module to exist")
	}
	if l.Exists(root) {
		t.Error("directories are not modules")
	}
	if _, err := l.Load(filepath.Join(root, "index.lua"), nil); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
