package luamodule

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// toGo converts a Lua value to a Go value. Functions become callables the
// dispatcher can invoke; integral numbers become int64. A table nested in
// itself converts to nil at the point of the cycle.
func (l *Loader) toGo(lv lua.LValue) any {
	return l.toGoVisited(lv, make(map[*lua.LTable]bool))
}

func (l *Loader) toGoVisited(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case nil:
		return nil
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LFunction:
		return l.callable(v)
	case *lua.LUserData:
		return v.Value
	case *lua.LTable:
		if visited[v] {
			return nil
		}
		visited[v] = true
		defer delete(visited, v)
		return l.tableToGo(v, visited)
	default:
		return nil
	}
}

// tableToGo converts a sequence to []any and anything else to map[string]any.
func (l *Loader) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	if n := t.MaxN(); n > 0 {
		count := 0
		t.ForEach(func(_, _ lua.LValue) { count++ })
		if count == n {
			arr := make([]any, n)
			for i := 1; i <= n; i++ {
				arr[i-1] = l.toGoVisited(t.RawGetInt(i), visited)
			}
			return arr
		}
	}

	m := make(map[string]any)
	t.ForEach(func(k, v lua.LValue) {
		var key string
		switch kv := k.(type) {
		case lua.LString:
			key = string(kv)
		case lua.LNumber:
			key = fmt.Sprintf("%v", float64(kv))
		default:
			key = k.String()
		}
		m[key] = l.toGoVisited(v, visited)
	})
	return m
}

// toLua converts a Go value to a Lua value. Values without a Lua
// counterpart are passed as userdata.
func (l *Loader) toLua(v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return val
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case []byte:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case []any:
		t := l.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, l.toLua(e))
		}
		return t
	case []string:
		t := l.L.NewTable()
		for i, e := range val {
			t.RawSetInt(i+1, lua.LString(e))
		}
		return t
	case map[string]any:
		t := l.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, l.toLua(e))
		}
		return t
	case map[string]string:
		t := l.L.NewTable()
		for k, e := range val {
			t.RawSetString(k, lua.LString(e))
		}
		return t
	default:
		ud := l.L.NewUserData()
		ud.Value = v
		return ud
	}
}
