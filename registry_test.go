package controlpath

import (
	"errors"
	"reflect"
	"testing"
)

func TestTypeRegistry(t *testing.T) {
	r := NewTypeRegistry()

	factory := func() Handler { return NewHandler() }
	if err := r.Define("App.b", factory); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := r.Define("App.a", factory); err != nil {
		t.Fatalf("define: %v", err)
	}

	if err := r.Define("App.a", factory); !errors.Is(err, ErrTypeExists) {
		t.Errorf("expected ErrTypeExists, got %v", err)
	}
	if err := r.Define("App.c", "not a func"); !errors.Is(err, ErrInvalidFactory) {
		t.Errorf("expected ErrInvalidFactory, got %v", err)
	}
	if err := r.Define("", factory); !errors.Is(err, ErrInvalidFactory) {
		t.Errorf("expected ErrInvalidFactory for empty name, got %v", err)
	}
	if err := r.Define("App.d", nil); !errors.Is(err, ErrInvalidFactory) {
		t.Errorf("expected ErrInvalidFactory for nil, got %v", err)
	}

	if !r.Has("App.a") || r.Has("App.c") {
		t.Error("unexpected Has result")
	}
	if _, ok := r.Lookup("App.b"); !ok {
		t.Error("lookup failed")
	}
	if got := r.List(); !reflect.DeepEqual(got, []string{"App.a", "App.b"}) {
		t.Errorf("unexpected list %v", got)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 types, got %d", r.Len())
	}
}
