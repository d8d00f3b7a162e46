package controlpath

import (
	"fmt"
	"reflect"
	"sort"
)

// Entries every flow adds to its injection map.
const (
	InjectShare      = "share"
	InjectFlow       = "Flow"
	InjectDispatcher = "Dispatcher"
)

// Injections maps names to the values handlers may receive.
type Injections map[string]any

// Share is mutable scratch space shared by every handler of one dispatch.
type Share map[string]any

// Share returns the scratch space of the active flow.
func (inj Injections) Share() Share {
	s, _ := inj[InjectShare].(Share)
	return s
}

// Flow returns the active flow.
func (inj Injections) Flow() *Flow {
	f, _ := inj[InjectFlow].(*Flow)
	return f
}

// Dispatcher returns the dispatcher that started the active flow.
func (inj Injections) Dispatcher() *Dispatcher {
	d, _ := inj[InjectDispatcher].(*Dispatcher)
	return d
}

func (inj Injections) keys() []string {
	keys := make([]string, 0, len(inj))
	for k := range inj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolver invokes callables, resolving their parameters from an injection map.
type Resolver interface {
	// Call invokes target, which is a function or a Member. Calling a
	// non-public Member fails with ErrInaccessible; a parameter that cannot
	// be satisfied fails with ErrUnresolvable.
	Call(target any, inj Injections) (any, error)
}

var (
	injectionsType = reflect.TypeOf(Injections(nil))
	errorType      = reflect.TypeOf((*error)(nil)).Elem()
)

// Injector is the default Resolver. Parameters are matched by type: a
// parameter of type Injections receives the whole map, any other parameter
// receives the single entry of exactly that type, or failing that the single
// entry assignable to it.
//
// The first non-error result is returned as the value; a non-nil error
// result is returned as the error.
type Injector struct{}

// Call implements Resolver.Call.
func (Injector) Call(target any, inj Injections) (any, error) {
	if m, ok := target.(Member); ok {
		if !m.Public {
			return nil, fmt.Errorf("%w: %s", ErrInaccessible, m.Name)
		}
		target = m.Fn
	}

	fn := reflect.ValueOf(target)
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return nil, fmt.Errorf("%w: %T is not callable", ErrUnresolvable, target)
	}

	ft := fn.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%w: variadic %s", ErrUnresolvable, ft)
	}

	args := make([]reflect.Value, ft.NumIn())
	for i := range args {
		arg, err := resolveArg(ft.In(i), inj)
		if err != nil {
			return nil, err
		}
		args[i] = arg
	}

	return results(fn.Call(args))
}

func resolveArg(t reflect.Type, inj Injections) (reflect.Value, error) {
	if t == injectionsType {
		return reflect.ValueOf(inj), nil
	}

	var exact, assignable []string
	for _, k := range inj.keys() {
		v := inj[k]
		if v == nil {
			continue
		}
		vt := reflect.TypeOf(v)
		switch {
		case vt == t:
			exact = append(exact, k)
		case vt.AssignableTo(t):
			assignable = append(assignable, k)
		}
	}

	candidates := exact
	if len(candidates) == 0 {
		candidates = assignable
	}

	switch len(candidates) {
	case 0:
		return reflect.Value{}, fmt.Errorf("%w: no injection of type %s", ErrUnresolvable, t)
	case 1:
		return reflect.ValueOf(inj[candidates[0]]), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: ambiguous injections %v for type %s", ErrUnresolvable, candidates, t)
}

func results(out []reflect.Value) (any, error) {
	var (
		value any
		seen  bool
	)
	for _, o := range out {
		if o.Type() == errorType {
			if !o.IsNil() {
				return nil, o.Interface().(error)
			}
			continue
		}
		if !seen {
			value = o.Interface()
			seen = true
		}
	}
	return value, nil
}
