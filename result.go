package controlpath

import "reflect"

// Kind classifies the outcome of a single flow step.
type Kind uint8

const (
	// KindTrivial means the step ran but produced nothing worth recording.
	KindTrivial Kind = iota
	// KindStop means a handler returned false and the flow ended.
	KindStop
	// KindValue means a handler produced a value; it is in Result.Value.
	KindValue
	// KindDone means the flow had already ended and no step ran.
	KindDone
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindTrivial:
		return "trivial"
	case KindStop:
		return "stop"
	case KindValue:
		return "value"
	case KindDone:
		return "done"
	default:
		return "unknown"
	}
}

// Result is the outcome of Flow.Next.
type Result struct {
	Kind  Kind
	Value any
}

var (
	trivialResult = Result{Kind: KindTrivial, Value: true}
	stopResult    = Result{Kind: KindStop, Value: false}
	doneResult    = Result{Kind: KindDone}
)

// IsValue returns true if the step produced a user-visible value.
func (r Result) IsValue() bool {
	return r.Kind == KindValue
}

// invocable reports whether a module result must be called before use.
func invocable(v any) bool {
	if v == nil {
		return false
	}
	if _, ok := v.(Member); ok {
		return true
	}
	return reflect.TypeOf(v).Kind() == reflect.Func
}

func trivial(v any) bool {
	if v == nil {
		return true
	}
	_, ok := v.(loadedSentinel)
	return ok
}
