package controlpath

import (
	"fmt"
)

var reservedInjections = [...]string{InjectShare, InjectFlow, InjectDispatcher}

func validateInjections(inj Injections) error {
	for k := range inj {
		if k == "" {
			return fmt.Errorf("%w: empty injection name", ErrInvalidOptions)
		}
		for _, r := range reservedInjections {
			if k == r {
				return fmt.Errorf("%w: injection %q is reserved", ErrInvalidOptions, k)
			}
		}
	}
	return nil
}

// Value returns the injection named key of the flow running a handler.
func Value(inj Injections, key string) any {
	if inj == nil {
		return nil
	}
	return inj[key]
}
