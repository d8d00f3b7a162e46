package controlpath

import "errors"

// Dispatch errors.
var (
	// ErrNotFound indicates the final segment resolved to neither a page
	// member nor a page module.
	ErrNotFound = errors.New("controlpath: not found")

	// ErrInvalidOptions indicates a malformed injection map was supplied.
	ErrInvalidOptions = errors.New("controlpath: invalid options")

	// ErrUnresolvable indicates a handler parameter could not be satisfied
	// from the injection map.
	ErrUnresolvable = errors.New("controlpath: unresolvable argument")

	// ErrInaccessible indicates an attempt to invoke a non-public member.
	ErrInaccessible = errors.New("controlpath: inaccessible member")

	// ErrTypeExists indicates a handler type name was defined twice.
	ErrTypeExists = errors.New("controlpath: handler type already defined")

	// ErrInvalidFactory indicates a handler factory is not a function or
	// did not produce a Handler.
	ErrInvalidFactory = errors.New("controlpath: invalid handler factory")
)

// NotFoundError reports the directory and segment that could not be resolved.
type NotFoundError struct {
	Path  string
	Token string
}

func (e *NotFoundError) Error() string {
	return "controlpath: not found: " + e.Path + e.Token
}

// Unwrap makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
