package coerce

import "errors"

var (
	// ErrUnknownKind indicates a type tag outside string, number, boolean and json.
	ErrUnknownKind = errors.New("unknown variable type")
	// ErrInvalidJSON indicates a stored value declared as json is not valid JSON text.
	ErrInvalidJSON = errors.New("invalid JSON value")
)
