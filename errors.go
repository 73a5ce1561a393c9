package envs

import (
	"errors"

	"github.com/eugenenazirov/envs/internal/coerce"
)

var (
	// ErrMissingRequired indicates a required variable resolved to no value.
	ErrMissingRequired = errors.New("environment variable required")
	// ErrUnknownType indicates a declaration with an unsupported type tag.
	ErrUnknownType = coerce.ErrUnknownKind
	// ErrInvalidJSON indicates a json variable holds malformed JSON text.
	ErrInvalidJSON = coerce.ErrInvalidJSON
)

// MissingError reports the key of a required variable that could not be resolved.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return ErrMissingRequired.Error() + ": " + e.Key
}

func (e *MissingError) Unwrap() error {
	return ErrMissingRequired
}
