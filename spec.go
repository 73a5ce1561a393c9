package envs

import (
	"strconv"

	"github.com/eugenenazirov/envs/internal/coerce"
)

// Type is the declared value type of a variable.
type Type = coerce.Kind

// Supported variable types.
const (
	TypeString  = coerce.String
	TypeNumber  = coerce.Number
	TypeBoolean = coerce.Boolean
	TypeJSON    = coerce.JSON
)

// Spec declares a variable. It is either a full Options record or one of the
// shorthand values StringValue, NumberValue and BoolValue.
type Spec interface {
	options() Options
}

// Options is the full declaration of a variable.
type Options struct {
	// Default is used when neither the ambient environment nor Env supplies a value.
	Default any
	// Env holds per-environment values keyed by environment name.
	Env map[string]any
	// Required fails registration when no value resolves. Defaults to true.
	Required *bool
	// Override lets an ambient variable of the same name take precedence.
	// Defaults to true.
	Override *bool
	// CheckDuplicate logs a warning when the key is already registered.
	// Defaults to true.
	CheckDuplicate *bool
	// Type selects the accessor used by Get. Defaults to TypeString.
	Type Type
}

func (o Options) options() Options { return o }

// StringValue declares a string variable with the given default.
type StringValue string

func (v StringValue) options() Options {
	return Options{Default: string(v), Type: TypeString}
}

// NumberValue declares a number variable with the given default.
type NumberValue float64

func (v NumberValue) options() Options {
	return Options{Default: coerce.Format(float64(v)), Type: TypeNumber}
}

// BoolValue declares a boolean variable with the given default.
type BoolValue bool

func (v BoolValue) options() Options {
	return Options{Default: strconv.FormatBool(bool(v)), Type: TypeBoolean}
}

// Bool returns a pointer to v, for the flag fields of Options.
func Bool(v bool) *bool {
	return &v
}

func normalize(spec Spec) Options {
	if spec == nil {
		return Options{}
	}
	return spec.options()
}

func flagOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
