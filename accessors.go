package envs

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/eugenenazirov/envs/internal/coerce"
)

// Get returns the value of key converted according to its declared type:
// string, float64, bool, or a decoded JSON value. An unregistered key returns
// defaultVal (nil when omitted).
func (r *Registry) Get(key string, defaultVal ...any) (any, error) {
	entry, ok := r.store.Get(key)
	if !ok {
		return firstOr(defaultVal, nil), nil
	}

	switch entry.Type {
	case TypeString:
		return r.GetByString(key), nil
	case TypeNumber:
		return r.GetByNumber(key), nil
	case TypeBoolean:
		return r.GetByBoolean(key), nil
	case TypeJSON:
		return r.GetByJSON(key, nil)
	}
	return firstOr(defaultVal, nil), nil
}

// GetByString returns the raw stored value, or defaultVal ("" when omitted)
// for an unregistered key.
func (r *Registry) GetByString(key string, defaultVal ...string) string {
	if entry, ok := r.store.Get(key); ok {
		return entry.Value
	}
	return firstOr(defaultVal, "")
}

// ListOption configures GetByStringList.
type ListOption func(*listOptions)

type listOptions struct {
	separator   *regexp.Regexp
	defaultFunc func() []string
}

// WithSeparator splits on a literal separator.
func WithSeparator(sep string) ListOption {
	return func(o *listOptions) {
		o.separator = regexp.MustCompile(regexp.QuoteMeta(sep))
	}
}

// WithSeparatorRegexp splits on every match of re.
func WithSeparatorRegexp(re *regexp.Regexp) ListOption {
	return func(o *listOptions) {
		o.separator = re
	}
}

// WithDefaultFunc supplies the result for a blank value.
func WithDefaultFunc(fn func() []string) ListOption {
	return func(o *listOptions) {
		o.defaultFunc = fn
	}
}

// GetByStringList splits the value of key on commas and semicolons, or on the
// configured separator. Parts are returned in order, untrimmed. A blank value
// yields the default func's result or an empty slice.
func (r *Registry) GetByStringList(key string, opts ...ListOption) []string {
	var o listOptions
	for _, opt := range opts {
		opt(&o)
	}

	str := r.GetByString(key)
	if strings.TrimSpace(str) == "" {
		if o.defaultFunc != nil {
			return o.defaultFunc()
		}
		return []string{}
	}
	return coerce.Split(str, o.separator)
}

// GetByNumber parses the value of key as a number. An empty value returns
// defaultVal when given. A value that is not numeric returns NaN, so callers
// must check with math.IsNaN.
func (r *Registry) GetByNumber(key string, defaultVal ...float64) float64 {
	str := r.GetByString(key)
	if str == "" {
		return firstOr(defaultVal, math.NaN())
	}
	return coerce.ParseNumber(str)
}

// GetByBoolean classifies the value of key. "" and "undefined" return
// defaultVal (false when omitted). "0", "false", "none", "null", "n/a", "[]",
// "{}", "f" and "off", in any case, return false. Anything else is true.
func (r *Registry) GetByBoolean(key string, defaultVal ...bool) bool {
	return coerce.ParseBool(r.GetByString(key), firstOr(defaultVal, false))
}

// GetByJSON decodes the value of key as JSON. An empty value, or one that
// decodes to null, false, 0 or "", returns defaultVal; a nil defaultVal
// becomes an empty object. Malformed JSON returns an error wrapping
// ErrInvalidJSON.
func (r *Registry) GetByJSON(key string, defaultVal any) (any, error) {
	if defaultVal == nil {
		defaultVal = map[string]any{}
	}

	str := r.GetByString(key)
	if str == "" {
		return defaultVal, nil
	}

	v, err := coerce.DecodeJSON(str)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if coerce.IsFalsy(v) {
		return defaultVal, nil
	}
	return v, nil
}

// DecodeJSON unmarshals the value of key into target. An empty value leaves
// target untouched.
func (r *Registry) DecodeJSON(key string, target any) error {
	str := r.GetByString(key)
	if str == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(str), target); err != nil {
		return fmt.Errorf("%s: %w: %v", key, ErrInvalidJSON, err)
	}
	return nil
}

func firstOr[T any](vals []T, def T) T {
	if len(vals) > 0 {
		return vals[0]
	}
	return def
}
