package coerce

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	unsetStrings  = []string{"", "undefined"}
	falsyStrings  = []string{"0", "false", "none", "null", "n/a", "[]", "{}", "f", "off"}
	listSeparator = regexp.MustCompile(`,|;`)
)

// ParseKind converts a declared type tag into a Kind. An empty tag means String.
func ParseKind(s string) (Kind, error) {
	if s == "" {
		return String, nil
	}
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Stringify renders a resolved value in its stored string form.
// Strings are kept verbatim; json values are JSON-encoded and everything else
// goes through the generic scalar conversion.
func Stringify(v any, kind Kind) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	if kind == JSON {
		raw, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode json value: %w", err)
		}
		return string(raw), nil
	}
	return Format(v), nil
}

// Format converts a scalar to its canonical string.
func Format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Encodable replaces NaN and infinite numbers, which encoding/json rejects,
// with their textual form. Other values are returned unchanged.
func Encodable(v any) any {
	if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		return formatFloat(f)
	}
	return v
}

// ParseNumber parses s as a numeric literal. Surrounding whitespace is
// ignored and a blank string is zero. Anything unparseable yields NaN.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X', 'o', 'O', 'b', 'B':
			n, err := strconv.ParseUint(s, 0, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}

	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ParseBool classifies s against closed sets: an unset value returns def,
// a listed falsy value returns false and any other value returns true.
func ParseBool(s string, def bool) bool {
	s = strings.ToLower(s)
	if slices.Contains(unsetStrings, s) {
		return def
	}
	if slices.Contains(falsyStrings, s) {
		return false
	}
	return true
}

// Split breaks s on sep, or on commas and semicolons when sep is nil.
// Parts are neither trimmed nor deduplicated.
func Split(s string, sep *regexp.Regexp) []string {
	if sep == nil {
		sep = listSeparator
	}
	return sep.Split(s, -1)
}

// DecodeJSON parses s as JSON text.
func DecodeJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return v, nil
}

// IsFalsy reports whether a decoded JSON value is null, false, zero or an empty string.
func IsFalsy(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case bool:
		return !val
	case float64:
		return val == 0 || math.IsNaN(val)
	case string:
		return val == ""
	}
	return false
}
