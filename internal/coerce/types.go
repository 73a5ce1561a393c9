package coerce

// Kind is the declared type tag of a registered variable.
type Kind string

const (
	String  Kind = "string"
	Number  Kind = "number"
	Boolean Kind = "boolean"
	JSON    Kind = "json"
)

// IsValid reports whether k is one of the known kinds.
func (k Kind) IsValid() bool {
	switch k {
	case String, Number, Boolean, JSON:
		return true
	}
	return false
}

// String returns the tag as written in declarations.
func (k Kind) String() string {
	return string(k)
}
