package argv

// ParameterType represents the value type of a declared parameter
type ParameterType int

const (
	// TypeString keeps the raw token.
	TypeString ParameterType = iota
	// TypeInt accepts integers only ("12.5" is rejected).
	TypeInt
	// TypeFloat accepts floats whose text round-trips exactly.
	TypeFloat
	// TypeNumeric accepts any numeric-looking value and yields a float64.
	TypeNumeric
	// TypeBoolean is a switch; presence means true.
	TypeBoolean
	// TypeLevel counts how many times the option appeared.
	TypeLevel
	// TypeArray collects every occurrence into an ordered sequence.
	TypeArray
)

// String returns the upper-case type name used in error messages
func (t ParameterType) String() string {
	switch t {
	case TypeString:
		return "STRING"
	case TypeInt:
		return "INT"
	case TypeFloat:
		return "FLOAT"
	case TypeNumeric:
		return "NUMERIC"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeLevel:
		return "LEVEL"
	case TypeArray:
		return "ARRAY"
	default:
		return "UNKNOWN"
	}
}

// valid reports whether t is one of the declared constants
func (t ParameterType) valid() bool {
	return t >= TypeString && t <= TypeArray
}
