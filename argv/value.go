package argv

import (
	"fmt"
	"slices"
	"strconv"
)

// Kind tags the shape held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
)

// String returns a lower-case name for the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a parsed parameter value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  int
	flt  float64
	flag bool
	list []string
}

// Null returns the null value
func Null() Value { return Value{} }

// String returns a string value
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int returns an integer value
func Int(i int) Value { return Value{kind: KindInt, num: i} }

// Float returns a floating point value
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool returns a boolean value
func Bool(b bool) Value { return Value{kind: KindBool, flag: b} }

// Array returns a sequence value holding a copy of items
func Array(items ...string) Value {
	return Value{kind: KindArray, list: append(make([]string, 0, len(items)), items...)}
}

// ValueOf converts a plain Go value into a Value.
// Supported inputs: nil, string, int family, float32/64, bool, []string and Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(int(x)), nil
	case int16:
		return Int(int(x)), nil
	case int32:
		return Int(int(x)), nil
	case int64:
		return Int(int(x)), nil
	case uint:
		return Int(int(x)), nil
	case uint8:
		return Int(int(x)), nil
	case uint16:
		return Int(int(x)), nil
	case uint32:
		return Int(int(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case bool:
		return Bool(x), nil
	case []string:
		return Array(x...), nil
	default:
		return Null(), fmt.Errorf("unsupported value type %T", v)
	}
}

// Kind returns the tag of the value
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Int returns the integer payload
func (v Value) Int() (int, bool) { return v.num, v.kind == KindInt }

// Float returns the float payload
func (v Value) Float() (float64, bool) { return v.flt, v.kind == KindFloat }

// Bool returns the boolean payload
func (v Value) Bool() (bool, bool) { return v.flag, v.kind == KindBool }

// Strings returns the sequence payload. The slice must be treated as read-only.
func (v Value) Strings() ([]string, bool) { return v.list, v.kind == KindArray }

// Interface exports the value as nil, string, int, float64, bool or []string
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.flag
	case KindArray:
		return slices.Clone(v.list)
	case KindNull:
		return nil
	default:
		return nil
	}
}

// Equal reports whether both values have the same kind and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindFloat:
		return v.flt == o.flt
	case KindBool:
		return v.flag == o.flag
	case KindArray:
		return slices.Equal(v.list, o.list)
	case KindNull:
		return true
	default:
		return false
	}
}

// Text renders the value the way it would appear on a command line or in help output
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.Itoa(v.num)
	case KindFloat:
		return strconv.FormatFloat(v.flt, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.flag)
	case KindArray:
		return fmt.Sprintf("%q", v.list)
	case KindNull:
		return "null"
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (v Value) String() string {
	if v.kind == KindString {
		return strconv.Quote(v.str)
	}
	return v.Text()
}

// appendItem returns a sequence with s appended, creating one from a non-array value
func (v Value) appendItem(s string) Value {
	if v.kind != KindArray {
		return Array(s)
	}
	v.list = append(slices.Clip(v.list), s)
	return v
}
