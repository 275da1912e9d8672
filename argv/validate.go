package argv

import (
	"regexp"
	"strconv"
	"strings"
)

// numericPattern accepts optional surrounding whitespace, a sign, a decimal
// mantissa and an optional exponent: " 12", "-1.5", ".5", "1e3".
var numericPattern = regexp.MustCompile(`^\s*[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?\s*$`)

// IsNumeric reports whether s looks like a number
func IsNumeric(s string) bool {
	return numericPattern.MatchString(s)
}

// validate checks a supplied value against the parameter type
func validate(param *Parameter, value Value) error {
	if value.IsNull() {
		if param.Required() {
			return missingError(param)
		}
		return nil
	}

	var ok bool
	switch param.Type() {
	case TypeInt:
		ok = validInt(value)
	case TypeFloat:
		ok = validFloat(value)
	case TypeNumeric:
		ok = validNumeric(value)
	case TypeBoolean:
		ok = validBoolean(value)
	case TypeArray:
		ok = value.Kind() == KindArray
	case TypeString, TypeLevel:
		ok = true
	}

	if !ok {
		pe := newParseError(ErrorTypeInvalidValue, "Invalid value type for %q. Expected %s.", param.Name(), param.Type())
		pe.Parameter = param.Name()
		pe.Token = value.Text()
		return pe
	}
	return nil
}

// validInt requires the exact decimal form: "12" passes, "12.5", "+12" and "012" do not
func validInt(value Value) bool {
	if _, ok := value.Int(); ok {
		return true
	}
	s, ok := value.Str()
	if !ok || !IsNumeric(s) {
		return false
	}
	n, err := strconv.Atoi(s)
	return err == nil && strconv.Itoa(n) == s
}

// validFloat requires the shortest decimal form: "1.5" and "2" pass, "1.50" does not
func validFloat(value Value) bool {
	switch value.Kind() {
	case KindFloat, KindInt:
		return true
	case KindString:
	default:
		return false
	}
	s, _ := value.Str()
	if !IsNumeric(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && strconv.FormatFloat(f, 'f', -1, 64) == s
}

func validNumeric(value Value) bool {
	switch value.Kind() {
	case KindFloat, KindInt:
		return true
	case KindString:
		s, _ := value.Str()
		return IsNumeric(s)
	default:
		return false
	}
}

func validBoolean(value Value) bool {
	if _, ok := value.Bool(); ok {
		return true
	}
	s, ok := value.Str()
	return ok && (s == "1" || s == "0")
}

// castValue converts a validated value to the representation of the parameter type.
// Null stays null.
func castValue(param *Parameter, value Value) Value {
	if value.IsNull() {
		return value
	}

	switch param.Type() {
	case TypeInt, TypeLevel:
		if _, ok := value.Int(); ok {
			return value
		}
		if f, ok := value.Float(); ok {
			return Int(int(f))
		}
		s, _ := value.Str()
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		return Int(n)
	case TypeFloat, TypeNumeric:
		if f, ok := value.Float(); ok {
			return Float(f)
		}
		if n, ok := value.Int(); ok {
			return Float(float64(n))
		}
		s, _ := value.Str()
		f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return Float(f)
	case TypeBoolean:
		if b, ok := value.Bool(); ok {
			return Bool(b)
		}
		s, _ := value.Str()
		return Bool(s == "1")
	case TypeArray:
		if value.Kind() == KindArray {
			return value
		}
		return Array(value.Text())
	case TypeString:
		return value
	}
	return value
}
