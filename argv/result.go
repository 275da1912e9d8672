package argv

import (
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Result maps primary parameter names to typed values, in declaration order.
// Absent optional parameters are present with their default or empty value.
type Result struct {
	values *orderedmap.OrderedMap[string, Value]
}

func newResult(capacity int) *Result {
	return &Result{values: orderedmap.New[string, Value](capacity)}
}

func (r *Result) set(name string, v Value) {
	r.values.Set(name, v)
}

// Set overrides a value after parsing. Used by callers that post-process results.
func (r *Result) Set(name string, value any) error {
	v, err := ValueOf(value)
	if err != nil {
		return err
	}
	r.values.Set(normalizeName(name), v)
	return nil
}

// Get returns the value stored for name, with or without leading dashes
func (r *Result) Get(name string) (Value, bool) {
	return r.values.Get(normalizeName(name))
}

// Has reports whether name is part of the result
func (r *Result) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Value returns the value for name or null when unknown
func (r *Result) Value(name string) Value {
	v, _ := r.Get(name)
	return v
}

// Len returns the number of entries
func (r *Result) Len() int {
	return r.values.Len()
}

// Names returns the keys in declaration order
func (r *Result) Names() []string {
	names := make([]string, 0, r.values.Len())
	for pair := r.values.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Map exports the result as plain Go values
func (r *Result) Map() map[string]any {
	out := make(map[string]any, r.values.Len())
	for pair := r.values.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value.Interface()
	}
	return out
}

// String returns the string value of a parameter
func (r *Result) String(name string) (string, bool) {
	return r.Value(name).Str()
}

// Int returns the integer value of a parameter
func (r *Result) Int(name string) (int, bool) {
	return r.Value(name).Int()
}

// Float returns the float value of a parameter
func (r *Result) Float(name string) (float64, bool) {
	return r.Value(name).Float()
}

// Bool returns the boolean value of a parameter. Absent scalar options resolve to false.
func (r *Result) Bool(name string) (bool, bool) {
	return r.Value(name).Bool()
}

// Strings returns the sequence value of a parameter
func (r *Result) Strings(name string) ([]string, bool) {
	list, ok := r.Value(name).Strings()
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

// MustString returns the string value or def
func (r *Result) MustString(name, def string) string {
	if s, ok := r.String(name); ok {
		return s
	}
	return def
}

// MustInt returns the integer value or def
func (r *Result) MustInt(name string, def int) int {
	if n, ok := r.Int(name); ok {
		return n
	}
	return def
}

// MustFloat returns the float value or def
func (r *Result) MustFloat(name string, def float64) float64 {
	if f, ok := r.Float(name); ok {
		return f
	}
	return def
}

// MustBool returns the boolean value or def
func (r *Result) MustBool(name string, def bool) bool {
	if b, ok := r.Bool(name); ok {
		return b
	}
	return def
}

// MustStrings returns the sequence value or def
func (r *Result) MustStrings(name string, def []string) []string {
	if list, ok := r.Strings(name); ok {
		return list
	}
	return def
}
