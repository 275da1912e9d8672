package argv

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// aliasSeparator splits "--user|-u" into its aliases
const aliasSeparator = "|"

// Parameter is a declared named slot: a positional argument or a dash-prefixed option
type Parameter struct {
	names       []string // aliases as declared, options keep their dashes
	typ         ParameterType
	description string
	required    bool
	def         Value
	hasDefault  bool
	negatable   bool
	isArg       bool
}

// ParameterOption configures a Parameter at declaration time
type ParameterOption func(*Parameter) error

// Required marks the parameter as mandatory
func Required() ParameterOption {
	return func(p *Parameter) error {
		p.required = true
		return nil
	}
}

// Default sets the value used when the parameter is not supplied
func Default(value any) ParameterOption {
	return func(p *Parameter) error {
		v, err := ValueOf(value)
		if err != nil {
			return declarationErrorf(p.Name(), "Default value of %q: %v.", p.Name(), err)
		}
		p.def, p.hasDefault = v, !v.IsNull()
		return nil
	}
}

// Negatable additionally recognizes --no-<name> forcing the option to false
func Negatable() ParameterOption {
	return func(p *Parameter) error {
		p.negatable = true
		return nil
	}
}

func newParameter(names []string, typ ParameterType, description string, opts ...ParameterOption) (*Parameter, error) {
	if len(names) == 0 || names[0] == "" {
		return nil, declarationErrorf("", "Parameter name cannot be empty.")
	}
	if !typ.valid() {
		return nil, declarationErrorf(names[0], "Unknown type for %q.", names[0])
	}

	p := &Parameter{
		names:       names,
		typ:         typ,
		description: description,
		isArg:       !strings.HasPrefix(names[0], "-"),
	}

	if err := p.checkNames(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if err := p.check(); err != nil {
		return nil, err
	}
	p.normalizeDefault()

	return p, nil
}

// splitNames turns a declaration string into its aliases
func splitNames(name string) ([]string, error) {
	if !strings.Contains(name, aliasSeparator) {
		return []string{strings.TrimSpace(name)}, nil
	}

	parts := strings.Split(name, aliasSeparator)
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "-") {
			return nil, declarationErrorf(part,
				"Invalid option name %q in %q, multiple names are only allowed for options.", part, name)
		}
		names = append(names, part)
	}
	return names, nil
}

func (p *Parameter) checkNames() error {
	if p.isArg {
		if len(p.names) != 1 {
			return declarationErrorf(p.names[0], "Argument %q must have exactly one name.", p.names[0])
		}
		if strings.IndexFunc(p.names[0], invalidNameRune) >= 0 {
			return declarationErrorf(p.names[0], "Invalid argument name %q.", p.names[0])
		}
		return nil
	}

	for _, n := range p.names {
		if !strings.HasPrefix(n, "-") {
			return declarationErrorf(n, "Invalid option name %q.", n)
		}
		bare := strings.TrimLeft(n, "-")
		switch {
		case bare == "", strings.IndexFunc(bare, invalidNameRune) >= 0:
			return declarationErrorf(n, "Invalid option name %q.", n)
		case strings.HasPrefix(n, "---"):
			return declarationErrorf(n, "Invalid option name %q.", n)
		case !strings.HasPrefix(n, "--") && utf8.RuneCountInString(bare) > 1:
			// Only shortcuts may use a single dash
			return declarationErrorf(n, "Invalid option name %q.", n)
		}
	}
	return nil
}

func invalidNameRune(r rune) bool {
	return unicode.IsSpace(r) || r == '=' || r == '|'
}

// check enforces the per-parameter invariants
func (p *Parameter) check() error {
	name := p.Name()

	if p.isArg {
		if p.negatable {
			return declarationErrorf(name, "Argument %q cannot be negatable.", name)
		}
		if p.typ == TypeBoolean || p.typ == TypeLevel {
			return declarationErrorf(name, "Argument %q cannot be type: %s.", name, p.typ)
		}
	} else if p.negatable && p.required {
		return declarationErrorf(name, "Negatable option %q cannot be required.", name)
	}

	if !p.hasDefault {
		return nil
	}
	if p.required {
		return declarationErrorf(name, "Default value of %q cannot be set when required is true.", name)
	}

	switch p.typ {
	case TypeArray:
		if p.def.Kind() != KindArray {
			return declarationErrorf(name, "Default value of %q must be an array.", name)
		}
	case TypeString:
		if p.def.Kind() != KindString {
			return declarationErrorf(name, "Default value of %q must be of type %s.", name, p.typ)
		}
	case TypeInt, TypeLevel:
		if p.def.Kind() != KindInt {
			return declarationErrorf(name, "Default value of %q must be of type %s.", name, p.typ)
		}
	case TypeFloat, TypeNumeric:
		if p.def.Kind() != KindFloat && p.def.Kind() != KindInt {
			return declarationErrorf(name, "Default value of %q must be of type %s.", name, p.typ)
		}
	case TypeBoolean:
		if p.def.Kind() != KindBool {
			return declarationErrorf(name, "Default value of %q must be of type %s.", name, p.typ)
		}
	}
	return nil
}

// normalizeDefault stores numeric defaults in their cast representation
func (p *Parameter) normalizeDefault() {
	if !p.hasDefault {
		return
	}
	if i, ok := p.def.Int(); ok && (p.typ == TypeFloat || p.typ == TypeNumeric) {
		p.def = Float(float64(i))
	}
}

// Name returns the primary name: the first alias without leading dashes.
// Parsed values are keyed by this name.
func (p *Parameter) Name() string {
	return strings.TrimLeft(p.names[0], "-")
}

// Names returns every alias as declared
func (p *Parameter) Names() []string {
	return slices.Clone(p.names)
}

// Type returns the declared value type
func (p *Parameter) Type() ParameterType { return p.typ }

// Description returns the help text
func (p *Parameter) Description() string { return p.description }

// Required reports whether the parameter must be supplied
func (p *Parameter) Required() bool { return p.required }

// Negatable reports whether --no-<name> is recognized
func (p *Parameter) Negatable() bool { return p.negatable }

// Default returns the declared default value, if any
func (p *Parameter) Default() (Value, bool) { return p.def, p.hasDefault }

// IsArgument reports whether the parameter is positional
func (p *Parameter) IsArgument() bool { return p.isArg }

// IsOption reports whether the parameter is dash-prefixed
func (p *Parameter) IsOption() bool { return !p.isArg }

// IsArray reports whether the parameter accumulates a sequence
func (p *Parameter) IsArray() bool { return p.typ == TypeArray }

// IsLevel reports whether the parameter counts occurrences
func (p *Parameter) IsLevel() bool { return p.typ == TypeLevel }

// IsBoolean reports whether the parameter is a switch
func (p *Parameter) IsBoolean() bool { return p.typ == TypeBoolean }

// AcceptsValue reports whether the option takes a value from the command line
func (p *Parameter) AcceptsValue() bool {
	return p.typ != TypeBoolean && p.typ != TypeLevel && !p.negatable
}

// SetRequired changes the required flag, rejecting combinations that break the invariants
func (p *Parameter) SetRequired(required bool) error {
	prev := p.required
	p.required = required
	if err := p.check(); err != nil {
		p.required = prev
		return err
	}
	return nil
}

// SetDefault changes the default value; nil removes it
func (p *Parameter) SetDefault(value any) error {
	prev, prevHas := p.def, p.hasDefault
	if err := Default(value)(p); err != nil {
		return err
	}
	if err := p.check(); err != nil {
		p.def, p.hasDefault = prev, prevHas
		return err
	}
	p.normalizeDefault()
	return nil
}

// SetNegatable toggles --no-<name> support
func (p *Parameter) SetNegatable(negatable bool) error {
	prev := p.negatable
	p.negatable = negatable
	if err := p.check(); err != nil {
		p.negatable = prev
		return err
	}
	return nil
}
