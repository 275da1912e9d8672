package argv

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Registry holds declared parameters in declaration order
type Registry struct {
	params  *orderedmap.OrderedMap[string, *Parameter] // primary name -> parameter
	aliases map[string]*Parameter                      // every alias, dashes stripped
	args    []*Parameter                               // positional view, declaration order
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		params:  orderedmap.New[string, *Parameter](),
		aliases: make(map[string]*Parameter),
	}
}

// AddParameter declares a parameter. A name starting with "-" declares an option,
// "--user|-u" declares an option with two aliases, anything else declares an argument.
func (r *Registry) AddParameter(name string, typ ParameterType, description string, opts ...ParameterOption) (*Parameter, error) {
	names, err := splitNames(name)
	if err != nil {
		return nil, err
	}

	p, err := newParameter(names, typ, description, opts...)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := normalizeName(n)
		if _, taken := r.aliases[key]; taken || seen[key] {
			return nil, declarationErrorf(p.Name(), "Parameter name %q is already registered.", n)
		}
		seen[key] = true
	}

	for key := range seen {
		r.aliases[key] = p
	}
	r.params.Set(p.Name(), p)
	if p.IsArgument() {
		r.args = append(r.args, p)
	}

	return p, nil
}

// MustAddParameter is like AddParameter but panics on a declaration error
func (r *Registry) MustAddParameter(name string, typ ParameterType, description string, opts ...ParameterOption) *Parameter {
	p, err := r.AddParameter(name, typ, description, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Parameter looks up any parameter by one of its names
func (r *Registry) Parameter(name string) (*Parameter, bool) {
	p, ok := r.aliases[normalizeName(name)]
	return p, ok
}

// Argument looks up a positional parameter by name
func (r *Registry) Argument(name string) (*Parameter, bool) {
	p, ok := r.Parameter(name)
	if !ok || !p.IsArgument() {
		return nil, false
	}
	return p, true
}

// Option looks up an option by any alias, with or without leading dashes
func (r *Registry) Option(name string) (*Parameter, bool) {
	p, ok := r.Parameter(name)
	if !ok || !p.IsOption() {
		return nil, false
	}
	return p, true
}

// ArgumentAt returns the i-th positional parameter
func (r *Registry) ArgumentAt(i int) (*Parameter, bool) {
	if i < 0 || i >= len(r.args) {
		return nil, false
	}
	return r.args[i], true
}

// LastArgument returns the last declared positional parameter
func (r *Registry) LastArgument() (*Parameter, bool) {
	return r.ArgumentAt(len(r.args) - 1)
}

// Len returns the number of declared parameters
func (r *Registry) Len() int {
	return r.params.Len()
}

// Parameters returns every parameter in declaration order
func (r *Registry) Parameters() []*Parameter {
	out := make([]*Parameter, 0, r.params.Len())
	for pair := r.params.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Arguments returns the positional parameters in declaration order
func (r *Registry) Arguments() []*Parameter {
	out := make([]*Parameter, len(r.args))
	copy(out, r.args)
	return out
}

// Options returns the dash-prefixed parameters in declaration order
func (r *Registry) Options() []*Parameter {
	out := make([]*Parameter, 0, r.params.Len()-len(r.args))
	for pair := r.params.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IsOption() {
			out = append(out, pair.Value)
		}
	}
	return out
}

// optionNames lists every option alias without dashes, used for suggestions
func (r *Registry) optionNames() []string {
	var names []string
	for pair := r.params.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.IsArgument() {
			continue
		}
		for _, n := range pair.Value.names {
			names = append(names, normalizeName(n))
		}
	}
	return names
}

func normalizeName(name string) string {
	return strings.TrimLeft(name, "-")
}
