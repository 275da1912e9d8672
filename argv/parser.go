package argv

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ef-ds/deque"
	"github.com/google/shlex"

	"github.com/snapcli/argv/internal/fuzzy"
	"github.com/snapcli/argv/internal/pool"
)

// suggestionDistance is the maximum edit distance for "did you mean" hints
const suggestionDistance = 2

// tokenQueues recycles token queues between Parse calls and parsers
var tokenQueues = pool.NewWithReset(deque.New, func(d *deque.Deque) {
	for d.Len() > 0 {
		d.PopFront()
	}
})

// Parser turns a token vector into a Result according to the declared parameters.
// A Parser is reusable but must not be used from several goroutines at once.
type Parser struct {
	*Registry

	// Working state, reset on every Parse
	tokens       *deque.Deque     // remaining tokens, FIFO
	values       map[string]Value // accumulated values keyed by primary name
	argIndex     int              // next positional slot
	parseOptions bool             // false once "--" was seen
}

// NewParser creates a parser with an empty registry
func NewParser() *Parser {
	return NewParserWithRegistry(NewRegistry())
}

// NewParserWithRegistry creates a parser over an existing registry
func NewParserWithRegistry(r *Registry) *Parser {
	if r == nil {
		r = NewRegistry()
	}
	return &Parser{Registry: r}
}

// Parse scans tokens and returns the typed values.
// tokens[0] is the program name and is skipped, as in os.Args.
func (p *Parser) Parse(tokens []string) (*Result, error) {
	p.reset()
	defer p.release()

	if len(tokens) > 1 {
		for _, t := range tokens[1:] {
			p.tokens.PushBack(t)
		}
	}

	// Main loop: single pass, left to right; handlers may consume look-ahead tokens
	for p.tokens.Len() > 0 {
		front, _ := p.tokens.PopFront()
		if err := p.parseToken(front.(string)); err != nil {
			return nil, err
		}
	}

	return p.finalize()
}

// ParseString splits line with shell quoting rules and parses it.
// line holds the arguments only, without the program name.
func (p *Parser) ParseString(line string) (*Result, error) {
	args, err := shlex.Split(line)
	if err != nil {
		pe := newParseError(ErrorTypeInvalidValue, "Cannot split command line: %v.", err)
		pe.Token = line
		return nil, pe
	}
	return p.Parse(append([]string{""}, args...))
}

// reset clears the working state for reuse
func (p *Parser) reset() {
	p.tokens = tokenQueues.Get()
	p.values = make(map[string]Value, p.Len())
	p.argIndex = 0
	p.parseOptions = true
}

// release hands the token queue back once Parse returns
func (p *Parser) release() {
	tokenQueues.Put(p.tokens)
	p.tokens = nil
}

// parseToken classifies a single token
func (p *Parser) parseToken(token string) error {
	// After "--" everything is positional
	if !p.parseOptions {
		return p.parseArgument(token)
	}

	switch {
	case token == "":
		return p.parseArgument(token)
	case token == "--":
		p.parseOptions = false
		return nil
	case strings.HasPrefix(token, "--"):
		return p.parseLongOption(token)
	case token[0] == '-' && token != "-":
		return p.parseShortOption(token)
	default:
		return p.parseArgument(token)
	}
}

// parseLongOption handles --name and --name=value
func (p *Parser) parseLongOption(token string) error {
	name, value, hasValue := strings.Cut(token[2:], "=")
	if !hasValue {
		return p.setOption(name, Null())
	}
	// "--name=" is an explicit empty value, no look-ahead
	return p.setOption(name, String(value))
}

// parseShortOption handles -x, -xVALUE and clustered -abc
func (p *Parser) parseShortOption(token string) error {
	rest := token[1:]
	if utf8.RuneCountInString(rest) == 1 {
		return p.setOption(rest, Null())
	}

	first, size := utf8.DecodeRuneInString(rest)
	if opt, ok := p.Option(string(first)); ok && opt.AcceptsValue() {
		// -uadmin
		return p.setOption(string(first), String(rest[size:]))
	}

	return p.parseShortOptionSet(rest)
}

// parseShortOptionSet walks a cluster of shortcuts. The first option that
// accepts a value takes the remainder of the cluster.
func (p *Parser) parseShortOptionSet(cluster string) error {
	for i := 0; i < len(cluster); {
		r, size := utf8.DecodeRuneInString(cluster[i:])
		name := string(r)
		next := i + size

		opt, ok := p.Option(name)
		if !ok {
			return p.unknownOptionError(name)
		}

		if opt.AcceptsValue() {
			if next >= len(cluster) {
				return p.setOption(name, Null())
			}
			return p.setOption(name, String(cluster[next:]))
		}

		if err := p.setOption(name, Null()); err != nil {
			return err
		}
		i = next
	}
	return nil
}

// parseArgument assigns a positional token
func (p *Parser) parseArgument(token string) error {
	if arg, ok := p.ArgumentAt(p.argIndex); ok {
		if arg.IsArray() {
			p.values[arg.Name()] = Array(token)
		} else {
			p.values[arg.Name()] = String(token)
		}
		p.argIndex++
		return nil
	}

	// Extra tokens overflow into a trailing array argument
	if last, ok := p.LastArgument(); ok && last.IsArray() {
		p.values[last.Name()] = p.values[last.Name()].appendItem(token)
		return nil
	}

	return p.unknownArgumentError(token)
}

// setOption stores a value for the option called name. A null value means
// "not given inline" and makes the option eligible for look-ahead.
func (p *Parser) setOption(name string, value Value) error {
	opt, ok := p.Option(name)
	if !ok {
		if target, found := strings.CutPrefix(name, "no-"); found {
			if neg, ok := p.Option(target); ok && neg.IsBoolean() && neg.Negatable() {
				p.values[neg.Name()] = Bool(false)
				return nil
			}
		}
		return p.unknownOptionError(name)
	}

	if !value.IsNull() && !opt.AcceptsValue() {
		pe := newParseError(ErrorTypeValueNotAccepted, "The %q option does not accept a value.", dashed(name))
		pe.Parameter, pe.Token = opt.Name(), dashed(name)
		return pe
	}

	if value.IsNull() && opt.AcceptsValue() && p.tokens.Len() > 0 {
		front, _ := p.tokens.Front()
		if next := front.(string); next == "" || !strings.HasPrefix(next, "-") {
			p.tokens.PopFront()
			value = String(next)
		}
	}

	// Bare presence of a switch means true
	if opt.IsBoolean() && value.IsNull() {
		value = Bool(true)
	}

	key := opt.Name()
	switch opt.Type() {
	case TypeArray:
		current, present := p.values[key]
		if s, ok := value.Str(); ok {
			p.values[key] = current.appendItem(s)
		} else if !present {
			p.values[key] = Array()
		}
	case TypeLevel:
		n, _ := p.values[key].Int()
		p.values[key] = Int(n + 1)
	case TypeString, TypeInt, TypeFloat, TypeNumeric, TypeBoolean:
		p.values[key] = value
	}

	return nil
}

// finalize applies required checks, defaults, validation and casting
func (p *Parser) finalize() (*Result, error) {
	result := newResult(p.Len())

	for _, param := range p.Parameters() {
		value, present := p.values[param.Name()]
		if !present {
			if param.Required() {
				return nil, missingError(param)
			}
			result.set(param.Name(), emptyValue(param))
			continue
		}

		if err := validate(param, value); err != nil {
			return nil, err
		}
		result.set(param.Name(), castValue(param, value))
	}

	return result, nil
}

// emptyValue is what an absent optional parameter resolves to
func emptyValue(param *Parameter) Value {
	if def, ok := param.Default(); ok {
		return def
	}
	switch param.Type() {
	case TypeArray:
		return Array()
	case TypeLevel:
		return Int(0)
	case TypeString, TypeInt, TypeFloat, TypeNumeric, TypeBoolean:
		return Bool(false)
	default:
		return Bool(false)
	}
}

func (p *Parser) unknownOptionError(name string) error {
	pe := newParseError(ErrorTypeUnknownOption, "The %q option does not exist.", dashed(name))
	pe.Token = dashed(name)
	if best := fuzzy.FindBest(name, p.optionNames(), suggestionDistance); best != "" {
		pe.Suggestion = dashed(best)
	}
	return pe
}

func (p *Parser) unknownArgumentError(token string) error {
	var pe *ParseError
	if len(p.args) == 0 {
		pe = newParseError(ErrorTypeUnknownArgument, "No arguments expected, got %q.", token)
	} else {
		names := make([]string, len(p.args))
		for i, a := range p.args {
			names[i] = fmt.Sprintf("%q", a.Name())
		}
		pe = newParseError(ErrorTypeUnknownArgument,
			"Too many arguments, expected arguments %s, got %q.", strings.Join(names, " "), token)
	}
	pe.Token = token
	return pe
}

func missingError(param *Parameter) error {
	var pe *ParseError
	if param.IsArgument() {
		pe = newParseError(ErrorTypeMissingRequired, "Required argument %q is missing.", param.Name())
	} else {
		pe = newParseError(ErrorTypeMissingRequired, "Required value for %q is missing.", param.Name())
	}
	pe.Parameter = param.Name()
	return pe
}

// dashed renders an option name the way a user would type it
func dashed(name string) string {
	if utf8.RuneCountInString(name) == 1 {
		return "-" + name
	}
	return "--" + name
}
