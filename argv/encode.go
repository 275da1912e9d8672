package argv

import "strings"

// Encode rebuilds a token vector that parses back to res under reg.
// The returned slice holds arguments only; prepend a program name before passing it to Parse.
//
// Options given without a value (null) are emitted bare after every other option,
// so the next token is always dash-prefixed or absent and look-ahead never applies.
// False for a non-negatable switch is skipped, as are positional values after
// the first absent argument.
func Encode(reg *Registry, res *Result) []string {
	var tokens, bare []string

	for _, opt := range reg.Options() {
		v, ok := res.Get(opt.Name())
		if !ok {
			continue
		}
		if v.IsNull() {
			bare = append(bare, spelling(opt))
			continue
		}
		tokens = append(tokens, encodeOption(opt, v)...)
	}
	tokens = append(tokens, bare...)

	var positional []string
	for _, arg := range reg.Arguments() {
		v, ok := res.Get(arg.Name())
		if !ok {
			break
		}
		if list, isList := v.Strings(); isList {
			positional = append(positional, list...)
			continue
		}
		if b, isBool := v.Bool(); isBool && !b {
			break
		}
		positional = append(positional, v.Text())
	}

	if len(positional) > 0 {
		tokens = append(tokens, "--")
		tokens = append(tokens, positional...)
	}
	return tokens
}

func encodeOption(opt *Parameter, v Value) []string {
	name := spelling(opt)

	switch opt.Type() {
	case TypeBoolean:
		b, _ := v.Bool()
		switch {
		case b:
			return []string{name}
		case opt.Negatable():
			return []string{"--no-" + opt.Name()}
		default:
			return nil
		}
	case TypeLevel:
		n, _ := v.Int()
		out := make([]string, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, name)
		}
		return out
	case TypeArray:
		list, _ := v.Strings()
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, withValue(name, item)...)
		}
		return out
	case TypeString, TypeInt, TypeFloat, TypeNumeric:
		// false is the not-provided value of a scalar option
		if b, isBool := v.Bool(); isBool && !b {
			return nil
		}
		return withValue(name, v.Text())
	}
	return nil
}

// spelling picks the long alias when one exists
func spelling(opt *Parameter) string {
	for _, n := range opt.names {
		if strings.HasPrefix(n, "--") {
			return n
		}
	}
	return opt.names[0]
}

// withValue attaches a value inline so look-ahead never applies.
// An empty value for a shortcut is passed as a separate empty token.
func withValue(name, value string) []string {
	switch {
	case strings.HasPrefix(name, "--"):
		return []string{name + "=" + value}
	case value == "":
		return []string{name, ""}
	default:
		return []string{name + value}
	}
}
