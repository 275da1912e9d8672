package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/snapcli/argv/argv"
)

const (
	// helpIndent prefixes every table row and the usage line
	helpIndent = "  "
	// helpGutter separates the name column from the description column
	helpGutter = "  "
	// minDescriptionWidth keeps descriptions readable on narrow terminals
	minDescriptionWidth = 20
)

// ShowHelp writes the help text to stdout
func (c *Console) ShowHelp() {
	fmt.Fprint(c.io.Out(), c.HelpText())
}

// Synopsis returns the usage line without the "Usage:" title, e.g.
// "show-me [options...] [--] <name> [<age>]".
func (c *Console) Synopsis() string {
	parts := []string{c.name}

	options := c.Options()
	arguments := c.Arguments()
	if len(options) > 0 {
		parts = append(parts, "[options...]")
	}
	if len(options) > 0 && len(arguments) > 0 {
		parts = append(parts, "[--]")
	}
	for _, arg := range arguments {
		element := "<" + arg.Name() + ">"
		if arg.IsArray() {
			element += "..."
		}
		if !arg.Required() {
			element = "[" + element + "]"
		}
		parts = append(parts, element)
	}

	return strings.Join(parts, " ")
}

// HelpText renders header, description, usage, the argument and option tables and footer
func (c *Console) HelpText() string {
	c.declareHelp()

	var b strings.Builder
	section := func(title string) {
		b.WriteString(c.io.Style().Bold(true).Foreground(lipgloss.Color("3")).Render(title))
		b.WriteByte('\n')
	}

	if c.header != "" {
		b.WriteString(strings.TrimRight(c.header, "\n"))
		b.WriteString("\n\n")
	}
	if c.description != "" {
		b.WriteString(strings.TrimRight(c.description, "\n"))
		b.WriteString("\n\n")
	}

	section("Usage:")
	b.WriteString(helpIndent + c.Synopsis() + "\n")

	arguments := c.Arguments()
	options := c.Options()

	argRows := make([][2]string, len(arguments))
	for i, arg := range arguments {
		argRows[i] = [2]string{arg.Name(), describe(arg)}
	}
	optRows := make([][2]string, len(options))
	for i, opt := range options {
		optRows[i] = [2]string{optionSynopsis(opt, hasShortAlias(options)), describe(opt)}
	}

	// One name column width for both tables so descriptions line up
	nameWidth := 0
	for _, rows := range [][][2]string{argRows, optRows} {
		for _, row := range rows {
			nameWidth = max(nameWidth, lipgloss.Width(row[0]))
		}
	}

	if len(argRows) > 0 {
		b.WriteByte('\n')
		section("Arguments:")
		c.writeTable(&b, argRows, nameWidth)
	}
	if len(optRows) > 0 {
		b.WriteByte('\n')
		section("Options:")
		c.writeTable(&b, optRows, nameWidth)
	}

	if c.footer != "" {
		b.WriteByte('\n')
		b.WriteString(strings.TrimRight(c.footer, "\n"))
		b.WriteByte('\n')
	}

	return b.String()
}

func (c *Console) writeTable(b *strings.Builder, rows [][2]string, nameWidth int) {
	descWidth := max(minDescriptionWidth, c.io.Width()-len(helpIndent)-nameWidth-len(helpGutter))
	nameStyle := c.io.Style().Foreground(lipgloss.Color("2"))

	for _, row := range rows {
		name := row[0] + strings.Repeat(" ", nameWidth-lipgloss.Width(row[0]))
		line := helpIndent + nameStyle.Render(name)
		if row[1] != "" {
			desc := c.io.Style().Width(descWidth).Render(row[1])
			line = lipgloss.JoinHorizontal(lipgloss.Top, line, helpGutter, desc)
		}
		for _, l := range strings.Split(line, "\n") {
			b.WriteString(strings.TrimRight(l, " "))
			b.WriteByte('\n')
		}
	}
}

// optionSynopsis renders the name column of an option, e.g. "-u, --user=USER".
// Long-only options are indented when other options have a short alias.
func optionSynopsis(opt *argv.Parameter, alignShort bool) string {
	var shorts, longs []string
	for _, name := range opt.Names() {
		if strings.HasPrefix(name, "--") {
			longs = append(longs, name)
		} else {
			shorts = append(shorts, name)
		}
	}

	if opt.IsLevel() && len(shorts) > 0 {
		// -v|vv|vvv
		letter := strings.TrimPrefix(shorts[0], "-")
		shorts[0] = shorts[0] + "|" + strings.Repeat(letter, 2) + "|" + strings.Repeat(letter, 3)
	}

	if opt.IsBoolean() && opt.Negatable() {
		for i, long := range longs {
			longs[i] = long + "|--no-" + strings.TrimPrefix(long, "--")
		}
	}

	if opt.AcceptsValue() {
		placeholder := "=" + strings.ToUpper(opt.Name())
		if len(longs) > 0 {
			longs[len(longs)-1] += placeholder
		} else {
			shorts[len(shorts)-1] += placeholder
		}
	}

	s := strings.Join(append(shorts, longs...), ", ")
	if len(shorts) == 0 && alignShort {
		s = "    " + s
	}
	return s
}

func hasShortAlias(options []*argv.Parameter) bool {
	for _, opt := range options {
		for _, name := range opt.Names() {
			if !strings.HasPrefix(name, "--") {
				return true
			}
		}
	}
	return false
}

// describe renders the description column with default and multiplicity hints
func describe(p *argv.Parameter) string {
	parts := make([]string, 0, 3)
	if d := p.Description(); d != "" {
		parts = append(parts, d)
	}
	if def, ok := p.Default(); ok && !isZeroDefault(p, def) {
		parts = append(parts, "[default: "+def.String()+"]")
	}
	if p.IsArray() {
		parts = append(parts, "(multiple values allowed)")
	}
	return strings.Join(parts, " ")
}

// isZeroDefault hides defaults that only restate the empty value
func isZeroDefault(p *argv.Parameter, def argv.Value) bool {
	switch p.Type() {
	case argv.TypeBoolean:
		b, _ := def.Bool()
		return !b
	case argv.TypeArray:
		items, _ := def.Strings()
		return len(items) == 0
	case argv.TypeString, argv.TypeInt, argv.TypeFloat, argv.TypeNumeric, argv.TypeLevel:
		return false
	default:
		return false
	}
}
