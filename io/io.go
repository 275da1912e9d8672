// Package consoleio wraps the process streams with terminal detection and styling
package consoleio

import (
	stdio "io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

type colorMode int

const (
	colorAuto colorMode = iota
	colorForce
	colorNone
)

// IOManager centralizes IO and terminal capabilities
type IOManager struct {
	in  stdio.Reader
	out stdio.Writer
	err stdio.Writer

	color colorMode
}

// New returns a manager bound to process stdio
func New() *IOManager {
	return &IOManager{in: os.Stdin, out: os.Stdout, err: os.Stderr}
}

// WithIn sets the input reader and returns the manager for chaining.
func (m *IOManager) WithIn(r stdio.Reader) *IOManager { m.in = r; return m }

// WithOut sets the standard output writer and returns the manager for chaining.
func (m *IOManager) WithOut(w stdio.Writer) *IOManager { m.out = w; return m }

// WithErr sets the standard error writer and returns the manager for chaining.
func (m *IOManager) WithErr(w stdio.Writer) *IOManager { m.err = w; return m }

// ForceColor forces color output on, regardless of environment.
func (m *IOManager) ForceColor() *IOManager { m.color = colorForce; return m }

// NoColor disables color output, regardless of environment.
func (m *IOManager) NoColor() *IOManager { m.color = colorNone; return m }

// ColorAuto uses the environment (NO_COLOR, CLICOLOR_FORCE, TERM) and TTY detection.
func (m *IOManager) ColorAuto() *IOManager { m.color = colorAuto; return m }

func (m *IOManager) In() stdio.Reader  { return m.in }
func (m *IOManager) Out() stdio.Writer { return m.out }
func (m *IOManager) Err() stdio.Writer { return m.err }

// IsTTY reports whether stdout is connected to a terminal.
func (m *IOManager) IsTTY() bool { return isTerminal(m.out) }

// IsInteractive reports whether both ends are a terminal outside CI.
func (m *IOManager) IsInteractive() bool {
	return isTerminal(m.in) && isTerminal(m.out) && os.Getenv("CI") == ""
}

// IsPiped reports whether stdin is not a terminal.
func (m *IOManager) IsPiped() bool { return !isTerminal(m.in) }

// Width returns the terminal width, falling back to $COLUMNS and then 80.
func (m *IOManager) Width() int {
	if f, ok := m.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if w, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && w > 0 {
		return w
	}
	return 80
}

// Profile returns the color profile used for rendering on stdout.
func (m *IOManager) Profile() termenv.Profile {
	switch m.color {
	case colorNone:
		return termenv.Ascii
	case colorForce:
		if p := termenv.NewOutput(m.out).EnvColorProfile(); p != termenv.Ascii {
			return p
		}
		return termenv.ANSI256
	case colorAuto:
		return termenv.NewOutput(m.out).EnvColorProfile()
	default:
		return termenv.Ascii
	}
}

// SupportsColor reports whether styled output will carry ANSI sequences.
func (m *IOManager) SupportsColor() bool { return m.Profile() != termenv.Ascii }

// Renderer returns a lipgloss renderer bound to stdout with the resolved profile.
func (m *IOManager) Renderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(m.out)
	r.SetColorProfile(m.Profile())
	return r
}

// Style starts a new style rendered with this manager's profile.
func (m *IOManager) Style() lipgloss.Style { return m.Renderer().NewStyle() }

// Bold returns s in bold when color is supported.
func (m *IOManager) Bold(s string) string { return m.Style().Bold(true).Render(s) }

// Faint returns s in faint intensity when color is supported.
func (m *IOManager) Faint(s string) string { return m.Style().Faint(true).Render(s) }

// Colorize renders s in the given lipgloss color ("1", "#ff8800", ...).
func (m *IOManager) Colorize(s, color string) string {
	return m.Style().Foreground(lipgloss.Color(color)).Render(s)
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && f != nil && term.IsTerminal(int(f.Fd()))
}
