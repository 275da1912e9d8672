package console

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/snapcli/argv/argv"
	consoleio "github.com/snapcli/argv/io"
	"github.com/snapcli/argv/middleware"
)

func newTestConsole(t *testing.T) (*Console, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("COLUMNS", "80")

	var out, errOut bytes.Buffer
	m := consoleio.New().WithOut(&out).WithErr(&errOut).WithIn(strings.NewReader("")).NoColor()

	c := New("show-me").WithIO(m)
	c.MustAddParameter("name", argv.TypeString, "Your name", argv.Required())
	c.MustAddParameter("age", argv.TypeInt, "Your age", argv.Default(20))
	c.MustAddParameter("--height", argv.TypeFloat, "Your height")
	c.MustAddParameter("--location|-l", argv.TypeString, "Live location", argv.Required())
	c.MustAddParameter("--muted|-m", argv.TypeBoolean, "Is muted")
	return c, &out, &errOut
}

func noMain(t *testing.T) MainFunc {
	return func(ctx *Context) error {
		t.Fatal("main must not run")
		return nil
	}
}

func TestExecuteRunsMain(t *testing.T) {
	c, out, errOut := newTestConsole(t)

	var got map[string]any
	var rawArgs []string
	code := c.Execute([]string{"show-me", "John", "18", "-l", "Europe", "--height", "1.75"}, func(ctx *Context) error {
		got = ctx.Values()
		rawArgs = ctx.Args()
		ctx.Writeln("Hello", ctx.MustString("name", ""))
		return nil
	})

	require.Equal(t, 0, code)
	require.Equal(t, map[string]any{
		"name":     "John",
		"age":      18,
		"height":   1.75,
		"location": "Europe",
		"muted":    false,
		"help":     false,
	}, got)
	require.Equal(t, []string{"John", "18", "-l", "Europe", "--height", "1.75"}, rawArgs)
	require.Equal(t, "Hello John\n", out.String())
	require.Empty(t, errOut.String())
}

func TestExecuteContextGetters(t *testing.T) {
	c, _, _ := newTestConsole(t)

	code := c.Execute([]string{"show-me", "John", "-ml", "Europe"}, func(ctx *Context) error {
		name, ok := ctx.String("name")
		require.True(t, ok)
		require.Equal(t, "John", name)

		age, ok := ctx.Int("age")
		require.True(t, ok)
		require.Equal(t, 20, age)

		require.True(t, ctx.MustBool("muted", false))
		require.Equal(t, "Europe", ctx.Get("location"))
		require.Nil(t, ctx.Get("unknown"))
		require.Equal(t, "show-me", ctx.Command().Name())
		require.Same(t, c, ctx.Console())

		ctx.Set("seen", true)
		require.Equal(t, true, ctx.Metadata("seen"))
		require.NoError(t, ctx.Err())
		return nil
	})
	require.Equal(t, 0, code)
}

func TestExecuteParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		code   int
		stderr []string
	}{
		{
			name: "unknown option with suggestion",
			args: []string{"show-me", "John", "--locaton", "x"},
			code: 2,
			stderr: []string{
				`Error: The "--locaton" option does not exist.`,
				`  Did you mean "--location"?`,
				`Run "show-me --help" for more information.`,
			},
		},
		{
			name:   "invalid type",
			args:   []string{"show-me", "John", "abc", "-l", "x"},
			code:   3,
			stderr: []string{`Error: Invalid value type for "age". Expected INT.`},
		},
		{
			name:   "missing argument",
			args:   []string{"show-me", "-l", "x"},
			code:   2,
			stderr: []string{`Error: Required argument "name" is missing.`},
		},
		{
			name:   "missing option",
			args:   []string{"show-me", "John"},
			code:   2,
			stderr: []string{`Error: Required value for "location" is missing.`},
		},
		{
			name:   "value not accepted",
			args:   []string{"show-me", "John", "-l", "x", "--muted=yes"},
			code:   2,
			stderr: []string{`Error: The "--muted" option does not accept a value.`},
		},
		{
			name:   "too many arguments",
			args:   []string{"show-me", "John", "18", "extra", "-l", "x"},
			code:   2,
			stderr: []string{`Error: Too many arguments, expected arguments "name" "age", got "extra".`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out, errOut := newTestConsole(t)
			code := c.Execute(tt.args, noMain(t))

			require.Equal(t, tt.code, code)
			require.Empty(t, out.String())
			for _, line := range tt.stderr {
				require.Contains(t, errOut.String(), line+"\n")
			}
		})
	}
}

func TestExecuteHelp(t *testing.T) {
	c, out, errOut := newTestConsole(t)
	c.WithDescription("Shows personal information.").
		WithHelpHeader("[Console] SHOW ME - v1.0").
		WithHelpFooter("$ show-me John 18 --location=Europe")

	code := c.Execute([]string{"show-me", "--help"}, noMain(t))
	require.Equal(t, 0, code)
	require.Empty(t, errOut.String())

	expected := `[Console] SHOW ME - v1.0

Shows personal information.

Usage:
  show-me [options...] [--] <name> [<age>]

Arguments:
  name                     Your name
  age                      Your age [default: 20]

Options:
      --height=HEIGHT      Your height
  -l, --location=LOCATION  Live location
  -m, --muted              Is muted
  -h, --help               Display help for the given command

$ show-me John 18 --location=Europe
`
	require.Equal(t, expected, out.String())
}

func TestExecuteHelpAfterValidInput(t *testing.T) {
	c, out, _ := newTestConsole(t)

	require.Equal(t, 0, c.Execute([]string{"show-me", "John", "-l", "x", "-h"}, noMain(t)))
	require.Contains(t, out.String(), "Usage:\n  show-me")
}

func TestExecuteHelpAfterDoubleDashIsAnArgument(t *testing.T) {
	c, out, _ := newTestConsole(t)

	var name string
	code := c.Execute([]string{"show-me", "-l", "x", "--", "-h"}, func(ctx *Context) error {
		name = ctx.MustString("name", "")
		return nil
	})
	require.Equal(t, 0, code)
	require.Equal(t, "-h", name)
	require.Empty(t, out.String())
}

func TestDisableHelp(t *testing.T) {
	c, out, errOut := newTestConsole(t)
	c.DisableHelp()

	code := c.Execute([]string{"show-me", "--help"}, noMain(t))
	require.Equal(t, 2, code)
	require.Empty(t, out.String())
	require.Contains(t, errOut.String(), `Error: The "--help" option does not exist.`)
	require.Contains(t, errOut.String(), "Usage: show-me [options...] [--] <name> [<age>]\n")
}

func TestHelpSkipsTakenAlias(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.MustAddParameter("--host|-h", argv.TypeString, "Host")

	var host string
	code := c.Execute([]string{"show-me", "John", "-l", "x", "-h", "example.org"}, func(ctx *Context) error {
		host = ctx.MustString("host", "")
		return nil
	})
	require.Equal(t, 0, code)
	require.Equal(t, "example.org", host)

	help, ok := c.Option("help")
	require.True(t, ok)
	require.Equal(t, []string{"--help"}, help.Names())
}

func TestHelpTextLevelsArraysAndNegation(t *testing.T) {
	t.Setenv("COLUMNS", "80")
	c := New("tool").WithIO(consoleio.New().WithOut(&bytes.Buffer{}).NoColor()).DisableHelp()
	c.MustAddParameter("files", argv.TypeArray, "Input files")
	c.MustAddParameter("--verbose|-v", argv.TypeLevel, "Verbosity")
	c.MustAddParameter("--color", argv.TypeBoolean, "Colorize", argv.Negatable())
	c.MustAddParameter("--tag|-t", argv.TypeArray, "Tags")

	help := c.HelpText()
	require.Contains(t, help, "  tool [options...] [--] [<files>...]\n")
	require.Contains(t, help, "  files                   Input files (multiple values allowed)\n")
	require.Contains(t, help, "  -v|vv|vvv, --verbose    Verbosity\n")
	require.Contains(t, help, "      --color|--no-color  Colorize\n")
	require.Contains(t, help, "  -t, --tag=TAG           Tags (multiple values allowed)\n")
}

func TestExecuteString(t *testing.T) {
	c, _, _ := newTestConsole(t)

	var name, location string
	code := c.ExecuteString(`"John Doe" -l 'New York'`, func(ctx *Context) error {
		name = ctx.MustString("name", "")
		location = ctx.MustString("location", "")
		return nil
	})
	require.Equal(t, 0, code)
	require.Equal(t, "John Doe", name)
	require.Equal(t, "New York", location)

	c2, _, errOut := newTestConsole(t)
	require.Equal(t, 2, c2.ExecuteString(`"unterminated`, noMain(t)))
	require.Contains(t, errOut.String(), "Error: Cannot split command line")
}

func TestNameFromProgramToken(t *testing.T) {
	c := New("").WithIO(consoleio.New().WithOut(&bytes.Buffer{}).WithErr(&bytes.Buffer{}).NoColor())
	require.Equal(t, 0, c.Execute([]string{"/usr/local/bin/greet"}, nil))
	require.Equal(t, "greet", c.Name())
}

func TestExecuteMainErrors(t *testing.T) {
	tests := []struct {
		name   string
		main   MainFunc
		code   int
		stderr string
	}{
		{
			name:   "returned error",
			main:   func(ctx *Context) error { return errors.New("boom") },
			code:   1,
			stderr: "Error: boom\n",
		},
		{
			name:   "requested exit",
			main:   func(ctx *Context) error { ctx.Exit(4); return nil },
			code:   4,
			stderr: "",
		},
		{
			name: "requested exit wins over error",
			main: func(ctx *Context) error {
				ctx.ExitWithError(errors.New("bad input"), 5)
				return errors.New("ignored")
			},
			code:   5,
			stderr: "Error: bad input\n",
		},
		{
			name:   "exit error returned",
			main:   func(ctx *Context) error { return &ExitError{Code: 7} },
			code:   7,
			stderr: "",
		},
		{
			name:   "panic",
			main:   func(ctx *Context) error { panic("oops") },
			code:   1,
			stderr: "Error: command 'show-me' panicked: oops\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, errOut := newTestConsole(t)
			code := c.Execute([]string{"show-me", "John", "-l", "x"}, tt.main)
			require.Equal(t, tt.code, code)
			require.Equal(t, tt.stderr, errOut.String())
		})
	}
}

func TestExitCancelsContext(t *testing.T) {
	c, _, _ := newTestConsole(t)

	code := c.Execute([]string{"show-me", "John", "-l", "x"}, func(ctx *Context) error {
		ctx.Exit(9)
		select {
		case <-ctx.Done():
		default:
			t.Error("context must be canceled after Exit")
		}
		return nil
	})
	require.Equal(t, 9, code)
}

func TestExecuteWithMiddleware(t *testing.T) {
	c, _, _ := newTestConsole(t)

	var logs bytes.Buffer
	var order []string
	trace := func(next middleware.ActionFunc) middleware.ActionFunc {
		return func(ctx middleware.Context) error {
			order = append(order, "trace")
			return next(ctx)
		}
	}
	c.Use(middleware.LoggerWithWriter(&logs, middleware.WithParams(true)), trace)

	var runID string
	code := c.Execute([]string{"show-me", "John", "-l", "x"}, func(ctx *Context) error {
		order = append(order, "main")
		runID, _ = ctx.Metadata(middleware.RunIDKey).(string)
		return nil
	})

	require.Equal(t, 0, code)
	require.Equal(t, []string{"trace", "main"}, order)
	require.NotEmpty(t, runID)
	require.Contains(t, logs.String(), "SUCCESS command=show-me run="+runID)
	require.Contains(t, logs.String(), "name=John")
}

func TestExecuteTimeout(t *testing.T) {
	c, _, errOut := newTestConsole(t)
	c.Use(middleware.Timeout(10 * time.Millisecond))

	code := c.Execute([]string{"show-me", "John", "-l", "x"}, func(ctx *Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Equal(t, 1, code)
	require.Contains(t, errOut.String(), "timed out after 10ms")
}

func TestExitAfterTimeoutIsIgnored(t *testing.T) {
	c, _, errOut := newTestConsole(t)
	c.Use(middleware.Timeout(5 * time.Millisecond))

	finished := make(chan struct{})
	code := c.Execute([]string{"show-me", "John", "-l", "x"}, func(ctx *Context) error {
		defer close(finished)
		time.Sleep(30 * time.Millisecond)
		ctx.Set("late", true)
		ctx.Exit(7)
		ctx.ExitOnError(errors.New("too late"))
		return nil
	})
	<-finished

	require.Equal(t, 1, code)
	require.Contains(t, errOut.String(), "timed out after 5ms")
	require.NotContains(t, errOut.String(), "too late")
}

func TestExitCodeOverrides(t *testing.T) {
	c, _, _ := newTestConsole(t)
	c.ExitCodes().DefineParse(argv.ErrorTypeUnknownOption, 64)

	require.Equal(t, 64, c.Execute([]string{"show-me", "--nope"}, noMain(t)))
}
