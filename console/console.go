// Package console runs a main function on top of the argv parser: it parses
// the process arguments, prints help and errors, and maps failures to exit codes.
package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/snapcli/argv/argv"
	consoleio "github.com/snapcli/argv/io"
	"github.com/snapcli/argv/middleware"
)

// MainFunc is the body of a console application
type MainFunc func(ctx *Context) error

// Console is a single-command application.
// Parameters are declared directly on it through the embedded parser.
type Console struct {
	*argv.Parser

	name        string
	description string
	header      string
	footer      string

	io         *consoleio.IOManager
	logger     *consoleio.Logger
	exitCodes  *ExitCodeManager
	middleware middleware.MiddlewareChain

	helpEnabled bool
	help        *argv.Parameter
}

// New creates a console named name. An empty name is replaced by the base
// name of the program token at Execute time.
func New(name string) *Console {
	return &Console{
		Parser:      argv.NewParser(),
		name:        name,
		io:          consoleio.New(),
		exitCodes:   newExitCodeManager(),
		middleware:  middleware.Chain(middleware.Recovery(middleware.WithStackTrace(false))),
		helpEnabled: true,
	}
}

// Name returns the program name shown in help and logs
func (c *Console) Name() string { return c.name }

// Description returns the text shown above the usage line
func (c *Console) Description() string { return c.description }

// WithDescription sets the description shown in help
func (c *Console) WithDescription(description string) *Console {
	c.description = description
	return c
}

// WithHelpHeader sets text printed first in help, e.g. a banner with a version
func (c *Console) WithHelpHeader(header string) *Console {
	c.header = header
	return c
}

// WithHelpFooter sets text printed last in help, e.g. usage examples
func (c *Console) WithHelpFooter(footer string) *Console {
	c.footer = footer
	return c
}

// WithIO replaces the process streams
func (c *Console) WithIO(m *consoleio.IOManager) *Console {
	c.io = m
	c.logger = nil
	return c
}

// Use appends middleware. They run inside the built-in recovery, in order.
func (c *Console) Use(mw ...middleware.Middleware) *Console {
	c.middleware = c.middleware.Use(mw...)
	return c
}

// DisableHelp stops --help|-h from being declared
func (c *Console) DisableHelp() *Console {
	c.helpEnabled = false
	return c
}

// IO returns the IO manager
func (c *Console) IO() *consoleio.IOManager { return c.io }

// Logger returns a leveled logger writing to the console streams
func (c *Console) Logger() *consoleio.Logger {
	if c.logger == nil {
		c.logger = consoleio.NewLogger(c.io)
	}
	return c.logger
}

// ExitCodes returns the exit-code manager. Use it to override defaults or
// register custom mappings.
func (c *Console) ExitCodes() *ExitCodeManager {
	if c.exitCodes == nil {
		c.exitCodes = newExitCodeManager()
	}
	return c.exitCodes
}

// Execute parses args, where args[0] is the program name as in os.Args, and
// runs main. It returns the process exit code and never calls os.Exit.
func (c *Console) Execute(args []string, main MainFunc) int {
	return c.ExecuteContext(context.Background(), args, main)
}

// ExecuteContext is Execute with a parent context for cancellation
func (c *Console) ExecuteContext(ctx context.Context, args []string, main MainFunc) int {
	if c.name == "" && len(args) > 0 && args[0] != "" {
		c.name = filepath.Base(args[0])
	}
	c.declareHelp()

	result, err := c.Parse(args)
	if err != nil {
		if c.helpRequested(args) {
			c.ShowHelp()
			return c.ExitCodes().Defaults().Success
		}
		c.showParseError(err)
		return c.ExitCodes().Resolve(err)
	}

	if c.help != nil && result.MustBool(c.help.Name(), false) {
		c.ShowHelp()
		return c.ExitCodes().Defaults().Success
	}

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}
	return c.run(newContext(ctx, c, result, rest), main)
}

// ExecuteString splits line with shell quoting rules and executes it.
// line holds the arguments only, without the program name.
func (c *Console) ExecuteString(line string, main MainFunc) int {
	args, err := shlex.Split(line)
	if err != nil {
		c.printError(fmt.Sprintf("Cannot split command line: %v.", err))
		return c.ExitCodes().Defaults().MisusageError
	}
	return c.Execute(append([]string{c.name}, args...), main)
}

// RunAndExit executes os.Args and terminates the process with the mapped code
func (c *Console) RunAndExit(main MainFunc) {
	os.Exit(c.Execute(os.Args, main))
}

func (c *Console) run(ctx *Context, main MainFunc) int {
	defer ctx.Cancel()

	var err error
	if main != nil {
		action := c.middleware.Apply(func(mctx middleware.Context) error {
			return main(ctx)
		})
		err = action(ctx)
	}

	// An explicit exit request wins over the returned error
	if ee := ctx.exitRequest(); ee != nil {
		err = ee
	}

	if err != nil {
		var ee *ExitError
		if !errors.As(err, &ee) || ee.Err != nil {
			c.printError(err.Error())
		}
	}
	return c.ExitCodes().Resolve(err)
}

// declareHelp adds --help|-h once, leaving out aliases the application already uses
func (c *Console) declareHelp() {
	if !c.helpEnabled || c.help != nil {
		return
	}
	if _, taken := c.Parameter("help"); taken {
		return
	}
	names := "--help"
	if _, taken := c.Parameter("h"); !taken {
		names += "|-h"
	}
	c.help = c.MustAddParameter(names, argv.TypeBoolean, "Display help for the given command")
}

// helpRequested reports whether a help alias appears before "--"
func (c *Console) helpRequested(args []string) bool {
	if c.help == nil || len(args) < 2 {
		return false
	}
	aliases := c.help.Names()
	for _, arg := range args[1:] {
		if arg == "--" {
			return false
		}
		for _, alias := range aliases {
			if arg == alias {
				return true
			}
		}
	}
	return false
}

func (c *Console) showParseError(err error) {
	var pe *argv.ParseError
	if !errors.As(err, &pe) {
		c.printError(err.Error())
		return
	}

	c.printError(pe.Message)
	w := c.io.Err()
	if pe.Suggestion != "" {
		fmt.Fprintf(w, "  Did you mean %q?\n", pe.Suggestion)
	}
	if c.help != nil {
		fmt.Fprintf(w, "Run %q for more information.\n", c.name+" "+c.help.Names()[0])
	} else {
		fmt.Fprintln(w, "Usage: "+c.Synopsis())
	}
}

func (c *Console) printError(msg string) {
	fmt.Fprintf(c.io.Err(), "%s %s\n", c.io.Colorize("Error:", "1"), msg)
}
