package console

import (
	"context"
	"fmt"
	stdio "io"
	"sync"

	"github.com/snapcli/argv/argv"
	consoleio "github.com/snapcli/argv/io"
	"github.com/snapcli/argv/middleware"
)

// exitKey is the metadata key holding an exit request made through Exit
const exitKey = "console.exit"

// Context is handed to main and to every middleware.
// It implements middleware.Context. Metadata and exit requests are safe to use
// from a main that outlives a Timeout.
type Context struct {
	console *Console
	params  *argv.Result
	args    []string
	ctx     context.Context
	cancel  context.CancelFunc

	mu       sync.RWMutex
	metadata map[string]any
}

func newContext(parent context.Context, c *Console, params *argv.Result, args []string) *Context {
	ctx, cancel := context.WithCancel(parent)
	return &Context{
		console:  c,
		params:   params,
		args:     args,
		ctx:      ctx,
		cancel:   cancel,
		metadata: make(map[string]any),
	}
}

// Context returns the underlying Go context for cancellation
func (c *Context) Context() context.Context { return c.ctx }

// Done is closed once the execution is canceled
func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Err reports why Done was closed
func (c *Context) Err() error { return c.ctx.Err() }

// Cancel cancels the execution
func (c *Context) Cancel() { c.cancel() }

// Command returns the running console
func (c *Context) Command() middleware.Command { return c.console }

// Console returns the running console
func (c *Context) Console() *Console { return c.console }

// Args returns the raw tokens after the program name
func (c *Context) Args() []string { return c.args }

// Params returns the parsed parameters
func (c *Context) Params() *argv.Result { return c.params }

// Values exports the parsed parameters as plain Go values
func (c *Context) Values() map[string]any { return c.params.Map() }

// Get returns the plain Go value of a parameter, nil when unknown.
func (c *Context) Get(name string) any { return c.params.Value(name).Interface() }

// String returns the string value of a parameter
func (c *Context) String(name string) (string, bool) {
	return c.params.String(name)
}

// Int returns the integer value of an INT or LEVEL parameter
func (c *Context) Int(name string) (int, bool) {
	return c.params.Int(name)
}

func (c *Context) Float(name string) (float64, bool) {
	return c.params.Float(name)
}

func (c *Context) Bool(name string) (bool, bool) {
	return c.params.Bool(name)
}

func (c *Context) Strings(name string) ([]string, bool) {
	return c.params.Strings(name)
}

// Must* getters return def when the parameter is absent or of another kind

func (c *Context) MustString(name, def string) string {
	return c.params.MustString(name, def)
}

func (c *Context) MustInt(name string, def int) int {
	return c.params.MustInt(name, def)
}

func (c *Context) MustFloat(name string, def float64) float64 {
	return c.params.MustFloat(name, def)
}

func (c *Context) MustBool(name string, def bool) bool {
	return c.params.MustBool(name, def)
}

func (c *Context) MustStrings(name string, def []string) []string {
	return c.params.MustStrings(name, def)
}

// Set stores a key-value pair in the context metadata
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metadata[key] = value
}

// Metadata retrieves a value stored with Set
func (c *Context) Metadata(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metadata[key]
}

// Exit requests the given exit code and cancels the execution.
// Execute returns code once main returns. A request made after a Timeout
// already ended the execution is ignored.
func (c *Context) Exit(code int) {
	c.Set(exitKey, &ExitError{Code: code})
	c.Cancel()
}

// ExitWithError is Exit with an error printed by Execute.
func (c *Context) ExitWithError(err error, code int) {
	c.Set(exitKey, &ExitError{Code: code, Err: err})
	c.Cancel()
}

// ExitOnError exits with the code mapped for err. A nil err is ignored.
func (c *Context) ExitOnError(err error) {
	if err == nil {
		return
	}
	c.ExitWithError(err, c.console.ExitCodes().Resolve(err))
}

func (c *Context) exitRequest() *ExitError {
	ee, _ := c.Metadata(exitKey).(*ExitError)
	return ee
}

// IO accessors
func (c *Context) IO() *consoleio.IOManager  { return c.console.IO() }
func (c *Context) Logger() *consoleio.Logger { return c.console.Logger() }
func (c *Context) Stdout() stdio.Writer      { return c.console.IO().Out() }
func (c *Context) Stderr() stdio.Writer      { return c.console.IO().Err() }
func (c *Context) Stdin() stdio.Reader       { return c.console.IO().In() }

// Write prints a to stdout
func (c *Context) Write(a ...any) {
	fmt.Fprint(c.Stdout(), a...)
}

// Writeln prints a to stdout followed by a newline
func (c *Context) Writeln(a ...any) {
	fmt.Fprintln(c.Stdout(), a...)
}

// Printf formats to stdout
func (c *Context) Printf(format string, a ...any) {
	fmt.Fprintf(c.Stdout(), format, a...)
}
