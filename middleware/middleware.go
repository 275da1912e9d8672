// Package middleware wraps console actions with logging, panic recovery and timeouts
package middleware

import (
	"fmt"
	"io"
	"time"
)

// Context is what middleware can rely on during an execution.
// It is implemented by *console.Context.
type Context interface {
	// Done is closed when the execution is canceled.
	Done() <-chan struct{}

	// Cancel requests cancellation of the execution. It is idempotent.
	Cancel()

	// Args returns the raw tokens after the program name.
	Args() []string

	// Values returns the parsed parameters keyed by primary name.
	Values() map[string]any

	// Set stores metadata shared between middleware. Keys should be
	// namespaced, e.g. "logger.run_id".
	Set(key string, value any)

	// Metadata returns a value stored with Set or nil.
	Metadata(key string) any

	// Command describes the running console application.
	Command() Command
}

// Command is satisfied by *console.Console
type Command interface {
	Name() string
	Description() string
}

// ActionFunc is the wrapped action
type ActionFunc func(ctx Context) error

// Middleware decorates an ActionFunc
type Middleware func(next ActionFunc) ActionFunc

// MiddlewareChain is an ordered list of middleware
type MiddlewareChain []Middleware

// Apply wraps action so that the first middleware in the chain runs outermost.
func (chain MiddlewareChain) Apply(action ActionFunc) ActionFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		action = chain[i](action)
	}
	return action
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	out := make(MiddlewareChain, 0, len(chain)+len(middleware))
	return append(append(out, chain...), middleware...)
}

// Chain creates a chain preserving order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// RecoveryError represents a recovered panic
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// Unwrap exposes a panicked error value
func (e *RecoveryError) Unwrap() error {
	err, _ := e.Panic.(error)
	return err
}

// TimeoutError is returned when an action outlives its deadline
type TimeoutError struct {
	Duration time.Duration
	Command  string
}

func (e *TimeoutError) Error() string {
	return "command '" + e.Command + "' timed out after " + e.Duration.String()
}

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel      LogLevel
	LogOutput     LogOutput
	LogFormat     LogFormat
	IncludeArgs   bool
	IncludeParams bool
	PrintStack    bool
	StackSize     int
	StackOutput   io.Writer // nil means stderr
	LogFile       string
	Rotation      Rotation
}

// Rotation configures the rotating log file written by WithLogFile
type Rotation struct {
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogOutput represents log output destinations
type LogOutput int

const (
	LogOutputStderr LogOutput = iota
	LogOutputStdout
	LogOutputNone
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// RequestInfo describes one execution
type RequestInfo struct {
	RunID     string
	Command   string
	Args      []string
	Params    map[string]any
	StartTime time.Time
	Duration  time.Duration
	Error     error
}

// MiddlewareOption configures a middleware
type MiddlewareOption func(config *MiddlewareConfig)

// DefaultConfig returns the configuration used when no option is given
func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:      LogLevelInfo,
		LogOutput:     LogOutputStderr,
		LogFormat:     LogFormatText,
		IncludeArgs:   true,
		IncludeParams: false,
		PrintStack:    true,
		StackSize:     4096,
		Rotation: Rotation{
			MaxSize:    16,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

func newConfig(options []MiddlewareOption) *MiddlewareConfig {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return config
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

func WithLogOutput(output LogOutput) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogOutput = output
	}
}

// WithParams adds the parsed parameters to every log entry
func WithParams(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeParams = enabled
	}
}

func WithArgs(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeArgs = enabled
	}
}

// WithLogFile additionally writes log entries to a size-rotated file
func WithLogFile(path string) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFile = path
	}
}

func WithRotation(rotation Rotation) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.Rotation = rotation
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

func WithStackOutput(w io.Writer) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.StackOutput = w
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	default:
		return fmt.Sprint(x)
	}
}

func getCommandName(ctx Context) string {
	cmd := ctx.Command()
	if cmd == nil {
		return "unknown"
	}
	return cmd.Name()
}
