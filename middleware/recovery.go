package middleware

import (
	"fmt"
	"os"
	"runtime"
	"time"
)

// Recovery turns a panic in the action into a *RecoveryError
func Recovery(options ...MiddlewareOption) Middleware {
	config := newConfig(options)

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				recoveryErr := &RecoveryError{
					Panic:   r,
					Command: getCommandName(ctx),
					Stack:   captureStack(config.StackSize),
				}
				ctx.Set("recovery.panic", r)

				if config.PrintStack {
					w := config.StackOutput
					if w == nil {
						w = os.Stderr
					}
					fmt.Fprintf(w, "PANIC in command '%s': %v\n", recoveryErr.Command, r)
					fmt.Fprintf(w, "Stack trace:\n%s\n", recoveryErr.Stack)
				}

				err = recoveryErr
			}()

			return next(ctx)
		}
	}
}

// RecoveryWithHandler lets handler decide the error returned for a panic
func RecoveryWithHandler(handler func(panicVal any, command string, stack []byte) error, options ...MiddlewareOption) Middleware {
	config := newConfig(options)

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = handler(r, getCommandName(ctx), captureStack(config.StackSize))
				}
			}()
			return next(ctx)
		}
	}
}

// RecoveryToError converts panics to errors without printing stack traces
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}

// Timeout cancels the execution and returns a *TimeoutError once d elapses.
// The action keeps running in its goroutine and should watch ctx.Done().
func Timeout(d time.Duration) Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			result := make(chan error, 1)
			go func() {
				defer func() {
					if r := recover(); r != nil {
						result <- &RecoveryError{Panic: r, Command: getCommandName(ctx), Stack: captureStack(4096)}
					}
				}()
				result <- next(ctx)
			}()

			timer := time.NewTimer(d)
			defer timer.Stop()

			select {
			case err := <-result:
				return err
			case <-timer.C:
				ctx.Cancel()
				return &TimeoutError{Duration: d, Command: getCommandName(ctx)}
			}
		}
	}
}

func captureStack(size int) []byte {
	if size <= 0 {
		return nil
	}
	stack := make([]byte, size)
	return stack[:runtime.Stack(stack, false)]
}
