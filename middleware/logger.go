package middleware

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

// RunIDKey is the metadata key holding the id of the current execution
const RunIDKey = "logger.run_id"

type logEntry struct {
	Timestamp  string         `json:"timestamp"`
	Level      string         `json:"level"`
	Command    string         `json:"command"`
	RunID      string         `json:"run_id"`
	DurationMS *int64         `json:"duration_ms,omitempty"`
	Args       []string       `json:"args,omitempty"`
	Params     map[string]any `json:"params,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// Logger logs each execution to the configured output
func Logger(options ...MiddlewareOption) Middleware {
	config := newConfig(options)
	return newLogger(outputWriter(config.LogOutput), config)
}

// LoggerWithWriter logs each execution to writer
func LoggerWithWriter(writer io.Writer, options ...MiddlewareOption) Middleware {
	return newLogger(writer, newConfig(options))
}

func newLogger(w io.Writer, config *MiddlewareConfig) Middleware {
	writers := make([]io.Writer, 0, 2)
	if w != nil {
		writers = append(writers, w)
	}
	if config.LogFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.LogFile,
			MaxSize:    config.Rotation.MaxSize,
			MaxBackups: config.Rotation.MaxBackups,
			MaxAge:     config.Rotation.MaxAge,
			Compress:   config.Rotation.Compress,
		})
	}
	writer := io.MultiWriter(writers...)

	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			if config.LogLevel == LogLevelNone {
				return next(ctx)
			}

			info := &RequestInfo{
				RunID:     uuid.Must(uuid.NewV7()).String(),
				Command:   getCommandName(ctx),
				StartTime: time.Now(),
			}
			if config.IncludeArgs {
				info.Args = ctx.Args()
			}
			if config.IncludeParams {
				info.Params = ctx.Values()
			}
			ctx.Set(RunIDKey, info.RunID)

			if config.LogLevel >= LogLevelDebug {
				logRequest(writer, config, info, "START")
			}

			err := next(ctx)

			info.Duration = time.Since(info.StartTime)
			info.Error = err
			logRequest(writer, config, info, getLogLevel(err))

			return err
		}
	}
}

func getLogLevel(err error) string {
	if err != nil {
		return "ERROR"
	}
	return "SUCCESS"
}

func shouldLog(configLevel LogLevel, messageLevel string) bool {
	switch messageLevel {
	case "ERROR":
		return configLevel >= LogLevelError
	case "START":
		return configLevel >= LogLevelDebug
	default:
		return configLevel >= LogLevelInfo
	}
}

func outputWriter(output LogOutput) io.Writer {
	switch output {
	case LogOutputStdout:
		return os.Stdout
	case LogOutputNone:
		return nil
	case LogOutputStderr:
		return os.Stderr
	default:
		return os.Stderr
	}
}

// logRequest writes one entry; write errors are ignored
func logRequest(w io.Writer, config *MiddlewareConfig, info *RequestInfo, level string) {
	if !shouldLog(config.LogLevel, level) {
		return
	}

	switch config.LogFormat {
	case LogFormatJSON:
		writeJSONLog(w, info, level)
	case LogFormatText:
		writeTextLog(w, info, level)
	default:
		writeTextLog(w, info, level)
	}
}

func writeTextLog(w io.Writer, info *RequestInfo, level string) {
	var b strings.Builder
	b.WriteString("[" + info.StartTime.Format("2006-01-02 15:04:05") + "] ")
	b.WriteString(level)
	b.WriteString(" command=" + info.Command)
	b.WriteString(" run=" + info.RunID)

	if info.Duration > 0 {
		b.WriteString(" duration=" + info.Duration.String())
	}
	if len(info.Args) > 0 {
		b.WriteString(" args=" + strings.Join(info.Args, " "))
	}
	if len(info.Params) > 0 {
		keys := make([]string, 0, len(info.Params))
		for k := range info.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, info.Params[k])
		}
	}
	if info.Error != nil {
		fmt.Fprintf(&b, " error=%q", info.Error.Error())
	}
	b.WriteByte('\n')

	//nolint:errcheck // logging is best-effort
	io.WriteString(w, b.String())
}

func writeJSONLog(w io.Writer, info *RequestInfo, level string) {
	entry := logEntry{
		Timestamp: info.StartTime.Format(time.RFC3339),
		Level:     level,
		Command:   info.Command,
		RunID:     info.RunID,
		Args:      info.Args,
		Params:    info.Params,
	}
	if info.Duration > 0 {
		ms := info.Duration.Milliseconds()
		entry.DurationMS = &ms
	}
	if info.Error != nil {
		entry.Error = info.Error.Error()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	//nolint:errcheck // logging is best-effort
	w.Write(append(data, '\n'))
}

// DebugLogger logs start and completion of every execution
func DebugLogger() Middleware {
	return Logger(WithLogLevel(LogLevelDebug))
}

// ErrorLogger logs failed executions only
func ErrorLogger() Middleware {
	return Logger(WithLogLevel(LogLevelError))
}

// JSONLogger logs one JSON object per execution
func JSONLogger() Middleware {
	return Logger(WithLogFormat(LogFormatJSON))
}

// SilentLogger assigns run ids without writing anything
func SilentLogger() Middleware {
	return Logger(WithLogOutput(LogOutputNone))
}
