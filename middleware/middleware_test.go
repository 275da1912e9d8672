package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// MockContext implements the Context interface for testing
type MockContext struct {
	args      []string
	values    map[string]any
	command   *MockCommand
	metadata  map[string]any
	cancelled bool
	done      chan struct{}
}

func NewMockContext() *MockContext {
	return &MockContext{
		args:     []string{},
		values:   make(map[string]any),
		command:  &MockCommand{name: "test", description: "test command"},
		metadata: make(map[string]any),
		done:     make(chan struct{}),
	}
}

func (m *MockContext) Done() <-chan struct{} { return m.done }
func (m *MockContext) Cancel() {
	if !m.cancelled {
		close(m.done)
		m.cancelled = true
	}
}
func (m *MockContext) Args() []string            { return m.args }
func (m *MockContext) Values() map[string]any    { return m.values }
func (m *MockContext) Command() Command          { return m.command }
func (m *MockContext) Set(key string, value any) { m.metadata[key] = value }
func (m *MockContext) Metadata(key string) any   { return m.metadata[key] }

func (m *MockContext) SetArgs(args []string)         { m.args = args }
func (m *MockContext) SetValue(name string, v any)   { m.values[name] = v }

type MockCommand struct {
	name        string
	description string
}

func (m *MockCommand) Name() string        { return m.name }
func (m *MockCommand) Description() string { return m.description }

func successAction(ctx Context) error { return nil }
func errorAction(ctx Context) error   { return errors.New("test error") }
func panicAction(ctx Context) error   { panic("test panic") }

func TestMiddlewareChain(t *testing.T) {
	var order []string

	trace := func(name string) Middleware {
		return func(next ActionFunc) ActionFunc {
			return func(ctx Context) error {
				order = append(order, "before"+name)
				err := next(ctx)
				order = append(order, "after"+name)
				return err
			}
		}
	}

	action := func(ctx Context) error {
		order = append(order, "action")
		return nil
	}

	chain := Chain(trace("1")).Use(trace("2"))
	if err := chain.Apply(action)(NewMockContext()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []string{"before1", "before2", "action", "after2", "after1"}
	if strings.Join(order, ",") != strings.Join(expected, ",") {
		t.Errorf("Expected order %v, got %v", expected, order)
	}
}

func TestChainUseDoesNotAlias(t *testing.T) {
	base := make(MiddlewareChain, 0, 4)
	base = base.Use(RecoveryToError())

	a := base.Use(SilentLogger())
	b := base.Use(Timeout(time.Second))
	if len(a) != 2 || len(b) != 2 || len(base) != 1 {
		t.Fatalf("unexpected chain lengths: %d %d %d", len(a), len(b), len(base))
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggerWithWriter(&buf, WithLogLevel(LogLevelInfo), WithParams(true))

	ctx := NewMockContext()
	ctx.SetArgs([]string{"Hello", "--user", "admin"})
	ctx.SetValue("user", "admin")
	ctx.SetValue("name", "Hello")

	if err := logger(successAction)(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	output := buf.String()
	for _, want := range []string{"SUCCESS", "command=test", "args=Hello --user admin", "name=Hello user=admin"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in log output, got: %s", want, output)
		}
	}

	runID, _ := ctx.Metadata(RunIDKey).(string)
	if runID == "" || !strings.Contains(output, "run="+runID) {
		t.Errorf("Expected run id %q in output, got: %s", runID, output)
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := LoggerWithWriter(&buf, WithLogLevel(LogLevelError))

	if err := logger(errorAction)(NewMockContext()); err == nil {
		t.Error("Expected error to be propagated")
	}
	if !strings.Contains(buf.String(), `ERROR command=test`) || !strings.Contains(buf.String(), `error="test error"`) {
		t.Errorf("Expected ERROR entry, got: %s", buf.String())
	}

	// success is below the error level
	buf.Reset()
	_ = logger(successAction)(NewMockContext())
	if buf.Len() > 0 {
		t.Errorf("Expected no log output, got: %s", buf.String())
	}
}

func TestLoggerLevelNone(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewMockContext()

	if err := LoggerWithWriter(&buf, WithLogLevel(LogLevelNone))(successAction)(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if buf.Len() > 0 {
		t.Errorf("Expected no log output, got: %s", buf.String())
	}
	if ctx.Metadata(RunIDKey) != nil {
		t.Error("Expected no run id when logging is disabled")
	}
}

func TestSilentLoggerAssignsRunID(t *testing.T) {
	ctx := NewMockContext()
	if err := SilentLogger()(successAction)(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if id, _ := ctx.Metadata(RunIDKey).(string); id == "" {
		t.Error("Expected run id in metadata")
	}
}

func TestDebugLoggerLogsStart(t *testing.T) {
	var buf bytes.Buffer
	_ = LoggerWithWriter(&buf, WithLogLevel(LogLevelDebug))(successAction)(NewMockContext())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "START") || !strings.Contains(lines[1], "SUCCESS") {
		t.Errorf("Expected START and SUCCESS lines, got: %q", lines)
	}
}

func TestJSONLoggerEscapesStrings(t *testing.T) {
	var buf bytes.Buffer
	mw := LoggerWithWriter(&buf, WithLogFormat(LogFormatJSON), WithParams(true))

	ctx := NewMockContext()
	ctx.SetArgs([]string{`a "quoted"`, "line1\nline2"})
	ctx.SetValue("steps", []string{"a", "b"})

	if err := mw(errorAction)(ctx); err == nil {
		t.Fatal("Expected error to be propagated")
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if entry["level"] != "ERROR" || entry["command"] != "test" || entry["error"] != "test error" {
		t.Errorf("unexpected entry: %v", entry)
	}
	args, _ := entry["args"].([]any)
	if len(args) != 2 || args[0] != `a "quoted"` || args[1] != "line1\nline2" {
		t.Errorf("unexpected args: %v", entry["args"])
	}
	if !strings.Contains(buf.String(), `\"quoted\"`) || !strings.Contains(buf.String(), `line1\nline2`) {
		t.Errorf("expected escaped strings, got: %s", buf.String())
	}
	if entry["run_id"] == "" {
		t.Error("Expected run_id")
	}
}

func TestLoggerWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "console.log")
	mw := LoggerWithWriter(nil, WithLogFile(path), WithArgs(false))

	ctx := NewMockContext()
	ctx.SetArgs([]string{"secret"})
	if err := mw(successAction)(ctx); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "SUCCESS command=test") {
		t.Errorf("unexpected log file content: %s", data)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("args must be omitted, got: %s", data)
	}
}

func TestRecovery(t *testing.T) {
	ctx := NewMockContext()
	err := Recovery(WithStackTrace(false))(panicAction)(ctx)

	var recoveryErr *RecoveryError
	if !errors.As(err, &recoveryErr) {
		t.Fatalf("Expected RecoveryError, got %T", err)
	}
	if recoveryErr.Panic != "test panic" {
		t.Errorf("Expected panic value 'test panic', got %v", recoveryErr.Panic)
	}
	if recoveryErr.Command != "test" {
		t.Errorf("Expected command 'test', got %s", recoveryErr.Command)
	}
	if len(recoveryErr.Stack) == 0 {
		t.Error("Expected captured stack")
	}
	if ctx.Metadata("recovery.panic") != "test panic" {
		t.Error("Expected panic value in metadata")
	}
	if got := recoveryErr.Error(); got != "command 'test' panicked: test panic" {
		t.Errorf("unexpected message %q", got)
	}
}

func TestRecoveryPrintsStack(t *testing.T) {
	var buf bytes.Buffer
	_ = Recovery(WithStackOutput(&buf))(panicAction)(NewMockContext())

	if !strings.Contains(buf.String(), "PANIC in command 'test': test panic") {
		t.Errorf("Expected panic header, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "Stack trace:") {
		t.Errorf("Expected stack trace, got: %s", buf.String())
	}
}

func TestRecoveryUnwrapsPanickedError(t *testing.T) {
	sentinel := errors.New("boom")
	err := RecoveryToError()(func(ctx Context) error { panic(sentinel) })(NewMockContext())
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected errors.Is to reach the panicked error, got %v", err)
	}
}

func TestRecoveryWithHandler(t *testing.T) {
	custom := errors.New("handled")
	mw := RecoveryWithHandler(func(p any, command string, stack []byte) error {
		if p != "test panic" || command != "test" {
			t.Errorf("unexpected handler input %v %s", p, command)
		}
		return custom
	})
	if err := mw(panicAction)(NewMockContext()); !errors.Is(err, custom) {
		t.Errorf("Expected handler error, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	ctx := NewMockContext()
	slow := func(ctx Context) error {
		<-ctx.Done()
		return nil
	}

	err := Timeout(20 * time.Millisecond)(slow)(ctx)
	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected TimeoutError, got %v", err)
	}
	if !ctx.cancelled {
		t.Error("Expected context to be cancelled")
	}

	if err := Timeout(time.Second)(successAction)(NewMockContext()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	err = Timeout(time.Second)(panicAction)(NewMockContext())
	var recoveryErr *RecoveryError
	if !errors.As(err, &recoveryErr) {
		t.Errorf("Expected RecoveryError from timed action, got %v", err)
	}
}
