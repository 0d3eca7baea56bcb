package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errFull = stderrors.New("queue full")

func TestDispatchErrorString(t *testing.T) {
	err := &DispatchError{
		Op:   "driver.PointerMessage",
		Kind: KindCapacity,
		Err:  errFull,
	}
	want := "driver.PointerMessage [capacity]: queue full"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestDispatchErrorWithMessage(t *testing.T) {
	err := &DispatchError{
		Op:      "dispatch.Post",
		Kind:    KindContention,
		Message: "pointer-move",
		Err:     errFull,
	}
	got := err.Error()
	want := "message=pointer-move"
	if !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestDispatchErrorUnwrap(t *testing.T) {
	err := &DispatchError{Op: "x", Err: errFull}
	if !stderrors.Is(err, errFull) {
		t.Error("expected errors.Is to find the wrapped error")
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindCapacity, "capacity"},
		{KindContention, "contention"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
		{KindDriver, "driver"},
		{ErrorKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorStringWithOp(t *testing.T) {
	err := &PanicError{
		Op:        "dispatch.Send",
		Value:     "test panic",
		Timestamp: time.Now(),
	}
	got := err.Error()
	want := "panic in dispatch.Send: test panic"
	if got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var capturedErr *DispatchError
	handler := &testHandler{
		onError: func(err *DispatchError) {
			capturedErr = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(&DispatchError{
		Op:   "test.op",
		Kind: KindConfig,
		Err:  errFull,
	})

	if capturedErr == nil {
		t.Fatal("expected error to be captured")
	}
	if capturedErr.Op != "test.op" {
		t.Errorf("Op = %q, want %q", capturedErr.Op, "test.op")
	}
	if capturedErr.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportNil(t *testing.T) {
	called := false
	handler := &testHandler{
		onError: func(*DispatchError) { called = true },
		onPanic: func(*PanicError) { called = true },
	}
	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(nil)
	ReportPanic(nil)

	if called {
		t.Error("expected nil reports to be ignored")
	}
}

func TestRecover(t *testing.T) {
	var capturedPanic *PanicError
	handler := &testHandler{
		onPanic: func(err *PanicError) {
			capturedPanic = err
		},
	}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if capturedPanic == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if capturedPanic.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", capturedPanic.Value, "intentional test panic")
	}
	if capturedPanic.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", capturedPanic.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(7)
	}()

	if got != 7 {
		t.Errorf("callback value = %v, want 7", got)
	}
}

func TestRecoverMessage(t *testing.T) {
	var captured *PanicError
	oldHandler := DefaultHandler
	SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(oldHandler)

	result := -1
	func() {
		defer RecoverMessage("dispatch.Send", "pointer-up", func(any) { result = 0 })
		panic("handler failed")
	}()

	if result != 0 {
		t.Errorf("callback not run, result = %d", result)
	}
	if captured == nil {
		t.Fatal("expected panic to be reported")
	}
	if captured.Op != "dispatch.Send" || captured.Message != "pointer-up" || captured.Value != "handler failed" {
		t.Errorf("captured = %+v", captured)
	}
	if captured.StackTrace == "" {
		t.Error("expected a stack trace")
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if DefaultHandler == nil {
		t.Error("SetHandler(nil) should set default LogHandler, not nil")
	}
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := &LogHandler{Verbose: true, Logger: &logger}

	h.HandleError(&DispatchError{
		Op:         "dispatch.Post",
		Kind:       KindCapacity,
		Message:    "pointer-down",
		Err:        errFull,
		StackTrace: "frame",
	})
	h.HandlePanic(&PanicError{Op: "dispatch.Send", Value: "boom"})
	h.HandleError(nil)
	h.HandlePanic(nil)

	out := buf.String()
	for _, want := range []string{
		`"op":"dispatch.Post"`,
		`"kind":"capacity"`,
		`"event":"pointer-down"`,
		`"error":"queue full"`,
		`"stack":"frame"`,
		`"value":"boom"`,
		`"message":"dispatch panic"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("expected 2 log lines, got %d", n)
	}
}

type testHandler struct {
	onError func(*DispatchError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *DispatchError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
