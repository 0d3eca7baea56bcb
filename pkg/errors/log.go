package errors

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	defaultLoggerOnce sync.Once
	defaultLogger     zerolog.Logger
)

func stderrLogger() *zerolog.Logger {
	defaultLoggerOnce.Do(func() {
		defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			With().
			Timestamp().
			Logger()
	})
	return &defaultLogger
}

// LogHandler is an ErrorHandler that writes reports through zerolog.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Logger receives the reports. Nil logs to stderr.
	Logger *zerolog.Logger
}

func (h *LogHandler) logger() *zerolog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return stderrLogger()
}

// HandleError logs a DispatchError.
func (h *LogHandler) HandleError(err *DispatchError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().
		Str("op", err.Op).
		Stringer("kind", err.Kind).
		Err(err.Err)
	if err.Message != "" {
		ev = ev.Str("event", err.Message)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("dispatch error")
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	ev := h.logger().Error().Interface("value", err.Value)
	if err.Op != "" {
		ev = ev.Str("op", err.Op)
	}
	if err.Message != "" {
		ev = ev.Str("event", err.Message)
	}
	if h.Verbose && err.StackTrace != "" {
		ev = ev.Str("stack", err.StackTrace)
	}
	ev.Msg("dispatch panic")
}
