// Package errors provides structured error reporting for widgetcore.
//
// The dispatch core itself reports failures only through return values.
// This package is where callers (the CLI, drivers, and the dispatcher's
// optional panic recovery) send errors they want observed.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindCapacity indicates the event mailbox was full.
	KindCapacity
	// KindContention indicates the mailbox lock was held by another context.
	KindContention
	// KindConfig indicates a configuration load or validation failure.
	KindConfig
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindDriver indicates a pointer or display driver failure.
	KindDriver
)

func (k ErrorKind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindContention:
		return "contention"
	case KindConfig:
		return "config"
	case KindPanic:
		return "panic"
	case KindDriver:
		return "driver"
	default:
		return "unknown"
	}
}

// DispatchError represents a structured error raised around message
// dispatch.
type DispatchError struct {
	// Op is the operation that failed (e.g., "driver.PointerMessage").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Message is the message kind involved, if applicable.
	Message string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *DispatchError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s [%s] message=%s: %v", e.Op, e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "dispatch.Send").
	Op string
	// Message is the message kind being delivered, if any.
	Message string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives reported errors.
type ErrorHandler interface {
	// HandleError is called when an error is reported.
	HandleError(err *DispatchError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
