// Package driver is the entry point for input drivers that have no handle
// on the application's dispatcher, such as a touch controller interrupt.
package driver

import (
	stderrors "errors"
	"sync"

	"github.com/go-drift/widgetcore/pkg/dispatch"
	"github.com/go-drift/widgetcore/pkg/errors"
)

var (
	registeredMu sync.RWMutex
	registered   *dispatch.Dispatcher
)

// Register sets the dispatcher that PointerMessage posts to. Passing nil
// falls back to dispatch.Default.
func Register(d *dispatch.Dispatcher) {
	registeredMu.Lock()
	registered = d
	registeredMu.Unlock()
}

// Dispatcher returns the registered dispatcher, or dispatch.Default when
// none is registered.
func Dispatcher() *dispatch.Dispatcher {
	registeredMu.RLock()
	d := registered
	registeredMu.RUnlock()
	if d == nil {
		return dispatch.Default()
	}
	return d
}

// PointerMessage queues a pointer event at x, y. A full or busy queue drops
// the event; the drop is reported through errors.Report and returned.
func PointerMessage(kind dispatch.Kind, x, y int) error {
	err := Dispatcher().PointerMessage(kind, x, y)
	if err == nil {
		return nil
	}

	errKind := errors.KindDriver
	switch {
	case stderrors.Is(err, dispatch.ErrQueueFull):
		errKind = errors.KindCapacity
	case stderrors.Is(err, dispatch.ErrBusy):
		errKind = errors.KindContention
	}
	errors.Report(&errors.DispatchError{
		Op:      "driver.PointerMessage",
		Kind:    errKind,
		Err:     err,
		Message: kind.String(),
	})
	return err
}
