// Package timer keeps the millisecond tick count that widgets read for
// blink rates, long-press detection, and similar timing.
package timer

import "sync/atomic"

// Source provides the current tick count. The default is a Counter that
// the board's 1 ms interrupt (or a ticker goroutine) advances. Tests can
// inject their own via SetSource.
type Source interface {
	Ticks() uint64
}

// Counter is a monotonically increasing tick count safe to advance from one
// context while others read it.
type Counter struct {
	n atomic.Uint64
}

// Inc advances the counter by one tick.
func (c *Counter) Inc() { c.n.Add(1) }

// Ticks returns the number of ticks since the counter was created.
func (c *Counter) Ticks() uint64 { return c.n.Load() }

var (
	counter = &Counter{}
	source  atomic.Pointer[Source]
)

func init() {
	var s Source = counter
	source.Store(&s)
}

// SetSource replaces the package-level tick source. Returns the previous
// source so callers can restore it during cleanup. A nil source restores
// the built-in counter.
func SetSource(s Source) Source {
	if s == nil {
		s = counter
	}
	return *source.Swap(&s)
}

// Inc advances the built-in counter. Call it once per millisecond.
func Inc() { counter.Inc() }

// Ticks returns the current tick count from the active source.
func Ticks() uint64 { return (*source.Load()).Ticks() }
