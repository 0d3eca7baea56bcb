package timer

import "sync"

// FakeSource provides a controllable tick count for deterministic tests.
// All methods are safe for concurrent use.
type FakeSource struct {
	mu    sync.Mutex
	ticks uint64
}

// Ticks returns the current fake tick count.
func (f *FakeSource) Ticks() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ticks
}

// Advance moves the count forward by n ticks.
func (f *FakeSource) Advance(n uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks += n
}

// Set sets the count to an exact value.
func (f *FakeSource) Set(n uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks = n
}
