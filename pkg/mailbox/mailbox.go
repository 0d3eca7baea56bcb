// Package mailbox provides a fixed-capacity circular queue of value records
// with an advisory single-owner lock and in-place overwrite of the newest
// record.
//
// A Mailbox does not synchronize its own operations. The lock is advisory:
// a caller that shares a Mailbox between contexts must bracket every access
// with TryLock and Unlock, because nothing inside the queue enforces it.
package mailbox

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrCapacity is returned by New when the slot count cannot hold any item.
var ErrCapacity = errors.New("mailbox: capacity must be at least 2")

// Mailbox is a ring buffer of T. One slot is always left empty to tell a
// full queue from an empty one, so a Mailbox built with n slots holds at
// most n-1 items.
type Mailbox[T any] struct {
	slots []T
	read  int
	write int
	lock  atomic.Bool
}

// New allocates a Mailbox with the given number of slots.
func New[T any](slots int) (*Mailbox[T], error) {
	if slots < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrCapacity, slots)
	}
	return &Mailbox[T]{slots: make([]T, slots)}, nil
}

// TryLock attempts a single compare-and-swap of the lock from free to held.
// It never spins; the caller decides whether and how to retry.
func (m *Mailbox[T]) TryLock() bool {
	return m.lock.CompareAndSwap(false, true)
}

// Unlock releases the lock taken by TryLock.
func (m *Mailbox[T]) Unlock() {
	m.lock.Store(false)
}

// Locked reports whether the advisory lock is currently held.
func (m *Mailbox[T]) Locked() bool {
	return m.lock.Load()
}

// Enqueue copies item into the slot at the write position. It returns
// false without touching the queue when the queue is full.
func (m *Mailbox[T]) Enqueue(item T) bool {
	next := (m.write + 1) % len(m.slots)
	if next == m.read {
		return false
	}
	m.slots[m.write] = item
	m.write = next
	return true
}

// Dequeue removes and returns the oldest item. It returns false when the
// queue is empty.
func (m *Mailbox[T]) Dequeue() (T, bool) {
	var zero T
	if m.read == m.write {
		return zero, false
	}
	item := m.slots[m.read]
	m.slots[m.read] = zero
	m.read = (m.read + 1) % len(m.slots)
	return item, true
}

// Peek returns the oldest item without removing it.
func (m *Mailbox[T]) Peek() (T, bool) {
	if m.read == m.write {
		var zero T
		return zero, false
	}
	return m.slots[m.read], true
}

// PeekNewest returns the most recently enqueued item that has not been
// dequeued yet.
func (m *Mailbox[T]) PeekNewest() (T, bool) {
	if m.read == m.write {
		var zero T
		return zero, false
	}
	return m.slots[m.prev(m.write)], true
}

// OverwriteNewest replaces the most recently enqueued, still unread item
// in place. Neither index moves. It returns false when the queue is empty.
func (m *Mailbox[T]) OverwriteNewest(item T) bool {
	if m.read == m.write {
		return false
	}
	m.slots[m.prev(m.write)] = item
	return true
}

// Len returns the number of queued items.
func (m *Mailbox[T]) Len() int {
	return (m.write - m.read + len(m.slots)) % len(m.slots)
}

// Cap returns the number of items the queue can hold, one less than the
// slot count.
func (m *Mailbox[T]) Cap() int {
	return len(m.slots) - 1
}

// IsEmpty reports whether no items are queued.
func (m *Mailbox[T]) IsEmpty() bool {
	return m.read == m.write
}

// IsFull reports whether the next Enqueue would fail.
func (m *Mailbox[T]) IsFull() bool {
	return (m.write+1)%len(m.slots) == m.read
}

func (m *Mailbox[T]) prev(i int) int {
	if i == 0 {
		return len(m.slots) - 1
	}
	return i - 1
}
