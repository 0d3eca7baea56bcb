package mailbox

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type record struct {
	kind   int
	p1, p2 int
}

func mustNew[T any](t *testing.T, slots int) *Mailbox[T] {
	t.Helper()
	m, err := New[T](slots)
	if err != nil {
		t.Fatalf("New(%d) error: %v", slots, err)
	}
	return m
}

func TestNew_RejectsSmallCapacity(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if _, err := New[int](n); !errors.Is(err, ErrCapacity) {
			t.Errorf("New(%d) error = %v, want ErrCapacity", n, err)
		}
	}
}

func TestEnqueue_FillsToCapacityMinusOne(t *testing.T) {
	const slots = 16
	m := mustNew[int](t, slots)
	if m.IsFull() {
		t.Fatal("empty queue reports full")
	}

	for i := 0; i < slots-1; i++ {
		if !m.Enqueue(i) {
			t.Fatalf("Enqueue(%d) failed before capacity", i)
		}
	}
	if !m.IsFull() {
		t.Error("expected queue to report full")
	}
	if m.Enqueue(99) {
		t.Fatal("expected Enqueue to fail on a full queue")
	}
	if got := m.Len(); got != slots-1 {
		t.Errorf("Len() = %d, want %d", got, slots-1)
	}
	if got := m.Cap(); got != slots-1 {
		t.Errorf("Cap() = %d, want %d", got, slots-1)
	}

	if v, ok := m.Dequeue(); !ok || v != 0 {
		t.Fatalf("Dequeue() = %d, %v, want 0, true", v, ok)
	}
	if m.IsFull() {
		t.Error("queue reports full after a Dequeue")
	}
	if !m.Enqueue(100) {
		t.Fatal("expected Enqueue to succeed after one Dequeue")
	}
	if m.Enqueue(101) {
		t.Fatal("expected queue to be full again")
	}
}

func TestFIFO_AcrossWraparound(t *testing.T) {
	m := mustNew[int](t, 4)
	var got []int
	next := 0
	for round := 0; round < 10; round++ {
		for m.Enqueue(next) {
			next++
		}
		v, _ := m.Dequeue()
		got = append(got, v)
	}
	for {
		v, ok := m.Dequeue()
		if !ok {
			break
		}
		got = append(got, v)
	}

	want := make([]int, next)
	for i := range want {
		want[i] = i
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestDequeue_Empty(t *testing.T) {
	m := mustNew[record](t, 4)
	if v, ok := m.Dequeue(); ok || v != (record{}) {
		t.Fatalf("Dequeue() on empty = %+v, %v", v, ok)
	}
	if _, ok := m.Peek(); ok {
		t.Fatal("expected Peek to fail on empty queue")
	}
	if _, ok := m.PeekNewest(); ok {
		t.Fatal("expected PeekNewest to fail on empty queue")
	}
	if m.OverwriteNewest(record{kind: 1}) {
		t.Fatal("expected OverwriteNewest to fail on empty queue")
	}
}

func TestPeek_DoesNotConsume(t *testing.T) {
	m := mustNew[record](t, 4)
	m.Enqueue(record{kind: 1})
	m.Enqueue(record{kind: 2})

	for i := 0; i < 3; i++ {
		v, ok := m.Peek()
		if !ok || v.kind != 1 {
			t.Fatalf("Peek() = %+v, %v, want kind 1", v, ok)
		}
	}
	if v, _ := m.PeekNewest(); v.kind != 2 {
		t.Errorf("PeekNewest().kind = %d, want 2", v.kind)
	}
	if got := m.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestOverwriteNewest(t *testing.T) {
	m := mustNew[record](t, 4)
	m.Enqueue(record{kind: 1, p1: 1})
	m.Enqueue(record{kind: 3, p1: 10, p2: 10})

	if !m.OverwriteNewest(record{kind: 3, p1: 20, p2: 30}) {
		t.Fatal("OverwriteNewest failed")
	}
	if got := m.Len(); got != 2 {
		t.Fatalf("Len() = %d, want 2", got)
	}

	first, _ := m.Dequeue()
	second, _ := m.Dequeue()
	if diff := cmp.Diff([]record{{kind: 1, p1: 1}, {kind: 3, p1: 20, p2: 30}}, []record{first, second}, cmp.AllowUnexported(record{})); diff != "" {
		t.Errorf("contents mismatch (-want +got):\n%s", diff)
	}
}

func TestOverwriteNewest_AtSlotZeroBoundary(t *testing.T) {
	m := mustNew[int](t, 3)
	// Advance so the write index wraps to slot 0.
	m.Enqueue(1)
	m.Enqueue(2)
	m.Dequeue()
	m.Enqueue(3)

	if !m.OverwriteNewest(30) {
		t.Fatal("OverwriteNewest failed")
	}
	if v, _ := m.PeekNewest(); v != 30 {
		t.Errorf("PeekNewest() = %d, want 30", v)
	}
	a, _ := m.Dequeue()
	b, _ := m.Dequeue()
	if a != 2 || b != 30 {
		t.Errorf("got %d, %d, want 2, 30", a, b)
	}
}

func TestPeekNewest_AcrossWraparound(t *testing.T) {
	m := mustNew[int](t, 3)
	m.Enqueue(1)
	m.Enqueue(2)
	m.Dequeue()
	m.Dequeue()
	// read == write == 2; the next item lands in the last slot and the
	// write index wraps to 0.
	m.Enqueue(3)
	if v, ok := m.PeekNewest(); !ok || v != 3 {
		t.Fatalf("PeekNewest() = %d, %v, want 3, true", v, ok)
	}
	m.Enqueue(4)
	if v, ok := m.PeekNewest(); !ok || v != 4 {
		t.Errorf("PeekNewest() = %d, %v, want 4, true", v, ok)
	}
	if v, _ := m.Peek(); v != 3 {
		t.Errorf("Peek() = %d, want 3", v)
	}
	if !m.IsFull() {
		t.Error("expected queue to report full")
	}
}

func TestTryLock(t *testing.T) {
	m := mustNew[int](t, 2)
	if !m.TryLock() {
		t.Fatal("expected first TryLock to succeed")
	}
	if m.TryLock() {
		t.Fatal("expected second TryLock to fail while held")
	}
	if !m.Locked() {
		t.Error("expected Locked() to report true")
	}
	m.Unlock()
	if !m.TryLock() {
		t.Fatal("expected TryLock to succeed after Unlock")
	}
}

func TestConcurrentProducersWithLock(t *testing.T) {
	const producers, perProducer = 4, 200
	m := mustNew[int](t, 8)

	withLock := func(fn func()) {
		for !m.TryLock() {
			runtime.Gosched()
		}
		fn()
		m.Unlock()
	}

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; {
				var ok bool
				withLock(func() { ok = m.Enqueue(p*perProducer + i) })
				if ok {
					i++
				} else {
					runtime.Gosched()
				}
			}
		}(p)
	}

	seen := make(map[int]bool)
	lastPerProducer := make([]int, producers)
	for i := range lastPerProducer {
		lastPerProducer[i] = -1
	}
	for len(seen) < producers*perProducer {
		var v int
		var ok bool
		withLock(func() { v, ok = m.Dequeue() })
		if !ok {
			runtime.Gosched()
			continue
		}
		if seen[v] {
			t.Fatalf("value %d dequeued twice", v)
		}
		seen[v] = true
		p, i := v/perProducer, v%perProducer
		if i <= lastPerProducer[p] {
			t.Fatalf("producer %d out of order: %d after %d", p, i, lastPerProducer[p])
		}
		lastPerProducer[p] = i
	}
	wg.Wait()
}
