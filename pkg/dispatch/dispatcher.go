package dispatch

import (
	stderrors "errors"
	"runtime"
	"sync"

	"github.com/go-drift/widgetcore/pkg/errors"
	"github.com/go-drift/widgetcore/pkg/mailbox"
	"github.com/go-drift/widgetcore/pkg/tree"
)

// DefaultCapacity is the number of mailbox slots used when no capacity is
// configured. One slot stays empty, so 15 events can be pending.
const DefaultCapacity = 16

var (
	// ErrQueueFull is returned by Post when the mailbox has no free slot.
	ErrQueueFull = stderrors.New("dispatch: event queue full")
	// ErrBusy is returned by Post when another context holds the mailbox
	// lock. Post never retries; the caller may drop or retry the event.
	ErrBusy = stderrors.New("dispatch: event queue busy")
)

// Dispatcher owns the event mailbox and the root entity, and delivers
// messages through the hierarchy.
//
// Post may be called from any goroutine, including one that interrupts a
// running DrainQueue. Send, ParentNotify, DrainQueue, Destroy, and every
// change to the hierarchy belong to a single context (the main loop).
type Dispatcher struct {
	queue    *mailbox.Mailbox[Event]
	root     *Base
	observer Observer
	recover  bool
}

type options struct {
	capacity   int
	rootBounds Rect
	observer   Observer
	recover    bool
}

// Option configures a Dispatcher.
type Option func(*options)

// WithCapacity sets the number of mailbox slots.
func WithCapacity(slots int) Option {
	return func(o *options) { o.capacity = slots }
}

// WithRootBounds sets the rectangle of the root entity, usually the screen.
func WithRootBounds(r Rect) Option {
	return func(o *options) { o.rootBounds = r }
}

// WithObserver attaches an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithRecover makes Send recover handler panics. A recovered panic is
// reported through errors.ReportPanic and counts as a zero result.
func WithRecover(enabled bool) Option {
	return func(o *options) { o.recover = enabled }
}

// New creates a Dispatcher with its own mailbox and root entity.
func New(opts ...Option) (*Dispatcher, error) {
	o := options{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.observer == nil {
		o.observer = nopObserver{}
	}

	queue, err := mailbox.New[Event](o.capacity)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		queue:    queue,
		root:     NewBase(0, nil, o.rootBounds),
		observer: o.observer,
		recover:  o.recover,
	}, nil
}

var (
	defaultOnce       sync.Once
	defaultDispatcher *Dispatcher
)

// Default returns the process-wide dispatcher, creating it with default
// options on first use. It is never torn down.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		d, err := New()
		if err != nil {
			panic(err)
		}
		defaultDispatcher = d
	})
	return defaultDispatcher
}

// Root returns the root entity. It has no parent and no siblings.
func (d *Dispatcher) Root() *Base {
	return d.root
}

// Post queues an event for delivery by DrainQueue. A nil target means the
// root.
//
// A MsgPointerMove posted while the newest queued event is also a
// MsgPointerMove replaces that event in place instead of taking a new slot,
// so at most one pending motion event accumulates per burst.
func (d *Dispatcher) Post(target Entity, kind Kind, param1, param2 any, flags Flags) error {
	if target == nil {
		target = d.root
	}
	ev := Event{Target: target, Kind: kind, Param1: param1, Param2: param2, Flags: flags}

	if !d.queue.TryLock() {
		d.observer.EventDropped(kind, ErrBusy)
		return ErrBusy
	}

	coalesced := false
	var ok bool
	if kind == MsgPointerMove {
		if last, found := d.queue.PeekNewest(); found && last.Kind == MsgPointerMove {
			ok = d.queue.OverwriteNewest(ev)
			coalesced = true
		}
	}
	if !coalesced {
		ok = d.queue.Enqueue(ev)
	}
	d.queue.Unlock()

	switch {
	case !ok:
		d.observer.EventDropped(kind, ErrQueueFull)
		return ErrQueueFull
	case coalesced:
		d.observer.EventCoalesced(kind)
	default:
		d.observer.EventPosted(kind)
	}
	return nil
}

// PointerMessage posts a pointer event at x, y to the root with the
// bottom-up, stop-on-success policy.
func (d *Dispatcher) PointerMessage(kind Kind, x, y int) error {
	return d.Post(d.root, kind, x, y, PointerFlags)
}

// Send delivers a message synchronously to every entity of target's
// subtree, target included, and returns when the walk ends. A nil target
// means the root.
//
// The walk is pre-order unless FlagPostOrder is set. With
// FlagStopOnSuccess it ends at the first non-zero result and returns it;
// with FlagStopAfterFirst it ends after the first entity and returns its
// result. Otherwise every entity is visited and Send returns 0.
//
// Handlers must not change the hierarchy during a Send.
func (d *Dispatcher) Send(target Entity, kind Kind, param1, param2 any, flags Flags) int {
	if target == nil {
		target = d.root
	}
	top := &target.base().node

	next := top.PreOrderNext
	if flags&FlagPostOrder != 0 {
		next = top.PostOrderNext
	}

	visited := 0
	for n := next(nil); n != nil; n = next(n) {
		visited++
		result := d.deliver(n.Owner(), kind, param1, param2)
		if (result != 0 && flags&FlagStopOnSuccess != 0) || flags&FlagStopAfterFirst != 0 {
			d.observer.MessageDelivered(kind, visited, result)
			return result
		}
	}

	d.observer.MessageDelivered(kind, visited, 0)
	return 0
}

func (d *Dispatcher) deliver(e Entity, kind Kind, param1, param2 any) (result int) {
	if d.recover {
		defer errors.RecoverMessage("dispatch.Send", kind.String(), func(any) { result = 0 })
	}
	return e.HandleMessage(kind, param1, param2)
}

// ParentNotify sends kind to the parent of e and to nothing else. Param1
// is e's ID and Param2 is e itself. It returns the parent's result, or 0
// when e has no parent.
func (d *Dispatcher) ParentNotify(e Entity, kind Kind) int {
	b := e.base()
	p := b.node.Parent()
	if p == nil {
		return 0
	}
	return d.Send(p.Owner(), kind, b.id, e, FlagStopAfterFirst)
}

// Update asks e and all of its descendants to redraw, parents first.
func (d *Dispatcher) Update(e Entity) {
	d.Send(e, MsgUpdate, nil, nil, 0)
}

// Flush pushes the screen area of e to the display.
func (d *Dispatcher) Flush(e Entity, display Display) {
	if e == nil {
		e = d.root
	}
	display.Flush(e.base().AbsoluteBounds())
}

// DrainQueue delivers queued events one at a time, in FIFO order, until
// the queue is empty, and returns how many it delivered. Events posted
// while draining, by handlers or by interrupting producers, are delivered
// before it returns.
func (d *Dispatcher) DrainQueue() int {
	delivered := 0
	for {
		ev, ok := d.dequeue()
		if !ok {
			return delivered
		}
		d.Send(ev.Target, ev.Kind, ev.Param1, ev.Param2, ev.Flags)
		delivered++
	}
}

// dequeue takes the mailbox lock for one removal. The drain loop is the
// only consumer and may yield, so it waits for a producer to finish.
func (d *Dispatcher) dequeue() (Event, bool) {
	for !d.queue.TryLock() {
		runtime.Gosched()
	}
	defer d.queue.Unlock()
	return d.queue.Dequeue()
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int {
	for !d.queue.TryLock() {
		runtime.Gosched()
	}
	defer d.queue.Unlock()
	return d.queue.Len()
}

// Destroy detaches e from the hierarchy and releases e and all of its
// descendants, children before parents. Before each entity is released its
// parent receives NotifyDestroy; e's former parent is notified last.
// Entities implementing Releaser have Release called.
//
// The root cannot be destroyed; Destroy(d.Root()) does nothing.
func (d *Dispatcher) Destroy(e Entity) {
	if e == nil {
		return
	}
	b := e.base()
	if b == d.root {
		return
	}

	former := b.node.Parent()
	b.node.Detach()

	top := &b.node
	for n := top.PostOrderNext(nil); n != nil && n != top; {
		// The next cursor must be taken before n is released.
		next := top.PostOrderNext(n)
		d.ParentNotify(n.Owner(), NotifyDestroy)
		release(n)
		n = next
	}

	if former != nil {
		d.Send(former.Owner(), NotifyDestroy, b.id, e, FlagStopAfterFirst)
	}
	release(top)
}

func release(n *tree.Node[Entity]) {
	n.Reset()
	if r, ok := n.Owner().(Releaser); ok {
		r.Release()
	}
}
