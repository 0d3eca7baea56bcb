// Package dispatch delivers messages through a hierarchy of widgets.
//
// Every dispatchable widget embeds Base and overrides HandleMessage. A
// Dispatcher owns the root entity and a bounded event mailbox, and offers
// two ways to deliver a message:
//
//   - Send walks the target's subtree immediately, pre-order (parents
//     first) or post-order (children first), optionally stopping at the
//     first success or after the first entity.
//   - Post queues the message; DrainQueue later delivers queued messages
//     in order. Post is the only operation safe to call from a producer
//     that interrupts the main loop, such as a touch driver.
//
// # Delivery conventions
//
// Redraw requests (MsgUpdate) travel top-down so enclosing widgets draw
// before the widgets inside them. Pointer events travel bottom-up with
// FlagStopOnSuccess so the deepest widget under the pointer consumes the
// event before its containers see it:
//
//	d.PointerMessage(dispatch.MsgPointerDown, x, y)
//	d.DrainQueue()
//
// A widget tells its container about a state change with ParentNotify,
// which reaches exactly the parent:
//
//	d.ParentNotify(b, dispatch.NotifyButtonPressed)
//
// # Destruction
//
// Destroy tears down a live subtree. It walks the subtree post-order,
// computing each next step before releasing the current entity, and sends
// NotifyDestroy to each released entity's parent.
//
// # Concurrency
//
// The mailbox is guarded by a single-owner lock taken with one
// compare-and-swap. Post never waits for it: on contention it returns
// ErrBusy. DrainQueue, the single consumer, yields until the lock is free.
// The lock is never held while a handler runs, so handlers may Post.
// Hierarchy links have no lock and must only change on the main loop.
package dispatch
