package dispatch

// Observer receives dispatch activity. The dispatcher logs nothing on its
// own; attach an Observer to count or trace what happens.
//
// Observer methods may be called from any context that posts, so
// implementations must be safe for concurrent use and must not block.
type Observer interface {
	// EventPosted is called after an event was appended to the queue.
	EventPosted(kind Kind)
	// EventCoalesced is called after a motion event replaced the queued one.
	EventCoalesced(kind Kind)
	// EventDropped is called when Post fails; reason is ErrQueueFull or ErrBusy.
	EventDropped(kind Kind, reason error)
	// MessageDelivered is called when a Send finishes, with the number of
	// entities visited and the value Send returns.
	MessageDelivered(kind Kind, visited, result int)
}

type nopObserver struct{}

func (nopObserver) EventPosted(Kind)                {}
func (nopObserver) EventCoalesced(Kind)             {}
func (nopObserver) EventDropped(Kind, error)        {}
func (nopObserver) MessageDelivered(Kind, int, int) {}
