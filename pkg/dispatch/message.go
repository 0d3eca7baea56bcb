package dispatch

import (
	"strconv"
	"strings"
)

// Kind is a message opcode.
//
// Two directionality rules hold for every kind, including ones added by
// applications: redraw kinds are delivered pre-order (top-down), and
// pointer kinds are delivered post-order with FlagStopOnSuccess so only the
// deepest entity that accepts the event consumes it.
type Kind uint32

const (
	// MsgUpdate asks an entity to redraw itself. Delivered pre-order.
	MsgUpdate Kind = iota + 1
	// MsgPointerDown reports a pointer press. Param1 and Param2 carry the
	// x and y coordinates.
	MsgPointerDown
	// MsgPointerMove reports pointer motion. Queued motion events coalesce.
	MsgPointerMove
	// MsgPointerUp reports a pointer release.
	MsgPointerUp

	// NotifyButtonPressed tells a parent that a child button was pressed.
	NotifyButtonPressed
	// NotifyButtonReleased tells a parent that a child button was released.
	NotifyButtonReleased
	// NotifyMove tells a parent that a child moved.
	NotifyMove
	// NotifyApply tells a parent that a child applied a change.
	NotifyApply
	// NotifyCancel tells a parent that a child cancelled a change.
	NotifyCancel
	// NotifyPaint tells a parent that a child painted itself.
	NotifyPaint
	// NotifyUpdate tells a parent that a child handled MsgUpdate.
	NotifyUpdate
	// NotifyDestroy tells a parent that a child is being destroyed.
	NotifyDestroy
	// NotifyChange tells a parent that a child's value changed.
	NotifyChange
)

// MsgUser is the first kind available for application-defined messages.
const MsgUser Kind = 0x100

var kindNames = [...]string{
	MsgUpdate:            "update",
	MsgPointerDown:       "pointer-down",
	MsgPointerMove:       "pointer-move",
	MsgPointerUp:         "pointer-up",
	NotifyButtonPressed:  "notify-button-pressed",
	NotifyButtonReleased: "notify-button-released",
	NotifyMove:           "notify-move",
	NotifyApply:          "notify-apply",
	NotifyCancel:         "notify-cancel",
	NotifyPaint:          "notify-paint",
	NotifyUpdate:         "notify-update",
	NotifyDestroy:        "notify-destroy",
	NotifyChange:         "notify-change",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	if k >= MsgUser {
		return "user+" + strconv.FormatUint(uint64(k-MsgUser), 10)
	}
	return "kind(" + strconv.FormatUint(uint64(k), 10) + ")"
}

// IsPointer reports whether k is one of the pointer interaction kinds.
func (k Kind) IsPointer() bool {
	return k == MsgPointerDown || k == MsgPointerMove || k == MsgPointerUp
}

// IsNotify reports whether k is a parent notification kind.
func (k Kind) IsNotify() bool {
	return k >= NotifyButtonPressed && k <= NotifyChange
}

// Flags select the traversal order and early-termination policy of a
// delivery.
type Flags uint32

const (
	// FlagPostOrder walks children before their parent. Without it the
	// walk is pre-order.
	FlagPostOrder Flags = 1 << iota
	// FlagStopOnSuccess stops at the first handler that returns non-zero
	// and returns that value.
	FlagStopOnSuccess
	// FlagStopAfterFirst stops after the first visited entity, whatever it
	// returned.
	FlagStopAfterFirst
)

// PointerFlags is the delivery policy every pointer kind uses.
const PointerFlags = FlagPostOrder | FlagStopOnSuccess

func (f Flags) String() string {
	parts := make([]string, 0, 3)
	if f&FlagPostOrder != 0 {
		parts = append(parts, "post-order")
	} else {
		parts = append(parts, "pre-order")
	}
	if f&FlagStopOnSuccess != 0 {
		parts = append(parts, "stop-on-success")
	}
	if f&FlagStopAfterFirst != 0 {
		parts = append(parts, "stop-after-first")
	}
	return strings.Join(parts, "|")
}

// Event is a queued delivery request. Events are copied by value into and
// out of the mailbox.
type Event struct {
	// Target is the root of the subtree the event is delivered to.
	Target Entity
	// Kind is the message opcode.
	Kind Kind
	// Param1 and Param2 are opaque message parameters.
	Param1, Param2 any
	// Flags select traversal order and early termination.
	Flags Flags
}
