package dispatch

import (
	"iter"

	"github.com/go-drift/widgetcore/pkg/tree"
)

// ID identifies an entity to its parent in notifications.
type ID uint8

// Entity is anything that lives in the hierarchy and receives messages.
// Implementations embed Base, which supplies the hierarchy links, and
// override HandleMessage.
type Entity interface {
	// HandleMessage processes one message and returns a result. Zero means
	// "not handled"; FlagStopOnSuccess stops at the first non-zero result.
	HandleMessage(kind Kind, param1, param2 any) int

	base() *Base
}

// Releaser is implemented by entities that hold resources to free when
// Dispatcher.Destroy tears them down.
type Releaser interface {
	Release()
}

// Display is the flush capability of the display driver.
type Display interface {
	Flush(bounds Rect)
}

// Base is the embeddable core of every entity: hierarchy links, an
// identifier, and a rectangle relative to the parent's top-left corner.
//
//	type Button struct {
//	    dispatch.Base
//	    pressed bool
//	}
//
//	b := &Button{}
//	b.Init(b, 3, d.Root(), dispatch.RectOf(10, 10, 80, 24))
type Base struct {
	node   tree.Node[Entity]
	id     ID
	bounds Rect
}

// NewBase creates a plain container entity whose handler ignores every
// message.
func NewBase(id ID, parent Entity, bounds Rect) *Base {
	b := &Base{}
	b.Init(b, id, parent, bounds)
	return b
}

// Init sets up b as the embedded base of self and, when parent is not nil,
// appends self as parent's last child. A nil self makes b its own entity.
func (b *Base) Init(self Entity, id ID, parent Entity, bounds Rect) {
	if self == nil {
		self = b
	}
	b.node.Init(self)
	b.id = id
	b.bounds = bounds
	if parent != nil {
		parent.base().node.AppendChild(&b.node)
	}
}

// base returns b, making a zero-value Base its own entity on first use.
func (b *Base) base() *Base {
	if b.node.Owner() == nil {
		b.node.Init(b)
	}
	return b
}

// HandleMessage is the default handler; it handles nothing.
func (b *Base) HandleMessage(Kind, any, any) int { return 0 }

// ID returns the entity identifier.
func (b *Base) ID() ID { return b.id }

// Bounds returns the rectangle relative to the parent.
func (b *Base) Bounds() Rect { return b.bounds }

// SetBounds replaces the rectangle relative to the parent.
func (b *Base) SetBounds(r Rect) { b.bounds = r }

// Move shifts the entity by dx, dy relative to its current position.
func (b *Base) Move(dx, dy int) { b.bounds = b.bounds.Translate(dx, dy) }

// AbsoluteBounds returns the rectangle in screen coordinates by adding the
// top-left corner of every ancestor.
func (b *Base) AbsoluteBounds() Rect {
	r := b.bounds
	for p := b.node.Parent(); p != nil; p = p.Parent() {
		pb := p.Owner().base().bounds
		r = r.Translate(pb.XMin, pb.YMin)
	}
	return r
}

// Self returns the entity that embeds b, or b itself when Init was never
// called.
func (b *Base) Self() Entity { return b.base().node.Owner() }

// Parent returns the parent entity, or nil.
func (b *Base) Parent() Entity {
	if p := b.node.Parent(); p != nil {
		return p.Owner()
	}
	return nil
}

// Attach appends child as the last child of b. Attaching a current child
// again does nothing. A child whose Base was never initialised is attached
// as a plain Base and receives the default handler.
func (b *Base) Attach(child Entity) {
	b.base().node.AppendChild(&child.base().node)
}

// Detach removes b from its parent, keeping its own children.
func (b *Base) Detach() { b.node.Detach() }

// Children yields the direct children in insertion order.
func (b *Base) Children() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for c := range b.node.Children() {
			if !yield(c.Owner()) {
				return
			}
		}
	}
}

// Node exposes the hierarchy node for callers that drive their own walks.
func (b *Base) Node() *tree.Node[Entity] { return &b.node }

// Rect is an inclusive pixel rectangle.
type Rect struct {
	XMin, YMin, XMax, YMax int
}

// RectOf returns the rectangle with top-left corner x, y and the given size.
func RectOf(x, y, width, height int) Rect {
	return Rect{XMin: x, YMin: y, XMax: x + width - 1, YMax: y + height - 1}
}

// Width returns the number of columns covered.
func (r Rect) Width() int { return r.XMax - r.XMin + 1 }

// Height returns the number of rows covered.
func (r Rect) Height() int { return r.YMax - r.YMin + 1 }

// Contains reports whether the point lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.XMin && x <= r.XMax && y >= r.YMin && y <= r.YMax
}

// Translate returns r shifted by dx, dy.
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{XMin: r.XMin + dx, YMin: r.YMin + dy, XMax: r.XMax + dx, YMax: r.YMax + dy}
}
