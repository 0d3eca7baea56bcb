package tree

import "iter"

// Node is an intrusive hierarchy link set. Embed it in any tree-shaped
// entity and call Init with the embedding value so traversals can hand the
// entity back through Owner.
//
// The links are weak: a Node never owns its parent, siblings, or children.
// Whoever constructs the embedding entity is responsible for releasing it.
type Node[T any] struct {
	parent *Node[T]
	next   *Node[T]
	child  *Node[T]
	owner  T
}

// Init records the entity that embeds this node.
func (n *Node[T]) Init(owner T) {
	n.owner = owner
}

// Owner returns the entity recorded by Init.
func (n *Node[T]) Owner() T {
	return n.owner
}

// Parent returns the node this node is attached to, or nil.
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// NextSibling returns the next node in the parent's child chain, or nil.
func (n *Node[T]) NextSibling() *Node[T] {
	return n.next
}

// FirstChild returns the first attached child, or nil.
func (n *Node[T]) FirstChild() *Node[T] {
	return n.child
}

// IsAttached reports whether the node has a parent.
func (n *Node[T]) IsAttached() bool {
	return n.parent != nil
}

// AppendChild attaches c as the last child of n, preserving insertion
// order. Appending a node that is already among n's children is a no-op.
// A node still attached to a different parent is detached from it first.
//
// Appending an ancestor of n creates a cycle; callers must not do that.
func (n *Node[T]) AppendChild(c *Node[T]) {
	if c == nil || c == n {
		return
	}
	if c.parent != nil && c.parent != n {
		c.Detach()
	}
	c.parent = n

	if n.child == nil {
		n.child = c
		return
	}

	last := n.child
	for {
		if last == c {
			return
		}
		if last.next == nil {
			break
		}
		last = last.next
	}
	last.next = c
}

// Detach removes n from its parent's child chain and clears its parent and
// sibling links. The children of n stay attached to n. Detaching a node
// without a parent does nothing.
func (n *Node[T]) Detach() {
	p := n.parent
	if p == nil {
		return
	}

	if p.child == n {
		p.child = n.next
	} else {
		prev := p.child
		for prev != nil && prev.next != n {
			prev = prev.next
		}
		if prev != nil {
			prev.next = n.next
		}
	}

	n.parent = nil
	n.next = nil
}

// PreOrderNext returns the node visited after cursor in a pre-order,
// depth-first walk of the subtree rooted at n. A nil cursor starts the walk
// at n; a nil result means the walk is complete.
//
// Only the parent, sibling, and child links are consulted, so the walk
// needs no stack and can be resumed from any previously returned node.
func (n *Node[T]) PreOrderNext(cursor *Node[T]) *Node[T] {
	if cursor == nil {
		return n
	}
	if cursor.child != nil {
		return cursor.child
	}
	for c := cursor; c != nil && c != n; c = c.parent {
		if c.next != nil {
			return c.next
		}
	}
	return nil
}

// PostOrderNext returns the node visited after cursor in a post-order,
// depth-first walk of the subtree rooted at n. A nil cursor starts the walk
// at the deepest descendant reached by always following the last child; a
// nil result means the walk is complete.
//
// Siblings are visited last-to-first, so the most recently attached (and
// therefore topmost drawn) sibling is reached before the ones beneath it.
// A node is always visited after all of its descendants, and n itself is
// visited last.
func (n *Node[T]) PostOrderNext(cursor *Node[T]) *Node[T] {
	if cursor == nil {
		return n.deepestLast()
	}
	if cursor == n {
		return nil
	}

	p := cursor.parent
	if p == nil {
		return nil
	}
	if p.child != cursor {
		prev := p.child
		for prev.next != cursor {
			prev = prev.next
		}
		return prev.deepestLast()
	}
	return p
}

// deepestLast descends from n through the last child at every level.
func (n *Node[T]) deepestLast() *Node[T] {
	c := n
	for c.child != nil {
		c = c.child
		for c.next != nil {
			c = c.next
		}
	}
	return c
}

// Reset clears all three links of n without updating its neighbours. Use it
// only on nodes whose parent and siblings are being discarded as well, such
// as during a destructive post-order walk.
func (n *Node[T]) Reset() {
	n.parent = nil
	n.next = nil
	n.child = nil
}

// Children yields the direct children of n in insertion order.
func (n *Node[T]) Children() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for c := n.child; c != nil; {
			next := c.next
			if !yield(c) {
				return
			}
			c = next
		}
	}
}

// PreOrder yields every node of the subtree rooted at n in pre-order.
// The tree must not be mutated while iterating.
func (n *Node[T]) PreOrder() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for c := n.PreOrderNext(nil); c != nil; c = n.PreOrderNext(c) {
			if !yield(c) {
				return
			}
		}
	}
}

// PostOrder yields every node of the subtree rooted at n in post-order.
// The tree must not be mutated while iterating.
func (n *Node[T]) PostOrder() iter.Seq[*Node[T]] {
	return func(yield func(*Node[T]) bool) {
		for c := n.PostOrderNext(nil); c != nil; c = n.PostOrderNext(c) {
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of nodes in the subtree rooted at n, n included.
func (n *Node[T]) Len() int {
	count := 0
	for range n.PreOrder() {
		count++
	}
	return count
}
