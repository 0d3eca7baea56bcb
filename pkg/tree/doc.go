// Package tree provides an intrusive hierarchy node with two resumable,
// stackless depth-first traversals.
//
// A Node stores only three links: parent, next sibling, and first child.
// Both traversal primitives take the previously visited node as a cursor
// and return the next one, which lets a caller interleave work (including
// releasing the node it just visited) between steps:
//
//	for n := root.PreOrderNext(nil); n != nil; n = root.PreOrderNext(n) {
//	    visit(n.Owner())
//	}
//
// When a step may invalidate the current node, compute the next cursor
// first:
//
//	for n := root.PostOrderNext(nil); n != nil; {
//	    next := root.PostOrderNext(n)
//	    release(n)
//	    n = next
//	}
//
// Note that the second pattern is only safe when release does not change
// the links the next step already consumed.
package tree
