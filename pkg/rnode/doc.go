// Package rnode defines the node capabilities a host environment must
// provide to be used as a rendering target.
//
// The interfaces are capability sets, not a class hierarchy: any host type
// that has the methods is a legal Node, Element, Text or Comment. Concrete
// implementations live elsewhere (hostdom for an in-memory tree, proxy for
// inert handles whose mutations are shipped to another goroutine or process).
//
// # Absence
//
// The nil interface value is the single absence convention. It is the
// "no reference" argument of InsertBefore (insert at the end) and the
// "not found" result of a selector query. IsNil also treats typed-nil
// handles as absent.
//
// # Contract Violations
//
// Removing a node that is not a child of the receiver, or inserting before
// a reference that is not a child, returns ErrNotChild or ErrRefNotChild.
// Implementations signal these rather than silently succeeding.
package rnode
