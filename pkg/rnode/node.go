package rnode

import (
	"reflect"

	"github.com/vango-dev/hostrender/internal/errors"
)

// Contract violations reported by node implementations.
var (
	ErrNotChild    = errors.New("E020")
	ErrRefNotChild = errors.New("E021")
	ErrHierarchy   = errors.New("E022")
)

// Node is any participant of the host tree.
type Node interface {
	// AppendChild inserts child as the last child and returns it.
	// A child that already has a parent is moved.
	AppendChild(child Node) Node

	// InsertBefore inserts child immediately before ref, or at the end
	// when ref is nil. isViewRoot marks a dynamic view spliced into an
	// anchor position; it never changes the resulting tree shape.
	InsertBefore(child, ref Node, isViewRoot bool) error

	// RemoveChild detaches child from the receiver. The subtree under
	// child is left intact.
	RemoveChild(child Node) error
}

// Element is a Node with attributes, styles, classes and listeners.
type Element interface {
	Node

	Style() StyleDeclaration
	ClassList() TokenList

	// SetAttribute and RemoveAttribute operate on non-namespaced
	// attributes only.
	SetAttribute(name, value string)
	RemoveAttribute(name string)

	// SetAttributeNS and RemoveAttributeNS operate on the attribute
	// identified by (namespaceURI, local name). qualifiedName may carry
	// a prefix ("xlink:href").
	SetAttributeNS(namespaceURI, qualifiedName, value string)
	RemoveAttributeNS(namespaceURI, localName string)

	AddEventListener(eventType string, l *Listener, opts ListenerOptions)
	RemoveEventListener(eventType string, l *Listener, opts ListenerOptions)
}

// PropertySetter is an optional Element capability for live host
// properties (a form control's current value, for example) as opposed to
// serialized attributes.
type PropertySetter interface {
	SetProperty(name string, value any)
}

// Text is a Node whose only payload is its text value.
type Text interface {
	Node
	TextContent() string
	SetTextContent(value string)
}

// Comment is a Node used as a structural anchor.
type Comment interface {
	Node
	CommentData() string
}

// StyleDeclaration is the mutable inline style of an Element.
type StyleDeclaration interface {
	SetProperty(name, value, priority string)
	RemoveProperty(name string) string
	GetPropertyValue(name string) string
}

// TokenList is the class membership set of an Element.
type TokenList interface {
	Add(tokens ...string)
	Remove(tokens ...string)
	Contains(token string) bool
}

// IsNil reports whether n is absent. Typed-nil pointers count as absent so
// that a nil *hostdom.Element passed as a Node is not mistaken for a node.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	}
	return false
}
