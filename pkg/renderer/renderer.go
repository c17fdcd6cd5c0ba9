package renderer

import (
	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// Renderer misuse errors.
var (
	ErrRendererDestroyed = errors.New("E001")
	ErrUnsupportedRoot   = errors.New("E002")
	ErrRootNotFound      = errors.New("E003")
	ErrForeignNode       = errors.New("E004")
	ErrUnsupported       = errors.New("E005")
)

// ObjectRenderer manufactures nodes that mutate themselves afterwards.
type ObjectRenderer interface {
	CreateElement(tagName string) rnode.Element
	CreateTextNode(data string) rnode.Text
	CreateComment(data string) rnode.Comment

	// QuerySelector returns the first matching element, or nil.
	QuerySelector(selectors string) rnode.Element
}

// NamespacedCreator is an optional ObjectRenderer capability for creating
// elements in a namespace (SVG, MathML).
type NamespacedCreator interface {
	CreateElementNS(namespaceURI, qualifiedName string) rnode.Element
}

// StyleFlags modify SetStyle.
type StyleFlags uint8

const (
	StyleImportant StyleFlags = 1 << iota
)

// FuncRenderer routes every creation and mutation through itself.
type FuncRenderer interface {
	// Destroy disposes the renderer. Subsequent calls fail with
	// ErrRendererDestroyed.
	Destroy()

	CreateElement(name, namespace string) (rnode.Element, error)
	CreateComment(value string) (rnode.Comment, error)
	CreateText(value string) (rnode.Text, error)

	AppendChild(parent rnode.Element, child rnode.Node) error
	// InsertBefore inserts child before ref; a nil ref appends.
	InsertBefore(parent rnode.Node, child, ref rnode.Node) error
	RemoveChild(parent rnode.Element, child rnode.Node) error

	// SelectRootElement resolves the host element of a component from a
	// selector string or a node reference.
	SelectRootElement(selectorOrNode any) (rnode.Element, error)

	// SetAttribute and RemoveAttribute act on the namespaced attribute
	// when namespace is non-empty and on the plain attribute otherwise.
	SetAttribute(el rnode.Element, name, value, namespace string) error
	RemoveAttribute(el rnode.Element, name, namespace string) error

	AddClass(el rnode.Element, name string) error
	RemoveClass(el rnode.Element, name string) error
	SetStyle(el rnode.Element, style, value string, flags StyleFlags) error
	RemoveStyle(el rnode.Element, style string) error

	// SetProperty sets a live host property, not a serialized attribute.
	SetProperty(el rnode.Element, name string, value any) error
	SetValue(node rnode.Text, value string) error

	// Listen registers h and returns its unregistration function. The
	// Disposer is never nil, even when err is non-nil.
	Listen(target rnode.Node, eventName string, h rnode.Handler) (Disposer, error)
}

// NodeDestroyer is an optional FuncRenderer hook run when the engine
// destroys a node, beyond structural removal.
type NodeDestroyer interface {
	DestroyNode(node rnode.Node)
}

// Kind identifies the active variant of a Renderer.
type Kind uint8

const (
	KindNone Kind = iota
	KindObject
	KindFunc
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindFunc:
		return "func"
	default:
		return "none"
	}
}

// Renderer is a tagged union over the two variants.
type Renderer struct {
	kind Kind
	obj  ObjectRenderer
	fn   FuncRenderer

	// destroyNode is resolved once at construction; nil means the host
	// has no extra teardown.
	destroyNode func(rnode.Node)
}

// FromObject wraps an object-variant renderer.
func FromObject(r ObjectRenderer) Renderer {
	if r == nil {
		return Renderer{}
	}
	return Renderer{kind: KindObject, obj: r}
}

// FromFunc wraps a functional-variant renderer.
func FromFunc(r FuncRenderer) Renderer {
	if r == nil {
		return Renderer{}
	}
	out := Renderer{kind: KindFunc, fn: r}
	if d, ok := r.(NodeDestroyer); ok {
		out.destroyNode = d.DestroyNode
	}
	return out
}

// Kind returns the active variant.
func (r Renderer) Kind() Kind { return r.kind }

// IsZero reports whether r holds no renderer.
func (r Renderer) IsZero() bool { return r.kind == KindNone }

// Object returns the object-variant renderer, if active.
func (r Renderer) Object() (ObjectRenderer, bool) {
	return r.obj, r.kind == KindObject
}

// Func returns the functional-variant renderer, if active.
func (r Renderer) Func() (FuncRenderer, bool) {
	return r.fn, r.kind == KindFunc
}

// HasDestroyNode reports whether the destroy-node hook is present.
func (r Renderer) HasDestroyNode() bool { return r.destroyNode != nil }

// DestroyNode runs the destroy-node hook if present.
func (r Renderer) DestroyNode(node rnode.Node) {
	if r.destroyNode != nil {
		r.destroyNode(node)
	}
}

// Destroy disposes a functional renderer. Object renderers have no
// destroyed state and are left untouched.
func (r Renderer) Destroy() {
	if r.kind == KindFunc {
		r.fn.Destroy()
	}
}
