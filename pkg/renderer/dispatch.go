package renderer

import (
	"fmt"
	"strings"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// The helpers below are the engine's call sites. Each branches once on the
// active variant: object renderers are bypassed in favour of the node
// methods, functional renderers receive the call.

// CreateElement creates an element, in namespace when non-empty.
func CreateElement(r Renderer, name, namespace string) (rnode.Element, error) {
	switch r.kind {
	case KindFunc:
		return r.fn.CreateElement(name, namespace)
	case KindObject:
		if namespace == "" {
			return r.obj.CreateElement(name), nil
		}
		if nc, ok := r.obj.(NamespacedCreator); ok {
			return nc.CreateElementNS(namespace, name), nil
		}
		return nil, errUnsupported("namespaced createElement")
	}
	return nil, errNoRenderer()
}

// CreateText creates a text node.
func CreateText(r Renderer, value string) (rnode.Text, error) {
	switch r.kind {
	case KindFunc:
		return r.fn.CreateText(value)
	case KindObject:
		return r.obj.CreateTextNode(value), nil
	}
	return nil, errNoRenderer()
}

// CreateComment creates a comment node.
func CreateComment(r Renderer, value string) (rnode.Comment, error) {
	switch r.kind {
	case KindFunc:
		return r.fn.CreateComment(value)
	case KindObject:
		return r.obj.CreateComment(value), nil
	}
	return nil, errNoRenderer()
}

// AppendChild appends child to parent.
func AppendChild(r Renderer, parent rnode.Element, child rnode.Node) error {
	switch r.kind {
	case KindFunc:
		return r.fn.AppendChild(parent, child)
	case KindObject:
		parent.AppendChild(child)
		return nil
	}
	return errNoRenderer()
}

// InsertBefore inserts child before ref under parent; a nil ref appends.
// isViewRoot is forwarded to object-variant nodes.
func InsertBefore(r Renderer, parent rnode.Node, child, ref rnode.Node, isViewRoot bool) error {
	if rnode.IsNil(ref) {
		ref = nil
	}
	switch r.kind {
	case KindFunc:
		return r.fn.InsertBefore(parent, child, ref)
	case KindObject:
		return parent.InsertBefore(child, ref, isViewRoot)
	}
	return errNoRenderer()
}

// RemoveChild detaches child from parent.
func RemoveChild(r Renderer, parent rnode.Element, child rnode.Node) error {
	switch r.kind {
	case KindFunc:
		return r.fn.RemoveChild(parent, child)
	case KindObject:
		return parent.RemoveChild(child)
	}
	return errNoRenderer()
}

// SelectRootElement resolves a component host from a selector string or an
// element reference.
func SelectRootElement(r Renderer, selectorOrNode any) (rnode.Element, error) {
	switch r.kind {
	case KindFunc:
		return r.fn.SelectRootElement(selectorOrNode)
	case KindObject:
		switch v := selectorOrNode.(type) {
		case string:
			el := r.obj.QuerySelector(v)
			if rnode.IsNil(el) {
				return nil, errors.New("E003").WithDetail(v)
			}
			return el, nil
		case rnode.Element:
			return v, nil
		}
		return nil, errUnsupportedRoot(selectorOrNode)
	}
	return nil, errNoRenderer()
}

// SetAttribute sets a plain attribute, or a namespaced one when namespace
// is non-empty.
func SetAttribute(r Renderer, el rnode.Element, name, value, namespace string) error {
	switch r.kind {
	case KindFunc:
		return r.fn.SetAttribute(el, name, value, namespace)
	case KindObject:
		if namespace == "" {
			el.SetAttribute(name, value)
		} else {
			el.SetAttributeNS(namespace, name, value)
		}
		return nil
	}
	return errNoRenderer()
}

// RemoveAttribute removes a plain attribute, or a namespaced one when
// namespace is non-empty.
func RemoveAttribute(r Renderer, el rnode.Element, name, namespace string) error {
	switch r.kind {
	case KindFunc:
		return r.fn.RemoveAttribute(el, name, namespace)
	case KindObject:
		if namespace == "" {
			el.RemoveAttribute(name)
		} else {
			el.RemoveAttributeNS(namespace, name)
		}
		return nil
	}
	return errNoRenderer()
}

// AddClass adds a class token.
func AddClass(r Renderer, el rnode.Element, name string) error {
	switch r.kind {
	case KindFunc:
		return r.fn.AddClass(el, name)
	case KindObject:
		el.ClassList().Add(name)
		return nil
	}
	return errNoRenderer()
}

// RemoveClass removes a class token.
func RemoveClass(r Renderer, el rnode.Element, name string) error {
	switch r.kind {
	case KindFunc:
		return r.fn.RemoveClass(el, name)
	case KindObject:
		el.ClassList().Remove(name)
		return nil
	}
	return errNoRenderer()
}

// SetStyle sets an inline style property.
func SetStyle(r Renderer, el rnode.Element, style, value string, flags StyleFlags) error {
	switch r.kind {
	case KindFunc:
		return r.fn.SetStyle(el, style, value, flags)
	case KindObject:
		el.Style().SetProperty(style, value, flags.priority())
		return nil
	}
	return errNoRenderer()
}

// RemoveStyle removes an inline style property.
func RemoveStyle(r Renderer, el rnode.Element, style string) error {
	switch r.kind {
	case KindFunc:
		return r.fn.RemoveStyle(el, style)
	case KindObject:
		el.Style().RemoveProperty(style)
		return nil
	}
	return errNoRenderer()
}

// SetProperty sets a live host property. Object-variant elements must
// implement rnode.PropertySetter.
func SetProperty(r Renderer, el rnode.Element, name string, value any) error {
	switch r.kind {
	case KindFunc:
		return r.fn.SetProperty(el, name, value)
	case KindObject:
		ps, ok := el.(rnode.PropertySetter)
		if !ok {
			return errUnsupported(fmt.Sprintf("setProperty on %T", el))
		}
		ps.SetProperty(name, value)
		return nil
	}
	return errNoRenderer()
}

// SetValue replaces the value of a text node.
func SetValue(r Renderer, node rnode.Text, value string) error {
	switch r.kind {
	case KindFunc:
		return r.fn.SetValue(node, value)
	case KindObject:
		node.SetTextContent(value)
		return nil
	}
	return errNoRenderer()
}

// Listen registers h for eventName on target. The returned Disposer is
// never nil.
func Listen(r Renderer, target rnode.Node, eventName string, h rnode.Handler) (Disposer, error) {
	switch r.kind {
	case KindFunc:
		d, err := r.fn.Listen(target, eventName, h)
		if d == nil {
			d = NopDisposer
		}
		return d, err
	case KindObject:
		el, ok := target.(rnode.Element)
		if !ok || rnode.IsNil(el) {
			return NopDisposer, errUnsupported(fmt.Sprintf("listen on %T", target))
		}
		typ, opts := ParseEventName(eventName)
		l := rnode.NewListener(h)
		el.AddEventListener(typ, l, opts)
		return NewDisposer(func() {
			el.RemoveEventListener(typ, l, opts)
		}), nil
	}
	return NopDisposer, errNoRenderer()
}

// ParseEventName splits a Listen event name into the event type and its
// options. A ".capture" suffix selects the capture phase.
func ParseEventName(eventName string) (string, rnode.ListenerOptions) {
	typ, capture := strings.CutSuffix(eventName, ".capture")
	return typ, rnode.ListenerOptions{Capture: capture}
}

// DestroyNode runs the renderer's destroy-node hook when present.
func DestroyNode(r Renderer, node rnode.Node) {
	r.DestroyNode(node)
}

func (f StyleFlags) priority() string {
	if f&StyleImportant != 0 {
		return "important"
	}
	return ""
}

func errNoRenderer() error {
	return errors.New("E005").WithDetail("zero Renderer")
}

func errUnsupported(what string) error {
	return errors.New("E005").WithDetail(what)
}

func errUnsupportedRoot(v any) error {
	return errors.New("E002").WithDetailf("%T", v)
}
