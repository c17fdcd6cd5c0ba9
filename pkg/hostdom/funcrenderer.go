package hostdom

import (
	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// FuncRenderer is a functional-variant renderer over a Document.
type FuncRenderer struct {
	doc       *Document
	destroyed bool

	// shared is the renderer this one is a view of, if any.
	shared *FuncRenderer
}

var (
	_ renderer.FuncRenderer   = (*FuncRenderer)(nil)
	_ renderer.NodeDestroyer  = (*FuncRenderer)(nil)
	_ renderer.ObjectRenderer = (*Document)(nil)
)

// NewFuncRenderer returns a functional renderer creating nodes in doc.
func NewFuncRenderer(doc *Document) *FuncRenderer {
	return &FuncRenderer{doc: doc}
}

// Document returns the underlying document.
func (r *FuncRenderer) Document() *Document { return r.doc }

// View returns a renderer over the same document with its own destroyed
// state. Destroying the view leaves r usable; destroying r fails every
// view.
func (r *FuncRenderer) View() *FuncRenderer {
	return &FuncRenderer{doc: r.doc, shared: r}
}

// Destroyed reports whether Destroy has been called on r, or on the
// renderer r is a view of.
func (r *FuncRenderer) Destroyed() bool {
	return r.destroyed || (r.shared != nil && r.shared.Destroyed())
}

// Destroy implements renderer.FuncRenderer. It is idempotent.
func (r *FuncRenderer) Destroy() { r.destroyed = true }

func (r *FuncRenderer) check() error {
	if r.Destroyed() {
		return errors.New("E001")
	}
	return nil
}

// own converts n and verifies it was created by r's document.
func (r *FuncRenderer) own(n rnode.Node) (Node, error) {
	hn, err := asNode(n)
	if err != nil {
		return nil, err
	}
	if hn.OwnerDocument() != r.doc {
		return nil, errors.New("E004").WithDetail("node belongs to another document")
	}
	return hn, nil
}

func (r *FuncRenderer) element(n rnode.Node) (*Element, error) {
	hn, err := r.own(n)
	if err != nil {
		return nil, err
	}
	el, ok := hn.(*Element)
	if !ok {
		return nil, errors.New("E004").WithDetailf("%s node is not an element", hn.NodeType())
	}
	return el, nil
}

// CreateElement creates an element, in namespace when non-empty.
func (r *FuncRenderer) CreateElement(name, namespace string) (rnode.Element, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	if namespace == "" {
		return r.doc.NewElement(name), nil
	}
	return r.doc.NewElementNS(namespace, name), nil
}

// CreateComment creates a comment node.
func (r *FuncRenderer) CreateComment(value string) (rnode.Comment, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.doc.NewComment(value), nil
}

// CreateText creates a text node.
func (r *FuncRenderer) CreateText(value string) (rnode.Text, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	return r.doc.NewText(value), nil
}

// AppendChild appends child to parent.
func (r *FuncRenderer) AppendChild(parent rnode.Element, child rnode.Node) error {
	if err := r.check(); err != nil {
		return err
	}
	p, err := r.element(parent)
	if err != nil {
		return err
	}
	c, err := r.own(child)
	if err != nil {
		return err
	}
	if err := p.checkInsert(c); err != nil {
		return err
	}
	p.AppendChild(c)
	return nil
}

// InsertBefore inserts child before ref under parent. A nil ref appends.
func (r *FuncRenderer) InsertBefore(parent rnode.Node, child, ref rnode.Node) error {
	if err := r.check(); err != nil {
		return err
	}
	p, err := r.element(parent)
	if err != nil {
		return err
	}
	c, err := r.own(child)
	if err != nil {
		return err
	}
	if rnode.IsNil(ref) {
		return p.InsertBefore(c, nil, false)
	}
	rf, err := r.own(ref)
	if err != nil {
		return err
	}
	return p.InsertBefore(c, rf, false)
}

// RemoveChild detaches child from parent.
func (r *FuncRenderer) RemoveChild(parent rnode.Element, child rnode.Node) error {
	if err := r.check(); err != nil {
		return err
	}
	p, err := r.element(parent)
	if err != nil {
		return err
	}
	c, err := r.own(child)
	if err != nil {
		return err
	}
	return p.RemoveChild(c)
}

// SelectRootElement resolves a selector string against the document, or
// accepts an element of the document as is.
func (r *FuncRenderer) SelectRootElement(selectorOrNode any) (rnode.Element, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	switch v := selectorOrNode.(type) {
	case string:
		sel, err := Compile(v)
		if err != nil {
			return nil, err
		}
		el := Find(r.doc.root, sel)
		if el == nil {
			return nil, errors.New("E003").WithDetail(v)
		}
		return el, nil
	case rnode.Node:
		return r.element(v)
	default:
		return nil, errors.New("E002").WithDetailf("%T", selectorOrNode)
	}
}

// SetAttribute sets the namespaced attribute when namespace is non-empty
// and the plain attribute otherwise.
func (r *FuncRenderer) SetAttribute(el rnode.Element, name, value, namespace string) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	if namespace == "" {
		e.SetAttribute(name, value)
	} else {
		e.SetAttributeNS(namespace, name, value)
	}
	return nil
}

// RemoveAttribute removes the namespaced attribute when namespace is
// non-empty and the plain attribute otherwise. A prefixed name is reduced
// to its local name.
func (r *FuncRenderer) RemoveAttribute(el rnode.Element, name, namespace string) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	if namespace == "" {
		e.RemoveAttribute(name)
	} else {
		_, local := splitQualified(name)
		e.RemoveAttributeNS(namespace, local)
	}
	return nil
}

// AddClass adds a class token.
func (r *FuncRenderer) AddClass(el rnode.Element, name string) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	e.classes.Add(name)
	return nil
}

// RemoveClass removes a class token.
func (r *FuncRenderer) RemoveClass(el rnode.Element, name string) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	e.classes.Remove(name)
	return nil
}

// SetStyle sets an inline style property.
func (r *FuncRenderer) SetStyle(el rnode.Element, style, value string, flags renderer.StyleFlags) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	priority := ""
	if flags&renderer.StyleImportant != 0 {
		priority = "important"
	}
	e.style.SetProperty(style, value, priority)
	return nil
}

// RemoveStyle removes an inline style property.
func (r *FuncRenderer) RemoveStyle(el rnode.Element, style string) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	e.style.RemoveProperty(style)
	return nil
}

// SetProperty sets a live property.
func (r *FuncRenderer) SetProperty(el rnode.Element, name string, value any) error {
	if err := r.check(); err != nil {
		return err
	}
	e, err := r.element(el)
	if err != nil {
		return err
	}
	e.SetProperty(name, value)
	return nil
}

// SetValue replaces the value of a text node.
func (r *FuncRenderer) SetValue(node rnode.Text, value string) error {
	if err := r.check(); err != nil {
		return err
	}
	n, err := r.own(node)
	if err != nil {
		return err
	}
	t, ok := n.(*Text)
	if !ok {
		return errors.New("E004").WithDetailf("%s node is not a text node", n.NodeType())
	}
	t.data = value
	return nil
}

// Listen registers h for eventName on target. The returned Disposer
// removes it and is never nil.
func (r *FuncRenderer) Listen(target rnode.Node, eventName string, h rnode.Handler) (renderer.Disposer, error) {
	if err := r.check(); err != nil {
		return renderer.NopDisposer, err
	}
	e, err := r.element(target)
	if err != nil {
		return renderer.NopDisposer, err
	}
	if h == nil {
		return renderer.NopDisposer, nil
	}
	typ, opts := renderer.ParseEventName(eventName)
	l := rnode.NewListener(h)
	e.AddEventListener(typ, l, opts)
	return renderer.NewDisposer(func() {
		e.RemoveEventListener(typ, l, opts)
	}), nil
}

// DestroyNode removes every listener registered in node's subtree. It is
// safe to call after Destroy.
func (r *FuncRenderer) DestroyNode(node rnode.Node) {
	n, err := asNode(node)
	if err != nil {
		return
	}
	Walk(n, func(c Node) bool {
		if el, ok := c.(*Element); ok {
			el.removeAllListeners()
		}
		return true
	})
}
