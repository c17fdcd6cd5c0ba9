package proxy

import (
	"strings"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/protocol"
	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

type handleNode interface {
	base() *handle
}

// handle is the identity shared by all node handles. parent and kids
// mirror the tree as sent and are guarded by r.mu.
type handle struct {
	r  *Renderer
	id protocol.NodeID

	parent *handle
	kids   map[*handle]struct{}
}

// link records c as a child of p. A link that would close a cycle is
// skipped; the host rejects that op.
func link(p, c *handle) {
	for a := p; a != nil; a = a.parent {
		if a == c {
			return
		}
	}
	unlink(c)
	if p.kids == nil {
		p.kids = make(map[*handle]struct{})
	}
	p.kids[c] = struct{}{}
	c.parent = p
}

func unlink(c *handle) {
	if c.parent != nil {
		delete(c.parent.kids, c)
		c.parent = nil
	}
}

// walk calls fn for h and every handle linked below it.
func (h *handle) walk(fn func(*handle)) {
	fn(h)
	for k := range h.kids {
		k.walk(fn)
	}
}

func (h *handle) base() *handle { return h }

// ID returns the node's wire identifier.
func (h *handle) ID() protocol.NodeID { return h.id }

// Renderer returns the renderer that created the node.
func (h *handle) Renderer() *Renderer { return h.r }

// mirror keeps the engine-visible part of an element's style and class
// state, so reads do not need a round trip.
type mirror struct {
	styles  map[string]string
	classes []string
}

func (m *mirror) addClass(token string) {
	if token == "" || strings.ContainsAny(token, " \t\n\f\r") {
		return
	}
	for _, c := range m.classes {
		if c == token {
			return
		}
	}
	m.classes = append(m.classes, token)
}

func (m *mirror) removeClass(token string) {
	for i, c := range m.classes {
		if c == token {
			m.classes = append(m.classes[:i], m.classes[i+1:]...)
			return
		}
	}
}

// Element is an element handle.
type Element struct {
	handle
	m *mirror
}

var (
	_ rnode.Element        = (*Element)(nil)
	_ rnode.PropertySetter = (*Element)(nil)
	_ rnode.Text           = (*Text)(nil)
	_ rnode.Comment        = (*Comment)(nil)
)

func (e *Element) mirror(fn func(*mirror)) {
	e.r.mu.Lock()
	defer e.r.mu.Unlock()
	if e.m == nil {
		e.m = &mirror{styles: make(map[string]string)}
	}
	fn(e.m)
}

// AppendChild appends child and returns it. Failures surface on the next
// Flush.
func (e *Element) AppendChild(child rnode.Node) rnode.Node {
	e.r.deferErr(e.r.AppendChild(e, child))
	return child
}

// InsertBefore inserts child before ref, or at the end when ref is nil.
func (e *Element) InsertBefore(child, ref rnode.Node, isViewRoot bool) error {
	return e.r.insertBefore(e, child, ref, isViewRoot)
}

// RemoveChild detaches child.
func (e *Element) RemoveChild(child rnode.Node) error {
	return e.r.RemoveChild(e, child)
}

func (e *Element) Style() rnode.StyleDeclaration { return styleHandle{e} }

func (e *Element) ClassList() rnode.TokenList { return classHandle{e} }

func (e *Element) SetAttribute(name, value string) {
	e.r.deferErr(e.r.SetAttribute(e, name, value, ""))
}

func (e *Element) RemoveAttribute(name string) {
	e.r.deferErr(e.r.RemoveAttribute(e, name, ""))
}

func (e *Element) SetAttributeNS(namespaceURI, qualifiedName, value string) {
	if namespaceURI == "" {
		e.SetAttribute(qualifiedName, value)
		return
	}
	e.r.deferErr(e.r.SetAttribute(e, qualifiedName, value, namespaceURI))
}

func (e *Element) RemoveAttributeNS(namespaceURI, localName string) {
	if namespaceURI == "" {
		e.RemoveAttribute(localName)
		return
	}
	e.r.deferErr(e.r.RemoveAttribute(e, localName, namespaceURI))
}

func (e *Element) SetProperty(name string, value any) {
	e.r.deferErr(e.r.SetProperty(e, name, value))
}

// AddEventListener registers l on the host. A second registration of the
// same (type, listener, capture) is ignored.
func (e *Element) AddEventListener(eventType string, l *rnode.Listener, opts rnode.ListenerOptions) {
	if l == nil {
		return
	}
	key := domKey{node: e.id, typ: eventType, l: l, capture: opts.Capture}
	e.r.mu.Lock()
	_, dup := e.r.dom[key]
	e.r.mu.Unlock()
	if dup {
		return
	}

	name := eventType
	if opts.Capture {
		name += ".capture"
	}
	dispose, err := e.r.Listen(e, name, func(ev *rnode.Event) {
		if opts.Once {
			e.RemoveEventListener(eventType, l, opts)
		}
		l.Handle(ev)
	})
	if err != nil {
		e.r.deferErr(err)
		return
	}
	e.r.mu.Lock()
	e.r.dom[key] = dispose
	e.r.mu.Unlock()
}

// RemoveEventListener undoes a matching AddEventListener.
func (e *Element) RemoveEventListener(eventType string, l *rnode.Listener, opts rnode.ListenerOptions) {
	key := domKey{node: e.id, typ: eventType, l: l, capture: opts.Capture}
	e.r.mu.Lock()
	dispose, ok := e.r.dom[key]
	delete(e.r.dom, key)
	e.r.mu.Unlock()
	if ok {
		dispose()
	}
}

type styleHandle struct{ e *Element }

func (s styleHandle) SetProperty(name, value, priority string) {
	var flags renderer.StyleFlags
	if priority == "important" {
		flags = renderer.StyleImportant
	}
	s.e.r.deferErr(s.e.r.SetStyle(s.e, name, value, flags))
}

// RemoveProperty returns the last value set through this renderer.
func (s styleHandle) RemoveProperty(name string) string {
	old := s.GetPropertyValue(name)
	s.e.r.deferErr(s.e.r.RemoveStyle(s.e, name))
	return old
}

func (s styleHandle) GetPropertyValue(name string) string {
	var v string
	s.e.mirror(func(m *mirror) { v = m.styles[name] })
	return v
}

type classHandle struct{ e *Element }

func (c classHandle) Add(tokens ...string) {
	for _, t := range tokens {
		c.e.r.deferErr(c.e.r.AddClass(c.e, t))
	}
}

func (c classHandle) Remove(tokens ...string) {
	for _, t := range tokens {
		c.e.r.deferErr(c.e.r.RemoveClass(c.e, t))
	}
}

func (c classHandle) Contains(token string) bool {
	var found bool
	c.e.mirror(func(m *mirror) {
		for _, t := range m.classes {
			if t == token {
				found = true
				return
			}
		}
	})
	return found
}

// Text is a text node handle. It remembers the last value sent.
type Text struct {
	handle
	value string
}

func (t *Text) TextContent() string {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	return t.value
}

func (t *Text) SetTextContent(value string) {
	t.r.deferErr(t.r.SetValue(t, value))
}

func (t *Text) AppendChild(child rnode.Node) rnode.Node {
	t.r.deferErr(leafError("text"))
	return child
}

func (t *Text) InsertBefore(child, ref rnode.Node, isViewRoot bool) error {
	return leafError("text")
}

func (t *Text) RemoveChild(child rnode.Node) error {
	return errors.New("E020").WithDetail("text nodes have no children")
}

// Comment is a comment node handle.
type Comment struct {
	handle
	data string
}

func (c *Comment) CommentData() string { return c.data }

func (c *Comment) AppendChild(child rnode.Node) rnode.Node {
	c.r.deferErr(leafError("comment"))
	return child
}

func (c *Comment) InsertBefore(child, ref rnode.Node, isViewRoot bool) error {
	return leafError("comment")
}

func (c *Comment) RemoveChild(child rnode.Node) error {
	return errors.New("E020").WithDetail("comment nodes have no children")
}

func leafError(kind string) error {
	return errors.New("E022").WithDetailf("%s nodes cannot have children", kind)
}
