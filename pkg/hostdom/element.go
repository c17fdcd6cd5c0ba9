package hostdom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// attrReflect marks attributes whose value lives in a richer structure.
type attrReflect uint8

const (
	reflectNone attrReflect = iota
	reflectClass
	reflectStyle
)

type attr struct {
	namespace string
	prefix    string
	local     string
	value     string
	reflect   attrReflect
}

// Attr is a read-only view of an attribute.
type Attr struct {
	Namespace string
	Prefix    string
	LocalName string
	Value     string
}

// Name returns the qualified attribute name.
func (a Attr) Name() string {
	if a.Prefix != "" {
		return a.Prefix + ":" + a.LocalName
	}
	return a.LocalName
}

// Element is an element node.
type Element struct {
	nodeBase

	namespace string
	prefix    string
	localName string

	children  []Node
	attrs     []attr
	classes   tokenList
	style     styleDeclaration
	props     map[string]any
	listeners map[string][]*registration
}

func newElement(doc *Document, namespace, qualifiedName string) *Element {
	prefix, local := splitQualified(qualifiedName)
	if isHTMLNamespace(namespace) {
		namespace = NamespaceHTML
		local = strings.ToLower(local)
	}
	e := &Element{
		nodeBase:  nodeBase{doc: doc},
		namespace: namespace,
		prefix:    prefix,
		localName: local,
	}
	e.classes.owner = e
	e.style.owner = e
	return e
}

// NodeType implements Node.
func (e *Element) NodeType() NodeType { return ElementNode }

// LocalName returns the element's local name.
func (e *Element) LocalName() string { return e.localName }

// TagName returns the qualified element name.
func (e *Element) TagName() string {
	if e.prefix != "" {
		return e.prefix + ":" + e.localName
	}
	return e.localName
}

// NamespaceURI returns the element's namespace.
func (e *Element) NamespaceURI() string { return e.namespace }

// Children returns a copy of the child list.
func (e *Element) Children() []Node {
	out := make([]Node, len(e.children))
	copy(out, e.children)
	return out
}

// ChildCount returns the number of children.
func (e *Element) ChildCount() int { return len(e.children) }

// FirstChild returns the first child, or nil.
func (e *Element) FirstChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

// LastChild returns the last child, or nil.
func (e *Element) LastChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[len(e.children)-1]
}

// TextContent returns the concatenated text of all descendant text nodes.
func (e *Element) TextContent() string {
	var b strings.Builder
	Walk(e, func(n Node) bool {
		if t, ok := n.(*Text); ok {
			b.WriteString(t.data)
		}
		return true
	})
	return b.String()
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

// isInclusiveAncestorOf reports whether e is n or an ancestor of n.
func (e *Element) isInclusiveAncestorOf(n Node) bool {
	for cur := n; cur != nil; {
		if other, ok := cur.(*Element); ok && other == e {
			return true
		}
		p := cur.Parent()
		if p == nil {
			return false
		}
		cur = p
	}
	return false
}

// checkInsert validates that child may become a child of e.
func (e *Element) checkInsert(child Node) error {
	if ce, ok := child.(*Element); ok && ce.isInclusiveAncestorOf(e) {
		return errors.New("E022").WithDetailf("<%s> is an ancestor of <%s>", ce.TagName(), e.TagName())
	}
	return nil
}

func detach(n Node) {
	b := n.base()
	if b.parent == nil {
		return
	}
	p := b.parent
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	b.parent = nil
}

func (e *Element) insertAt(i int, child Node, isViewRoot bool) {
	e.children = append(e.children, nil)
	copy(e.children[i+1:], e.children[i:])
	e.children[i] = child
	b := child.base()
	b.parent = e
	b.viewRoot = isViewRoot
}

// AppendChild appends child and returns it. A child with a parent is
// moved. It panics with an E022 error if child is an ancestor of e, and
// with an E004 error if child is not a hostdom node.
func (e *Element) AppendChild(child rnode.Node) rnode.Node {
	c := mustNode(child)
	if err := e.checkInsert(c); err != nil {
		panic(err)
	}
	detach(c)
	e.insertAt(len(e.children), c, false)
	return child
}

// InsertBefore inserts child before ref, or appends when ref is nil.
func (e *Element) InsertBefore(child, ref rnode.Node, isViewRoot bool) error {
	c, err := asNode(child)
	if err != nil {
		return err
	}
	if err := e.checkInsert(c); err != nil {
		return err
	}
	if rnode.IsNil(ref) {
		detach(c)
		e.insertAt(len(e.children), c, isViewRoot)
		return nil
	}
	r, err := asNode(ref)
	if err != nil {
		return err
	}
	if e.indexOf(r) < 0 {
		return errors.New("E021").WithDetailf("%s is not a child of <%s>", r.NodeType(), e.TagName())
	}
	if c == r {
		c.base().viewRoot = isViewRoot
		return nil
	}
	detach(c)
	e.insertAt(e.indexOf(r), c, isViewRoot)
	return nil
}

// RemoveChild detaches child, leaving its subtree intact.
func (e *Element) RemoveChild(child rnode.Node) error {
	c, err := asNode(child)
	if err != nil {
		return err
	}
	i := e.indexOf(c)
	if i < 0 {
		return errors.New("E020").WithDetailf("%s is not a child of <%s>", c.NodeType(), e.TagName())
	}
	e.children = append(e.children[:i], e.children[i+1:]...)
	c.base().parent = nil
	return nil
}

// ReplaceChildren removes every child and appends nodes in order.
func (e *Element) ReplaceChildren(nodes ...Node) {
	for _, c := range e.children {
		c.base().parent = nil
	}
	e.children = e.children[:0]
	for _, n := range nodes {
		e.AppendChild(n)
	}
}

// ---------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------

func (e *Element) normalizeName(name string) string {
	if e.namespace == NamespaceHTML {
		return strings.ToLower(name)
	}
	return name
}

func (e *Element) findAttr(namespace, local string) int {
	for i := range e.attrs {
		if e.attrs[i].namespace == namespace && e.attrs[i].local == local {
			return i
		}
	}
	return -1
}

func reflectFor(namespace, local string) attrReflect {
	if namespace != "" {
		return reflectNone
	}
	switch local {
	case "class":
		return reflectClass
	case "style":
		return reflectStyle
	}
	return reflectNone
}

func (e *Element) setAttr(namespace, prefix, local, value string) {
	rf := reflectFor(namespace, local)
	i := e.findAttr(namespace, local)
	if i < 0 {
		e.attrs = append(e.attrs, attr{namespace: namespace, prefix: prefix, local: local, reflect: rf})
		i = len(e.attrs) - 1
	}
	a := &e.attrs[i]
	a.prefix = prefix
	switch rf {
	case reflectClass:
		e.classes.parse(value)
	case reflectStyle:
		e.style.parse(value)
	default:
		a.value = value
	}
}

func (e *Element) removeAttr(namespace, local string) {
	i := e.findAttr(namespace, local)
	if i < 0 {
		return
	}
	switch e.attrs[i].reflect {
	case reflectClass:
		e.classes.tokens = nil
	case reflectStyle:
		e.style.props = nil
	}
	e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
}

// ensureReflected makes sure a class or style attribute is present once
// the corresponding structure has been touched.
func (e *Element) ensureReflected(rf attrReflect) {
	local := "class"
	if rf == reflectStyle {
		local = "style"
	}
	if e.findAttr("", local) < 0 {
		e.attrs = append(e.attrs, attr{local: local, reflect: rf})
	}
}

func (e *Element) attrValue(a *attr) string {
	switch a.reflect {
	case reflectClass:
		return e.classes.String()
	case reflectStyle:
		return e.style.CSSText()
	}
	return a.value
}

// SetAttribute sets a non-namespaced attribute.
func (e *Element) SetAttribute(name, value string) {
	e.setAttr("", "", e.normalizeName(name), value)
}

// RemoveAttribute removes a non-namespaced attribute. Namespaced
// attributes with the same local name are not affected.
func (e *Element) RemoveAttribute(name string) {
	e.removeAttr("", e.normalizeName(name))
}

// SetAttributeNS sets the attribute identified by (namespaceURI, local
// name). An empty namespace is the same as SetAttribute.
func (e *Element) SetAttributeNS(namespaceURI, qualifiedName, value string) {
	namespaceURI = ResolveNamespace(namespaceURI)
	prefix, local := splitQualified(qualifiedName)
	if namespaceURI == "" {
		e.setAttr("", "", e.normalizeName(qualifiedName), value)
		return
	}
	e.setAttr(namespaceURI, prefix, local, value)
}

// RemoveAttributeNS removes the attribute identified by (namespaceURI,
// localName).
func (e *Element) RemoveAttributeNS(namespaceURI, localName string) {
	namespaceURI = ResolveNamespace(namespaceURI)
	if namespaceURI == "" {
		e.removeAttr("", e.normalizeName(localName))
		return
	}
	e.removeAttr(namespaceURI, localName)
}

// GetAttribute returns a non-namespaced attribute.
func (e *Element) GetAttribute(name string) (string, bool) {
	i := e.findAttr("", e.normalizeName(name))
	if i < 0 {
		return "", false
	}
	return e.attrValue(&e.attrs[i]), true
}

// GetAttributeNS returns the attribute identified by (namespaceURI,
// localName).
func (e *Element) GetAttributeNS(namespaceURI, localName string) (string, bool) {
	namespaceURI = ResolveNamespace(namespaceURI)
	if namespaceURI == "" {
		return e.GetAttribute(localName)
	}
	i := e.findAttr(namespaceURI, localName)
	if i < 0 {
		return "", false
	}
	return e.attrValue(&e.attrs[i]), true
}

// HasAttribute reports whether a non-namespaced attribute is present.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.GetAttribute(name)
	return ok
}

// Attributes returns the attributes in insertion order.
func (e *Element) Attributes() []Attr {
	out := make([]Attr, 0, len(e.attrs))
	for i := range e.attrs {
		a := &e.attrs[i]
		out = append(out, Attr{
			Namespace: a.namespace,
			Prefix:    a.prefix,
			LocalName: a.local,
			Value:     e.attrValue(a),
		})
	}
	return out
}

// ID returns the id attribute.
func (e *Element) ID() string {
	id, _ := e.GetAttribute("id")
	return id
}

// Style returns the inline style declaration.
func (e *Element) Style() rnode.StyleDeclaration { return &e.style }

// ClassList returns the class token list.
func (e *Element) ClassList() rnode.TokenList { return &e.classes }

// ---------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------

// SetProperty sets a live property. id and className reflect to
// attributes and textContent replaces the children; every other name is
// stored on the element and never serialized.
func (e *Element) SetProperty(name string, value any) {
	switch name {
	case "id":
		e.SetAttribute("id", propString(value))
	case "className":
		e.SetAttribute("class", propString(value))
	case "textContent", "innerText":
		text := propString(value)
		if text == "" {
			e.ReplaceChildren()
			return
		}
		e.ReplaceChildren(e.doc.NewText(text))
	default:
		if e.props == nil {
			e.props = make(map[string]any)
		}
		e.props[name] = value
	}
}

// Property returns a live property previously set with SetProperty.
func (e *Element) Property(name string) (any, bool) {
	switch name {
	case "id":
		return e.ID(), true
	case "className":
		return e.classes.String(), true
	case "textContent", "innerText":
		return e.TextContent(), true
	}
	v, ok := e.props[name]
	return v, ok
}

func propString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
