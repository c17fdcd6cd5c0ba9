package hostdom

import "github.com/vango-dev/hostrender/pkg/rnode"

// Document owns node creation and the html/head/body skeleton. It is an
// object-variant renderer.
type Document struct {
	root *Element
	head *Element
	body *Element
}

// NewDocument returns a document containing <html><head></head><body></body></html>.
func NewDocument() *Document {
	d := &Document{}
	d.root = newElement(d, NamespaceHTML, "html")
	d.head = newElement(d, NamespaceHTML, "head")
	d.body = newElement(d, NamespaceHTML, "body")
	d.root.AppendChild(d.head)
	d.root.AppendChild(d.body)
	return d
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Element { return d.root }

// Head returns the <head> element.
func (d *Document) Head() *Element { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *Element { return d.body }

// NewElement creates an HTML element.
func (d *Document) NewElement(tagName string) *Element {
	return newElement(d, NamespaceHTML, tagName)
}

// NewElementNS creates an element in namespaceURI. Short names such as
// "svg" are resolved first.
func (d *Document) NewElementNS(namespaceURI, qualifiedName string) *Element {
	return newElement(d, ResolveNamespace(namespaceURI), qualifiedName)
}

// NewText creates a text node.
func (d *Document) NewText(data string) *Text {
	return &Text{nodeBase: nodeBase{doc: d}, data: data}
}

// NewComment creates a comment node.
func (d *Document) NewComment(data string) *Comment {
	return &Comment{nodeBase: nodeBase{doc: d}, data: data}
}

// CreateElement implements renderer.ObjectRenderer.
func (d *Document) CreateElement(tagName string) rnode.Element { return d.NewElement(tagName) }

// CreateElementNS implements renderer.NamespacedCreator.
func (d *Document) CreateElementNS(namespaceURI, qualifiedName string) rnode.Element {
	return d.NewElementNS(namespaceURI, qualifiedName)
}

// CreateTextNode implements renderer.ObjectRenderer.
func (d *Document) CreateTextNode(data string) rnode.Text { return d.NewText(data) }

// CreateComment implements renderer.ObjectRenderer.
func (d *Document) CreateComment(data string) rnode.Comment { return d.NewComment(data) }

// QuerySelector returns the first element in document order matching
// selectors. It returns nil when nothing matches or the selector does not
// parse.
func (d *Document) QuerySelector(selectors string) rnode.Element {
	sel, err := Compile(selectors)
	if err != nil {
		return nil
	}
	if el := Find(d.root, sel); el != nil {
		return el
	}
	return nil
}

// QuerySelectorAll returns every matching element in document order.
func (d *Document) QuerySelectorAll(selectors string) ([]*Element, error) {
	sel, err := Compile(selectors)
	if err != nil {
		return nil, err
	}
	return FindAll(d.root, sel), nil
}

// GetElementByID returns the first element whose id is id, or nil.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	Walk(d.root, func(n Node) bool {
		if el, ok := n.(*Element); ok && el.ID() == id {
			found = el
			return false
		}
		return found == nil
	})
	return found
}

// QuerySelector returns the first descendant of e matching selectors, or
// nil.
func (e *Element) QuerySelector(selectors string) (*Element, error) {
	sel, err := Compile(selectors)
	if err != nil {
		return nil, err
	}
	return findIn(e, sel), nil
}

// QuerySelectorAll returns the descendants of e matching selectors.
func (e *Element) QuerySelectorAll(selectors string) ([]*Element, error) {
	sel, err := Compile(selectors)
	if err != nil {
		return nil, err
	}
	var out []*Element
	for _, c := range e.children {
		out = append(out, FindAll(c, sel)...)
	}
	return out, nil
}

// Find returns the first element at or under root matching sel.
func Find(root Node, sel *Selector) *Element {
	var found *Element
	Walk(root, func(n Node) bool {
		if el, ok := n.(*Element); ok && sel.Match(el) {
			found = el
		}
		return found == nil
	})
	return found
}

// FindAll returns every element at or under root matching sel.
func FindAll(root Node, sel *Selector) []*Element {
	var out []*Element
	Walk(root, func(n Node) bool {
		if el, ok := n.(*Element); ok && sel.Match(el) {
			out = append(out, el)
		}
		return true
	})
	return out
}

func findIn(e *Element, sel *Selector) *Element {
	for _, c := range e.children {
		if el := Find(c, sel); el != nil {
			return el
		}
	}
	return nil
}

// Walk visits n and its descendants in document order. Returning false
// from fn stops the walk.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	if el, ok := n.(*Element); ok {
		for _, c := range el.children {
			if !Walk(c, fn) {
				return false
			}
		}
	}
	return true
}

// Contains reports whether n is attached under the document root.
func (d *Document) Contains(n Node) bool {
	for cur := n; cur != nil; {
		if el, ok := cur.(*Element); ok && el == d.root {
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
