package hostdom

import (
	"fmt"

	"github.com/vango-dev/hostrender/internal/errors"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// NodeType identifies the concrete kind of a Node.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Node is implemented by *Element, *Text and *Comment.
type Node interface {
	rnode.Node

	NodeType() NodeType
	Parent() *Element
	OwnerDocument() *Document

	// ViewRoot reports whether the node was last inserted as a view root.
	ViewRoot() bool

	base() *nodeBase
}

// nodeBase holds the fields shared by every node kind.
type nodeBase struct {
	doc      *Document
	parent   *Element
	viewRoot bool
}

func (b *nodeBase) base() *nodeBase { return b }

// Parent returns the parent element, or nil when detached.
func (b *nodeBase) Parent() *Element { return b.parent }

// OwnerDocument returns the document that created the node.
func (b *nodeBase) OwnerDocument() *Document { return b.doc }

// ViewRoot reports whether the node was inserted as a view root.
func (b *nodeBase) ViewRoot() bool { return b.viewRoot }

// asNode converts an rnode.Node created by this package.
func asNode(n rnode.Node) (Node, error) {
	if rnode.IsNil(n) {
		return nil, errors.New("E004").WithDetail("nil node")
	}
	hn, ok := n.(Node)
	if !ok {
		return nil, errors.New("E004").WithDetailf("%T is not a hostdom node", n)
	}
	return hn, nil
}

// mustNode is asNode for methods without an error result.
func mustNode(n rnode.Node) Node {
	hn, err := asNode(n)
	if err != nil {
		panic(err)
	}
	return hn
}

// NextSibling returns the node after n under the same parent.
func NextSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	i := p.indexOf(n)
	if i < 0 || i+1 >= len(p.children) {
		return nil
	}
	return p.children[i+1]
}

// PreviousSibling returns the node before n under the same parent.
func PreviousSibling(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	i := p.indexOf(n)
	if i <= 0 {
		return nil
	}
	return p.children[i-1]
}

// leafAppend is the AppendChild behaviour of nodes that cannot have
// children.
func leafAppend(kind NodeType) rnode.Node {
	panic(errors.New("E022").WithDetail(fmt.Sprintf("%s nodes cannot have children", kind)))
}

func leafInsert(kind NodeType) error {
	return errors.New("E022").WithDetail(fmt.Sprintf("%s nodes cannot have children", kind))
}

func leafRemove(kind NodeType) error {
	return errors.New("E020").WithDetail(fmt.Sprintf("%s nodes have no children", kind))
}
