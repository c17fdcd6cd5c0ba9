package hostdom

import "github.com/vango-dev/hostrender/pkg/rnode"

// Text is a text node.
type Text struct {
	nodeBase
	data string
}

// NodeType implements Node.
func (t *Text) NodeType() NodeType { return TextNode }

// TextContent returns the text value.
func (t *Text) TextContent() string { return t.data }

// SetTextContent replaces the text value.
func (t *Text) SetTextContent(value string) { t.data = value }

// AppendChild panics: text nodes have no children.
func (t *Text) AppendChild(child rnode.Node) rnode.Node { return leafAppend(TextNode) }

// InsertBefore always fails for text nodes.
func (t *Text) InsertBefore(child, ref rnode.Node, isViewRoot bool) error {
	return leafInsert(TextNode)
}

// RemoveChild always fails for text nodes.
func (t *Text) RemoveChild(child rnode.Node) error { return leafRemove(TextNode) }

// Comment is a comment node, used as a structural anchor.
type Comment struct {
	nodeBase
	data string
}

// NodeType implements Node.
func (c *Comment) NodeType() NodeType { return CommentNode }

// CommentData returns the comment text.
func (c *Comment) CommentData() string { return c.data }

// SetData replaces the comment text.
func (c *Comment) SetData(data string) { c.data = data }

// AppendChild panics: comment nodes have no children.
func (c *Comment) AppendChild(child rnode.Node) rnode.Node { return leafAppend(CommentNode) }

// InsertBefore always fails for comment nodes.
func (c *Comment) InsertBefore(child, ref rnode.Node, isViewRoot bool) error {
	return leafInsert(CommentNode)
}

// RemoveChild always fails for comment nodes.
func (c *Comment) RemoveChild(child rnode.Node) error { return leafRemove(CommentNode) }
