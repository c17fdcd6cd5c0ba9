package hostdom

import (
	"bytes"
	"io"
	"strings"
)

// RenderOptions configures Render.
type RenderOptions struct {
	// Pretty puts block-level children on their own indented lines.
	Pretty bool

	// Indent is one indentation level in pretty mode. Defaults to two
	// spaces.
	Indent string
}

// Render writes the HTML serialization of n to w.
func Render(w io.Writer, n Node, opts RenderOptions) error {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	s := &serializer{w: w, opts: opts}
	s.node(n, 0)
	return s.err
}

// OuterHTML returns the serialization of n including n itself.
func OuterHTML(n Node) string {
	var buf bytes.Buffer
	_ = Render(&buf, n, RenderOptions{})
	return buf.String()
}

// InnerHTML returns the serialization of e's children.
func InnerHTML(e *Element) string {
	var buf bytes.Buffer
	s := &serializer{w: &buf, opts: RenderOptions{Indent: "  "}}
	for _, c := range e.children {
		s.node(c, 0)
	}
	return buf.String()
}

// serializer keeps the first write error and ignores later writes.
type serializer struct {
	w    io.Writer
	opts RenderOptions
	err  error
}

func (s *serializer) write(str string) {
	if s.err != nil {
		return
	}
	_, s.err = io.WriteString(s.w, str)
}

func (s *serializer) indent(depth int) {
	s.write(strings.Repeat(s.opts.Indent, depth))
}

func (s *serializer) node(n Node, depth int) {
	switch v := n.(type) {
	case *Element:
		s.element(v, depth)
	case *Text:
		if p := v.Parent(); p != nil && isRawText(p) {
			s.write(v.data)
			return
		}
		s.write(escapeText(v.data))
	case *Comment:
		s.write("<!--")
		s.write(strings.ReplaceAll(v.data, "-->", "--&gt;"))
		s.write("-->")
	}
}

func (s *serializer) element(e *Element, depth int) {
	pretty := s.opts.Pretty
	tag := e.TagName()

	s.write("<")
	s.write(tag)
	for i := range e.attrs {
		a := &e.attrs[i]
		name := a.local
		if a.prefix != "" {
			name = a.prefix + ":" + a.local
		}
		value := e.attrValue(a)
		s.write(" ")
		s.write(name)
		if value == "" && a.namespace == "" && booleanAttrs[a.local] {
			continue
		}
		s.write(`="`)
		s.write(escapeAttr(value))
		s.write(`"`)
	}

	if isVoid(e) {
		s.write(">")
		return
	}
	if len(e.children) == 0 && !isHTMLNamespace(e.namespace) {
		s.write("/>")
		return
	}
	s.write(">")

	block := pretty && !isInline(e) && !isRawText(e) && hasElementChild(e)
	for _, c := range e.children {
		if block {
			s.write("\n")
			s.indent(depth + 1)
		}
		s.node(c, depth+1)
	}
	if block {
		s.write("\n")
		s.indent(depth)
	}

	s.write("</")
	s.write(tag)
	s.write(">")
}

func hasElementChild(e *Element) bool {
	for _, c := range e.children {
		if _, ok := c.(*Element); ok {
			return true
		}
	}
	return false
}

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

func escapeText(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }
