package hostdom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/hostrender/internal/errors"
)

// Selector is a compiled selector list. The supported grammar is type and
// universal selectors, #id, .class, attribute selectors ([a], [a=v],
// [a~=v], [a^=v], [a$=v], [a*=v], [a|=v]), compound selectors, the
// descendant and child combinators, and comma-separated lists.
type Selector struct {
	source string
	groups []complexSelector
}

type combinator uint8

const (
	combDescendant combinator = iota
	combChild
)

// complexSelector is stored right to left: parts[0] matches the subject.
type complexSelector struct {
	parts []compound
	// combs[i] joins parts[i] to parts[i+1].
	combs []combinator
}

type attrMatch struct {
	name  string
	op    string
	value string
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

// String returns the source text.
func (s *Selector) String() string { return s.source }

// Compile parses a selector list.
func Compile(source string) (*Selector, error) {
	p := &selParser{src: source}
	sel := &Selector{source: source}
	for {
		cs, err := p.complex()
		if err != nil {
			return nil, err
		}
		sel.groups = append(sel.groups, cs)
		p.skipSpace()
		if p.eof() {
			break
		}
		if p.peek() != ',' {
			return nil, p.fail("unexpected %q", p.peek())
		}
		p.pos++
	}
	return sel, nil
}

// MustCompile is Compile that panics on error.
func MustCompile(source string) *Selector {
	s, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return s
}

// Match reports whether el matches any selector in the list.
func (s *Selector) Match(el *Element) bool {
	for i := range s.groups {
		if s.groups[i].match(el) {
			return true
		}
	}
	return false
}

func (c *complexSelector) match(el *Element) bool {
	return c.matchFrom(0, el)
}

func (c *complexSelector) matchFrom(i int, el *Element) bool {
	if !c.parts[i].match(el) {
		return false
	}
	if i == len(c.parts)-1 {
		return true
	}
	switch c.combs[i] {
	case combChild:
		p := el.Parent()
		return p != nil && c.matchFrom(i+1, p)
	default:
		for p := el.Parent(); p != nil; p = p.Parent() {
			if c.matchFrom(i+1, p) {
				return true
			}
		}
		return false
	}
}

func (c *compound) match(el *Element) bool {
	if c.tag != "" && c.tag != "*" {
		name := el.localName
		if el.namespace == NamespaceHTML {
			if !strings.EqualFold(name, c.tag) {
				return false
			}
		} else if name != c.tag {
			return false
		}
	}
	if c.id != "" && el.ID() != c.id {
		return false
	}
	for _, cls := range c.classes {
		if !el.classes.Contains(cls) {
			return false
		}
	}
	for _, a := range c.attrs {
		v, ok := el.GetAttribute(a.name)
		if !ok || !a.matchValue(v) {
			return false
		}
	}
	return true
}

func (a attrMatch) matchValue(v string) bool {
	switch a.op {
	case "":
		return true
	case "=":
		return v == a.value
	case "~=":
		for _, f := range strings.Fields(v) {
			if f == a.value {
				return true
			}
		}
		return false
	case "^=":
		return a.value != "" && strings.HasPrefix(v, a.value)
	case "$=":
		return a.value != "" && strings.HasSuffix(v, a.value)
	case "*=":
		return a.value != "" && strings.Contains(v, a.value)
	case "|=":
		return v == a.value || strings.HasPrefix(v, a.value+"-")
	}
	return false
}

// ---------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------

type selParser struct {
	src string
	pos int
}

func (p *selParser) eof() bool  { return p.pos >= len(p.src) }
func (p *selParser) peek() byte { return p.src[p.pos] }

func (p *selParser) fail(format string, args ...any) error {
	return errors.New("E040").
		WithDetailf("%q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *selParser) skipSpace() bool {
	start := p.pos
	for !p.eof() && isSelSpace(p.peek()) {
		p.pos++
	}
	return p.pos > start
}

func isSelSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentByte(c byte) bool {
	return c == '-' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

func (p *selParser) ident() string {
	start := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// complex parses compounds joined by combinators, left to right, and
// stores them reversed.
func (p *selParser) complex() (complexSelector, error) {
	var parts []compound
	var combs []combinator

	p.skipSpace()
	for {
		c, err := p.compound()
		if err != nil {
			return complexSelector{}, err
		}
		parts = append(parts, c)

		spaced := p.skipSpace()
		if p.eof() || p.peek() == ',' {
			break
		}
		if p.peek() == '>' {
			p.pos++
			p.skipSpace()
			combs = append(combs, combChild)
			continue
		}
		if !spaced {
			return complexSelector{}, p.fail("unexpected %q", p.peek())
		}
		combs = append(combs, combDescendant)
	}

	// Reverse so that index 0 is the subject.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	for i, j := 0, len(combs)-1; i < j; i, j = i+1, j-1 {
		combs[i], combs[j] = combs[j], combs[i]
	}
	return complexSelector{parts: parts, combs: combs}, nil
}

func (p *selParser) compound() (compound, error) {
	var c compound
	start := p.pos

	if !p.eof() && p.peek() == '*' {
		p.pos++
		c.tag = "*"
	} else if !p.eof() && isIdentByte(p.peek()) {
		c.tag = p.ident()
	}

loop:
	for !p.eof() {
		switch p.peek() {
		case '#':
			p.pos++
			id := p.ident()
			if id == "" {
				return c, p.fail("expected id after '#'")
			}
			c.id = id
		case '.':
			p.pos++
			cls := p.ident()
			if cls == "" {
				return c, p.fail("expected class name after '.'")
			}
			c.classes = append(c.classes, cls)
		case '[':
			a, err := p.attribute()
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
		default:
			break loop
		}
	}
	if p.pos == start {
		if p.eof() {
			return c, p.fail("expected selector")
		}
		return c, p.fail("unexpected %q", p.peek())
	}
	return c, nil
}

func (p *selParser) attribute() (attrMatch, error) {
	p.pos++ // '['
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return attrMatch{}, p.fail("expected attribute name")
	}
	a := attrMatch{name: strings.ToLower(name)}
	p.skipSpace()
	if p.eof() {
		return a, p.fail("unterminated attribute selector")
	}
	if p.peek() == ']' {
		p.pos++
		return a, nil
	}

	switch c := p.peek(); c {
	case '=':
		a.op = "="
		p.pos++
	case '~', '^', '$', '*', '|':
		if p.pos+1 >= len(p.src) || p.src[p.pos+1] != '=' {
			return a, p.fail("expected '=' after %q", c)
		}
		a.op = string(c) + "="
		p.pos += 2
	default:
		return a, p.fail("unexpected %q in attribute selector", c)
	}

	p.skipSpace()
	if p.eof() {
		return a, p.fail("expected attribute value")
	}
	if q := p.peek(); q == '"' || q == '\'' {
		p.pos++
		end := strings.IndexByte(p.src[p.pos:], q)
		if end < 0 {
			return a, p.fail("unterminated string")
		}
		a.value = p.src[p.pos : p.pos+end]
		p.pos += end + 1
	} else {
		a.value = p.ident()
		if a.value == "" {
			return a, p.fail("expected attribute value")
		}
	}
	p.skipSpace()
	if p.eof() || p.peek() != ']' {
		return a, p.fail("expected ']'")
	}
	p.pos++
	return a, nil
}
