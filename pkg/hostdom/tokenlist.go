package hostdom

import "strings"

// tokenList backs Element.ClassList. Tokens keep insertion order and are
// unique.
type tokenList struct {
	owner  *Element
	tokens []string
}

func (l *tokenList) index(token string) int {
	for i, t := range l.tokens {
		if t == token {
			return i
		}
	}
	return -1
}

// Add appends each token not already present. Empty tokens and tokens
// containing whitespace are ignored.
func (l *tokenList) Add(tokens ...string) {
	added := false
	for _, t := range tokens {
		if t == "" || strings.ContainsAny(t, " \t\n\r\f") {
			continue
		}
		if l.index(t) < 0 {
			l.tokens = append(l.tokens, t)
			added = true
		}
	}
	if added && l.owner != nil {
		l.owner.ensureReflected(reflectClass)
	}
}

// Remove removes each token; absent tokens are ignored.
func (l *tokenList) Remove(tokens ...string) {
	for _, t := range tokens {
		if i := l.index(t); i >= 0 {
			l.tokens = append(l.tokens[:i], l.tokens[i+1:]...)
		}
	}
}

// Contains reports whether token is present.
func (l *tokenList) Contains(token string) bool { return l.index(token) >= 0 }

// Toggle adds or removes token and reports whether it is now present.
func (l *tokenList) Toggle(token string) bool {
	if l.Contains(token) {
		l.Remove(token)
		return false
	}
	l.Add(token)
	return true
}

// Len returns the number of tokens.
func (l *tokenList) Len() int { return len(l.tokens) }

// Values returns a copy of the tokens.
func (l *tokenList) Values() []string {
	out := make([]string, len(l.tokens))
	copy(out, l.tokens)
	return out
}

// String joins the tokens with single spaces.
func (l *tokenList) String() string { return strings.Join(l.tokens, " ") }

func (l *tokenList) parse(value string) {
	l.tokens = l.tokens[:0]
	for _, t := range strings.Fields(value) {
		if l.index(t) < 0 {
			l.tokens = append(l.tokens, t)
		}
	}
}
