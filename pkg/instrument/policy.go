package instrument

import (
	"strings"

	"github.com/vango-dev/hostrender/internal/errors"
)

// ErrPolicyDenied is returned for an attribute the policy rejects.
var ErrPolicyDenied = errors.New("E080")

// AttributePolicy decides which attribute writes may reach the host.
type AttributePolicy struct {
	// AllowEventHandlers permits on* attributes.
	AllowEventHandlers bool

	// URLAttributes are checked for denied schemes. Names are compared
	// case-insensitively, with any namespace prefix removed.
	URLAttributes []string

	// DeniedSchemes are URL schemes rejected in URLAttributes,
	// lowercase with the trailing colon.
	DeniedSchemes []string
}

// DefaultPolicy rejects inline handlers and javascript:/vbscript: URLs.
func DefaultPolicy() *AttributePolicy {
	return &AttributePolicy{
		URLAttributes: []string{"href", "src", "action", "formaction", "xlink:href"},
		DeniedSchemes: []string{"javascript:", "vbscript:"},
	}
}

// Check reports whether name=value may be written.
func (p *AttributePolicy) Check(name, value string) error {
	lname := strings.ToLower(name)
	local := lname
	if i := strings.IndexByte(lname, ':'); i >= 0 {
		local = lname[i+1:]
	}
	if !p.AllowEventHandlers && strings.HasPrefix(local, "on") {
		return errors.New("E080").WithDetailf("event handler attribute %q", name)
	}
	if !p.isURLAttribute(lname, local) {
		return nil
	}
	v := normalizeURL(value)
	for _, scheme := range p.DeniedSchemes {
		if strings.HasPrefix(v, scheme) {
			return errors.New("E080").WithDetailf("%s URL in %q", strings.TrimSuffix(scheme, ":"), name)
		}
	}
	return nil
}

func (p *AttributePolicy) isURLAttribute(lname, local string) bool {
	for _, a := range p.URLAttributes {
		a = strings.ToLower(a)
		if a == lname || a == local {
			return true
		}
	}
	return false
}

// normalizeURL lowercases v and drops ASCII whitespace and control
// characters, which browsers ignore inside a scheme ("java\tscript:").
func normalizeURL(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c <= ' ' || c == 0x7f {
			continue
		}
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}
