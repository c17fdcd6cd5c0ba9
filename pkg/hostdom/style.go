package hostdom

import "strings"

type styleProp struct {
	name      string
	value     string
	important bool
}

// styleDeclaration is an element's inline style. Property order is
// preserved so that serialization is stable.
type styleDeclaration struct {
	owner *Element
	props []styleProp
}

func normalizeProperty(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") {
		return name
	}
	return strings.ToLower(name)
}

func (s *styleDeclaration) find(name string) int {
	for i := range s.props {
		if s.props[i].name == name {
			return i
		}
	}
	return -1
}

// SetProperty sets name to value. priority "important" marks the
// declaration !important. An empty value removes the property.
func (s *styleDeclaration) SetProperty(name, value, priority string) {
	name = normalizeProperty(name)
	if name == "" {
		return
	}
	value = strings.TrimSpace(value)
	if value == "" {
		s.RemoveProperty(name)
		return
	}
	important := strings.EqualFold(priority, "important")
	if i := s.find(name); i >= 0 {
		s.props[i].value = value
		s.props[i].important = important
	} else {
		s.props = append(s.props, styleProp{name: name, value: value, important: important})
	}
	if s.owner != nil {
		s.owner.ensureReflected(reflectStyle)
	}
}

// RemoveProperty removes name and returns its previous value.
func (s *styleDeclaration) RemoveProperty(name string) string {
	name = normalizeProperty(name)
	i := s.find(name)
	if i < 0 {
		return ""
	}
	old := s.props[i].value
	s.props = append(s.props[:i], s.props[i+1:]...)
	return old
}

// GetPropertyValue returns the value of name, or "".
func (s *styleDeclaration) GetPropertyValue(name string) string {
	if i := s.find(normalizeProperty(name)); i >= 0 {
		return s.props[i].value
	}
	return ""
}

// GetPropertyPriority returns "important" or "".
func (s *styleDeclaration) GetPropertyPriority(name string) string {
	if i := s.find(normalizeProperty(name)); i >= 0 && s.props[i].important {
		return "important"
	}
	return ""
}

// Len returns the number of declarations.
func (s *styleDeclaration) Len() int { return len(s.props) }

// CSSText serializes the declarations as "a: b; c: d !important;".
func (s *styleDeclaration) CSSText() string {
	var b strings.Builder
	for i, p := range s.props {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.name)
		b.WriteString(": ")
		b.WriteString(p.value)
		if p.important {
			b.WriteString(" !important")
		}
		b.WriteByte(';')
	}
	return b.String()
}

// parse replaces the declarations from a style attribute value.
func (s *styleDeclaration) parse(text string) {
	s.props = s.props[:0]
	for _, decl := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = normalizeProperty(name)
		value = strings.TrimSpace(value)
		important := false
		if v, found := strings.CutSuffix(value, "!important"); found {
			value = strings.TrimSpace(v)
			important = true
		}
		if name == "" || value == "" {
			continue
		}
		if i := s.find(name); i >= 0 {
			s.props[i] = styleProp{name: name, value: value, important: important}
			continue
		}
		s.props = append(s.props, styleProp{name: name, value: value, important: important})
	}
}
