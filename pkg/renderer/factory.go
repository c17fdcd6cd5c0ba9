package renderer

import "github.com/vango-dev/hostrender/pkg/rnode"

// Encapsulation selects how a component's styles and subtree are scoped.
type Encapsulation uint8

const (
	EncapsulationNone Encapsulation = iota
	EncapsulationEmulated
	EncapsulationShadowDom
)

// String returns the string representation of the Encapsulation.
func (e Encapsulation) String() string {
	switch e {
	case EncapsulationEmulated:
		return "emulated"
	case EncapsulationShadowDom:
		return "shadow-dom"
	default:
		return "none"
	}
}

// ComponentDef is the component metadata a factory sees.
type ComponentDef struct {
	Name          string
	Tag           string
	Encapsulation Encapsulation
	Styles        []string
}

// Factory produces a Renderer for one component view. It may return a
// shared instance or a dedicated one; callers must not rely on identity.
type Factory interface {
	CreateRenderer(host rnode.Element, def *ComponentDef) (Renderer, error)
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(host rnode.Element, def *ComponentDef) (Renderer, error)

// CreateRenderer implements Factory.
func (f FactoryFunc) CreateRenderer(host rnode.Element, def *ComponentDef) (Renderer, error) {
	return f(host, def)
}

// PassBeginner is an optional Factory hook called before the first
// mutation of a rendering pass.
type PassBeginner interface {
	Begin()
}

// PassEnder is an optional Factory hook called after the last mutation of
// a rendering pass.
type PassEnder interface {
	End()
}

// Begin calls the factory's Begin hook if present and reports whether it
// was called.
func Begin(f Factory) bool {
	if b, ok := f.(PassBeginner); ok {
		b.Begin()
		return true
	}
	return false
}

// End calls the factory's End hook if present and reports whether it was
// called.
func End(f Factory) bool {
	if e, ok := f.(PassEnder); ok {
		e.End()
		return true
	}
	return false
}

// RunPass brackets fn with the factory's Begin and End hooks. End runs
// even when fn returns an error or panics.
func RunPass(f Factory, fn func() error) error {
	Begin(f)
	defer End(f)
	if fn == nil {
		return nil
	}
	return fn()
}
