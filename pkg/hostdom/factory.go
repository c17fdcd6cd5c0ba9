package hostdom

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// Mode selects the renderer variant a Factory hands out.
type Mode uint8

const (
	// ModeFunc hands out FuncRenderers.
	ModeFunc Mode = iota
	// ModeObject hands out the Document itself.
	ModeObject
)

// String returns the string representation of the Mode.
func (m Mode) String() string {
	if m == ModeObject {
		return "object"
	}
	return "func"
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithMode sets the renderer variant.
func WithMode(m Mode) FactoryOption {
	return func(f *Factory) { f.mode = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) FactoryOption {
	return func(f *Factory) { f.logger = l }
}

// Factory hands out renderers over one Document. Component styles are
// installed into <head> once per component name.
type Factory struct {
	doc    *Document
	mode   Mode
	logger *slog.Logger

	mu        sync.Mutex
	shared    *FuncRenderer
	styled    map[string]bool
	passes    int
	inPass    bool
	dedicated int
}

var (
	_ renderer.Factory      = (*Factory)(nil)
	_ renderer.PassBeginner = (*Factory)(nil)
	_ renderer.PassEnder    = (*Factory)(nil)
)

// NewFactory returns a factory over doc.
func NewFactory(doc *Document, opts ...FactoryOption) *Factory {
	f := &Factory{
		doc:    doc,
		styled: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default().With("component", "hostdom")
	}
	return f
}

// Document returns the factory's document.
func (f *Factory) Document() *Document { return f.doc }

// CreateRenderer implements renderer.Factory. Shadow-DOM components get a
// dedicated FuncRenderer. Every other component gets its own view of one
// shared renderer, so destroying one component's renderer leaves the
// others usable.
func (f *Factory) CreateRenderer(host rnode.Element, def *renderer.ComponentDef) (renderer.Renderer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if def != nil {
		f.installStyles(def)
	}

	if f.mode == ModeObject {
		return renderer.FromObject(f.doc), nil
	}

	if def != nil && def.Encapsulation == renderer.EncapsulationShadowDom {
		f.dedicated++
		f.logger.Debug("dedicated renderer", "def", def.Name, "count", f.dedicated)
		return renderer.FromFunc(NewFuncRenderer(f.doc)), nil
	}

	if f.shared == nil {
		f.shared = NewFuncRenderer(f.doc)
	}
	return renderer.FromFunc(f.shared.View()), nil
}

func (f *Factory) installStyles(def *renderer.ComponentDef) {
	if len(def.Styles) == 0 || f.styled[def.Name] {
		return
	}
	f.styled[def.Name] = true
	style := f.doc.NewElement("style")
	if def.Name != "" {
		style.SetAttribute("data-component", def.Name)
	}
	style.AppendChild(f.doc.NewText(strings.Join(def.Styles, "\n")))
	f.doc.head.AppendChild(style)
}

// Begin implements renderer.PassBeginner.
func (f *Factory) Begin() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.inPass {
		f.logger.Warn("begin called inside an open pass")
	}
	f.inPass = true
}

// End implements renderer.PassEnder.
func (f *Factory) End() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inPass = false
	f.passes++
}

// Shared returns the renderer behind the views handed out to
// non-shadow components, or nil before the first one.
func (f *Factory) Shared() *FuncRenderer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shared
}

// Passes returns the number of completed passes.
func (f *Factory) Passes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passes
}

// InPass reports whether Begin has been called without a matching End.
func (f *Factory) InPass() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inPass
}
