package proxy

import (
	"sync"

	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// Factory gives every component its own View of one Renderer and flushes
// the Renderer at the end of every pass.
type Factory struct {
	r *Renderer

	mu      sync.Mutex
	passes  int
	failed  int
	lastErr error
}

var (
	_ renderer.Factory      = (*Factory)(nil)
	_ renderer.PassBeginner = (*Factory)(nil)
	_ renderer.PassEnder    = (*Factory)(nil)
)

// NewFactory returns a factory handing out r.
func NewFactory(r *Renderer) *Factory {
	return &Factory{r: r}
}

// Renderer returns the shared renderer.
func (f *Factory) Renderer() *Renderer { return f.r }

// CreateRenderer implements renderer.Factory.
func (f *Factory) CreateRenderer(host rnode.Element, def *renderer.ComponentDef) (renderer.Renderer, error) {
	return renderer.FromFunc(f.r.View()), nil
}

// Begin implements renderer.PassBeginner.
func (f *Factory) Begin() {}

// End flushes the pass. Failures are logged and kept for LastError.
func (f *Factory) End() {
	err := f.r.flushWithTimeout()
	f.mu.Lock()
	f.passes++
	if err != nil {
		f.failed++
		f.lastErr = err
	}
	f.mu.Unlock()
	if err != nil {
		f.r.logger.Error("pass flush failed", "error", err)
	}
}

// Passes returns the number of completed passes and how many of them
// failed to flush.
func (f *Factory) Passes() (total, failed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.passes, f.failed
}

// LastError returns the most recent flush failure.
func (f *Factory) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}
