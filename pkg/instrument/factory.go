package instrument

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hostrender/pkg/renderer"
	"github.com/vango-dev/hostrender/pkg/rnode"
)

// PassSpanName is the span recorded for each rendering pass.
const PassSpanName = "hostrender.pass"

var (
	_ renderer.Factory      = (*Factory)(nil)
	_ renderer.PassBeginner = (*Factory)(nil)
	_ renderer.PassEnder    = (*Factory)(nil)
)

// Factory wraps a renderer.Factory. Functional renderers it creates are
// instrumented; object renderers are passed through.
type Factory struct {
	inner  renderer.Factory
	cfg    config
	logger *slog.Logger

	failures atomic.Int64

	mu      sync.Mutex
	span    trace.Span
	started time.Time
	created int
}

// WrapFactory returns an instrumented view of f.
func WrapFactory(f renderer.Factory, opts ...Option) *Factory {
	c := newConfig(opts)
	return &Factory{inner: f, cfg: c, logger: c.logger}
}

// Inner returns the wrapped factory.
func (f *Factory) Inner() renderer.Factory { return f.inner }

// CreateRenderer implements renderer.Factory.
func (f *Factory) CreateRenderer(host rnode.Element, def *renderer.ComponentDef) (renderer.Renderer, error) {
	r, err := f.inner.CreateRenderer(host, def)
	if err != nil {
		f.failures.Add(1)
		return r, err
	}
	f.mu.Lock()
	f.created++
	f.mu.Unlock()
	fn, ok := r.Func()
	if !ok {
		return r, nil
	}
	return renderer.FromFunc(wrap(fn, &f.cfg, &f.failures)), nil
}

// Begin starts the pass span and forwards to the inner factory.
func (f *Factory) Begin() {
	f.mu.Lock()
	if f.span != nil {
		f.span.End()
	}
	_, f.span = f.cfg.tracer.Start(context.Background(), PassSpanName,
		trace.WithSpanKind(trace.SpanKindInternal))
	f.started = time.Now()
	f.created = 0
	f.mu.Unlock()
	f.failures.Store(0)
	renderer.Begin(f.inner)
}

// End forwards to the inner factory and finishes the pass span. Without a
// matching Begin it only forwards.
func (f *Factory) End() {
	renderer.End(f.inner)

	f.mu.Lock()
	span, started, created := f.span, f.started, f.created
	f.span = nil
	f.mu.Unlock()
	if span == nil {
		return
	}

	failed := f.failures.Load()
	span.SetAttributes(
		attribute.Int("hostrender.renderers_created", created),
		attribute.Int64("hostrender.failed_calls", failed),
	)
	res := "ok"
	if failed > 0 {
		res = "error"
		span.SetStatus(codes.Error, "renderer calls failed")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	elapsed := time.Since(started)
	f.cfg.metrics.passes.WithLabelValues(res).Inc()
	f.cfg.metrics.passDuration.Observe(elapsed.Seconds())
	f.logger.Debug("render pass", "result", res, "failed_calls", failed, "duration", elapsed)
}
