package instrument

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "hostrender"

type config struct {
	logger   *slog.Logger
	metrics  *Metrics
	registry prometheus.Registerer
	policy   *AttributePolicy
	tracer   trace.Tracer
}

// Option configures Wrap and WrapFactory.
type Option func(*config)

// WithLogger sets the logger calls are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMetrics shares an existing set of collectors.
func WithMetrics(m *Metrics) Option {
	return func(c *config) { c.metrics = m }
}

// WithRegistry creates the collectors on reg. It is ignored when
// WithMetrics is given.
func WithRegistry(reg prometheus.Registerer) Option {
	return func(c *config) { c.registry = reg }
}

// WithPolicy enables attribute checks.
func WithPolicy(p *AttributePolicy) Option {
	return func(c *config) { c.policy = p }
}

// WithTracer sets the tracer for pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) { c.tracer = t }
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default().With("component", "instrument")
	}
	if c.metrics == nil {
		reg := c.registry
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		c.metrics = NewMetrics(reg)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(defaultTracerName)
	}
	return c
}
