package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/hostrender/pkg/protocol"
)

// MetricsConfig configures the host's Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "hostrender").
	Namespace string

	// Subsystem is the metrics subsystem (default: "host").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for batch apply duration.
	Buckets []float64

	// Registry is the registerer metrics are created on.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

func (c MetricsConfig) withDefaults() MetricsConfig {
	if c.Namespace == "" {
		c.Namespace = "hostrender"
	}
	if c.Subsystem == "" {
		c.Subsystem = "host"
	}
	if c.Buckets == nil {
		c.Buckets = prometheus.DefBuckets
	}
	if c.Registry == nil {
		c.Registry = prometheus.DefaultRegisterer
	}
	return c
}

// Metrics holds the host's collectors.
type Metrics struct {
	connectionsActive prometheus.Gauge
	connectionsTotal  prometheus.Counter
	batchesTotal      *prometheus.CounterVec
	batchDuration     prometheus.Histogram
	opsTotal          *prometheus.CounterVec
	applyErrors       *prometheus.CounterVec
	eventsTotal       prometheus.Counter
	bytesReceived     prometheus.Counter
}

// NewMetrics registers the host collectors on config.Registry.
func NewMetrics(config MetricsConfig) *Metrics {
	config = config.withDefaults()
	factory := promauto.With(config.Registry)
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}

	return &Metrics{
		connectionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "connections_active",
			Help:        "Number of open engine connections",
			ConstLabels: config.ConstLabels,
		}),
		connectionsTotal: factory.NewCounter(opts("connections_total", "Total engine connections accepted")),
		batchesTotal:     factory.NewCounterVec(opts("batches_total", "Mutation batches applied, by result"), []string{"result"}),
		batchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_apply_seconds",
			Help:        "Time spent applying one batch",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		opsTotal:      factory.NewCounterVec(opts("ops_total", "Ops applied, by op code"), []string{"op"}),
		applyErrors:   factory.NewCounterVec(opts("apply_errors_total", "Failed batches, by error code"), []string{"code"}),
		eventsTotal:   factory.NewCounter(opts("events_forwarded_total", "Events forwarded to engines")),
		bytesReceived: factory.NewCounter(opts("received_bytes_total", "Bytes of batch frames received")),
	}
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.connectionsTotal.Inc()
	m.connectionsActive.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.connectionsActive.Dec()
}

func (m *Metrics) batch(b *protocol.Batch, ack *protocol.Ack, seconds float64) {
	if m == nil {
		return
	}
	m.batchDuration.Observe(seconds)
	applied := len(b.Ops)
	if !ack.OK() {
		m.batchesTotal.WithLabelValues("error").Inc()
		m.applyErrors.WithLabelValues(ack.Code).Inc()
		applied = ack.Index
	} else {
		m.batchesTotal.WithLabelValues("ok").Inc()
	}
	for i := 0; i < applied && i < len(b.Ops); i++ {
		m.opsTotal.WithLabelValues(b.Ops[i].Code.String()).Inc()
	}
}

func (m *Metrics) event() {
	if m == nil {
		return
	}
	m.eventsTotal.Inc()
}

func (m *Metrics) received(n int) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(n))
}
