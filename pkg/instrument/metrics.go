package instrument

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/hostrender/internal/errors"
)

// Metrics holds the renderer collectors.
type Metrics struct {
	calls        *prometheus.CounterVec
	passes       *prometheus.CounterVec
	passDuration prometheus.Histogram
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		calls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostrender",
			Subsystem: "renderer",
			Name:      "calls_total",
			Help:      "Renderer calls, by operation and result",
		}, []string{"op", "result"}),
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hostrender",
			Subsystem: "renderer",
			Name:      "passes_total",
			Help:      "Rendering passes, by result",
		}, []string{"result"}),
		passDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hostrender",
			Subsystem: "renderer",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a rendering pass from Begin to End",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Code(err) == "E080":
		return "denied"
	default:
		return "error"
	}
}

func (m *Metrics) call(op string, err error) {
	m.calls.WithLabelValues(op, result(err)).Inc()
}
