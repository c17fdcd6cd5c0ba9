// Package instrument wraps renderers and factories at the rendering choke
// point.
//
// Every call through a wrapped FuncRenderer is counted on a Prometheus
// counter and logged at Debug level. An optional AttributePolicy rejects
// attributes that would execute script (inline event handlers and
// javascript: URLs) before they reach the host. A wrapped Factory traces
// each rendering pass as an OpenTelemetry span named "hostrender.pass":
//
//	m := instrument.NewMetrics(prometheus.DefaultRegisterer)
//	f := instrument.WrapFactory(hostdom.NewFactory(doc),
//	    instrument.WithMetrics(m),
//	    instrument.WithPolicy(instrument.DefaultPolicy()))
//
// The tracer comes from the global otel provider unless WithTracer is
// given.
package instrument
