package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the gateway's operational counters.
type Metrics struct {
	QueueDepth    prometheus.Gauge
	QueueRejected prometheus.Counter
	Exchanges     *prometheus.CounterVec
	Violations    prometheus.Counter
	InFlight      prometheus.Gauge
	ResourceFails prometheus.Counter
}

// NewMetrics builds and registers the gateway metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radgw", Subsystem: "queue", Name: "depth",
			Help: "Number of items waiting in the job queue.",
		}),
		QueueRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radgw", Subsystem: "queue", Name: "rejected_total",
			Help: "Enqueue attempts rejected because the queue was full or closed.",
		}),
		Exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radgw", Subsystem: "gateway", Name: "exchanges_total",
			Help: "Exchanges by terminal outcome.",
		}, []string{"outcome"}),
		Violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radgw", Subsystem: "gateway", Name: "mandatory_violations_total",
			Help: "Mandatory AVPs left untranslated in answers.",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radgw", Subsystem: "gateway", Name: "inflight_exchanges",
			Help: "Exchanges dispatched and waiting for an answer.",
		}),
		ResourceFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radgw", Subsystem: "gateway", Name: "resource_failures_total",
			Help: "Per-item resource failures skipped by workers.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.QueueDepth, m.QueueRejected, m.Exchanges, m.Violations, m.InFlight, m.ResourceFails)
	}
	return m
}
