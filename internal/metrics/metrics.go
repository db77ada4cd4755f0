// Package metrics exposes service counters in the Prometheus format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessiongate"

// PoolStats is what the hashing pool reports.
type PoolStats interface {
	Workers() int
	Queued() int
	Busy() int
}

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry       *prometheus.Registry
	authRejections *prometheus.CounterVec
	logins         *prometheus.CounterVec
	purged         prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by the auth gate, by reason.",
		}, []string{"reason"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts, by outcome.",
		}, []string{"outcome"}),
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_purged_total",
			Help:      "Expired sessions removed by the sweeper.",
		}),
	}
	reg.MustRegister(m.authRejections, m.logins, m.purged)

	return m
}

// RegisterPool exports the size and load of the hashing pool as gauges.
func (m *Metrics) RegisterPool(p PoolStats) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hash_pool",
			Name:      "workers",
			Help:      "Number of hashing workers.",
		}, func() float64 { return float64(p.Workers()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hash_pool",
			Name:      "queued",
			Help:      "Hashing tasks waiting for a worker.",
		}, func() float64 { return float64(p.Queued()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hash_pool",
			Name:      "busy",
			Help:      "Hashing tasks currently running.",
		}, func() float64 { return float64(p.Busy()) }),
	)
}

func (m *Metrics) AuthRejected(reason string) {
	m.authRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) LoginOutcome(outcome string) {
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SessionsPurged(n int64) {
	if n > 0 {
		m.purged.Add(float64(n))
	}
}

// Handler serves the registry in the text exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
