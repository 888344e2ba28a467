// Package metrics exposes Prometheus instruments for the sync agent.
//
// All collectors are registered on a private registry so several agents (and
// tests) can live in one process. [Metrics.Handler] serves the exposition.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "finsync"

// Drain outcomes.
const (
	DrainCompleted         = "completed"
	DrainSkipped           = "skipped"
	DrainAuthAborted       = "auth_aborted"
	DrainPersistenceFailed = "persistence_failed"
)

// Replay results.
const (
	ReplaySynced     = "synced"
	ReplayRetried    = "retried"
	ReplayExhausted  = "exhausted"
	ReplayAuthFailed = "auth_failed"
)

// Metrics holds every collector of the agent. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	drains   *prometheus.CounterVec
	replays  *prometheus.CounterVec
	enqueued prometheus.Counter
	pending  prometheus.Gauge
	failed   prometheus.Gauge
	online   prometheus.Gauge
}

// New creates the collectors and registers them together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		drains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drains_total",
			Help:      "Queue drain passes by outcome.",
		}, []string{"outcome"}),
		replays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replays_total",
			Help:      "Replayed queued operations by result.",
		}, []string{"result"}),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enqueued_total",
			Help:      "Operations written to the durable queue.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_pending",
			Help:      "Operations waiting to be replayed.",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_failed",
			Help:      "Operations that exhausted their retries.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online",
			Help:      "1 while the remote API is believed reachable.",
		}),
	}

	m.registry.MustRegister(
		m.drains,
		m.replays,
		m.enqueued,
		m.pending,
		m.failed,
		m.online,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns the /metrics exposition handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Drain(outcome string) {
	if m == nil {
		return
	}
	m.drains.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Replay(result string) {
	if m == nil {
		return
	}
	m.replays.WithLabelValues(result).Inc()
}

func (m *Metrics) Enqueued() {
	if m == nil {
		return
	}
	m.enqueued.Inc()
}

// QueueDepth sets the pending and failed gauges.
func (m *Metrics) QueueDepth(pending, failed int) {
	if m == nil {
		return
	}
	m.pending.Set(float64(pending))
	m.failed.Set(float64(failed))
}

func (m *Metrics) Online(online bool) {
	if m == nil {
		return
	}
	if online {
		m.online.Set(1)
		return
	}
	m.online.Set(0)
}
