package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors. A nil *Metrics is a no-op.
type Metrics struct {
	registry *prometheus.Registry

	registered    prometheus.Counter
	posted        prometheus.Counter
	swept         prometheus.Counter
	sweepFailures prometheus.Counter
	connections   prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		registered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_participants_registered_total",
			Help: "Participants registered",
		}),
		posted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_messages_posted_total",
			Help: "Messages posted by participants",
		}),
		swept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_participants_swept_total",
			Help: "Inactive participants removed by the sweeper",
		}),
		sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatroom_sweep_failures_total",
			Help: "Sweep cycles that failed to read participants",
		}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chatroom_ws_active_connections",
			Help: "Active websocket connections",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.registered, m.posted, m.swept, m.sweepFailures, m.connections,
	)
	return m
}

// Handler returns an http.Handler for Prometheus scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ParticipantRegistered() {
	if m != nil {
		m.registered.Inc()
	}
}

func (m *Metrics) MessagePosted() {
	if m != nil {
		m.posted.Inc()
	}
}

func (m *Metrics) ParticipantsSwept(n int) {
	if m != nil && n > 0 {
		m.swept.Add(float64(n))
	}
}

func (m *Metrics) SweepFailed() {
	if m != nil {
		m.sweepFailures.Inc()
	}
}

func (m *Metrics) ConnectionOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnectionClosed() {
	if m != nil {
		m.connections.Dec()
	}
}
