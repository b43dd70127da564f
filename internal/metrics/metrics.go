// Package metrics exposes generation and transport counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for Generations.
const (
	OutcomeSuccess = "success"
	OutcomeUnsaved = "unsaved"
	OutcomeFailure = "failure"
)

// Metrics owns a private registry, separate from prometheus.DefaultRegisterer.
type Metrics struct {
	registry *prometheus.Registry

	// Generations counts finished requests by outcome and failure kind
	Generations *prometheus.CounterVec
	// GenerationDuration tracks model round trips
	GenerationDuration *prometheus.HistogramVec
	// Messages counts websocket messages by type
	Messages *prometheus.CounterVec
	// Appends counts records written to history
	Appends prometheus.Counter
	// Connections is the number of open websocket connections
	Connections prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitplan_generations_total",
				Help: "Plan generations by outcome",
			},
			[]string{"outcome", "kind"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fitplan_generation_duration_seconds",
				Help:    "Plan generation duration seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90},
			},
			[]string{"outcome"},
		),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fitplan_ws_messages_total",
				Help: "Websocket messages received by type",
			},
			[]string{"type"},
		),
		Appends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitplan_history_appends_total",
			Help: "Plan records written to history",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fitplan_ws_connections",
			Help: "Open websocket connections",
		}),
	}
	m.registry.MustRegister(m.Generations, m.GenerationDuration, m.Messages, m.Appends, m.Connections)
	return m
}

// ObserveGeneration records one finished generation. kind is empty on success.
func (m *Metrics) ObserveGeneration(outcome, kind string, d time.Duration) {
	m.Generations.WithLabelValues(outcome, kind).Inc()
	m.GenerationDuration.WithLabelValues(outcome).Observe(d.Seconds())
	if outcome == OutcomeSuccess {
		m.Appends.Inc()
	}
}

func (m *Metrics) Message(msgType string) {
	m.Messages.WithLabelValues(msgType).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
