// Package metrics exposes service counters in Prometheus format on a private
// registry.
package metrics

import (
	"net/http"
	"time"

	"cropcare-service/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cropcare"

// Metrics is nil-safe: every recording method is a no-op on a nil receiver.
type Metrics struct {
	registry          *prometheus.Registry
	bookkeeping       *prometheus.CounterVec
	classifierSeconds *prometheus.HistogramVec
	events            *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bookkeeping: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookkeeping_outcomes_total",
			Help:      "Ingestion bookkeeping outcomes by target and status.",
		}, []string{"target", "status"}),
		classifierSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classifier_duration_seconds",
			Help:      "Wall time of classifier runs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
		}, []string{"result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker by type and result.",
		}, []string{"type", "result"}),
	}
	m.registry.MustRegister(
		m.bookkeeping,
		m.classifierSeconds,
		m.events,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) RecordBookkeeping(target string, status models.OutcomeStatus) {
	if m == nil {
		return
	}
	m.bookkeeping.WithLabelValues(target, string(status)).Inc()
}

func (m *Metrics) ObserveClassifier(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.classifierSeconds.WithLabelValues(result(err)).Observe(d.Seconds())
}

func (m *Metrics) RecordEvent(eventType string, err error) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, result(err)).Inc()
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
