// Package telemetry holds the process's Prometheus metrics and tracer helpers.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const namespace = "bot_order_bridge"

// Metrics groups every collector the service exports.
type Metrics struct {
	registry *prometheus.Registry

	SagaOutcomes       *prometheus.CounterVec
	SagaStepDuration   *prometheus.HistogramVec
	SideEffectFailures *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		SagaOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saga_outcomes_total",
			Help:      "Order saga runs by final status and stage.",
		}, []string{"status", "stage"}),
		SagaStepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "saga_step_duration_seconds",
			Help:      "Latency of individual saga steps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"step"}),
		SideEffectFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed.",
		}, []string{"task"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Inbound HTTP requests.",
		}, []string{"route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Inbound HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SagaOutcomes,
		m.SagaStepDuration,
		m.SideEffectFailures,
		m.HTTPRequests,
		m.HTTPLatency,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStep implements the saga's observer.
func (m *Metrics) ObserveStep(step string, d time.Duration) {
	m.SagaStepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// ObserveOutcome implements the saga's observer.
func (m *Metrics) ObserveOutcome(status, stage string) {
	m.SagaOutcomes.WithLabelValues(status, stage).Inc()
}

// SideEffectFailed matches background.Config.OnFailure.
func (m *Metrics) SideEffectFailed(task string, _ error) {
	m.SideEffectFailures.WithLabelValues(task).Inc()
}

// Tracer returns a named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
