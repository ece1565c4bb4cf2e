package vault

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for Vault operations.
type Metrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errors           *prometheus.CounterVec
	healthStatusCode prometheus.Gauge
	healthy          prometheus.Gauge
	registry         *prometheus.Registry
}

// MetricsOption is a functional option for configuring Metrics.
type MetricsOption func(*Metrics)

// WithMetricsRegistry registers the metrics on registry instead of a new one.
func WithMetricsRegistry(registry *prometheus.Registry) MetricsOption {
	return func(m *Metrics) {
		m.registry = registry
	}
}

// NewMetrics creates a new Metrics instance.
func NewMetrics(namespace string, opts ...MetricsOption) *Metrics {
	if namespace == "" {
		namespace = "vaultkv"
	}

	m := &Metrics{}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}

	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "requests_total",
			Help:      "Total number of Vault requests",
		},
		[]string{"operation", "status"},
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "request_duration_seconds",
			Help:      "Duration of Vault requests in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	m.errors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "errors_total",
			Help:      "Total number of Vault errors by kind",
		},
		[]string{"operation", "kind"},
	)

	m.healthStatusCode = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "health_status_code",
			Help:      "HTTP status code of the last Vault health query",
		},
	)

	m.healthy = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "vault",
			Name:      "healthy",
			Help:      "Whether the last Vault health query reported an active node (1=healthy, 0=unhealthy)",
		},
	)

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errors,
		m.healthStatusCode,
		m.healthy,
	)

	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a Vault request.
func (m *Metrics) RecordRequest(operation, status string, duration time.Duration) {
	m.requestsTotal.WithLabelValues(operation, status).Inc()
	m.requestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordError records a Vault error.
func (m *Metrics) RecordError(operation, kind string) {
	m.errors.WithLabelValues(operation, kind).Inc()
}

// RecordHealth records the outcome of a health query.
func (m *Metrics) RecordHealth(result *HealthResult) {
	m.healthStatusCode.Set(float64(result.StatusCode))
	if result.Healthy() {
		m.healthy.Set(1)
	} else {
		m.healthy.Set(0)
	}
}
