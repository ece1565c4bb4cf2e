package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// Metrics holds Prometheus metrics for circuit breakers.
type Metrics struct {
	state        *prometheus.GaugeVec
	stateChanges *prometheus.CounterVec
	rejected     *prometheus.CounterVec
}

// NewMetrics creates circuit breaker metrics. They are registered with MustRegister.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "vaultkv"
	}

	return &Metrics{
		state: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of the circuit breaker (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
		stateChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "state_changes_total",
				Help:      "Total number of circuit breaker state changes",
			},
			[]string{"name", "from", "to"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "circuit_breaker",
				Name:      "rejected_total",
				Help:      "Total number of requests rejected due to open circuit",
			},
			[]string{"name"},
		),
	}
}

// MustRegister registers all collectors with registry.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(m.state, m.stateChanges, m.rejected)
}

// SetState records the current state of a breaker.
func (m *Metrics) SetState(name string, state gobreaker.State) {
	m.state.WithLabelValues(name).Set(float64(state))
}

// RecordStateChange records a transition.
func (m *Metrics) RecordStateChange(name string, from, to gobreaker.State) {
	m.stateChanges.WithLabelValues(name, from.String(), to.String()).Inc()
	m.SetState(name, to)
}

// RecordRejected records a request rejected by an open circuit.
func (m *Metrics) RecordRejected(name string) {
	m.rejected.WithLabelValues(name).Inc()
}
