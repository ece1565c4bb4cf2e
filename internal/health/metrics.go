package health

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for probes and checks.
type Metrics struct {
	probesTotal   *prometheus.CounterVec
	checkStatus   *prometheus.GaugeVec
	checkDuration *prometheus.HistogramVec
}

// NewMetrics creates probe metrics. They are registered with MustRegister.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "vaultkv"
	}

	return &Metrics{
		probesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "probes_total",
				Help:      "Total number of probes performed",
			},
			[]string{"probe", "status"},
		),
		checkStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "check_status",
				Help:      "Current check status (1=pass, 0=fail)",
			},
			[]string{"check"},
		),
		checkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "check_duration_seconds",
				Help:      "Duration of checks in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"check"},
		),
	}
}

// MustRegister registers all collectors with registry.
func (m *Metrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(
		m.probesTotal,
		m.checkStatus,
		m.checkDuration,
	)
}

// Init pre-initializes the probe label combinations so the series appear
// before the first probe runs.
func (m *Metrics) Init() {
	for _, kind := range AllProbes {
		m.probesTotal.WithLabelValues(string(kind), string(StatusPass))
		m.probesTotal.WithLabelValues(string(kind), string(StatusFail))
	}
}

// RecordProbe records a probe outcome.
func (m *Metrics) RecordProbe(kind ProbeKind, passed bool) {
	status := StatusFail
	if passed {
		status = StatusPass
	}
	m.probesTotal.WithLabelValues(string(kind), string(status)).Inc()
}

// RecordCheck records a check outcome.
func (m *Metrics) RecordCheck(name string, passed bool, duration time.Duration) {
	value := 0.0
	if passed {
		value = 1
	}
	m.checkStatus.WithLabelValues(name).Set(value)
	m.checkDuration.WithLabelValues(name).Observe(duration.Seconds())
}
