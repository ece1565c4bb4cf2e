package vault

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics(t *testing.T) {
	tests := []struct {
		name              string
		namespace         string
		expectedNamespace string
	}{
		{name: "default namespace when empty", namespace: "", expectedNamespace: "vaultkv"},
		{name: "custom namespace", namespace: "custom", expectedNamespace: "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMetrics(tt.namespace)
			require.NotNil(t, m)
			require.NotNil(t, m.Registry())

			m.RecordRequest(OpGetSecret, "success", time.Millisecond)

			families, err := m.Registry().Gather()
			require.NoError(t, err)
			names := make([]string, 0, len(families))
			for _, f := range families {
				names = append(names, f.GetName())
			}
			assert.Contains(t, names, tt.expectedNamespace+"_vault_requests_total")
			assert.Contains(t, names, tt.expectedNamespace+"_vault_request_duration_seconds")
		})
	}
}

func TestNewMetrics_SharedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics("shared", WithMetricsRegistry(registry))

	assert.Same(t, registry, m.Registry())
	assert.Panics(t, func() { NewMetrics("shared", WithMetricsRegistry(registry)) })
}

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("test")

	m.RecordRequest(OpSetSecret, "success", 10*time.Millisecond)
	m.RecordRequest(OpSetSecret, "success", 20*time.Millisecond)
	m.RecordRequest(OpSetSecret, "error", time.Millisecond)
	m.RecordError(OpSetSecret, "transport")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestsTotal.WithLabelValues(OpSetSecret, "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.requestsTotal.WithLabelValues(OpSetSecret, "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.errors.WithLabelValues(OpSetSecret, "transport")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetrics_RecordHealth(t *testing.T) {
	m := NewMetrics("test")

	m.RecordHealth(&HealthResult{StatusCode: StatusActive, Code: HealthInitializedUnsealedActive})
	assert.Equal(t, float64(200), testutil.ToFloat64(m.healthStatusCode))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.healthy))

	m.RecordHealth(&HealthResult{StatusCode: StatusStandby, Code: HealthUnsealedStandby})
	assert.Equal(t, float64(429), testutil.ToFloat64(m.healthStatusCode))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.healthy))
}
