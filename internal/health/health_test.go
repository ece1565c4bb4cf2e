package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(message string) CheckFunc {
	return func(context.Context) Check { return Pass(message) }
}

func failing(message string) CheckFunc {
	return func(context.Context) Check { return Fail(message) }
}

func TestChecker_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		checks   map[string]CheckFunc
		expected Status
	}{
		{name: "no checks", checks: nil, expected: StatusPass},
		{name: "all pass", checks: map[string]CheckFunc{"a": passing("ok"), "b": passing("ok")}, expected: StatusPass},
		{name: "one fails", checks: map[string]CheckFunc{"a": passing("ok"), "b": failing("down")}, expected: StatusFail},
		{name: "all fail", checks: map[string]CheckFunc{"a": failing("x"), "b": failing("y")}, expected: StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			checker := NewChecker("1.0.0")
			for name, fn := range tt.checks {
				checker.RegisterCheck(name, fn)
			}

			response := checker.Run(context.Background(), ProbeReadiness)
			assert.Equal(t, tt.expected, response.Status)
			assert.Equal(t, ProbeReadiness, response.Probe)
			assert.Equal(t, "1.0.0", response.Version)
			assert.Len(t, response.Checks, len(tt.checks))
		})
	}
}

func TestChecker_ProbeKinds(t *testing.T) {
	t.Parallel()

	checker := NewChecker("")
	checker.RegisterCheck("vault", failing("sealed"), ProbeReadiness, ProbeStartup)
	checker.RegisterCheck("process", passing("up"))

	assert.Equal(t, []string{"process"}, checker.CheckNames(ProbeLiveness))
	assert.Equal(t, []string{"process", "vault"}, checker.CheckNames(ProbeReadiness))
	assert.Equal(t, []string{"process", "vault"}, checker.CheckNames(ProbeStartup))

	assert.Equal(t, StatusPass, checker.Run(context.Background(), ProbeLiveness).Status)
	assert.Equal(t, StatusFail, checker.Run(context.Background(), ProbeReadiness).Status)
}

func TestChecker_ProbeTimeout(t *testing.T) {
	t.Parallel()

	checker := NewChecker("", WithProbeTimeout(20*time.Millisecond))
	checker.RegisterCheck("slow", func(ctx context.Context) Check {
		<-ctx.Done()
		return Fail(ctx.Err().Error())
	})

	start := time.Now()
	response := checker.Run(context.Background(), ProbeReadiness)
	assert.Equal(t, StatusFail, response.Status)
	assert.Equal(t, "context deadline exceeded", response.Checks["slow"].Message)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestChecker_RunsChecksConcurrently(t *testing.T) {
	t.Parallel()

	var running atomic.Int32
	release := make(chan struct{})
	block := func(ctx context.Context) Check {
		if running.Add(1) == 2 {
			close(release)
		}
		select {
		case <-release:
			return Pass("")
		case <-ctx.Done():
			return Fail("not concurrent")
		}
	}

	checker := NewChecker("", WithProbeTimeout(5*time.Second))
	checker.RegisterCheck("a", block)
	checker.RegisterCheck("b", block)

	assert.Equal(t, StatusPass, checker.Run(context.Background(), ProbeStartup).Status)
}

func TestChecker_Metrics(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics("test")
	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)
	metrics.Init()

	checker := NewChecker("", WithMetrics(metrics))
	checker.RegisterCheck("vault", failing("sealed"), ProbeReadiness)

	checker.Run(context.Background(), ProbeReadiness)
	checker.Run(context.Background(), ProbeReadiness)
	checker.Run(context.Background(), ProbeLiveness)

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.probesTotal.WithLabelValues("readiness", "fail")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.probesTotal.WithLabelValues("liveness", "pass")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.probesTotal.WithLabelValues("startup", "pass")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.checkStatus.WithLabelValues("vault")))

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestCheck_Passed(t *testing.T) {
	t.Parallel()

	assert.True(t, Pass("ok").Passed())
	assert.False(t, Fail("down").Passed())
	assert.False(t, Check{}.Passed())
}
