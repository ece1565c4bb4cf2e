package circuitbreaker

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

type scriptedExecutor struct {
	calls int
	err   error
	code  int
}

func (s *scriptedExecutor) Execute(context.Context, *vault.Request) (*vault.Response, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &vault.Response{StatusCode: s.code}, nil
}

func testConfig() *Config {
	return &Config{
		Enabled:      true,
		Threshold:    2,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		Timeout:      50 * time.Millisecond,
	}
}

func TestExecutor_PassesResponses(t *testing.T) {
	next := &scriptedExecutor{code: vault.StatusSealed}
	e := NewExecutor("vault", testConfig(), next)

	for i := 0; i < 5; i++ {
		resp, err := e.Execute(context.Background(), &vault.Request{Method: http.MethodGet})
		require.NoError(t, err)
		assert.Equal(t, vault.StatusSealed, resp.StatusCode)
	}
	assert.Equal(t, gobreaker.StateClosed, e.State())
	assert.Equal(t, 5, next.calls)
}

func TestExecutor_OpensOnTransportFailures(t *testing.T) {
	metrics := NewMetrics("test")
	metrics.MustRegister(prometheus.NewRegistry())

	next := &scriptedExecutor{err: errors.New("connection refused")}
	e := NewExecutor("vault", testConfig(), next, WithMetrics(metrics))

	for i := 0; i < 2; i++ {
		_, err := e.Execute(context.Background(), &vault.Request{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, gobreaker.StateOpen, e.State())

	_, err := e.Execute(context.Background(), &vault.Request{})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, next.calls)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.rejected.WithLabelValues("vault")))
	assert.Equal(t, float64(gobreaker.StateOpen), testutil.ToFloat64(metrics.state.WithLabelValues("vault")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.stateChanges.WithLabelValues("vault", "closed", "open")))
}

func TestExecutor_RecoversAfterTimeout(t *testing.T) {
	next := &scriptedExecutor{err: errors.New("connection refused")}
	e := NewExecutor("vault", testConfig(), next)

	for i := 0; i < 2; i++ {
		_, _ = e.Execute(context.Background(), &vault.Request{})
	}
	require.Equal(t, gobreaker.StateOpen, e.State())

	time.Sleep(80 * time.Millisecond)
	next.err = nil
	next.code = http.StatusOK

	for i := 0; i < 2; i++ {
		_, err := e.Execute(context.Background(), &vault.Request{})
		require.NoError(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, e.State())
}

func TestExecutor_WithClient(t *testing.T) {
	next := &scriptedExecutor{err: errors.New("connection refused")}
	breaker := NewExecutor("vault", testConfig(), next)

	cfg := vault.DefaultConfig()
	cfg.Address = "http://127.0.0.1:8200"
	cfg.Token = "token"
	client, err := vault.New(cfg, nil, vault.WithExecutor(breaker))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = client.GetHealth(context.Background())
		require.Error(t, err)
		assert.True(t, vault.IsTransportError(err))
	}
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, next.calls)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, testConfig().Validate())

	var nilCfg *Config
	require.NoError(t, nilCfg.Validate())

	invalid := []func(*Config){
		func(c *Config) { c.Threshold = 0 },
		func(c *Config) { c.FailureRatio = 0 },
		func(c *Config) { c.FailureRatio = 1.5 },
		func(c *Config) { c.Timeout = 0 },
		func(c *Config) { c.Interval = -time.Second },
	}
	for _, mutate := range invalid {
		cfg := testConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate())
	}

	disabled := testConfig()
	disabled.Enabled = false
	disabled.Threshold = 0
	assert.NoError(t, disabled.Validate())
}

func TestSafeIntToUint32(t *testing.T) {
	assert.Equal(t, uint32(0), safeIntToUint32(-1))
	assert.Equal(t, uint32(5), safeIntToUint32(5))
}
