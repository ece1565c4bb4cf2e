package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/vyrodovalexey/vaultkv/internal/circuitbreaker"
	"github.com/vyrodovalexey/vaultkv/internal/config"
	"github.com/vyrodovalexey/vaultkv/internal/observability"
	"github.com/vyrodovalexey/vaultkv/internal/retry"
	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

const (
	metricsNamespace = "vaultkv"
	breakerName      = "vault"
	tracerShutdown   = 5 * time.Second
)

// application holds the components shared by all commands.
type application struct {
	config   *config.Config
	logger   observability.Logger
	registry *prometheus.Registry
	tracer   *observability.Tracer
	breaker  *circuitbreaker.Executor
	client   *vault.Client
}

// newApplication wires the Vault client with its executor chain, metrics and tracer.
func newApplication(cfg *config.Config, logger observability.Logger) (*application, error) {
	tracer, err := observability.NewTracer(cfg.TracerConfig())
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &application{
		config:   cfg,
		logger:   logger,
		registry: registry,
		tracer:   tracer,
	}

	vaultCfg := cfg.VaultConfig()
	httpExecutor, err := vault.NewHTTPExecutor(vaultCfg.TLS, vaultCfg.Timeout)
	if err != nil {
		app.close()
		return nil, err
	}

	var executor vault.Executor = httpExecutor
	if cbCfg := cfg.CircuitBreakerConfig(); cbCfg.Enabled {
		cbMetrics := circuitbreaker.NewMetrics(metricsNamespace)
		cbMetrics.MustRegister(registry)

		app.breaker = circuitbreaker.NewExecutor(breakerName, cbCfg, httpExecutor,
			circuitbreaker.WithLogger(logger),
			circuitbreaker.WithMetrics(cbMetrics),
		)
		executor = app.breaker

		logger.Debug("circuit breaker enabled",
			observability.Int("threshold", cbCfg.Threshold),
			observability.Duration("timeout", cbCfg.Timeout),
		)
	}

	client, err := vault.New(vaultCfg, logger,
		vault.WithExecutor(executor),
		vault.WithMetrics(vault.NewMetrics(metricsNamespace, vault.WithMetricsRegistry(registry))),
		vault.WithTracer(tracer.Tracer()),
	)
	if err != nil {
		app.close()
		return nil, err
	}
	app.client = client

	logger.Debug("vault client initialized", observability.String("vault", vaultCfg.String()))

	return app, nil
}

// withRetry runs fn with the configured retry policy. Only transport failures
// are retried; Vault status errors are returned at once.
func (a *application) withRetry(ctx context.Context, op string, fn retry.RetryableFunc) error {
	logger := a.logger.WithContext(ctx)

	return retry.Do(ctx, a.config.RetryConfig(), fn, &retry.Options{
		ShouldRetry: vault.IsRetryable,
		OnRetry: func(attempt int, err error, backoff time.Duration) {
			logger.Warn("retrying vault operation",
				observability.String("operation", op),
				observability.Int("attempt", attempt),
				observability.Duration("backoff", backoff),
				observability.Error(err),
			)
		},
	})
}

// close flushes the tracer.
func (a *application) close() {
	if a.tracer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdown)
	defer cancel()

	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to shutdown tracer", observability.Error(err))
	}
}
