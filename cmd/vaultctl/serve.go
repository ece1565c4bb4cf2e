package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"

	"github.com/vyrodovalexey/vaultkv/internal/health"
	"github.com/vyrodovalexey/vaultkv/internal/observability"
)

const (
	pathMetrics = "/metrics"

	circuitBreakerCheckName = "circuit_breaker"

	serverReadTimeout       = 10 * time.Second
	serverReadHeaderTimeout = 5 * time.Second
	serverWriteTimeout      = health.DefaultProbeTimeout + 5*time.Second
	serverIdleTimeout       = 60 * time.Second
)

// ginModeOnce ensures gin.SetMode is only called once to avoid race conditions
var ginModeOnce sync.Once

func runServe(ctx context.Context, app *application, args []string, cio commandIO) int {
	fs := newFlagSet("serve", "[-addr address]", cio)
	addr := fs.String("addr", app.config.Server.Address, "Listen address")
	if _, code, ok := parseArgs(fs, args, 0); !ok {
		return code
	}

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		app.logger.Error("failed to listen", observability.String("address", *addr), observability.Error(err))
		return exitError
	}

	if err := app.serve(ctx, listener); err != nil {
		app.logger.Error("probe server failed", observability.Error(err))
		return exitError
	}
	return exitOK
}

// serve runs the probe server on listener until ctx is done, then shuts it
// down within the configured shutdown timeout.
func (a *application) serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           a.newRouter(),
		ReadTimeout:       serverReadTimeout,
		ReadHeaderTimeout: serverReadHeaderTimeout,
		WriteTimeout:      serverWriteTimeout,
		IdleTimeout:       serverIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting probe server", observability.String("address", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down probe server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// newRouter builds the probe and metrics routes.
func (a *application) newRouter() *gin.Engine {
	ginModeOnce.Do(func() {
		gin.SetMode(gin.ReleaseMode)
	})

	router := gin.New()
	router.Use(
		gin.Recovery(),
		observability.RequestIDMiddleware(),
		observability.TracingMiddleware(a.tracer.Tracer()),
		observability.AccessLogMiddleware(a.logger, health.PathLiveness, pathMetrics),
	)

	health.RegisterRoutes(router, a.newChecker())
	router.GET(pathMetrics, gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{
		Registry: a.registry,
	})))

	return router
}

// newChecker registers the Vault check for every probe kind, and the
// circuit breaker check for readiness when the breaker is enabled.
func (a *application) newChecker() *health.Checker {
	metrics := health.NewMetrics(metricsNamespace)
	metrics.MustRegister(a.registry)
	metrics.Init()

	checker := health.NewChecker(version, health.WithMetrics(metrics))
	checker.RegisterCheck(health.VaultCheckName, health.NewVaultCheck(a.client, a.logger).Check)

	if a.breaker != nil {
		checker.RegisterCheck(circuitBreakerCheckName, a.circuitBreakerCheck, health.ProbeReadiness)
	}

	for _, kind := range health.AllProbes {
		a.logger.Debug("probe checks registered",
			observability.String("probe", string(kind)),
			observability.Strings("checks", checker.CheckNames(kind)),
		)
	}

	return checker
}

func (a *application) circuitBreakerCheck(_ context.Context) health.Check {
	state := a.breaker.State()
	if state == gobreaker.StateOpen {
		return health.Fail("circuit breaker is open")
	}
	return health.Pass("circuit breaker is " + state.String())
}
