// Package observability provides logging and tracing for vaultkv.
//
// # Logging
//
// The Logger interface wraps zap for structured logging:
//
//	logger, err := observability.NewLogger(observability.LogConfig{Level: "info", Format: "json"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer logger.Sync()
//
//	logger.Info("secret read",
//	    observability.String("key", "my-app/config"),
//	    observability.Duration("duration", d),
//	)
//
// # Tracing
//
// OpenTelemetry tracing with optional OTLP gRPC export:
//
//	tracer, err := observability.NewTracer(observability.TracerConfig{
//	    ServiceName:  "vaultctl",
//	    Enabled:      true,
//	    OTLPEndpoint: "otel-collector:4317",
//	    SamplingRate: 1.0,
//	})
//	defer tracer.Shutdown(ctx)
//
// Trace context is propagated to Vault requests with W3C trace context headers.
package observability
