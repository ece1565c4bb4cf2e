// Package health provides liveness, readiness and startup probes.
//
// A Checker aggregates named checks per probe kind. VaultCheck turns a Vault
// health query into a pass/fail probe result: only an initialized, unsealed
// and active node passes; every other classification, and any failure to
// query Vault, fails with an operator facing message.
//
// Probe results are served as JSON by the handlers in this package:
//
//	router := gin.New()
//	health.RegisterRoutes(router, checker)
//
// which exposes /healthz, /readyz and /startupz returning 200 when every
// check of the probe passes and 503 otherwise.
package health
