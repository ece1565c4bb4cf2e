// Package vault provides a HashiCorp Vault client for KV v2 secrets and
// node health.
//
// The client translates secret reads, writes and destroys, and health
// queries, into requests against the Vault REST API and turns the responses
// into typed results. It holds no caches or mutable state: every call is an
// independent request bounded by the configured timeout, and no call is
// retried.
//
// # Configuration
//
//	cfg := vault.DefaultConfig()
//	cfg.Address = "https://vault.example.com:8200"
//	cfg.Token = os.Getenv("VAULT_TOKEN")
//
//	client, err := vault.New(cfg, logger)
//
// SecretPath (default "v1/secret") and HealthPath (default "v1/sys/health")
// are relative to Address. HealthStandbyOK drives both the standbyok and
// perfstandbyok query parameters of health requests; HealthPerfStandbyOK
// overrides the latter.
//
// # Secrets
//
//	_, err := client.SetSecret(ctx, "my-app/db", "s3cr3t")   // POST   {secretPath}/data/my-app/db
//	entry, err := client.GetSecret(ctx, "my-app/db")        // GET    {secretPath}/data/my-app/db
//	_, err = client.DestroySecret(ctx, "my-app/db")          // DELETE {secretPath}/metadata/my-app/db
//
// Write bodies use the KV v2 envelope {"data": {"value": ...}}. Reads unwrap
// the outer "data" object and, when present, one nested "data" envelope.
//
// # Health
//
// GetHealth always parses the response body and classifies the status code:
//
//	200 initialized, unsealed and active
//	429 unsealed and standby
//	472 disaster recovery replication secondary and active
//	473 performance standby
//	501 not initialized
//	503 sealed
//
// Any other status is HealthUnspecified. An unhealthy node is a returned
// HealthResult, never an error.
//
// # Errors
//
// Failures are *VaultError values carrying the operation, path and status
// code. Use errors.Is with ErrSecretNotFound, ErrTransport, ErrProtocol,
// ErrPermissionDenied or ErrUnexpectedStatus to tell them apart. The token
// never appears in errors or logs.
//
// # Metrics
//
//   - vaultkv_vault_requests_total{operation,status}
//   - vaultkv_vault_request_duration_seconds{operation}
//   - vaultkv_vault_errors_total{operation,kind}
//   - vaultkv_vault_health_status_code
//   - vaultkv_vault_healthy
package vault
