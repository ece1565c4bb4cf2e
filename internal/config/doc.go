// Package config loads the vaultctl configuration file.
//
// Configuration is resolved in three layers: built-in defaults, an optional
// YAML file and VAULT_* environment overrides. The file may reference the
// environment with ${VAR} or ${VAR:-default}; "$$" escapes a literal dollar.
//
//	vault:
//	  address: https://vault.example.com:8200
//	  token: ${VAULT_TOKEN}
//	  secretPath: v1/secret
//	  healthPath: v1/sys/health
//	  healthStandbyOk: false
//	  timeout: 30s
//	logging:
//	  level: info
//	  format: json
//	retry:
//	  maxRetries: 3
//	  initialBackoff: 100ms
//
// The resolved Config converts into the typed configuration of each package
// (vault.Config, retry.Config, circuitbreaker.Config and the observability
// settings) before anything is constructed.
package config
