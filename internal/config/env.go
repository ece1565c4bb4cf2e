package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment variables overriding the file.
const (
	EnvVaultAddress       = "VAULT_ADDR"
	EnvVaultToken         = "VAULT_TOKEN"
	EnvVaultSecretPath    = "VAULT_SECRET_PATH"
	EnvVaultHealthPath    = "VAULT_HEALTH_PATH"
	EnvVaultStandbyOK     = "VAULT_HEALTH_STANDBY_OK"
	EnvVaultPerfStandbyOK = "VAULT_HEALTH_PERF_STANDBY_OK"
	EnvVaultTimeout       = "VAULT_TIMEOUT"
	EnvVaultCACert        = "VAULT_CACERT"
	EnvVaultCAPath        = "VAULT_CAPATH"
	EnvVaultClientCert    = "VAULT_CLIENT_CERT"
	EnvVaultClientKey     = "VAULT_CLIENT_KEY"
	EnvVaultServerName    = "VAULT_TLS_SERVER_NAME"
	EnvVaultSkipVerify    = "VAULT_SKIP_VERIFY"
	EnvLogLevel           = "VAULTCTL_LOG_LEVEL"
	EnvLogFormat          = "VAULTCTL_LOG_FORMAT"
)

// LookupFunc looks up an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnvOverrides overrides cfg with the environment of the process.
func ApplyEnvOverrides(cfg *Config) error {
	return ApplyOverrides(cfg, os.LookupEnv)
}

// ApplyOverrides overrides cfg with the variables returned by lookup.
// Unset and empty variables leave the configured value in place.
func ApplyOverrides(cfg *Config, lookup LookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
			return
		}
		*dst = b
	}

	str(EnvVaultAddress, &cfg.Vault.Address)
	str(EnvVaultToken, &cfg.Vault.Token)
	str(EnvVaultSecretPath, &cfg.Vault.SecretPath)
	str(EnvVaultHealthPath, &cfg.Vault.HealthPath)
	str(EnvVaultCACert, &cfg.Vault.TLS.CACert)
	str(EnvVaultCAPath, &cfg.Vault.TLS.CAPath)
	str(EnvVaultClientCert, &cfg.Vault.TLS.ClientCert)
	str(EnvVaultClientKey, &cfg.Vault.TLS.ClientKey)
	str(EnvVaultServerName, &cfg.Vault.TLS.ServerName)
	str(EnvLogLevel, &cfg.Logging.Level)
	str(EnvLogFormat, &cfg.Logging.Format)

	boolean(EnvVaultStandbyOK, &cfg.Vault.HealthStandbyOK)
	boolean(EnvVaultSkipVerify, &cfg.Vault.TLS.SkipVerify)

	if v, ok := lookup(EnvVaultPerfStandbyOK); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", EnvVaultPerfStandbyOK, v))
		} else {
			cfg.Vault.HealthPerfStandbyOK = &b
		}
	}

	if v, ok := lookup(EnvVaultTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvVaultTimeout, err))
		} else {
			cfg.Vault.Timeout = Duration(d)
		}
	}

	return errors.Join(errs...)
}

// parseTimeout accepts a Go duration or a number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil {
		return d, nil
	}
	seconds, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", v)
	}
	return time.Duration(seconds) * time.Second, nil
}
