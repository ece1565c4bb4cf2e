package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vyrodovalexey/vaultkv/internal/circuitbreaker"
	"github.com/vyrodovalexey/vaultkv/internal/observability"
	"github.com/vyrodovalexey/vaultkv/internal/retry"
	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

// Default server settings.
const (
	DefaultServerAddress     = ":8080"
	DefaultShutdownTimeout   = 15 * time.Second
	DefaultServiceName       = "vaultctl"
	DefaultTracingSampleRate = 1.0
)

// Config is the root configuration.
type Config struct {
	Vault          VaultConfig          `yaml:"vault" json:"vault"`
	Logging        LoggingConfig        `yaml:"logging" json:"logging"`
	Tracing        TracingConfig        `yaml:"tracing" json:"tracing"`
	Server         ServerConfig         `yaml:"server" json:"server"`
	Retry          RetryConfig          `yaml:"retry" json:"retry"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker" json:"circuitBreaker"`
}

// VaultConfig configures the Vault client.
type VaultConfig struct {
	Address             string    `yaml:"address" json:"address"`
	Token               string    `yaml:"token" json:"-"`
	SecretPath          string    `yaml:"secretPath" json:"secretPath"`
	HealthPath          string    `yaml:"healthPath" json:"healthPath"`
	HealthStandbyOK     bool      `yaml:"healthStandbyOk" json:"healthStandbyOk"`
	HealthPerfStandbyOK *bool     `yaml:"healthPerfStandbyOk,omitempty" json:"healthPerfStandbyOk,omitempty"`
	Timeout             Duration  `yaml:"timeout" json:"timeout"`
	TLS                 TLSConfig `yaml:"tls" json:"tls"`
}

// TLSConfig configures TLS for the Vault connection.
type TLSConfig struct {
	CACert     string `yaml:"caCert" json:"caCert,omitempty"`
	CAPath     string `yaml:"caPath" json:"caPath,omitempty"`
	ClientCert string `yaml:"clientCert" json:"clientCert,omitempty"`
	ClientKey  string `yaml:"clientKey" json:"clientKey,omitempty"`
	ServerName string `yaml:"serverName" json:"serverName,omitempty"`
	SkipVerify bool   `yaml:"skipVerify" json:"skipVerify,omitempty"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// TracingConfig configures tracing.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" json:"enabled"`
	ServiceName  string  `yaml:"serviceName" json:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint" json:"otlpEndpoint"`
	SamplingRate float64 `yaml:"samplingRate" json:"samplingRate"`
}

// ServerConfig configures the probe server.
type ServerConfig struct {
	Address         string   `yaml:"address" json:"address"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout" json:"shutdownTimeout"`
}

// RetryConfig configures calling-layer retries.
type RetryConfig struct {
	MaxRetries     int      `yaml:"maxRetries" json:"maxRetries"`
	InitialBackoff Duration `yaml:"initialBackoff" json:"initialBackoff"`
	MaxBackoff     Duration `yaml:"maxBackoff" json:"maxBackoff"`
	JitterFactor   float64  `yaml:"jitterFactor" json:"jitterFactor"`
}

// CircuitBreakerConfig configures the transport circuit breaker.
type CircuitBreakerConfig struct {
	Enabled      bool     `yaml:"enabled" json:"enabled"`
	Threshold    int      `yaml:"threshold" json:"threshold"`
	FailureRatio float64  `yaml:"failureRatio" json:"failureRatio"`
	Interval     Duration `yaml:"interval" json:"interval"`
	Timeout      Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	vaultDefaults := vault.DefaultConfig()
	retryDefaults := retry.DefaultConfig()
	cbDefaults := circuitbreaker.DefaultConfig()
	logDefaults := observability.DefaultLogConfig()

	return &Config{
		Vault: VaultConfig{
			SecretPath: vaultDefaults.SecretPath,
			HealthPath: vaultDefaults.HealthPath,
			Timeout:    Duration(vaultDefaults.Timeout),
		},
		Logging: LoggingConfig{
			Level:  logDefaults.Level,
			Format: logDefaults.Format,
			Output: logDefaults.Output,
		},
		Tracing: TracingConfig{
			ServiceName:  DefaultServiceName,
			SamplingRate: DefaultTracingSampleRate,
		},
		Server: ServerConfig{
			Address:         DefaultServerAddress,
			ShutdownTimeout: Duration(DefaultShutdownTimeout),
		},
		Retry: RetryConfig{
			MaxRetries:     retryDefaults.MaxRetries,
			InitialBackoff: Duration(retryDefaults.InitialBackoff),
			MaxBackoff:     Duration(retryDefaults.MaxBackoff),
			JitterFactor:   retryDefaults.JitterFactor,
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:      cbDefaults.Enabled,
			Threshold:    cbDefaults.Threshold,
			FailureRatio: cbDefaults.FailureRatio,
			Interval:     Duration(cbDefaults.Interval),
			Timeout:      Duration(cbDefaults.Timeout),
		},
	}
}

// Validate validates every section and returns all problems found.
func (c *Config) Validate() error {
	var errs []error

	if err := c.VaultConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.RetryConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.CircuitBreakerConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Tracing.Enabled && (c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1) {
		errs = append(errs, fmt.Errorf("tracing: samplingRate must be within [0, 1], got %g", c.Tracing.SamplingRate))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server: shutdownTimeout must not be negative"))
	}

	return errors.Join(errs...)
}

// VaultConfig returns the Vault client configuration.
func (c *Config) VaultConfig() *vault.Config {
	cfg := &vault.Config{
		Address:         c.Vault.Address,
		SecretPath:      c.Vault.SecretPath,
		HealthPath:      c.Vault.HealthPath,
		HealthStandbyOK: c.Vault.HealthStandbyOK,
		Token:           c.Vault.Token,
		Timeout:         c.Vault.Timeout.Duration(),
	}
	if c.Vault.HealthPerfStandbyOK != nil {
		v := *c.Vault.HealthPerfStandbyOK
		cfg.HealthPerfStandbyOK = &v
	}

	tls := c.Vault.TLS
	if tls != (TLSConfig{}) {
		cfg.TLS = &vault.VaultTLSConfig{
			CACert:     tls.CACert,
			CAPath:     tls.CAPath,
			ClientCert: tls.ClientCert,
			ClientKey:  tls.ClientKey,
			ServerName: tls.ServerName,
			SkipVerify: tls.SkipVerify,
		}
	}

	return cfg
}

// RetryConfig returns the retry configuration.
func (c *Config) RetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:     c.Retry.MaxRetries,
		InitialBackoff: c.Retry.InitialBackoff.Duration(),
		MaxBackoff:     c.Retry.MaxBackoff.Duration(),
		JitterFactor:   c.Retry.JitterFactor,
	}
}

// CircuitBreakerConfig returns the circuit breaker configuration.
func (c *Config) CircuitBreakerConfig() *circuitbreaker.Config {
	return &circuitbreaker.Config{
		Enabled:      c.CircuitBreaker.Enabled,
		Threshold:    c.CircuitBreaker.Threshold,
		FailureRatio: c.CircuitBreaker.FailureRatio,
		Interval:     c.CircuitBreaker.Interval.Duration(),
		Timeout:      c.CircuitBreaker.Timeout.Duration(),
	}
}

// LogConfig returns the logging configuration.
func (c *Config) LogConfig() observability.LogConfig {
	return observability.LogConfig{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		Output: c.Logging.Output,
	}
}

// TracerConfig returns the tracing configuration.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:  c.Tracing.ServiceName,
		OTLPEndpoint: c.Tracing.OTLPEndpoint,
		SamplingRate: c.Tracing.SamplingRate,
		Enabled:      c.Tracing.Enabled,
	}
}
