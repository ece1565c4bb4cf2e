package vault

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Configuration defaults.
const (
	// DefaultSecretPath is the default KV v2 mount path, relative to the address.
	DefaultSecretPath = "v1/secret"

	// DefaultHealthPath is the default health endpoint path, relative to the address.
	DefaultHealthPath = "v1/sys/health"

	// DefaultTimeout is the default per-request timeout.
	DefaultTimeout = 30 * time.Second
)

const redactedToken = "<redacted>"

// Config represents Vault client configuration.
type Config struct {
	// Address is the Vault server base URL.
	Address string `yaml:"address" json:"address"`

	// SecretPath is the KV v2 secrets path relative to Address.
	SecretPath string `yaml:"secretPath" json:"secretPath"`

	// HealthPath is the health endpoint path relative to Address.
	HealthPath string `yaml:"healthPath" json:"healthPath"`

	// HealthStandbyOK reports standby nodes as healthy. It drives both the
	// standbyok and perfstandbyok query parameters unless
	// HealthPerfStandbyOK is set.
	HealthStandbyOK bool `yaml:"healthStandbyOk" json:"healthStandbyOk"`

	// HealthPerfStandbyOK overrides the perfstandbyok query parameter.
	HealthPerfStandbyOK *bool `yaml:"healthPerfStandbyOk,omitempty" json:"healthPerfStandbyOk,omitempty"`

	// Token is the static Vault token sent with every request.
	Token string `yaml:"token" json:"-"`

	// Timeout bounds every request.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`

	// TLS configuration for the Vault connection.
	TLS *VaultTLSConfig `yaml:"tls,omitempty" json:"tls,omitempty"`
}

// VaultTLSConfig configures TLS for Vault connection.
type VaultTLSConfig struct {
	// CACert is the path to the CA certificate file.
	CACert string `yaml:"caCert,omitempty" json:"caCert,omitempty"`

	// CAPath is the path to a directory of CA certificates.
	CAPath string `yaml:"caPath,omitempty" json:"caPath,omitempty"`

	// ClientCert is the path to the client certificate file.
	ClientCert string `yaml:"clientCert,omitempty" json:"clientCert,omitempty"`

	// ClientKey is the path to the client private key file.
	ClientKey string `yaml:"clientKey,omitempty" json:"clientKey,omitempty"`

	// ServerName overrides the TLS server name.
	ServerName string `yaml:"serverName,omitempty" json:"serverName,omitempty"`

	// SkipVerify skips TLS certificate verification (insecure).
	SkipVerify bool `yaml:"skipVerify,omitempty" json:"skipVerify,omitempty"`
}

// DefaultConfig returns a Config with default values. Address and Token
// still have to be supplied.
func DefaultConfig() *Config {
	return &Config{
		SecretPath: DefaultSecretPath,
		HealthPath: DefaultHealthPath,
		Timeout:    DefaultTimeout,
	}
}

// Validate validates the Vault configuration.
func (c *Config) Validate() error {
	if c == nil {
		return NewConfigurationError("", "configuration is nil")
	}

	if strings.TrimSpace(c.Address) == "" {
		return NewConfigurationError("address", "vault address is required")
	}

	u, err := url.Parse(c.Address)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewConfigurationError("address", "vault address must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewConfigurationError("address", fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}

	if NormalizePath(c.SecretPath) == "" {
		return NewConfigurationError("secretPath", "secret path is required")
	}

	if NormalizePath(c.HealthPath) == "" {
		return NewConfigurationError("healthPath", "health path is required")
	}

	// The token value never appears in the message.
	if strings.TrimSpace(c.Token) == "" {
		return NewConfigurationError("token", "token is required")
	}

	if c.Timeout <= 0 {
		return NewConfigurationError("timeout", "timeout must be positive")
	}

	return c.TLS.Validate()
}

// Validate validates the TLS configuration.
func (c *VaultTLSConfig) Validate() error {
	if c == nil {
		return nil
	}

	if c.ClientCert != "" && c.ClientKey == "" {
		return NewConfigurationError("tls.clientKey", "client key is required when client cert is provided")
	}
	if c.ClientKey != "" && c.ClientCert == "" {
		return NewConfigurationError("tls.clientCert", "client cert is required when client key is provided")
	}

	return nil
}

// StandbyOK returns the value of the standbyok health query parameter.
func (c *Config) StandbyOK() bool {
	return c.HealthStandbyOK
}

// PerfStandbyOK returns the value of the perfstandbyok health query parameter.
func (c *Config) PerfStandbyOK() bool {
	if c.HealthPerfStandbyOK != nil {
		return *c.HealthPerfStandbyOK
	}
	return c.HealthStandbyOK
}

// String returns a printable form of the configuration without the token.
func (c *Config) String() string {
	if c == nil {
		return "<nil>"
	}
	token := ""
	if c.Token != "" {
		token = redactedToken
	}
	return fmt.Sprintf("{Address:%s SecretPath:%s HealthPath:%s StandbyOK:%t PerfStandbyOK:%t Token:%s Timeout:%s}",
		c.Address, c.SecretPath, c.HealthPath, c.StandbyOK(), c.PerfStandbyOK(), token, c.Timeout)
}

// Clone creates a deep copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c

	if c.HealthPerfStandbyOK != nil {
		v := *c.HealthPerfStandbyOK
		clone.HealthPerfStandbyOK = &v
	}

	if c.TLS != nil {
		tls := *c.TLS
		clone.TLS = &tls
	}

	return &clone
}
