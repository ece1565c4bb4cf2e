// Package circuitbreaker guards the Vault transport with a circuit breaker.
// While the circuit is open requests fail fast without reaching Vault.
package circuitbreaker

import (
	"fmt"
	"time"
)

// Config holds configuration for a circuit breaker.
type Config struct {
	// Enabled turns the breaker on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Threshold is the minimum number of requests in an interval before the
	// failure ratio is evaluated. It also bounds requests in half-open state.
	Threshold int `yaml:"threshold" json:"threshold"`

	// FailureRatio opens the circuit once reached (0.0 to 1.0).
	FailureRatio float64 `yaml:"failureRatio" json:"failureRatio"`

	// Interval is the cyclic period of the closed state after which the
	// counts are cleared.
	Interval time.Duration `yaml:"interval" json:"interval"`

	// Timeout is the duration the circuit stays open before half-open.
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      false,
		Threshold:    5,
		FailureRatio: 0.5,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c == nil || !c.Enabled {
		return nil
	}
	if c.Threshold < 1 {
		return fmt.Errorf("circuitbreaker: threshold must be at least 1, got %d", c.Threshold)
	}
	if c.FailureRatio <= 0 || c.FailureRatio > 1 {
		return fmt.Errorf("circuitbreaker: failureRatio must be within (0, 1], got %g", c.FailureRatio)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("circuitbreaker: timeout must be positive")
	}
	if c.Interval < 0 {
		return fmt.Errorf("circuitbreaker: interval must not be negative")
	}
	return nil
}
