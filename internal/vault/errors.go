package vault

import (
	"errors"
	"fmt"
)

// Common errors for Vault operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("vault: invalid configuration")

	// ErrInvalidKey indicates a secret key that cannot be used as a path.
	ErrInvalidKey = errors.New("vault: invalid secret key")

	// ErrSecretNotFound indicates the secret was not found.
	ErrSecretNotFound = errors.New("vault: secret not found")

	// ErrTransport indicates Vault could not be reached or did not answer in time.
	ErrTransport = errors.New("vault: transport error")

	// ErrProtocol indicates a response body did not have the expected shape.
	ErrProtocol = errors.New("vault: protocol error")

	// ErrPermissionDenied indicates Vault rejected the token.
	ErrPermissionDenied = errors.New("vault: permission denied")

	// ErrUnexpectedStatus indicates Vault answered with a status the operation does not handle.
	ErrUnexpectedStatus = errors.New("vault: unexpected status")
)

// VaultError represents a Vault operation failure with context.
type VaultError struct {
	Op      string // Operation that failed
	Path    string // Request path if applicable
	Code    int    // HTTP status code if applicable
	Message string // Additional message
	Kind    error  // One of the sentinel errors
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *VaultError) Error() string {
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Code)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}

	switch {
	case e.Op != "" && e.Path != "":
		return fmt.Sprintf("vault %s at %s: %s", e.Op, e.Path, msg)
	case e.Op != "":
		return fmt.Sprintf("vault %s: %s", e.Op, msg)
	default:
		return fmt.Sprintf("vault error: %s", msg)
	}
}

// Unwrap returns the underlying errors.
func (e *VaultError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// newVaultError creates a VaultError of the given kind.
func newVaultError(op, path string, kind error, message string) *VaultError {
	return &VaultError{
		Op:      op,
		Path:    path,
		Kind:    kind,
		Message: message,
	}
}

// withCode sets the HTTP status code.
func (e *VaultError) withCode(code int) *VaultError {
	e.Code = code
	return e
}

// withCause sets the underlying error.
func (e *VaultError) withCause(cause error) *VaultError {
	e.Cause = cause
	return e
}

// ConfigurationError represents a configuration validation error.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("vault configuration error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("vault configuration error: %s", e.Message)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{
		Field:   field,
		Message: message,
	}
}

// IsNotFound returns true if err reports an absent secret.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSecretNotFound)
}

// IsTransportError returns true if err is a connection or timeout failure.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsProtocolError returns true if err is an unparseable response.
func IsProtocolError(err error) bool {
	return errors.Is(err, ErrProtocol)
}

// IsRetryable returns true if a calling layer may retry the operation.
// Only transport failures qualify; protocol errors and remote verdicts are final.
func IsRetryable(err error) bool {
	return IsTransportError(err)
}

// errorKindLabel returns a bounded metric label for err.
func errorKindLabel(err error) string {
	switch {
	case errors.Is(err, ErrSecretNotFound):
		return "not_found"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrInvalidKey):
		return "invalid_key"
	default:
		return "unexpected_status"
	}
}
