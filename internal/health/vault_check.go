package health

import (
	"context"
	"fmt"

	"github.com/vyrodovalexey/vaultkv/internal/observability"
	"github.com/vyrodovalexey/vaultkv/internal/vault"
)

// VaultCheckName is the name the Vault check is registered under.
const VaultCheckName = "vault"

const unsuccessfulPrefix = "Vault health check unsuccessful."

// HealthGetter queries the health of a Vault node.
type HealthGetter interface {
	GetHealth(ctx context.Context) (*vault.HealthResult, error)
}

// VaultCheck is a probe check backed by the Vault health endpoint.
type VaultCheck struct {
	client HealthGetter
	logger observability.Logger
}

// NewVaultCheck creates a Vault check.
func NewVaultCheck(client HealthGetter, logger observability.Logger) *VaultCheck {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &VaultCheck{
		client: client,
		logger: logger.With(observability.String("check", VaultCheckName)),
	}
}

// Check queries Vault and reports pass only for an initialized, unsealed
// and active node.
func (v *VaultCheck) Check(ctx context.Context) Check {
	logger := v.logger.WithContext(ctx)

	result, err := v.client.GetHealth(ctx)
	if err != nil {
		logger.Error("vault health check failed", observability.Error(err))
		return Fail(fmt.Sprintf("%s %v", unsuccessfulPrefix, err))
	}

	if result.Healthy() {
		logger.Debug("vault health check successful",
			observability.Int("status_code", result.StatusCode),
			observability.Stringer("code", result.Code),
		)
		return Pass(result.Code.Description())
	}

	message := UnhealthyMessage(result)
	logger.Warn("vault is unhealthy",
		observability.Int("status_code", result.StatusCode),
		observability.Stringer("code", result.Code),
		observability.String("message", message),
	)
	return Fail(message)
}

// UnhealthyMessage renders the operator facing message for an unhealthy result.
func UnhealthyMessage(result *vault.HealthResult) string {
	if result.Code == vault.HealthUnspecified {
		return fmt.Sprintf("%s %s. Code: %d %s",
			unsuccessfulPrefix, result.Code.Description(), result.StatusCode, result.Payload)
	}
	return fmt.Sprintf("%s %s %s", unsuccessfulPrefix, result.Code.Description(), result.Payload)
}
