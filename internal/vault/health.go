package vault

import (
	"fmt"
	"net/http"

	vaultapi "github.com/hashicorp/vault/api"
)

// Status codes returned by the Vault health endpoint.
const (
	StatusActive             = http.StatusOK
	StatusStandby            = http.StatusTooManyRequests
	StatusDRSecondary        = 472
	StatusPerformanceStandby = 473
	StatusNotInitialized     = http.StatusNotImplemented
	StatusSealed             = http.StatusServiceUnavailable
)

// HealthCode is the classified state of a Vault node.
type HealthCode int

// Health codes.
const (
	HealthUnspecified HealthCode = iota
	HealthInitializedUnsealedActive
	HealthUnsealedStandby
	HealthDRSecondaryActive
	HealthPerformanceStandby
	HealthNotInitialized
	HealthSealed
)

// String returns the metric/log label of the code.
func (c HealthCode) String() string {
	switch c {
	case HealthInitializedUnsealedActive:
		return "initialized_unsealed_and_active"
	case HealthUnsealedStandby:
		return "unsealed_and_standby"
	case HealthDRSecondaryActive:
		return "disaster_recovery_mode_replication_secondary_and_active"
	case HealthPerformanceStandby:
		return "performance_standby"
	case HealthNotInitialized:
		return "not_initialized"
	case HealthSealed:
		return "sealed"
	default:
		return "unspecified"
	}
}

// Description returns an operator facing description of the code.
func (c HealthCode) Description() string {
	switch c {
	case HealthInitializedUnsealedActive:
		return "Vault is initialized, unsealed and active"
	case HealthUnsealedStandby:
		return "Vault is in standby"
	case HealthDRSecondaryActive:
		return "Vault is in recovery mode"
	case HealthPerformanceStandby:
		return "Vault is in performance standby"
	case HealthNotInitialized:
		return "Vault is not initialized"
	case HealthSealed:
		return "Vault is sealed"
	default:
		return "Unspecified response from vault"
	}
}

// ClassifyHealth maps a health endpoint status code to a HealthCode.
// Vault encodes the node state in the status code; the body is only
// informational. Unknown codes map to HealthUnspecified.
func ClassifyHealth(statusCode int) HealthCode {
	switch statusCode {
	case StatusActive:
		return HealthInitializedUnsealedActive
	case StatusStandby:
		return HealthUnsealedStandby
	case StatusDRSecondary:
		return HealthDRSecondaryActive
	case StatusPerformanceStandby:
		return HealthPerformanceStandby
	case StatusNotInitialized:
		return HealthNotInitialized
	case StatusSealed:
		return HealthSealed
	default:
		return HealthUnspecified
	}
}

// HealthPayload is the body of a health response.
type HealthPayload struct {
	Initialized                bool   `json:"initialized"`
	Sealed                     bool   `json:"sealed"`
	Standby                    bool   `json:"standby"`
	PerformanceStandby         bool   `json:"performance_standby"`
	ReplicationPerformanceMode string `json:"replication_performance_mode"`
	ReplicationDRMode          string `json:"replication_dr_mode"`
	ServerTimeUTC              int64  `json:"server_time_utc"`
	Version                    string `json:"version"`
	ClusterName                string `json:"cluster_name"`
	ClusterID                  string `json:"cluster_id"`
}

func newHealthPayload(r *vaultapi.HealthResponse) *HealthPayload {
	return &HealthPayload{
		Initialized:                r.Initialized,
		Sealed:                     r.Sealed,
		Standby:                    r.Standby,
		PerformanceStandby:         r.PerformanceStandby,
		ReplicationPerformanceMode: r.ReplicationPerformanceMode,
		ReplicationDRMode:          r.ReplicationDRMode,
		ServerTimeUTC:              r.ServerTimeUTC,
		Version:                    r.Version,
		ClusterName:                r.ClusterName,
		ClusterID:                  r.ClusterID,
	}
}

// String renders the payload for diagnostic messages.
func (p *HealthPayload) String() string {
	if p == nil {
		return "HealthPayload{}"
	}
	return fmt.Sprintf(
		"HealthPayload{initialized=%t, sealed=%t, standby=%t, performanceStandby=%t, "+
			"replicationPerformanceMode=%q, replicationDrMode=%q, serverTimeUtc=%d, "+
			"version=%q, clusterId=%q, clusterName=%q}",
		p.Initialized, p.Sealed, p.Standby, p.PerformanceStandby,
		p.ReplicationPerformanceMode, p.ReplicationDRMode, p.ServerTimeUTC,
		p.Version, p.ClusterID, p.ClusterName,
	)
}

// HealthResult is the outcome of a health query. An unhealthy Vault is a
// valid result, not an error.
type HealthResult struct {
	StatusCode int
	Payload    *HealthPayload
	Code       HealthCode
}

// Healthy returns true only for an initialized, unsealed and active node.
func (r *HealthResult) Healthy() bool {
	return r != nil && r.Code == HealthInitializedUnsealedActive
}
