package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	testToken      = "s.test-token-0123456789"
	testSecretPath = "v1/test/secret"
	testHealthPath = "sys/health"
)

// newTestConfig returns a valid configuration pointing at address.
func newTestConfig(address string) *Config {
	return &Config{
		Address:         address,
		SecretPath:      testSecretPath,
		HealthPath:      testHealthPath,
		HealthStandbyOK: false,
		Token:           testToken,
		Timeout:         30 * time.Second,
	}
}

// recordingExecutor records requests and answers with a fixed response.
type recordingExecutor struct {
	mu       sync.Mutex
	requests []*Request
	response *Response
	err      error
}

func newRecordingExecutor(status int, body string) *recordingExecutor {
	return &recordingExecutor{
		response: &Response{StatusCode: status, Header: http.Header{}, Body: []byte(body)},
	}
}

func (e *recordingExecutor) Execute(_ context.Context, req *Request) (*Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	if e.err != nil {
		return nil, e.err
	}
	return e.response, nil
}

func (e *recordingExecutor) Requests() []*Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*Request(nil), e.requests...)
}

// fakeVault is an in-memory KV v2 and health endpoint.
type fakeVault struct {
	mu           sync.Mutex
	secrets      map[string][]string
	healthStatus int
	server       *httptest.Server
}

func newFakeVault(t *testing.T) *fakeVault {
	t.Helper()

	v := &fakeVault{
		secrets:      make(map[string][]string),
		healthStatus: http.StatusOK,
	}
	v.server = httptest.NewServer(http.HandlerFunc(v.handle))
	t.Cleanup(v.server.Close)
	return v
}

func (v *fakeVault) setHealthStatus(status int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.healthStatus = status
}

func (v *fakeVault) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Vault-Token") != testToken {
		writeJSON(w, http.StatusForbidden, map[string]any{"errors": []string{"permission denied"}})
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, "/")
	dataPrefix := testSecretPath + "/data/"
	metadataPrefix := testSecretPath + "/metadata/"

	switch {
	case path == testHealthPath:
		writeJSON(w, v.healthStatus, map[string]any{
			"initialized":                  v.healthStatus != http.StatusNotImplemented,
			"sealed":                       v.healthStatus == http.StatusServiceUnavailable,
			"standby":                      v.healthStatus == http.StatusTooManyRequests,
			"performance_standby":          v.healthStatus == 473,
			"replication_performance_mode": "disabled",
			"replication_dr_mode":          "disabled",
			"server_time_utc":              1700000000,
			"version":                      "1.15.0",
			"cluster_name":                 "vault-cluster-test",
			"cluster_id":                   "cluster-id",
		})

	case strings.HasPrefix(path, dataPrefix) && r.Method == http.MethodGet:
		key := strings.TrimPrefix(path, dataPrefix)
		versions := v.secrets[key]
		if len(versions) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]any{"errors": []string{}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"data":     map[string]any{"value": versions[len(versions)-1]},
				"metadata": map[string]any{"version": len(versions)},
			},
		})

	case strings.HasPrefix(path, dataPrefix) && (r.Method == http.MethodPost || r.Method == http.MethodPut):
		key := strings.TrimPrefix(path, dataPrefix)
		var body struct {
			Data struct {
				Value string `json:"value"`
			} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{err.Error()}})
			return
		}
		v.secrets[key] = append(v.secrets[key], body.Data.Value)
		writeJSON(w, http.StatusOK, map[string]any{
			"data": map[string]any{
				"created_time": "2024-01-02T03:04:05.123456789Z",
				"version":      len(v.secrets[key]),
				"destroyed":    false,
			},
		})

	case strings.HasPrefix(path, metadataPrefix) && r.Method == http.MethodDelete:
		delete(v.secrets, strings.TrimPrefix(path, metadataPrefix))
		w.WriteHeader(http.StatusNoContent)

	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"errors": []string{}})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
