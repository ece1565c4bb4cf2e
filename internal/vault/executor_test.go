package vault

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExecutor_Execute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Token", r.Header.Get("X-Vault-Token"))
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	executor, err := NewHTTPExecutor(nil, 5*time.Second)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("X-Vault-Token", testToken)
	resp, err := executor.Execute(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    server.URL + "/v1/secret/data/key",
		Header: header,
		Body:   []byte(`{"data":{"value":"v"}}`),
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, http.MethodPost, resp.Header.Get("X-Method"))
	assert.Equal(t, testToken, resp.Header.Get("X-Token"))
	assert.JSONEq(t, `{"data":{"value":"v"}}`, string(resp.Body))
}

func TestHTTPExecutor_NonSuccessIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(StatusSealed)
	}))
	t.Cleanup(server.Close)

	executor := NewHTTPExecutorWithClient(server.Client())
	resp, err := executor.Execute(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, StatusSealed, resp.StatusCode)
	assert.Empty(t, resp.Body)
}

func TestHTTPExecutor_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	executor := NewHTTPExecutorWithClient(nil)
	_, err := executor.Execute(context.Background(), &Request{Method: http.MethodGet, URL: url})
	assert.Error(t, err)
}

func TestHTTPExecutor_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	executor := NewHTTPExecutorWithClient(server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := executor.Execute(ctx, &Request{Method: http.MethodGet, URL: server.URL})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHTTPExecutor_InvalidRequest(t *testing.T) {
	executor := NewHTTPExecutorWithClient(nil)
	_, err := executor.Execute(context.Background(), &Request{Method: "BAD METHOD", URL: "http://127.0.0.1"})
	assert.Error(t, err)
}

func TestNewHTTPExecutor_InvalidCACert(t *testing.T) {
	_, err := NewHTTPExecutor(&VaultTLSConfig{CACert: "/nonexistent/ca.pem"}, time.Second)
	assert.Error(t, err)
}

func TestClient_TransportErrorFromUnreachableServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := New(newTestConfig(addr), nil)
	require.NoError(t, err)

	_, err = client.GetHealth(context.Background())
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestNewHTTPExecutor_IgnoresVaultEnvironment(t *testing.T) {
	t.Setenv("VAULT_SKIP_VERIFY", "true")
	t.Setenv("VAULT_CACERT", "/nonexistent/ca.pem")
	t.Setenv("VAULT_TLS_SERVER_NAME", "env.vault.internal")
	t.Setenv("VAULT_CLIENT_TIMEOUT", "1s")

	executor, err := NewHTTPExecutor(nil, 0)
	require.NoError(t, err)

	transport, ok := executor.client.Transport.(*http.Transport)
	require.True(t, ok)
	require.NotNil(t, transport.TLSClientConfig)
	assert.False(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.Empty(t, transport.TLSClientConfig.ServerName)
	assert.Nil(t, transport.TLSClientConfig.RootCAs)
	assert.Zero(t, executor.client.Timeout)
}

func TestNewHTTPExecutor_AppliesTLSConfig(t *testing.T) {
	executor, err := NewHTTPExecutor(&VaultTLSConfig{
		ServerName: "vault.internal",
		SkipVerify: true,
	}, 3*time.Second)
	require.NoError(t, err)

	transport, ok := executor.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.True(t, transport.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, "vault.internal", transport.TLSClientConfig.ServerName)
	assert.Equal(t, uint16(tls.VersionTLS12), transport.TLSClientConfig.MinVersion)
	assert.Equal(t, 3*time.Second, executor.client.Timeout)
}

func TestHTTPExecutor_DoesNotFollowRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusTemporaryRedirect)
	}))
	t.Cleanup(server.Close)

	executor, err := NewHTTPExecutor(nil, time.Second)
	require.NoError(t, err)

	resp, err := executor.Execute(context.Background(), &Request{Method: http.MethodGet, URL: server.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
}
