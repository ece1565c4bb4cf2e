package vault

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	vaultapi "github.com/hashicorp/vault/api"

	"github.com/vyrodovalexey/vaultkv/internal/observability"
)

// maxResponseBodySize caps how much of a response body is read.
const maxResponseBodySize = 32 << 20

const tlsHandshakeTimeout = 10 * time.Second

// Request is a single HTTP request issued to Vault.
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is the raw HTTP response returned by Vault.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Executor sends requests to Vault. Implementations own connection pooling
// and TLS; they return an error only when no response was received.
type Executor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req *Request) (*Response, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPExecutor executes requests with a pooled net/http client configured
// the same way the official Vault API client configures its transport.
type HTTPExecutor struct {
	client *http.Client
}

// NewHTTPExecutor creates an HTTPExecutor. TLS settings are optional.
// The transport is built from the arguments alone: VAULT_* environment
// variables are not consulted, unlike vaultapi.DefaultConfig.
// Redirects are returned to the caller rather than followed.
func NewHTTPExecutor(tlsCfg *VaultTLSConfig, timeout time.Duration) (*HTTPExecutor, error) {
	client := cleanhttp.DefaultPooledClient()
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("failed to build vault transport: unexpected transport %T", client.Transport)
	}
	transport.TLSHandshakeTimeout = tlsHandshakeTimeout
	transport.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	client.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	apiConfig := &vaultapi.Config{HttpClient: client}
	if tlsCfg != nil {
		err := apiConfig.ConfigureTLS(&vaultapi.TLSConfig{
			CACert:        tlsCfg.CACert,
			CAPath:        tlsCfg.CAPath,
			ClientCert:    tlsCfg.ClientCert,
			ClientKey:     tlsCfg.ClientKey,
			TLSServerName: tlsCfg.ServerName,
			Insecure:      tlsCfg.SkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	if timeout > 0 {
		client.Timeout = timeout
	}

	return NewHTTPExecutorWithClient(client), nil
}

// NewHTTPExecutorWithClient creates an HTTPExecutor around an existing client.
func NewHTTPExecutorWithClient(client *http.Client) *HTTPExecutor {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPExecutor{client: client}
}

// Execute implements Executor.
func (e *HTTPExecutor) Execute(ctx context.Context, req *Request) (*Response, error) {
	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	observability.InjectTraceContext(ctx, httpReq.Header)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

var _ Executor = (*HTTPExecutor)(nil)
