package vault

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	vaultapi "github.com/hashicorp/vault/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyrodovalexey/vaultkv/internal/observability"
)

// Operation names used in errors, logs, metrics and spans.
const (
	OpGetSecret     = "get_secret"
	OpSetSecret     = "set_secret"
	OpDestroySecret = "destroy_secret"
	OpGetHealth     = "get_health"
)

// Request header names.
const (
	headerVaultToken  = "X-Vault-Token"
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// Health query parameters.
const (
	queryStandbyOK     = "standbyok"
	queryPerfStandbyOK = "perfstandbyok"
)

const tracerName = "github.com/vyrodovalexey/vaultkv/internal/vault"

// SecretEntry is a secret value stored under a key.
type SecretEntry struct {
	Key     string
	Value   string
	Version int
}

// WriteResult acknowledges a secret write.
type WriteResult struct {
	Key         string
	Version     int
	CreatedTime time.Time
	StatusCode  int
}

// DestroyResult acknowledges the removal of all versions of a secret.
type DestroyResult struct {
	Key        string
	StatusCode int
}

// Client issues KV v2 secret and health requests against Vault.
// A Client holds no mutable state and is safe for concurrent use.
type Client struct {
	config     *Config
	baseURL    *url.URL
	executor   Executor
	serializer Serializer
	logger     observability.Logger
	metrics    *Metrics
	tracer     trace.Tracer
}

// ClientOption is a functional option for configuring the client.
type ClientOption func(*Client)

// WithExecutor sets the HTTP executor.
func WithExecutor(executor Executor) ClientOption {
	return func(c *Client) {
		c.executor = executor
	}
}

// WithSerializer sets the body serializer.
func WithSerializer(serializer Serializer) ClientOption {
	return func(c *Client) {
		c.serializer = serializer
	}
}

// WithMetrics sets the metrics recorder for the client.
func WithMetrics(metrics *Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) ClientOption {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// New creates a new Vault client. The configuration is validated and copied;
// later changes to cfg do not affect the client.
func New(cfg *Config, logger observability.Logger, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg = cfg.Clone()

	baseURL, err := url.Parse(cfg.Address)
	if err != nil {
		return nil, NewConfigurationError("address", "vault address must be an absolute URL")
	}

	if logger == nil {
		logger = observability.NopLogger()
	}

	c := &Client{
		config:  cfg,
		baseURL: baseURL,
		logger:  logger.With(observability.String("component", "vault")),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.executor == nil {
		executor, err := NewHTTPExecutor(cfg.TLS, cfg.Timeout)
		if err != nil {
			return nil, NewConfigurationError("tls", err.Error())
		}
		c.executor = executor
	}
	if c.serializer == nil {
		c.serializer = JSONSerializer{}
	}
	if c.metrics == nil {
		c.metrics = NewMetrics("")
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}

	return c, nil
}

// Config returns a copy of the client configuration.
func (c *Client) Config() *Config {
	return c.config.Clone()
}

// Metrics returns the client metrics.
func (c *Client) Metrics() *Metrics {
	return c.metrics
}

// GetSecret reads the latest version of the secret stored under key.
func (c *Client) GetSecret(ctx context.Context, key string) (entry *SecretEntry, err error) {
	path := JoinPath(c.config.SecretPath, kv2DataSegment, key)
	ctx, finish := c.begin(ctx, OpGetSecret, path)
	defer func() { finish(err) }()

	if err := ValidateKey(key); err != nil {
		return nil, newVaultError(OpGetSecret, path, ErrInvalidKey, "")
	}

	resp, err := c.do(ctx, OpGetSecret, http.MethodGet, c.secretURL(kv2DataSegment, key), path, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(OpGetSecret, path, resp); err != nil {
		return nil, err
	}

	var secret vaultapi.Secret
	if err := c.serializer.Unmarshal(resp.Body, &secret); err != nil {
		return nil, newVaultError(OpGetSecret, path, ErrProtocol, "malformed secret response").
			withCode(resp.StatusCode).withCause(err)
	}

	value, version, ok := unwrapSecretValue(secret.Data)
	if !ok {
		return nil, newVaultError(OpGetSecret, path, ErrProtocol, "secret response has no string value").
			withCode(resp.StatusCode)
	}

	return &SecretEntry{Key: key, Value: value, Version: version}, nil
}

// SetSecret creates or updates the secret stored under key. Every write
// creates a new version on the remote.
func (c *Client) SetSecret(ctx context.Context, key, value string) (result *WriteResult, err error) {
	path := JoinPath(c.config.SecretPath, kv2DataSegment, key)
	ctx, finish := c.begin(ctx, OpSetSecret, path)
	defer func() { finish(err) }()

	if err := ValidateKey(key); err != nil {
		return nil, newVaultError(OpSetSecret, path, ErrInvalidKey, "")
	}

	body, err := c.serializer.Marshal(map[string]any{
		kv2DataSegment: map[string]any{"value": value},
	})
	if err != nil {
		return nil, newVaultError(OpSetSecret, path, ErrProtocol, "failed to encode secret").withCause(err)
	}

	resp, err := c.do(ctx, OpSetSecret, http.MethodPost, c.secretURL(kv2DataSegment, key), path, body)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(OpSetSecret, path, resp); err != nil {
		return nil, err
	}

	result = &WriteResult{Key: key, StatusCode: resp.StatusCode}
	if len(strings.TrimSpace(string(resp.Body))) == 0 {
		return result, nil
	}

	var secret vaultapi.Secret
	if err := c.serializer.Unmarshal(resp.Body, &secret); err != nil {
		return nil, newVaultError(OpSetSecret, path, ErrProtocol, "malformed write response").
			withCode(resp.StatusCode).withCause(err)
	}
	if v, ok := intFromAny(secret.Data["version"]); ok {
		result.Version = v
	}
	if s, ok := secret.Data["created_time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			result.CreatedTime = t
		}
	}

	return result, nil
}

// DestroySecret permanently removes all versions and the metadata of the
// secret stored under key. Whether a repeated destroy succeeds is decided by
// the remote.
func (c *Client) DestroySecret(ctx context.Context, key string) (result *DestroyResult, err error) {
	path := JoinPath(c.config.SecretPath, kv2MetadataSegment, key)
	ctx, finish := c.begin(ctx, OpDestroySecret, path)
	defer func() { finish(err) }()

	if err := ValidateKey(key); err != nil {
		return nil, newVaultError(OpDestroySecret, path, ErrInvalidKey, "")
	}

	resp, err := c.do(ctx, OpDestroySecret, http.MethodDelete, c.secretURL(kv2MetadataSegment, key), path, nil)
	if err != nil {
		return nil, err
	}
	if err := c.checkStatus(OpDestroySecret, path, resp); err != nil {
		return nil, err
	}

	return &DestroyResult{Key: key, StatusCode: resp.StatusCode}, nil
}

// GetHealth queries the health endpoint and classifies the node state.
// It fails only when Vault cannot be reached or the body cannot be parsed.
func (c *Client) GetHealth(ctx context.Context) (result *HealthResult, err error) {
	path := NormalizePath(c.config.HealthPath)
	ctx, finish := c.begin(ctx, OpGetHealth, path)
	defer func() { finish(err) }()

	query := url.Values{}
	query.Set(queryStandbyOK, strconv.FormatBool(c.config.StandbyOK()))
	query.Set(queryPerfStandbyOK, strconv.FormatBool(c.config.PerfStandbyOK()))

	resp, err := c.do(ctx, OpGetHealth, http.MethodGet, buildURL(c.baseURL, query, c.config.HealthPath), path, nil)
	if err != nil {
		return nil, err
	}

	var health vaultapi.HealthResponse
	if err := c.serializer.Unmarshal(resp.Body, &health); err != nil {
		return nil, newVaultError(OpGetHealth, path, ErrProtocol, "malformed health response").
			withCode(resp.StatusCode).withCause(err)
	}

	result = &HealthResult{
		StatusCode: resp.StatusCode,
		Payload:    newHealthPayload(&health),
		Code:       ClassifyHealth(resp.StatusCode),
	}
	c.metrics.RecordHealth(result)

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("vault.health_code", result.Code.String()))

	return result, nil
}

// begin starts the span for an operation and returns a function that
// records its outcome.
func (c *Client) begin(ctx context.Context, op, path string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "vault."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("vault.operation", op),
			attribute.String("vault.path", path),
		),
	)
	logger := c.logger.WithContext(observability.ContextWithSpan(ctx, span))

	return ctx, func(err error) {
		defer span.End()
		duration := time.Since(start)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, errorKindLabel(err))
			c.metrics.RecordRequest(op, "error", duration)
			c.metrics.RecordError(op, errorKindLabel(err))
			logger.Debug("vault operation failed",
				observability.String("operation", op),
				observability.String("path", path),
				observability.Duration("duration", duration),
				observability.Error(err),
			)
			return
		}

		c.metrics.RecordRequest(op, "success", duration)
		logger.Debug("vault operation completed",
			observability.String("operation", op),
			observability.String("path", path),
			observability.Duration("duration", duration),
		)
	}
}

// do sends a single request bounded by the configured timeout.
func (c *Client) do(ctx context.Context, op, method, target, path string, body []byte) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	header := http.Header{}
	header.Set(headerVaultToken, c.config.Token)
	header.Set(headerAccept, contentTypeJSON)
	if body != nil {
		header.Set(headerContentType, contentTypeJSON)
	}

	resp, err := c.executor.Execute(ctx, &Request{
		Method: method,
		URL:    target,
		Header: header,
		Body:   body,
	})
	if err != nil {
		return nil, newVaultError(op, path, ErrTransport, "request failed").withCause(err)
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	return resp, nil
}

// checkStatus maps non-2xx responses of secret operations to errors.
func (c *Client) checkStatus(op, path string, resp *Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	message := c.remoteErrorMessage(resp.Body)

	var kind error
	switch resp.StatusCode {
	case http.StatusNotFound:
		kind = ErrSecretNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = ErrPermissionDenied
	default:
		kind = ErrUnexpectedStatus
	}

	if message == "" {
		message = kind.Error()
	}
	return newVaultError(op, path, kind, message).withCode(resp.StatusCode)
}

// remoteErrorMessage extracts the "errors" list Vault returns with failures.
func (c *Client) remoteErrorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Errors []string `json:"errors"`
	}
	if err := c.serializer.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.Join(payload.Errors, "; ")
}

// secretURL builds {address}/{secretPath}/{segment}/{key}.
func (c *Client) secretURL(segment, key string) string {
	return buildURL(c.baseURL, nil, c.config.SecretPath, segment, key)
}

// unwrapSecretValue extracts the value from a KV v2 read. data is the outer
// "data" object; one nested "data" envelope is unwrapped if present.
func unwrapSecretValue(data map[string]any) (value string, version int, ok bool) {
	if data == nil {
		return "", 0, false
	}

	if meta, isMap := data["metadata"].(map[string]any); isMap {
		version, _ = intFromAny(meta["version"])
	}

	if inner, isMap := data[kv2DataSegment].(map[string]any); isMap {
		data = inner
	}

	value, ok = data["value"].(string)
	return value, version, ok
}

// intFromAny converts a decoded JSON number to int.
func intFromAny(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
