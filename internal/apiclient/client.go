// Package apiclient provides the base HTTP transport for the DeepSeek API with:
// - Request marshaling and fixed header handling
// - Outcome classification (JSON body vs event stream)
// - Standardized error parsing for non-2xx responses
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"dsbridge/internal/core"
	"dsbridge/internal/httpclient"
)

// Config holds configuration for the API transport.
type Config struct {
	// BaseURL is the API base URL. A trailing slash is trimmed on use.
	BaseURL string

	// APIKey is the bearer credential sent on every request.
	APIKey string

	// UserAgent identifies this client to the upstream API.
	UserAgent string

	// Timeout bounds one whole attempt, including reading the full body.
	Timeout time.Duration

	// Hooks receive transport observations. May be nil.
	Hooks Hooks
}

// Client issues single HTTP requests against the DeepSeek API and classifies
// their outcomes. It holds no mutable state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
}

// New creates a transport with a pooled HTTP client bounded by cfg.Timeout.
func New(cfg Config) *Client {
	return &Client{
		httpClient: httpclient.New(httpclient.DefaultConfig(cfg.Timeout)),
		config:     cfg,
	}
}

// NewWithHTTPClient creates a transport with a custom HTTP client.
// If hc is nil, http.DefaultClient is used.
func NewWithHTTPClient(hc *http.Client, cfg Config) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc, config: cfg}
}

// BaseURL returns the configured (normalized) base URL.
func (c *Client) BaseURL() string {
	return NormalizeBaseURL(c.config.BaseURL)
}

// Request describes one HTTP request to be made.
type Request struct {
	Method   string
	Endpoint string

	// Body is JSON-marshaled when non-nil. When it carries "stream": true the
	// response is treated as an event stream regardless of response headers;
	// that mirrors the API contract, which keys the response shape off the
	// request body.
	Body any

	// BaseURLOverride replaces the configured base URL for this request only.
	// The retry policy uses it to relocate a call onto the beta base.
	BaseURLOverride string
}

// wantsStream reports whether the outgoing body asks for an event-stream response.
func (r Request) wantsStream() bool {
	payload, ok := r.Body.(map[string]any)
	if !ok {
		return false
	}
	stream, _ := payload["stream"].(bool)
	return stream
}

// Do issues the request once and classifies the result. It never retries;
// re-attempts are the policy layer's decision.
func (c *Client) Do(ctx context.Context, req Request) (*core.Outcome, error) {
	if c.config.Hooks != nil {
		c.config.Hooks.OnRequest(ctx, req.Method, req.Endpoint)
	}
	start := time.Now()
	outcome, status, err := c.do(ctx, req)
	if c.config.Hooks != nil {
		c.config.Hooks.OnResult(ctx, req.Method, req.Endpoint, status, time.Since(start), err)
	}
	return outcome, err
}

func (c *Client) do(ctx context.Context, req Request) (*core.Outcome, int, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, core.NewNetworkError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, core.NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, core.ParseAPIError(resp.StatusCode, body)
	}

	if req.wantsStream() {
		return &core.Outcome{Events: ParseEventStream(body)}, resp.StatusCode, nil
	}

	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, resp.StatusCode, core.NewJSONDecodeError(err)
	}
	return &core.Outcome{JSON: raw}, resp.StatusCode, nil
}

// buildRequest creates the HTTP request with the fixed header set.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	base := c.config.BaseURL
	if req.BaseURLOverride != "" {
		base = req.BaseURLOverride
	}
	url := NormalizeBaseURL(base) + req.Endpoint

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewSerializationError(err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, core.NewSerializationError(err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.config.UserAgent)
	if requestID := core.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set("X-Request-Id", requestID)
	}

	return httpReq, nil
}

// NormalizeBaseURL trims any trailing slashes so endpoint paths concatenate
// cleanly. Idempotent.
func NormalizeBaseURL(base string) string {
	return strings.TrimRight(base, "/")
}
