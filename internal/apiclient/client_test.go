package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dsbridge/internal/core"
)

func newTestClient(baseURL string) *Client {
	return NewWithHTTPClient(nil, Config{
		BaseURL:   baseURL,
		APIKey:    "test-key",
		UserAgent: "dsbridge-test/0.0.0",
	})
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://api.deepseek.com", "https://api.deepseek.com"},
		{"https://api.deepseek.com/", "https://api.deepseek.com"},
		{"https://api.deepseek.com//", "https://api.deepseek.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeBaseURL(tt.in))
		// Idempotent.
		assert.Equal(t, tt.want, NormalizeBaseURL(NormalizeBaseURL(tt.in)))
	}
}

func TestDo_JSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "dsbridge-test/0.0.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:   http.MethodGet,
		Endpoint: "/models",
	})

	require.NoError(t, err)
	assert.False(t, outcome.Streamed())
	assert.JSONEq(t, `{"object":"list","data":[]}`, string(outcome.JSON))
}

func TestDo_TrailingSlashBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL + "/").Do(context.Background(), Request{
		Method:   http.MethodGet,
		Endpoint: "/models",
	})

	require.NoError(t, err)
}

func TestDo_BaseURLOverride(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := newTestClient("http://unreachable.invalid").Do(context.Background(), Request{
		Method:          http.MethodPost,
		Endpoint:        "/completions",
		Body:            map[string]any{"prompt": "x"},
		BaseURLOverride: srv.URL + "/beta",
	})

	require.NoError(t, err)
	assert.Equal(t, "/beta/completions", gotPath)
}

func TestDo_HTTPErrorParsesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit exceeded"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:   http.MethodGet,
		Endpoint: "/models",
	})

	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.ErrorTypeHTTP, apiErr.Type)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, "rate limit exceeded", apiErr.Message)
	assert.NotNil(t, apiErr.Payload)
}

func TestDo_NetworkErrorHasNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:   http.MethodGet,
		Endpoint: "/models",
	})

	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.ErrorTypeNetwork, apiErr.Type)
	assert.False(t, apiErr.HasStatus())
	assert.Contains(t, apiErr.Message, "network error")
}

func TestDo_InvalidJSONOn2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:   http.MethodGet,
		Endpoint: "/models",
	})

	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.ErrorTypeJSONDecode, apiErr.Type)
	assert.False(t, apiErr.HasStatus())
}

func TestDo_StreamClassifiedFromRequestBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["stream"])

		// Deliberately wrong content type: classification must not depend on it.
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("data: {\"a\":1}\n\ndata: [DONE]\n\n"))
	}))
	defer srv.Close()

	outcome, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     map[string]any{"stream": true},
	})

	require.NoError(t, err)
	require.True(t, outcome.Streamed())
	require.Len(t, outcome.Events, 1)
}

func TestDo_NonStreamBodyYieldsJSONOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"chatcmpl-1"}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(srv.URL).Do(context.Background(), Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     map[string]any{"stream": false},
	})

	require.NoError(t, err)
	assert.False(t, outcome.Streamed())
}

func TestDo_ContextCancellationAbortsRequest(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := newTestClient(srv.URL).Do(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: "/models",
	})

	var apiErr *core.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, core.ErrorTypeNetwork, apiErr.Type)
	assert.True(t, errors.Is(err, context.Canceled) || ctx.Err() != nil)
}

type recordingHooks struct {
	requests []string
	statuses []int
}

func (h *recordingHooks) OnRequest(_ context.Context, method, endpoint string) {
	h.requests = append(h.requests, method+" "+endpoint)
}

func (h *recordingHooks) OnResult(_ context.Context, _, _ string, status int, _ time.Duration, _ error) {
	h.statuses = append(h.statuses, status)
}

func TestDo_HooksObserveAttempt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	hooks := &recordingHooks{}
	client := NewWithHTTPClient(nil, Config{
		BaseURL:   srv.URL,
		APIKey:    "k",
		UserAgent: "ua",
		Hooks:     hooks,
	})

	_, err := client.Do(context.Background(), Request{Method: http.MethodGet, Endpoint: "/models"})

	require.Error(t, err)
	assert.Equal(t, []string{"GET /models"}, hooks.requests)
	assert.Equal(t, []int{http.StatusServiceUnavailable}, hooks.statuses)
}
