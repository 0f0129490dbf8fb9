// Package deepseek provides the DeepSeek API client: payload construction,
// the two retry/fallback policies, and stream aggregation.
package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"dsbridge/internal/apiclient"
	"dsbridge/internal/core"
)

// UserAgent is the fixed outbound User-Agent string.
const UserAgent = "deepseek-bridge-go/0.1.0"

// Config holds the immutable per-process client configuration. It is created
// once at startup and safe to share across concurrent calls.
type Config struct {
	APIKey                 string
	BaseURL                string
	Timeout                time.Duration
	DefaultModel           string
	EnableReasonerFallback bool
	FallbackModel          string
	Hooks                  apiclient.Hooks
}

// Client is the facade over the four DeepSeek operations. Every operation
// makes one attempt plus at most one policy-driven re-attempt; each attempt
// gets its own full timeout window.
type Client struct {
	transport *apiclient.Client
	config    Config
}

// New creates a DeepSeek client. The API key must be non-empty; that is
// validated by config loading before this point.
func New(cfg Config) *Client {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	return &Client{
		transport: apiclient.New(apiclient.Config{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			UserAgent: UserAgent,
			Timeout:   cfg.Timeout,
			Hooks:     cfg.Hooks,
		}),
		config: cfg,
	}
}

// NewWithHTTPClient creates a client backed by a custom *http.Client.
// If hc is nil, http.DefaultClient is used.
func NewWithHTTPClient(hc *http.Client, cfg Config) *Client {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = DefaultModel
	}
	return &Client{
		transport: apiclient.NewWithHTTPClient(hc, apiclient.Config{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			UserAgent: UserAgent,
			Timeout:   cfg.Timeout,
			Hooks:     cfg.Hooks,
		}),
		config: cfg,
	}
}

// ListModels retrieves the available models. No retry policy applies.
func (c *Client) ListModels(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/models")
}

// GetUserBalance retrieves the account balance. No retry policy applies.
func (c *Client) GetUserBalance(ctx context.Context) (json.RawMessage, error) {
	return c.getJSON(ctx, "/user/balance")
}

func (c *Client) getJSON(ctx context.Context, endpoint string) (json.RawMessage, error) {
	outcome, err := c.transport.Do(ctx, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: endpoint,
	})
	if err != nil {
		return nil, err
	}
	return outcome.JSON, nil
}

// ChatResult is the outcome of a chat completion call. Fallback is non-nil
// only when the reasoner fallback attempt produced the result.
type ChatResult struct {
	Outcome  *core.Outcome
	Fallback *core.FallbackRecord
}

// CreateChatCompletion issues a chat completion. On an eligible failure of a
// reasoner call, it reissues the request once with the fallback model
// substituted; the second failure, if any, propagates unchanged.
func (c *Client) CreateChatCompletion(ctx context.Context, call *core.ChatCall) (*ChatResult, error) {
	if call.Model == "" {
		call = call.WithModel(c.config.DefaultModel)
	}

	outcome, err := c.transport.Do(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     BuildChatPayload(call),
	})
	if err == nil {
		return &ChatResult{Outcome: outcome}, nil
	}

	apiErr, ok := asAPIError(err)
	if !ok || ctx.Err() != nil {
		return nil, err
	}
	if !ShouldReasonerFallback(c.config.EnableReasonerFallback, call.Model, c.config.FallbackModel, apiErr) {
		return nil, err
	}

	fallbackCall := call.WithModel(c.config.FallbackModel)
	outcome, retryErr := c.transport.Do(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     BuildChatPayload(fallbackCall),
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return &ChatResult{
		Outcome: outcome,
		Fallback: &core.FallbackRecord{
			FromModel: call.Model,
			ToModel:   c.config.FallbackModel,
			Reason:    apiErr.Error(),
		},
	}, nil
}

// CompletionResult is the outcome of a legacy completion call. UsedBetaBase
// is true only when the beta-endpoint retry produced the result.
type CompletionResult struct {
	Outcome      *core.Outcome
	UsedBetaBase bool
}

// CreateCompletion issues a legacy completion, defaulting the model when the
// caller left it out. When the upstream rejects the call with a message
// naming the beta base, the identical payload is reissued once against
// <base>/beta; the second failure, if any, propagates unchanged.
func (c *Client) CreateCompletion(ctx context.Context, call *core.CompletionCall) (*CompletionResult, error) {
	if call.Model == "" {
		cp := *call
		cp.Model = c.config.DefaultModel
		call = &cp
	}

	payload := BuildCompletionPayload(call)
	outcome, err := c.transport.Do(ctx, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/completions",
		Body:     payload,
	})
	if err == nil {
		return &CompletionResult{Outcome: outcome}, nil
	}

	apiErr, ok := asAPIError(err)
	if !ok || ctx.Err() != nil {
		return nil, err
	}
	if !ShouldRetryOnBeta(apiErr) {
		return nil, err
	}

	outcome, retryErr := c.transport.Do(ctx, apiclient.Request{
		Method:          http.MethodPost,
		Endpoint:        "/completions",
		Body:            payload,
		BaseURLOverride: BetaBaseURL(c.transport.BaseURL()),
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return &CompletionResult{Outcome: outcome, UsedBetaBase: true}, nil
}

func asAPIError(err error) (*core.APIError, bool) {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
