package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"dsbridge/internal/core"
	"dsbridge/internal/deepseek"
)

// FallbackRecorder counts policy-driven re-attempts. Implemented by the
// Prometheus hooks; nil disables recording.
type FallbackRecorder interface {
	RecordFallback(kind string)
}

// DeepSeekTools binds the four DeepSeek operations to the tool registry.
type DeepSeekTools struct {
	client       *deepseek.Client
	defaultModel string
	recorder     FallbackRecorder
}

// RegisterDeepSeek registers the DeepSeek tool set. defaultModel is injected
// into chat calls that arrive without a model, before the client is invoked.
func RegisterDeepSeek(r *Registry, client *deepseek.Client, defaultModel string, recorder FallbackRecorder) error {
	if defaultModel == "" {
		defaultModel = deepseek.DefaultModel
	}
	ds := &DeepSeekTools{client: client, defaultModel: defaultModel, recorder: recorder}

	for _, t := range []Tool{
		{
			Name:        "list_models",
			Description: "List available DeepSeek models (GET /models)",
			Handler:     ds.listModels,
		},
		{
			Name:        "get_user_balance",
			Description: "Retrieve account balance (GET /user/balance)",
			Handler:     ds.getUserBalance,
		},
		{
			Name:        "chat_completion",
			Description: "Chat Completions API, streaming and non-streaming (POST /chat/completions)",
			Handler:     ds.chatCompletion,
		},
		{
			Name:        "completion",
			Description: "Text/FIM Completions API with beta base URL retry (POST /completions)",
			Handler:     ds.completion,
		},
	} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func (ds *DeepSeekTools) listModels(ctx context.Context, _ json.RawMessage) (any, error) {
	return ds.client.ListModels(ctx)
}

func (ds *DeepSeekTools) getUserBalance(ctx context.Context, _ json.RawMessage) (any, error) {
	return ds.client.GetUserBalance(ctx)
}

// chatCompletionArgs are the host-supplied arguments for the chat tool.
// extra_body passes through to the payload top level unchanged.
type chatCompletionArgs struct {
	Model               string           `json:"model"`
	Messages            []core.Message   `json:"messages"`
	Stream              bool             `json:"stream"`
	Temperature         *float64         `json:"temperature"`
	TopP                *float64         `json:"top_p"`
	MaxTokens           *int             `json:"max_tokens"`
	MaxCompletionTokens *int             `json:"max_completion_tokens"`
	FrequencyPenalty    *float64         `json:"frequency_penalty"`
	PresencePenalty     *float64         `json:"presence_penalty"`
	Stop                any              `json:"stop"`
	ResponseFormat      map[string]any   `json:"response_format"`
	Tools               []map[string]any `json:"tools"`
	ToolChoice          any              `json:"tool_choice"`
	Thinking            map[string]any   `json:"thinking"`
	ExtraBody           map[string]any   `json:"extra_body"`
}

func (ds *DeepSeekTools) chatCompletion(ctx context.Context, args json.RawMessage) (any, error) {
	var in chatCompletionArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, invalidArgs("invalid chat_completion arguments: %v", err)
	}
	if len(in.Messages) == 0 {
		return nil, invalidArgs("messages must not be empty")
	}

	model := in.Model
	if model == "" {
		model = ds.defaultModel
	}

	call := &core.ChatCall{
		Model:               model,
		Messages:            in.Messages,
		Stream:              in.Stream,
		Temperature:         in.Temperature,
		TopP:                in.TopP,
		MaxTokens:           in.MaxTokens,
		MaxCompletionTokens: in.MaxCompletionTokens,
		FrequencyPenalty:    in.FrequencyPenalty,
		PresencePenalty:     in.PresencePenalty,
		Stop:                in.Stop,
		ResponseFormat:      in.ResponseFormat,
		Tools:               in.Tools,
		ToolChoice:          in.ToolChoice,
		Thinking:            in.Thinking,
		Extra:               in.ExtraBody,
	}

	result, err := ds.client.CreateChatCompletion(ctx, call)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"response":           nil,
		"fallback":           nil,
		"stream_chunk_count": nil,
	}
	if result.Outcome.Streamed() {
		out["response"] = deepseek.AggregateChatChunks(result.Outcome.Events, model)
		out["stream_chunk_count"] = len(result.Outcome.Events)
	} else {
		out["response"] = result.Outcome.JSON
	}
	if result.Fallback != nil {
		out["fallback"] = result.Fallback
		if ds.recorder != nil {
			ds.recorder.RecordFallback("reasoner")
		}
		slog.Info("reasoner fallback used",
			"from_model", result.Fallback.FromModel,
			"to_model", result.Fallback.ToModel,
		)
	}
	return out, nil
}

// completionArgs are the host-supplied arguments for the legacy completion tool.
type completionArgs struct {
	Model       string         `json:"model"`
	Prompt      *string        `json:"prompt"`
	Suffix      string         `json:"suffix"`
	Stream      bool           `json:"stream"`
	Temperature *float64       `json:"temperature"`
	TopP        *float64       `json:"top_p"`
	MaxTokens   *int           `json:"max_tokens"`
	Echo        *bool          `json:"echo"`
	Logprobs    *int           `json:"logprobs"`
	Stop        any            `json:"stop"`
	ExtraBody   map[string]any `json:"extra_body"`
}

func (ds *DeepSeekTools) completion(ctx context.Context, args json.RawMessage) (any, error) {
	var in completionArgs
	if err := json.Unmarshal(args, &in); err != nil {
		return nil, invalidArgs("invalid completion arguments: %v", err)
	}
	if in.Prompt == nil {
		return nil, invalidArgs("prompt is required")
	}

	call := &core.CompletionCall{
		Model:       in.Model,
		Prompt:      *in.Prompt,
		Suffix:      in.Suffix,
		Stream:      in.Stream,
		Temperature: in.Temperature,
		TopP:        in.TopP,
		MaxTokens:   in.MaxTokens,
		Echo:        in.Echo,
		Logprobs:    in.Logprobs,
		Stop:        in.Stop,
		Extra:       in.ExtraBody,
	}

	result, err := ds.client.CreateCompletion(ctx, call)
	if err != nil {
		return nil, err
	}

	model := in.Model
	if model == "" {
		model = ds.defaultModel
	}

	out := map[string]any{
		"response":           nil,
		"used_beta_base":     result.UsedBetaBase,
		"stream_chunk_count": nil,
	}
	if result.Outcome.Streamed() {
		out["response"] = deepseek.AggregateCompletionChunks(result.Outcome.Events, model)
		out["stream_chunk_count"] = len(result.Outcome.Events)
	} else {
		out["response"] = result.Outcome.JSON
	}
	if result.UsedBetaBase {
		if ds.recorder != nil {
			ds.recorder.RecordFallback("beta")
		}
		slog.Info("completion retried on beta base url")
	}
	return out, nil
}
