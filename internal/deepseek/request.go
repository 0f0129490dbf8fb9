package deepseek

import "dsbridge/internal/core"

// BuildChatPayload serializes a chat call into the JSON payload for
// POST /chat/completions. Optional fields left unset are omitted; extension
// fields are merged at the top level without overwriting known fields. The
// model field carries whichever model the caller or the fallback policy
// decided to use.
func BuildChatPayload(call *core.ChatCall) map[string]any {
	payload := map[string]any{
		"model":    call.Model,
		"messages": call.Messages,
		"stream":   call.Stream,
	}

	if call.Temperature != nil {
		payload["temperature"] = *call.Temperature
	}
	if call.TopP != nil {
		payload["top_p"] = *call.TopP
	}
	if call.MaxTokens != nil {
		payload["max_tokens"] = *call.MaxTokens
	}
	if call.MaxCompletionTokens != nil {
		payload["max_completion_tokens"] = *call.MaxCompletionTokens
	}
	if call.FrequencyPenalty != nil {
		payload["frequency_penalty"] = *call.FrequencyPenalty
	}
	if call.PresencePenalty != nil {
		payload["presence_penalty"] = *call.PresencePenalty
	}
	if call.Stop != nil {
		payload["stop"] = call.Stop
	}
	if call.ResponseFormat != nil {
		payload["response_format"] = call.ResponseFormat
	}
	if call.Tools != nil {
		payload["tools"] = call.Tools
	}
	if call.ToolChoice != nil {
		payload["tool_choice"] = call.ToolChoice
	}
	if call.Thinking != nil {
		payload["thinking"] = call.Thinking
	}

	mergeExtra(payload, call.Extra)
	return payload
}

// BuildCompletionPayload serializes a legacy completion call into the JSON
// payload for POST /completions.
func BuildCompletionPayload(call *core.CompletionCall) map[string]any {
	payload := map[string]any{
		"model":  call.Model,
		"prompt": call.Prompt,
		"stream": call.Stream,
	}

	if call.Suffix != "" {
		payload["suffix"] = call.Suffix
	}
	if call.Temperature != nil {
		payload["temperature"] = *call.Temperature
	}
	if call.TopP != nil {
		payload["top_p"] = *call.TopP
	}
	if call.MaxTokens != nil {
		payload["max_tokens"] = *call.MaxTokens
	}
	if call.Echo != nil {
		payload["echo"] = *call.Echo
	}
	if call.Logprobs != nil {
		payload["logprobs"] = *call.Logprobs
	}
	if call.Stop != nil {
		payload["stop"] = call.Stop
	}

	mergeExtra(payload, call.Extra)
	return payload
}

// mergeExtra copies extension fields into the payload. Keys already set by
// the builder win; a caller extension can never clobber a typed field.
func mergeExtra(payload, extra map[string]any) {
	for k, v := range extra {
		if _, known := payload[k]; known {
			continue
		}
		payload[k] = v
	}
}
