package deepseek

import (
	"encoding/json"
	"fmt"
	"time"
)

// chatChunk is the subset of a streamed chat.completion.chunk event that
// aggregation needs. Everything else in the chunk is ignored.
type chatChunk struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content          *string `json:"content"`
			ReasoningContent *string `json:"reasoning_content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage"`
}

// completionChunk is the subset of a streamed text_completion event that
// aggregation needs.
type completionChunk struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Text         *string `json:"text"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage json.RawMessage `json:"usage"`
}

// AggregateChatChunks collapses an ordered list of chat stream events into a
// single chat.completion object: deltas concatenated, the last non-empty
// finish_reason kept, usage taken from the final chunk. Events that fail to
// decode contribute nothing; the stream normalizer already dropped malformed
// payloads before this point.
func AggregateChatChunks(events []json.RawMessage, fallbackModel string) map[string]any {
	now := time.Now().Unix()
	if len(events) == 0 {
		return map[string]any{
			"id":      fmt.Sprintf("chatcmpl-stream-%d", now),
			"object":  "chat.completion",
			"created": now,
			"model":   fallbackModel,
			"choices": []any{map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": ""},
				"finish_reason": nil,
			}},
			"usage": nil,
		}
	}

	chunks := make([]chatChunk, len(events))
	for i, ev := range events {
		_ = json.Unmarshal(ev, &chunks[i])
	}
	first, last := chunks[0], chunks[len(chunks)-1]

	var content, reasoning []byte
	var finishReason string
	for _, chunk := range chunks {
		for _, choice := range chunk.Choices {
			if choice.Delta.Content != nil {
				content = append(content, *choice.Delta.Content...)
			}
			if choice.Delta.ReasoningContent != nil {
				reasoning = append(reasoning, *choice.Delta.ReasoningContent...)
			}
			if choice.FinishReason != "" {
				finishReason = choice.FinishReason
			}
		}
	}

	message := map[string]any{
		"role":    "assistant",
		"content": string(content),
	}
	if len(reasoning) > 0 {
		message["reasoning_content"] = string(reasoning)
	}

	return map[string]any{
		"id":      firstNonEmpty(first.ID, fmt.Sprintf("chatcmpl-stream-%d", now)),
		"object":  "chat.completion",
		"created": firstNonZero(last.Created, first.Created, now),
		"model":   firstNonEmpty(first.Model, fallbackModel),
		"choices": []any{map[string]any{
			"index":         0,
			"message":       message,
			"finish_reason": nullableString(finishReason),
		}},
		"usage": nullableRaw(last.Usage),
	}
}

// AggregateCompletionChunks collapses an ordered list of legacy completion
// stream events into a single text_completion object.
func AggregateCompletionChunks(events []json.RawMessage, fallbackModel string) map[string]any {
	now := time.Now().Unix()
	if len(events) == 0 {
		return map[string]any{
			"id":      fmt.Sprintf("cmpl-stream-%d", now),
			"object":  "text_completion",
			"created": now,
			"model":   fallbackModel,
			"choices": []any{map[string]any{
				"index":         0,
				"text":          "",
				"finish_reason": nil,
			}},
			"usage": nil,
		}
	}

	chunks := make([]completionChunk, len(events))
	for i, ev := range events {
		_ = json.Unmarshal(ev, &chunks[i])
	}
	first, last := chunks[0], chunks[len(chunks)-1]

	var text []byte
	var finishReason string
	for _, chunk := range chunks {
		for _, choice := range chunk.Choices {
			if choice.Text != nil {
				text = append(text, *choice.Text...)
			}
			if choice.FinishReason != "" {
				finishReason = choice.FinishReason
			}
		}
	}

	return map[string]any{
		"id":      firstNonEmpty(first.ID, fmt.Sprintf("cmpl-stream-%d", now)),
		"object":  "text_completion",
		"created": firstNonZero(last.Created, first.Created, now),
		"model":   firstNonEmpty(first.Model, fallbackModel),
		"choices": []any{map[string]any{
			"index":         0,
			"text":          string(text),
			"finish_reason": nullableString(finishReason),
		}},
		"usage": nullableRaw(last.Usage),
	}
}

func firstNonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

func firstNonZero(values ...int64) int64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// nullableString maps the empty string to JSON null, matching the upstream
// convention of finish_reason: null while a stream is unfinished.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableRaw maps an absent or literal-null usage field to JSON null.
func nullableRaw(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return raw
}
