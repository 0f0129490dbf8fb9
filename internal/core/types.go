// Package core provides the shared types and error taxonomy for the DeepSeek bridge.
package core

import "encoding/json"

// Message is a single chat message. Unknown fields supplied by the host are
// preserved verbatim in Extra and re-emitted on serialization.
type Message struct {
	Role       string
	Content    string
	Name       string
	ToolCallID string
	Extra      map[string]any
}

// messageKnownKeys are the keys owned by the typed fields above. Extension
// fields never overwrite them.
var messageKnownKeys = map[string]bool{
	"role":         true,
	"content":      true,
	"name":         true,
	"tool_call_id": true,
}

// MarshalJSON emits the typed fields, omitting unset optionals, then merges
// the extension fields at the top level without overwriting known keys.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 4+len(m.Extra))
	out["role"] = m.Role
	out["content"] = m.Content
	if m.Name != "" {
		out["name"] = m.Name
	}
	if m.ToolCallID != "" {
		out["tool_call_id"] = m.ToolCallID
	}
	for k, v := range m.Extra {
		if messageKnownKeys[k] {
			continue
		}
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON fills the typed fields and captures everything else in Extra.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw["role"]; ok {
		if err := json.Unmarshal(v, &m.Role); err != nil {
			return err
		}
	}
	if v, ok := raw["content"]; ok {
		if err := json.Unmarshal(v, &m.Content); err != nil {
			return err
		}
	}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &m.Name); err != nil {
			return err
		}
	}
	if v, ok := raw["tool_call_id"]; ok {
		if err := json.Unmarshal(v, &m.ToolCallID); err != nil {
			return err
		}
	}
	for k, v := range raw {
		if messageKnownKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if m.Extra == nil {
			m.Extra = make(map[string]any)
		}
		m.Extra[k] = val
	}
	return nil
}

// ChatCall describes one chat completion request. The zero value of every
// optional field means "leave the parameter out of the payload". The model
// field is decided by the caller layer (or the fallback policy) before the
// payload is built.
type ChatCall struct {
	Model               string
	Messages            []Message
	Stream              bool
	Temperature         *float64
	TopP                *float64
	MaxTokens           *int
	MaxCompletionTokens *int
	FrequencyPenalty    *float64
	PresencePenalty     *float64
	Stop                any            // string or []string
	ResponseFormat      map[string]any
	Tools               []map[string]any
	ToolChoice          any // string or object
	Thinking            map[string]any
	Extra               map[string]any
}

// WithModel returns a shallow copy of the call with the model replaced.
// The fallback policy uses this instead of mutating the caller's call.
func (c *ChatCall) WithModel(model string) *ChatCall {
	cp := *c
	cp.Model = model
	return &cp
}

// CompletionCall describes one legacy (text/FIM) completion request.
type CompletionCall struct {
	Model       string
	Prompt      string
	Suffix      string
	Stream      bool
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
	Echo        *bool
	Logprobs    *int
	Stop        any
	Extra       map[string]any
}

// Outcome is the tagged union of successful transport results: exactly one of
// JSON (an ordinary response body) or Events (the normalized event-stream
// payloads, in arrival order) is set.
type Outcome struct {
	JSON   json.RawMessage
	Events []json.RawMessage
}

// Streamed reports whether the outcome came from an event-stream response.
func (o *Outcome) Streamed() bool {
	return o != nil && o.Events != nil
}

// FallbackRecord describes a reasoner fallback that produced the final chat
// result. It is attached only when the fallback attempt was used.
type FallbackRecord struct {
	FromModel string `json:"from_model"`
	ToModel   string `json:"to_model"`
	Reason    string `json:"reason"`
}
