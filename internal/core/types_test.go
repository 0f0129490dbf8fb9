package core

import (
	"encoding/json"
	"testing"
)

func TestMessage_MarshalJSON_OmitsUnsetOptionals(t *testing.T) {
	data, err := json.Marshal(Message{Role: "user", Content: "hi"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(out) != 2 {
		t.Errorf("expected only role and content, got %v", out)
	}
}

func TestMessage_ExtensionFieldsRoundTrip(t *testing.T) {
	input := `{"role":"tool","content":"42","tool_call_id":"call-1","prefix":true,"custom":{"a":1}}`

	var msg Message
	if err := json.Unmarshal([]byte(input), &msg); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if msg.Role != "tool" || msg.ToolCallID != "call-1" {
		t.Errorf("typed fields not filled: %+v", msg)
	}
	if _, ok := msg.Extra["prefix"]; !ok {
		t.Error("extension field prefix not captured")
	}
	if _, ok := msg.Extra["role"]; ok {
		t.Error("known field leaked into Extra")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out["prefix"] != true {
		t.Errorf("extension field prefix not re-emitted: %v", out)
	}
	if out["role"] != "tool" {
		t.Errorf("typed field lost: %v", out)
	}
}

func TestMessage_ExtensionCannotOverwriteKnownField(t *testing.T) {
	msg := Message{
		Role:    "user",
		Content: "real",
		Extra:   map[string]any{"content": "spoofed"},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if out["content"] != "real" {
		t.Errorf("extension field overwrote known field: %v", out)
	}
}

func TestChatCall_WithModel(t *testing.T) {
	orig := &ChatCall{Model: "deepseek-reasoner", Messages: []Message{{Role: "user", Content: "hi"}}}
	swapped := orig.WithModel("deepseek-chat")

	if swapped.Model != "deepseek-chat" {
		t.Errorf("Model = %q, want deepseek-chat", swapped.Model)
	}
	if orig.Model != "deepseek-reasoner" {
		t.Error("WithModel mutated the original call")
	}
}

func TestOutcome_Streamed(t *testing.T) {
	jsonOutcome := &Outcome{JSON: json.RawMessage(`{}`)}
	if jsonOutcome.Streamed() {
		t.Error("JSON outcome reported as streamed")
	}

	emptyStream := &Outcome{Events: []json.RawMessage{}}
	if !emptyStream.Streamed() {
		t.Error("empty stream outcome not reported as streamed")
	}
}
