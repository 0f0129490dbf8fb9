// Package tools provides the tool registry and the DeepSeek tool handlers
// exposed to the host process.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler executes one tool invocation. args is the raw JSON argument object
// supplied by the host (may be empty for argument-less tools).
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// Tool is one registered tool.
type Tool struct {
	Name        string
	Description string
	Handler     Handler
}

// Info is the host-visible description of a registered tool.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Registry holds the registered tools. Registration happens at startup;
// afterwards the registry is read-only and safe for concurrent dispatch.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds a tool. Duplicate names are a programming error.
func (r *Registry) Register(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if t.Handler == nil {
		return fmt.Errorf("tool %q has no handler", t.Name)
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("tool %q is already registered", t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// List returns the registered tools in registration order.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		infos = append(infos, Info{Name: t.Name, Description: t.Description})
	}
	return infos
}

// Invoke dispatches one tool call by name.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return t.Handler(ctx, args)
}

// NotFoundError reports an invocation of an unregistered tool.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// ArgumentError reports host-supplied arguments rejected before the API
// client was invoked.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func invalidArgs(format string, a ...any) error {
	return &ArgumentError{Message: fmt.Sprintf(format, a...)}
}
