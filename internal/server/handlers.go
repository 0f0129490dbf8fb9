package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"dsbridge/internal/core"
	"dsbridge/internal/tools"
)

// Handler holds the HTTP handlers.
type Handler struct {
	registry     *tools.Registry
	defaultModel string
}

// NewHandler creates a new handler over the given tool registry.
func NewHandler(registry *tools.Registry, defaultModel string) *Handler {
	return &Handler{registry: registry, defaultModel: defaultModel}
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ListTools handles GET /tools.
func (h *Handler) ListTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"tools": h.registry.List()})
}

// InvokeTool handles POST /tools/:name. The request body is the raw JSON
// argument object for the tool; an empty body means no arguments.
func (h *Handler) InvokeTool(c echo.Context) error {
	name := c.Param("name")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return handleError(c, err)
	}
	args := json.RawMessage(body)
	if len(body) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := h.registry.Invoke(c.Request().Context(), name, args)
	if err != nil {
		return handleError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// EndpointsResource handles GET /resources/endpoints.
func (h *Handler) EndpointsResource(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"endpoints": tools.EndpointMatrix})
}

// ChatStarterPrompt handles GET /prompts/chat_starter.
func (h *Handler) ChatStarterPrompt(c echo.Context) error {
	task := c.QueryParam("task")
	if task == "" {
		return handleError(c, &tools.ArgumentError{Message: "task is required"})
	}
	model := c.QueryParam("model")
	if model == "" {
		model = h.defaultModel
	}
	prompt := tools.ChatStarterPrompt(task, c.QueryParam("style"), model)
	return c.JSON(http.StatusOK, map[string]string{"prompt": prompt})
}

// handleError converts tool and API client failures to HTTP responses. An
// upstream HTTP failure keeps its upstream status; failures before any status
// map to 502.
func handleError(c echo.Context, err error) error {
	var argErr *tools.ArgumentError
	if errors.As(err, &argErr) {
		return c.JSON(http.StatusBadRequest, errorBody("invalid_request_error", argErr.Message, 0))
	}

	var notFound *tools.NotFoundError
	if errors.As(err, &notFound) {
		return c.JSON(http.StatusNotFound, errorBody("not_found_error", notFound.Error(), 0))
	}

	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		return c.JSON(status, errorBody(string(apiErr.Type), apiErr.Message, apiErr.Status))
	}

	slog.Error("tool invocation failed", "error", err)
	return c.JSON(http.StatusInternalServerError, errorBody("internal_error", "an unexpected error occurred", 0))
}

func errorBody(errType, message string, upstreamStatus int) map[string]any {
	inner := map[string]any{
		"type":    errType,
		"message": message,
	}
	if upstreamStatus != 0 {
		inner["upstream_status"] = upstreamStatus
	}
	return map[string]any{"error": inner}
}
