// Package server exposes the tool registry over HTTP to the host process.
package server

import (
	"context"
	"net/http"
	"path"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dsbridge/internal/core"
	"dsbridge/internal/tools"
)

// Config holds server configuration options.
type Config struct {
	MasterKey       string // Optional: bearer key required on tool routes
	MetricsEnabled  bool   // Whether to expose the Prometheus metrics endpoint
	MetricsEndpoint string // HTTP path for the metrics endpoint (default: /metrics)
	DefaultModel    string // Model named in the chat starter prompt
}

// Server wraps the Echo server.
type Server struct {
	echo    *echo.Echo
	handler *Handler
}

// New creates the HTTP server over the given tool registry.
func New(registry *tools.Registry, cfg *Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cfg == nil {
		cfg = &Config{}
	}
	handler := NewHandler(registry, cfg.DefaultModel)

	authSkipPaths := []string{"/health"}
	metricsPath := "/metrics"
	if cfg.MetricsEnabled {
		if cfg.MetricsEndpoint != "" {
			metricsPath = path.Clean(cfg.MetricsEndpoint)
		}
		authSkipPaths = append(authSkipPaths, metricsPath)
	}

	e.Use(middleware.Recover())
	e.Use(requestIDMiddleware())
	if cfg.MasterKey != "" {
		e.Use(AuthMiddleware(cfg.MasterKey, authSkipPaths))
	}

	e.GET("/health", handler.Health)
	if cfg.MetricsEnabled {
		e.GET(metricsPath, echo.WrapHandler(promhttp.Handler()))
	}

	e.GET("/tools", handler.ListTools)
	e.POST("/tools/:name", handler.InvokeTool)
	e.GET("/resources/endpoints", handler.EndpointsResource)
	e.GET("/prompts/chat_starter", handler.ChatStarterPrompt)

	return &Server{echo: e, handler: handler}
}

// Start starts the HTTP server on the given address. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// ServeHTTP implements http.Handler, allowing Server to be used with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// requestIDMiddleware assigns each invocation a request ID (honoring one the
// host already supplied), stores it on the context for the upstream client,
// and echoes it on the response.
func requestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get("X-Request-Id")
			if requestID == "" {
				requestID = uuid.NewString()
			}

			ctx := core.WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set("X-Request-Id", requestID)
			return next(c)
		}
	}
}
