package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware creates an Echo middleware that validates the master key.
// Paths in skipPaths bypass authentication.
func AuthMiddleware(masterKey string, skipPaths []string) echo.MiddlewareFunc {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if masterKey == "" || skip[c.Request().URL.Path] {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("authentication_error", "missing authorization header", 0))
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				return c.JSON(http.StatusUnauthorized, errorBody("authentication_error", "invalid authorization header format, expected 'Bearer <token>'", 0))
			}

			if strings.TrimPrefix(authHeader, prefix) != masterKey {
				return c.JSON(http.StatusUnauthorized, errorBody("authentication_error", "invalid master key", 0))
			}

			return next(c)
		}
	}
}
