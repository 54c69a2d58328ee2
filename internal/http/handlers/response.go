// Package handlers provides the HTTP handler implementations for the public
// API: accounts, topics, message history, the AI engine proxies, health, and
// the websocket room endpoint.
//
// This file holds the shared response helpers. Every failure goes through
// fail() so clients always receive the same envelope:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "topic not found"
//	}
//
// Success bodies are endpoint-specific JSON written through ok()/noContent().
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nchalk/go-debate-backend/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every endpoint. Code is a
// stable machine-readable string (see errors.go); Message is safe to show to
// users; RequestID correlates the response with server logs.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string `json:"code" example:"not_found"`
	Message   string `json:"message" example:"topic not found"`
}

// fail aborts the request with the standard error envelope. Server-side
// failures (5xx) are additionally logged with the request-scoped logger;
// client errors are left to the access log.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail exposes fail() for router-level fallbacks (NoRoute, NoMethod) so they
// emit the same envelope as the handlers.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent answers 204 for operations with nothing to return.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
