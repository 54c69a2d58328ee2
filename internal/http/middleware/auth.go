// Session authentication middleware.
//
// RequireSession guards endpoints that need a logged-in user. It reads the
// bearer token from the Authorization header, resolves it through the
// authenticator, and stashes the user's id and display name in the Gin
// context for handlers (and the rate limiter key function) downstream.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nchalk/go-debate-backend/internal/domain"
)

// Context keys set by RequireSession.
const (
	// CtxUserID holds the authenticated user's id.
	CtxUserID = "userID"
	// CtxUserName holds the authenticated user's display name.
	CtxUserName = "userName"
	// CtxSessionToken holds the raw bearer token (needed by logout).
	CtxSessionToken = "sessionToken"
)

// Authenticator resolves a session token to its user. Implemented by
// services.AuthService.
type Authenticator interface {
	Whoami(ctx context.Context, token string) (*domain.User, error)
}

// BearerToken extracts the bearer credential from the Authorization header,
// or "" when absent or malformed.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// RequireSession rejects requests without a valid session token. Invalid,
// expired, and missing tokens all produce the same 401 envelope.
func RequireSession(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		user, err := auth.Whoami(c.Request.Context(), token)
		if err != nil {
			rid := c.Writer.Header().Get(requestIDHeader)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": rid,
				"code":       "unauthenticated",
				"message":    "valid session token required",
			})
			return
		}
		c.Set(CtxUserID, user.ID)
		c.Set(CtxUserName, user.Name)
		c.Set(CtxSessionToken, token)
		c.Next()
	}
}
