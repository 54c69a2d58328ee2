// Auth HTTP handlers.
//
// This file exposes the account endpoints:
//   - POST /auth/signup  (create account, returns session token)
//   - POST /auth/login   (verify credentials, returns session token)
//   - POST /auth/logout  (revoke the presented session)
//   - GET  /auth/me      (introspect the presented session)
//
// Login failures never reveal whether the email or the password was wrong;
// both map to the same 401 invalid_credentials envelope.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nchalk/go-debate-backend/internal/http/middleware"
	"github.com/nchalk/go-debate-backend/internal/services"
)

//
// DTOs
//

// SignupRequest is the JSON payload for creating an account.
type SignupRequest struct {
	// Name is the display name shown in rooms (min 2 chars after trimming).
	Name string `json:"name" binding:"required" example:"Alice"`
	// Email must be unique across accounts.
	Email string `json:"email" binding:"required" example:"alice@example.com"`
	// Password must be at least 6 characters.
	Password string `json:"password" binding:"required" example:"hunter2x"`
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"hunter2x"`
}

// UserResponse is the public shape of an account.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse carries the account plus its freshly issued session token.
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(id, name, email string) UserResponse {
	return UserResponse{ID: id, Name: name, Email: email}
}

//
// Handlers
//

// Signup godoc
// @ID          signup
// @Summary     Create an account
// @Description Creates a user account and returns a session token for immediate use.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SignupRequest  true  "Signup payload"
//
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     409  {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/signup [post]
func (h *Handlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "name, email and password required")
		return
	}

	user, token, err := h.deps.Auth.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNameTooShort):
			fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "name must be at least 2 characters")
		case errors.Is(err, services.ErrPasswordTooShort):
			fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "password must be at least 6 characters")
		case errors.Is(err, services.ErrInvalidEmail):
			fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "invalid email address")
		case errors.Is(err, services.ErrDuplicateEmail):
			fail(c, http.StatusConflict, ErrCodeConflict, "email already registered")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, "signup failed")
		}
		return
	}

	ok(c, http.StatusCreated, AuthResponse{
		User:  toUserResponse(user.ID, user.Name, user.Email),
		Token: token,
	})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a fresh session token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.LoginRequest  true  "Login payload"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     401  {object}  handlers.ErrorResponse  "Invalid credentials"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "email and password required")
		return
	}

	user, token, err := h.deps.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			fail(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "login failed")
		return
	}

	ok(c, http.StatusOK, AuthResponse{
		User:  toUserResponse(user.ID, user.Name, user.Email),
		Token: token,
	})
}

// Logout godoc
// @ID          logout
// @Summary     Log out
// @Description Revokes the presented session token. Revoking twice is safe.
// @Tags        Auth
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer session token"
//
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/logout [post]
func (h *Handlers) Logout(c *gin.Context) {
	token := strings.TrimSpace(c.GetString(middleware.CtxSessionToken))
	if token == "" {
		token = middleware.BearerToken(c)
	}
	if token == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "valid session token required")
		return
	}
	if _, err := h.deps.Auth.Logout(c.Request.Context(), token); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "logout failed")
		return
	}
	noContent(c)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Description Returns the account bound to the presented session token.
// @Tags        Auth
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer session token"
//
// @Success     200  {object}  handlers.UserResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.deps.Auth.Whoami(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthenticated, "valid session token required")
		return
	}
	ok(c, http.StatusOK, toUserResponse(user.ID, user.Name, user.Email))
}
