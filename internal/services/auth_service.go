// Package services – AuthService
//
// This file implements account signup, login, logout, and token
// introspection. Passwords are hashed with bcrypt before storage; email
// uniqueness is enforced by the database so two racing signups cannot both
// succeed. Validation happens before any state mutation, and login failures
// never reveal whether the email or the password was wrong.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/repo"
)

const (
	minPasswordLen = 6
	minNameLen     = 2
)

// AuthService provides account lifecycle operations. Every successful signup
// or login also issues a session via the embedded session manager.
type AuthService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Sessions issues and validates tokens for authenticated users.
	Sessions *SessionService
}

// NewAuthService constructs an AuthService bound to db and sessions.
func NewAuthService(db *gorm.DB, sessions *SessionService) *AuthService {
	return &AuthService{DB: db, Sessions: sessions}
}

// Signup validates the input, creates the account, and issues a session.
// The trimmed name must be at least 2 characters and the password at least 6.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if len([]rune(name)) < minNameLen {
		return nil, "", ErrNameTooShort
	}
	if len(password) < minPasswordLen {
		return nil, "", ErrPasswordTooShort
	}
	if !looksLikeEmail(email) {
		return nil, "", ErrInvalidEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user, err := repo.CreateUser(ctx, s.DB, name, email, string(hash))
	if err != nil {
		if errors.Is(err, repo.ErrDuplicateEmail) {
			return nil, "", ErrDuplicateEmail
		}
		return nil, "", err
	}

	token, err := s.Sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and issues a session. Any mismatch, whether
// unknown email or wrong password, yields ErrInvalidCredentials. bcrypt's
// comparison keeps the password check constant-shape.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := repo.FindUserByEmail(ctx, s.DB, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Logout revokes the session for token. It reports whether a session
// existed; revoking twice is safe.
func (s *AuthService) Logout(ctx context.Context, token string) (bool, error) {
	return s.Sessions.Revoke(ctx, token)
}

// Whoami resolves a token to its user. Unknown, expired, or revoked tokens
// yield ErrUnauthenticated.
func (s *AuthService) Whoami(ctx context.Context, token string) (*domain.User, error) {
	sess, err := s.Sessions.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := repo.FindUserByID(ctx, s.DB, sess.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Session outlived its user; treat as unauthenticated.
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return user, nil
}

// looksLikeEmail applies a minimal shape check: something before and after a
// single "@", with a dot in the domain. Deliverability is not our problem.
func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at != strings.LastIndex(s, "@") || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
