// Package services – SessionService
//
// This file implements the session manager: issuance of opaque bearer
// tokens, validation against the expiry window, explicit revocation, and the
// maintenance sweep that purges expired rows in bulk.
//
// A session moves Active → Expired (observed lazily on lookup) or
// Active → Revoked (explicit logout); neither transition reverses. Validate
// may opportunistically delete the expired row it just observed. That is a
// garbage-collection shortcut, not a correctness requirement, so the sweep
// must be able to do the whole job on its own.
package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/repo"
)

// DefaultSessionTTL is the validity window applied when a SessionService is
// constructed without an explicit TTL.
const DefaultSessionTTL = 30 * 24 * time.Hour

// tokenBytes is the entropy of an issued token. 32 random bytes comfortably
// clears the 128-bit unguessability floor.
const tokenBytes = 32

// SessionService issues, validates, and revokes opaque session tokens.
type SessionService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// TTL is the validity window for newly issued sessions.
	TTL time.Duration
}

// NewSessionService constructs a SessionService with the default TTL when
// ttl is zero or negative.
func NewSessionService(db *gorm.DB, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{DB: db, TTL: ttl}
}

// Issue creates a session for userID and returns the fresh token. Tokens are
// never reused: every call draws new randomness.
func (s *SessionService) Issue(ctx context.Context, userID string) (string, error) {
	token, err := newToken()
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	if _, err := repo.CreateSession(ctx, s.DB, token, userID, time.Now().UTC().Add(s.TTL)); err != nil {
		return "", err
	}
	return token, nil
}

// Validate resolves a token to its session. It returns ErrUnauthenticated
// when the token is unknown or past its expiry. An expired row observed here
// is deleted opportunistically; failure of that delete is logged and ignored
// since the sweep covers it.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}
	sess, err := repo.GetSession(ctx, s.DB, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !time.Now().UTC().Before(sess.ExpiresAt) {
		if _, derr := repo.DeleteSession(ctx, s.DB, token); derr != nil {
			log.Warn().Err(derr).Msg("opportunistic session purge failed")
		}
		return nil, ErrUnauthenticated
	}
	return sess, nil
}

// Revoke deletes the session for token and reports whether one existed.
// Calling it twice is safe; the second call finds nothing to revoke.
func (s *SessionService) Revoke(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return repo.DeleteSession(ctx, s.DB, token)
}

// SweepExpired purges every expired session row and returns the count.
// Idempotent and safe to run concurrently with Issue/Validate.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	return repo.DeleteExpiredSessions(ctx, s.DB, time.Now().UTC())
}

// newToken returns a fresh opaque token: 32 random bytes, base64url without
// padding (43 characters).
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
