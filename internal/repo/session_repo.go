// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model. Validity interpretation (now < expires_at) belongs to the session
// service; this layer only stores, fetches, and deletes rows.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
)

// CreateSession inserts a session row for userID with the given token and
// expiry. CreatedAt is set to UTC.
func CreateSession(ctx context.Context, db *gorm.DB, token, userID string, expiresAt time.Time) (*domain.Session, error) {
	s := &domain.Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
		ExpiresAt: expiresAt.UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession fetches a session row by token, expired or not.
// Returns ErrNotFound when the token is unknown.
func GetSession(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("token = ?", token).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes a session row. It reports whether a row existed,
// which lets logout distinguish "revoked" from "nothing to revoke" while
// staying idempotent-safe.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) (bool, error) {
	res := db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteExpiredSessions removes every session whose expiry is at or before
// now and returns the number of rows deleted. Safe to run concurrently with
// lookups and inserts; the database serializes the deletes.
func DeleteExpiredSessions(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
