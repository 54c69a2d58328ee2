// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Error semantics:
//   - When a user is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - A unique-email violation on insert is translated to ErrDuplicateEmail
//     so callers never have to inspect driver error strings. The uniqueness
//     check lives in the database, not in application code, so two racing
//     signups cannot both pass a pre-check and insert.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicateEmail is returned by CreateUser when the email is already
// registered. It is the repo-level translation of the unique index on
// users.email.
var ErrDuplicateEmail = errors.New("email already registered")

// CreateUser inserts a new User row with the given display name, email, and
// password hash. The user ID is a randomly generated UUID and CreatedAt is
// set to UTC. A duplicate email returns ErrDuplicateEmail.
func CreateUser(ctx context.Context, db *gorm.DB, name, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// FindUserByEmail fetches a user by email. Returns ErrNotFound when missing.
func FindUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindUserByID fetches a user by ID. Returns ErrNotFound when missing.
func FindUserByID(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
// GORM's error translation does not cover the pure-Go driver, so the SQLite
// message text is the stable signal here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
