// Package services defines the business logic for accounts, sessions,
// topics, and the chat history log. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Signup validation errors. All are rejected before any state mutation.
var (
	// ErrNameTooShort is returned when the trimmed display name is shorter
	// than two characters.
	ErrNameTooShort = errors.New("name must be at least 2 characters")

	// ErrPasswordTooShort is returned when the password is shorter than six
	// characters.
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")

	// ErrInvalidEmail is returned when the email does not look like an
	// address at all.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Authentication errors.
var (
	// ErrInvalidCredentials is returned on any login mismatch. It
	// deliberately does not distinguish "no such user" from "wrong
	// password".
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnauthenticated is returned when a session token is missing,
	// unknown, revoked, or expired.
	ErrUnauthenticated = errors.New("not authenticated")
)

// Chat errors.
var (
	// ErrTopicNotFound indicates the requested debate topic does not exist.
	ErrTopicNotFound = errors.New("topic not found")

	// ErrEmptyMessage is returned when a chat or query body is empty after
	// trimming.
	ErrEmptyMessage = errors.New("message is empty")
)
