// Package domain defines the persistence models for users, sessions, debate
// topics, and chat messages. These types are mapped with GORM and form the
// core data layer of the debate backend.
package domain

import "time"

// User is a registered account. Users are created at signup and are never
// deleted; the password is stored only as a bcrypt hash.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name: display name shown in rooms.
//   - Email: login identifier, unique across all users (enforced by the
//     storage layer so concurrent signups cannot race past a pre-check).
//   - PasswordHash: bcrypt digest of the password; never serialized.
//   - CreatedAt: timestamp managed by GORM.
type User struct {
	ID           string    `json:"id"    gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name"  gorm:"type:varchar(120);not null"`
	Email        string    `json:"email" gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	PasswordHash string    `json:"-"     gorm:"type:varchar(100);not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Session is an opaque bearer credential proving an authenticated identity
// for a bounded time window. A user may hold several concurrent sessions
// (multi-device). A session is valid iff now < ExpiresAt; expired rows are
// purged lazily on lookup and in bulk by the maintenance sweep.
//
// Fields:
//   - Token: the opaque token itself (≥128 bits of entropy), primary key.
//   - UserID: owner of the session; indexed for per-user revocation.
//   - CreatedAt / ExpiresAt: validity window; ExpiresAt indexed for sweeps.
type Session struct {
	Token     string    `json:"-"          gorm:"type:varchar(64);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null;index:idx_sessions_user"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index:idx_sessions_expiry"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Topic is one debate subject. Topics are static seed data upserted
// idempotently at startup; the slug ID is the natural key and a conflicting
// re-seed is a no-op, not an error. SystemPrompt steers the debate engine
// and is withheld from the public topic view.
type Topic struct {
	ID           string `json:"id"    gorm:"type:varchar(64);primaryKey"`
	Title        string `json:"title" gorm:"type:varchar(255);not null"`
	SystemPrompt string `json:"-"     gorm:"type:text;not null"`
}

// TableName returns the database table name for Topic.
func (Topic) TableName() string { return "topics" }

/// ChatMessage is a single room utterance. The log is append-only: rows are
// immutable once stored and ordered by the auto-incrementing ID (equivalently
// creation time). UserName is a snapshot of the author's display name at send
// time so renaming a user does not rewrite history.
type ChatMessage struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	TopicID   string    `json:"topic_id"   gorm:"type:varchar(64);not null;index:idx_messages_topic,priority:1"`
	UserID    string    `json:"user_id"    gorm:"type:char(36);not null"`
	UserName  string    `json:"user_name"  gorm:"type:varchar(120);not null"`
	Body      string    `json:"message"    gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_messages_topic,priority:2"`
}

// TableName returns the database table name for ChatMessage.
func (ChatMessage) TableName() string { return "chat_messages" }
