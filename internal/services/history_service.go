// Package services – HistoryService
//
// This file implements the durable chat log. Append is deliberately
// best-effort: by the time a message is persisted it has already been (or is
// about to be) broadcast live, so a storage failure is logged and swallowed
// rather than allowed to interrupt the room. Reads preserve the exact
// ordering contract clients render by: at most `limit` of the newest rows,
// returned chronologically ascending.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/repo"
)

const (
	// DefaultHistoryLimit applies when a caller asks for 0 or a negative
	// number of messages.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit caps a single read so one request cannot drag the
	// whole log into memory.
	MaxHistoryLimit = 200
)

// HistoryService owns the append-only per-topic chat log.
type HistoryService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewHistoryService constructs a HistoryService bound to db.
func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{DB: db}
}

// Append stores one message and reports success. On storage failure it logs
// at error level and returns false; it never propagates the error, since
// chat continuity outranks strict persistence on the live send path.
func (s *HistoryService) Append(ctx context.Context, topicID, userID, userName, body string) bool {
	if _, err := repo.AppendMessage(ctx, s.DB, topicID, userID, userName, body); err != nil {
		log.Error().
			Err(err).
			Str("topic_id", topicID).
			Str("user_id", userID).
			Msg("chat message persist failed")
		return false
	}
	return true
}

// Recent returns the most recent messages for a topic, chronological
// ascending. limit is defaulted and clamped to [1, MaxHistoryLimit].
func (s *HistoryService) Recent(ctx context.Context, topicID string, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return repo.RecentMessages(ctx, s.DB, topicID, limit)
}

// Stats exposes aggregate log metadata (row count and newest timestamp) for
// conditional HTTP responses on the history endpoint.
func (s *HistoryService) Stats(ctx context.Context, topicID string) (int64, *time.Time, error) {
	return repo.MessagesStats(ctx, s.DB, topicID)
}
