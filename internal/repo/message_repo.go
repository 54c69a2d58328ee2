// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the ChatMessage
// model. The log is append-only: there is no update or delete path.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
)

// AppendMessage inserts a chat message row. The sequence ID is assigned by
// the database; CreatedAt is set to UTC.
func AppendMessage(ctx context.Context, db *gorm.DB, topicID, userID, userName, body string) (*domain.ChatMessage, error) {
	m := &domain.ChatMessage{
		TopicID:   topicID,
		UserID:    userID,
		UserName:  userName,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// RecentMessages returns the most recent `limit` messages for a topic in
// chronological ascending order. The query runs newest-first so LIMIT keeps
// the latest rows, then the slice is reversed before returning. Clients
// render the result as-is, so this ordering contract must hold exactly.
func RecentMessages(ctx context.Context, db *gorm.DB, topicID string, limit int) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	q := db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// MessagesStats returns aggregate metadata for a topic's log: the total
// number of rows and the greatest CreatedAt among them. Used by the HTTP
// layer for conditional responses (ETag generation) on the history endpoint.
// When the topic has no messages, count is 0 and maxCreatedAt is nil.
func MessagesStats(ctx context.Context, db *gorm.DB, topicID string) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.ChatMessage{}).Where("topic_id = ?", topicID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
