// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Topic model.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nchalk/go-debate-backend/internal/domain"
)

// SeedTopic inserts a topic if its ID is not already present. The conflict
// path is a success no-op so startup seeding is idempotent: re-seeding an
// existing ID leaves the original title and prompt untouched.
func SeedTopic(ctx context.Context, db *gorm.DB, t domain.Topic) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&t).Error
}

// GetTopic fetches a topic by ID. Returns ErrNotFound when missing.
func GetTopic(ctx context.Context, db *gorm.DB, id string) (*domain.Topic, error) {
	var t domain.Topic
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTopics returns all topics. Order is unspecified.
func ListTopics(ctx context.Context, db *gorm.DB) ([]domain.Topic, error) {
	var out []domain.Topic
	err := db.WithContext(ctx).Find(&out).Error
	return out, err
}

// TopicPrompt returns only the system prompt for a topic, avoiding
// materializing the full record on the hot query path.
// Returns ErrNotFound when the topic is unknown.
func TopicPrompt(ctx context.Context, db *gorm.DB, id string) (string, error) {
	var row struct {
		SystemPrompt string
	}
	err := db.WithContext(ctx).
		Model(&domain.Topic{}).
		Select("system_prompt").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return "", err
	}
	return row.SystemPrompt, nil
}
