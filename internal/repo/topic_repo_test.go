package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/nchalk/go-debate-backend/internal/domain"
)

func TestSeedTopic_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	orig := domain.Topic{ID: "climate_action", Title: "Climate Action", SystemPrompt: "Debate climate policy."}
	if err := SeedTopic(ctx, db, orig); err != nil {
		t.Fatalf("first seed: %v", err)
	}

	// Re-seeding the same id with different content is a no-op, not an error.
	clobber := domain.Topic{ID: "climate_action", Title: "CHANGED", SystemPrompt: "changed"}
	if err := SeedTopic(ctx, db, clobber); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var cnt int64
	if err := db.Table("topics").Count(&cnt).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected exactly one topic row, got %d", cnt)
	}

	got, err := GetTopic(ctx, db, "climate_action")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Climate Action" || got.SystemPrompt != "Debate climate policy." {
		t.Fatalf("seed must keep original content, got %+v", got)
	}
}

func TestGetTopic_NotFound(t *testing.T) {
	db := newTestDB(t)

	if _, err := GetTopic(context.Background(), db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := TopicPrompt(context.Background(), db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from TopicPrompt, got %v", err)
	}
}

func TestListTopics_AndPromptFastPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seeds := []domain.Topic{
		{ID: "free_speech", Title: "Free Speech", SystemPrompt: "Debate speech."},
		{ID: "tech_monopolies", Title: "Tech Monopolies", SystemPrompt: "Debate monopolies."},
	}
	for _, s := range seeds {
		if err := SeedTopic(ctx, db, s); err != nil {
			t.Fatalf("seed %s: %v", s.ID, err)
		}
	}

	all, err := ListTopics(ctx, db)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 topics, got %d", len(all))
	}

	prompt, err := TopicPrompt(ctx, db, "free_speech")
	if err != nil {
		t.Fatalf("prompt: %v", err)
	}
	if prompt != "Debate speech." {
		t.Fatalf("prompt = %q; want %q", prompt, "Debate speech.")
	}
}
