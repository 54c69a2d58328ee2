// Package services – TopicService
//
// The topic registry is a static catalog of debate subjects with their
// steering prompts. Seeding is idempotent (insert-if-absent by slug), so the
// default catalog can be replayed on every boot without clobbering rows.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/repo"
)

// debatePromptSuffix keeps engine replies short and pointed across all topics.
const debatePromptSuffix = " Answer in as few words as possible while still making a strong point."

// DefaultTopics is the catalog seeded at startup.
var DefaultTopics = []domain.Topic{
	{
		ID:    "climate_action",
		Title: "Climate Action",
		SystemPrompt: "You are an AI debating climate action. Be logical, balanced, and critical. " +
			"Challenge the user's position constructively while presenting counter-arguments based on " +
			"science, economics, and policy." + debatePromptSuffix,
	},
	{
		ID:    "ai_alignment",
		Title: "AI Alignment",
		SystemPrompt: "You are debating AI alignment and safety. Focus on risk assessment, regulation " +
			"strategies, and the balance between innovation and control. Challenge assumptions critically." +
			debatePromptSuffix,
	},
	{
		ID:    "free_speech",
		Title: "Free Speech",
		SystemPrompt: "You are debating free speech principles. Navigate the tensions between absolute " +
			"rights, contextual harm, censorship concerns, and platform responsibilities. Be nuanced and " +
			"challenge extremes." + debatePromptSuffix,
	},
	{
		ID:    "education_reform",
		Title: "Education Reform",
		SystemPrompt: "You are debating education reform. Contrast traditional vs progressive models, " +
			"discuss credential inflation, and focus on what actually produces competence. Challenge " +
			"idealistic assumptions." + debatePromptSuffix,
	},
	{
		ID:    "universal_basic_income",
		Title: "Universal Basic Income",
		SystemPrompt: "You are debating universal basic income. Focus on economic incentives, inflation " +
			"risks, productivity effects, and societal transformation. Challenge both utopian and dystopian " +
			"views." + debatePromptSuffix,
	},
	{
		ID:    "tech_monopolies",
		Title: "Tech Monopolies",
		SystemPrompt: "You are debating tech monopolies and market power. Weigh innovation benefits " +
			"against anti-competitive risks. Discuss breakups, regulation, and market dynamics critically." +
			debatePromptSuffix,
	},
}

// TopicService exposes the debate topic registry.
type TopicService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewTopicService constructs a TopicService bound to db.
func NewTopicService(db *gorm.DB) *TopicService {
	return &TopicService{DB: db}
}

// Seed upserts a topic if absent; an existing id is a success no-op.
func (s *TopicService) Seed(ctx context.Context, t domain.Topic) error {
	return repo.SeedTopic(ctx, s.DB, t)
}

// SeedDefaults replays the default catalog. Idempotent across restarts.
func (s *TopicService) SeedDefaults(ctx context.Context) error {
	for _, t := range DefaultTopics {
		if err := s.Seed(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Get fetches a topic by slug, or ErrTopicNotFound.
func (s *TopicService) Get(ctx context.Context, id string) (*domain.Topic, error) {
	t, err := repo.GetTopic(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, err
	}
	return t, nil
}

// List returns all topics in unspecified order.
func (s *TopicService) List(ctx context.Context) ([]domain.Topic, error) {
	return repo.ListTopics(ctx, s.DB)
}

// PromptFor returns only the system prompt for a topic, or ErrTopicNotFound.
func (s *TopicService) PromptFor(ctx context.Context, id string) (string, error) {
	p, err := repo.TopicPrompt(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrTopicNotFound
		}
		return "", err
	}
	return p, nil
}
