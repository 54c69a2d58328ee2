// Handler wiring.
//
// This file declares the service contracts the HTTP layer depends on and the
// Handlers aggregate that binds them. Handlers are transport-thin: validate
// and normalize input, call the application service or engine client, and
// translate outcomes into HTTP responses.
package handlers

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/engine"
	"github.com/nchalk/go-debate-backend/internal/hub"
)

//
// Service contracts (context-aware)
//

// AuthService defines the account lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type AuthService interface {
	// Signup creates an account and issues a session token.
	Signup(ctx context.Context, name, email, password string) (*domain.User, string, error)
	// Login verifies credentials and issues a session token.
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	// Logout revokes the session for token.
	Logout(ctx context.Context, token string) (bool, error)
	// Whoami resolves a token to its user.
	Whoami(ctx context.Context, token string) (*domain.User, error)
}

// TopicService defines read access to the debate topic registry.
type TopicService interface {
	// Get fetches one topic by slug.
	Get(ctx context.Context, id string) (*domain.Topic, error)
	// List returns the full catalog.
	List(ctx context.Context) ([]domain.Topic, error)
	// PromptFor returns the steering prompt for a topic.
	PromptFor(ctx context.Context, id string) (string, error)
}

// HistoryService defines read access to the per-topic chat log.
type HistoryService interface {
	// Recent returns up to limit newest messages, chronological ascending.
	Recent(ctx context.Context, topicID string, limit int) ([]domain.ChatMessage, error)
	// Stats returns the row count and newest timestamp for conditional GETs.
	Stats(ctx context.Context, topicID string) (int64, *time.Time, error)
}

// Generator produces debate replies.
type Generator interface {
	Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error)
	Ping(ctx context.Context) error
}

// Transcriber turns WAV audio files into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (*engine.Transcription, error)
	Ping(ctx context.Context) error
}

// Synthesizer renders text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Ping(ctx context.Context) error
}

// Deps carries everything the HTTP layer needs. DB is only touched for the
// health probe; all data access goes through the services.
type Deps struct {
	DB          *gorm.DB
	Auth        AuthService
	Topics      TopicService
	History     HistoryService
	Hub         *hub.Hub
	Generator   Generator
	Transcriber Transcriber
	Synthesizer Synthesizer

	// BasePrompt is prepended to every topic prompt on /query.
	BasePrompt string

	// Audio handling.
	TempAudioDir       string
	FFmpegPath         string
	MaxAudioUploadSize int64

	// Live room tuning.
	HistoryPrefix int
	WSReadLimit   int64
	WSWriteWait   time.Duration
	WSPongWait    time.Duration

	// AllowedOrigins gates websocket upgrades; empty allows all.
	AllowedOrigins []string
}

// Handlers groups the HTTP endpoints for auth, topics, history, live rooms,
// AI engines, and health.
type Handlers struct {
	deps Deps
}

// New constructs a Handlers instance bound to the given dependencies.
func New(deps Deps) *Handlers {
	if deps.HistoryPrefix <= 0 {
		deps.HistoryPrefix = 50
	}
	if deps.MaxAudioUploadSize <= 0 {
		deps.MaxAudioUploadSize = 32 << 20
	}
	if deps.WSWriteWait <= 0 {
		deps.WSWriteWait = 10 * time.Second
	}
	if deps.WSPongWait <= 0 {
		deps.WSPongWait = 60 * time.Second
	}
	if deps.WSReadLimit <= 0 {
		deps.WSReadLimit = 16 << 10
	}
	return &Handlers{deps: deps}
}
