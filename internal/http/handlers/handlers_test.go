package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nchalk/go-debate-backend/internal/domain"
	"github.com/nchalk/go-debate-backend/internal/engine"
)

//
// Service fakes. Tests set only the func fields they exercise.
//

type fakeAuthSvc struct {
	signup func(ctx context.Context, name, email, password string) (*domain.User, string, error)
	login  func(ctx context.Context, email, password string) (*domain.User, string, error)
	logout func(ctx context.Context, token string) (bool, error)
	whoami func(ctx context.Context, token string) (*domain.User, error)
}

func (f *fakeAuthSvc) Signup(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	if f.signup == nil {
		return nil, "", errors.New("signup not stubbed")
	}
	return f.signup(ctx, name, email, password)
}

func (f *fakeAuthSvc) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if f.login == nil {
		return nil, "", errors.New("login not stubbed")
	}
	return f.login(ctx, email, password)
}

func (f *fakeAuthSvc) Logout(ctx context.Context, token string) (bool, error) {
	if f.logout == nil {
		return false, errors.New("logout not stubbed")
	}
	return f.logout(ctx, token)
}

func (f *fakeAuthSvc) Whoami(ctx context.Context, token string) (*domain.User, error) {
	if f.whoami == nil {
		return nil, errors.New("whoami not stubbed")
	}
	return f.whoami(ctx, token)
}

type fakeTopicSvc struct {
	get       func(ctx context.Context, id string) (*domain.Topic, error)
	list      func(ctx context.Context) ([]domain.Topic, error)
	promptFor func(ctx context.Context, id string) (string, error)
}

func (f *fakeTopicSvc) Get(ctx context.Context, id string) (*domain.Topic, error) {
	if f.get == nil {
		return nil, errors.New("get not stubbed")
	}
	return f.get(ctx, id)
}

func (f *fakeTopicSvc) List(ctx context.Context) ([]domain.Topic, error) {
	if f.list == nil {
		return nil, errors.New("list not stubbed")
	}
	return f.list(ctx)
}

func (f *fakeTopicSvc) PromptFor(ctx context.Context, id string) (string, error) {
	if f.promptFor == nil {
		return "", errors.New("promptFor not stubbed")
	}
	return f.promptFor(ctx, id)
}

type fakeHistorySvc struct {
	recent func(ctx context.Context, topicID string, limit int) ([]domain.ChatMessage, error)
	stats  func(ctx context.Context, topicID string) (int64, *time.Time, error)
}

func (f *fakeHistorySvc) Recent(ctx context.Context, topicID string, limit int) ([]domain.ChatMessage, error) {
	if f.recent == nil {
		return nil, errors.New("recent not stubbed")
	}
	return f.recent(ctx, topicID, limit)
}

func (f *fakeHistorySvc) Stats(ctx context.Context, topicID string) (int64, *time.Time, error) {
	if f.stats == nil {
		return 0, nil, errors.New("stats not stubbed")
	}
	return f.stats(ctx, topicID)
}

type fakeGenerator struct {
	generate func(ctx context.Context, userPrompt, systemPrompt string) (string, error)
	ping     func(ctx context.Context) error
}

func (f *fakeGenerator) Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	if f.generate == nil {
		return "", errors.New("generate not stubbed")
	}
	return f.generate(ctx, userPrompt, systemPrompt)
}

func (f *fakeGenerator) Ping(ctx context.Context) error {
	if f.ping == nil {
		return nil
	}
	return f.ping(ctx)
}

type fakeTranscriber struct {
	transcribe func(ctx context.Context, wavPath string) (*engine.Transcription, error)
	ping       func(ctx context.Context) error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, wavPath string) (*engine.Transcription, error) {
	if f.transcribe == nil {
		return nil, errors.New("transcribe not stubbed")
	}
	return f.transcribe(ctx, wavPath)
}

func (f *fakeTranscriber) Ping(ctx context.Context) error {
	if f.ping == nil {
		return nil
	}
	return f.ping(ctx)
}

type fakeSynthesizer struct {
	synthesize func(ctx context.Context, text string) ([]byte, error)
	ping       func(ctx context.Context) error
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if f.synthesize == nil {
		return nil, errors.New("synthesize not stubbed")
	}
	return f.synthesize(ctx, text)
}

func (f *fakeSynthesizer) Ping(ctx context.Context) error {
	if f.ping == nil {
		return nil
	}
	return f.ping(ctx)
}

//
// Harness
//

// newTestRouter mounts the REST handlers without the full middleware chain.
func newTestRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := New(deps)
	r := gin.New()
	r.GET("/health", h.Health)
	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/signup", h.Signup)
		v1.POST("/auth/login", h.Login)
		v1.POST("/auth/logout", h.Logout)
		v1.GET("/auth/me", h.Me)
		v1.GET("/topics", h.ListTopics)
		v1.GET("/topics/:id", h.GetTopic)
		v1.GET("/topics/:id/messages", h.ListMessages)
		v1.POST("/query", h.Query)
		v1.POST("/speech-to-text", h.SpeechToText)
		v1.POST("/text-to-speech", h.TextToSpeech)
	}
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}
