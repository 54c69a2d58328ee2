package handlers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/nchalk/go-debate-backend/internal/engine"
	"github.com/nchalk/go-debate-backend/internal/services"
)

func TestQuery_ComposesBaseAndTopicPrompt(t *testing.T) {
	var gotUser, gotSystem string
	deps := Deps{
		BasePrompt: "You are a debate partner.",
		Topics: &fakeTopicSvc{
			promptFor: func(_ context.Context, id string) (string, error) {
				if id != "climate_action" {
					return "", services.ErrTopicNotFound
				}
				return "Argue about climate policy.", nil
			},
		},
		Generator: &fakeGenerator{
			generate: func(_ context.Context, userPrompt, systemPrompt string) (string, error) {
				gotUser, gotSystem = userPrompt, systemPrompt
				return "Here is my rebuttal.", nil
			},
		},
	}
	r := newTestRouter(deps)

	w := doJSON(t, r, http.MethodPost, "/api/v1/query", QueryRequest{
		Query: "  Carbon taxes are regressive.  ", TopicID: "climate_action",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if resp := decodeJSON[QueryResponse](t, w); resp.Response != "Here is my rebuttal." {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if gotUser != "Carbon taxes are regressive." {
		t.Fatalf("user prompt not trimmed: %q", gotUser)
	}
	want := "You are a debate partner.\n\nArgue about climate policy."
	if gotSystem != want {
		t.Fatalf("system prompt = %q, want %q", gotSystem, want)
	}
}

func TestQuery_TopicPromptAloneWithoutBase(t *testing.T) {
	var gotSystem string
	deps := Deps{
		Topics: &fakeTopicSvc{
			promptFor: func(context.Context, string) (string, error) { return "Topic only.", nil },
		},
		Generator: &fakeGenerator{
			generate: func(_ context.Context, _, systemPrompt string) (string, error) {
				gotSystem = systemPrompt
				return "ok", nil
			},
		},
	}
	r := newTestRouter(deps)

	w := doJSON(t, r, http.MethodPost, "/api/v1/query", QueryRequest{Query: "q", TopicID: "t"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if gotSystem != "Topic only." {
		t.Fatalf("system prompt = %q", gotSystem)
	}
}

func TestQuery_Failures(t *testing.T) {
	deps := Deps{
		Topics: &fakeTopicSvc{
			promptFor: func(_ context.Context, id string) (string, error) {
				if id == "nope" {
					return "", services.ErrTopicNotFound
				}
				return "p", nil
			},
		},
		Generator: &fakeGenerator{
			generate: func(context.Context, string, string) (string, error) {
				return "", errors.New("upstream 500")
			},
		},
	}
	r := newTestRouter(deps)

	cases := []struct {
		name     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"blank query", map[string]string{"query": "   ", "topic_id": "t"}, http.StatusBadRequest, ErrCodeInvalidInput},
		{"missing topic_id", map[string]string{"query": "q"}, http.StatusBadRequest, ErrCodeInvalidInput},
		{"unknown topic", QueryRequest{Query: "q", TopicID: "nope"}, http.StatusNotFound, ErrCodeNotFound},
		{"engine down", QueryRequest{Query: "q", TopicID: "t"}, http.StatusBadGateway, ErrCodeEngine},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/v1/query", tc.body, nil)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want=%d body=%s", w.Code, tc.wantCode, w.Body.String())
			}
			if er := decodeJSON[ErrorResponse](t, w); er.Code != tc.wantErr {
				t.Fatalf("code=%q want=%q", er.Code, tc.wantErr)
			}
		})
	}
}

func postAudio(t *testing.T, r http.Handler, field string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "clip.webm")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speech-to-text", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSpeechToText_RejectsBadUploads(t *testing.T) {
	deps := Deps{
		TempAudioDir:       t.TempDir(),
		MaxAudioUploadSize: 16,
		Transcriber:        &fakeTranscriber{},
	}
	r := newTestRouter(deps)

	// no file field
	w := postAudio(t, r, "audio", []byte("x"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing field: status=%d", w.Code)
	}

	// empty file
	w = postAudio(t, r, "file", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty file: status=%d", w.Code)
	}

	// over the size cap
	w = postAudio(t, r, "file", bytes.Repeat([]byte("a"), 64))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized: status=%d", w.Code)
	}
}

func TestSpeechToText_UndecodableAudioCleansUp(t *testing.T) {
	// Decoding needs a working ffmpeg; pointing at a missing binary exercises
	// the conversion-failure branch without external tooling.
	deps := Deps{
		TempAudioDir: t.TempDir(),
		FFmpegPath:   "/nonexistent/ffmpeg",
		Transcriber: &fakeTranscriber{
			transcribe: func(context.Context, string) (*engine.Transcription, error) {
				return nil, engine.ErrTranscription
			},
		},
	}
	r := newTestRouter(deps)

	w := postAudio(t, r, "file", []byte("not really audio"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400 for undecodable audio", w.Code)
	}
	if er := decodeJSON[ErrorResponse](t, w); er.Code != ErrCodeInvalidInput {
		t.Fatalf("code=%q", er.Code)
	}

	// The upload must not linger after the request.
	entries, err := os.ReadDir(deps.TempAudioDir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestTextToSpeech_StreamsWAV(t *testing.T) {
	deps := Deps{
		Synthesizer: &fakeSynthesizer{
			synthesize: func(_ context.Context, text string) ([]byte, error) {
				if text != "hello there" {
					t.Fatalf("text=%q", text)
				}
				return []byte("RIFFfakewav"), nil
			},
		},
	}
	r := newTestRouter(deps)

	w := doJSON(t, r, http.MethodPost, "/api/v1/text-to-speech", SynthesisRequest{Text: "hello there"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Fatalf("content-type=%q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "speech.wav") {
		t.Fatalf("content-disposition=%q", cd)
	}
	if w.Body.String() != "RIFFfakewav" {
		t.Fatalf("body=%q", w.Body.String())
	}
}

func TestTextToSpeech_Failures(t *testing.T) {
	deps := Deps{
		Synthesizer: &fakeSynthesizer{
			synthesize: func(context.Context, string) ([]byte, error) {
				return nil, engine.ErrSynthesis
			},
		},
	}
	r := newTestRouter(deps)

	w := doJSON(t, r, http.MethodPost, "/api/v1/text-to-speech", SynthesisRequest{Text: "   "}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank text: status=%d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/v1/text-to-speech", SynthesisRequest{Text: "speak"}, nil)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("engine down: status=%d", w.Code)
	}
	if er := decodeJSON[ErrorResponse](t, w); er.Code != ErrCodeSynthesis {
		t.Fatalf("code=%q", er.Code)
	}
}
