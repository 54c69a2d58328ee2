package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Transcription is the result of one speech recognition call.
type Transcription struct {
	// Text is the recognized speech, whitespace-trimmed.
	Text string `json:"text"`
	// Language is the detected language as a canonical BCP 47 tag, or ""
	// when the backend did not report one.
	Language string `json:"language"`
}

// Transcriber calls a whisper-style HTTP recognition endpoint: a multipart
// POST of a WAV file to /inference, answered with JSON.
type Transcriber struct {
	// BaseURL is the recognition server root.
	BaseURL string
	// Client is the HTTP client used for all requests.
	Client *http.Client
}

// NewTranscriber builds a Transcriber with a bounded-timeout client.
func NewTranscriber(baseURL string, timeout time.Duration) *Transcriber {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &Transcriber{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type inferenceResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

// Transcribe uploads the WAV file at wavPath and returns the recognized
// text. Empty recognition output is an ErrTranscription, not a success.
func (t *Transcriber) Transcribe(ctx context.Context, wavPath string) (*Transcription, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open audio: %v", ErrTranscription, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(wavPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrTranscription, err)
	}
	if err := mw.WriteField("response_format", "json"); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/inference", &buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTranscription, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTranscription, resp.StatusCode)
	}

	var out inferenceResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTranscription, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrTranscription, out.Error)
	}

	text := strings.TrimSpace(out.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: no speech recognized", ErrTranscription)
	}
	return &Transcription{Text: text, Language: canonicalLanguage(out.Language)}, nil
}

// Ping checks that the recognition server is reachable.
func (t *Transcriber) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscription, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrTranscription, resp.StatusCode)
	}
	return nil
}

// canonicalLanguage normalizes whatever tag the backend reports ("en",
// "EN-us", "english" never) into canonical BCP 47. Unparseable tags pass
// through unchanged rather than being dropped.
func canonicalLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return raw
	}
	return tag.String()
}
