package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxSynthesisBytes caps one synthesized clip. Anything bigger than this is
// not a debate reply.
const maxSynthesisBytes = 64 << 20

// Synthesizer calls a speech synthesis HTTP endpoint that accepts JSON text
// and answers with WAV bytes.
type Synthesizer struct {
	// BaseURL is the synthesis server root.
	BaseURL string
	// Client is the HTTP client used for all requests.
	Client *http.Client
}

// NewSynthesizer builds a Synthesizer with a bounded-timeout client.
func NewSynthesizer(baseURL string, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &Synthesizer{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

type synthesizeRequest struct {
	Text string `json:"text"`
}

// Synthesize renders text to WAV audio. Empty audio from the backend is an
// ErrSynthesis; callers may hand the bytes straight to the client.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(synthesizeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrSynthesis, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/api/tts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("%w: status %d", ErrSynthesis, resp.StatusCode)
	}

	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxSynthesisBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", ErrSynthesis, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio", ErrSynthesis)
	}
	return audio, nil
}

// Ping checks that the synthesis server is reachable.
func (s *Synthesizer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health status %d", ErrSynthesis, resp.StatusCode)
	}
	return nil
}
