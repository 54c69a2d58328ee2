// Package engine holds the HTTP clients for the three AI backends the
// service leans on: text generation, speech recognition, and speech
// synthesis. Each client is a thin struct over net/http with a bounded
// timeout, a Ping for health aggregation, and a sentinel error the HTTP
// layer can translate.
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

	"github.com/rs/zerolog/log"
)

// DefaultEngineTimeout bounds a single engine round trip when no explicit
// timeout is configured.
const DefaultEngineTimeout = 60 * time.Second

// pingPrompt is the lightweight generation used by Ping.
const pingPrompt = "ping"

// Generator calls a Gemini-compatible generateContent endpoint.
type Generator struct {
	// BaseURL is the API root, e.g. https://generativelanguage.googleapis.com.
	BaseURL string
	// APIKey authenticates requests; sent as a query parameter.
	APIKey string
	// Model is the model identifier, e.g. gemini-2.0-flash.
	Model string
	// Temperature is passed through to the generation config.
	Temperature float64
	// Client is the HTTP client used for all requests.
	Client *http.Client
}

// NewGenerator builds a Generator with a bounded-timeout client.
func NewGenerator(baseURL, apiKey, model string, temperature float64, timeout time.Duration) *Generator {
	if timeout <= 0 {
		timeout = DefaultEngineTimeout
	}
	return &Generator{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		Client:      &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig generationConfig  `json:"generationConfig"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces a reply for userPrompt. A non-empty systemPrompt is
// prepended, separated from the user text by a blank line and a "User:"
// marker. The returned text is whitespace-trimmed and never empty.
func (g *Generator) Generate(ctx context.Context, userPrompt, systemPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", ErrEmptyInput
	}
	prompt := userPrompt
	if systemPrompt != "" {
		prompt = systemPrompt + "\n\nUser:\n" + userPrompt
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []generateContent{{Parts: []generatePart{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: g.Temperature},
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrGeneration, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.BaseURL, g.Model, g.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Warn().
			Int("status", resp.StatusCode).
			Str("model", g.Model).
			Msg("generation endpoint returned non-200")
		return "", fmt.Errorf("%w: status %d", ErrGeneration, resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("%w: %s", ErrGeneration, out.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrGeneration)
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty candidate text", ErrGeneration)
	}
	return text, nil
}

// Ping performs a minimal generation round trip for health checks.
func (g *Generator) Ping(ctx context.Context) error {
	_, err := g.Generate(ctx, pingPrompt, "Reply with 'pong'.")
	return err
}
