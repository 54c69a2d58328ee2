// AI engine HTTP handlers.
//
// This file exposes the three engine-backed endpoints:
//   - POST /query           (debate reply for a topic-scoped prompt)
//   - POST /speech-to-text  (multipart audio upload, transcription)
//   - POST /text-to-speech  (JSON text in, WAV audio out)
//
// Uploaded audio is decoded to 16 kHz mono WAV via ffmpeg before hitting the
// recognition engine; both scratch files are removed when the request ends.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nchalk/go-debate-backend/internal/engine"
	"github.com/nchalk/go-debate-backend/internal/http/middleware"
	"github.com/nchalk/go-debate-backend/internal/services"
)

// maxSynthesisRunes caps the text accepted by /text-to-speech.
const maxSynthesisRunes = 5_000_000

//
// DTOs
//

// QueryRequest is the JSON payload for requesting a debate reply.
type QueryRequest struct {
	// Query is the user's argument or question. Must be non-empty.
	Query string `json:"query" binding:"required" example:"Carbon taxes hurt the poor more than they help the climate."`
	// TopicID selects the debate topic whose steering prompt applies.
	TopicID string `json:"topic_id" binding:"required" example:"climate_action"`
}

// QueryResponse carries the generated debate reply.
type QueryResponse struct {
	Response string `json:"response"`
}

// TranscriptionResponse carries the recognized text of an audio upload.
type TranscriptionResponse struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// SynthesisRequest is the JSON payload for speech synthesis.
type SynthesisRequest struct {
	// Text to render as speech. Must be non-empty.
	Text string `json:"text" binding:"required" example:"Let me push back on that."`
}

//
// Handlers
//

// Query godoc
// @ID          query
// @Summary     Generate a debate reply
// @Description Sends the user's prompt to the language engine, steered by the topic's system prompt.
// @Tags        Engines
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer session token"
// @Param       body           body    handlers.QueryRequest  true  "Query payload"
//
// @Success     200  {object}  handlers.QueryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     404  {object}  handlers.ErrorResponse  "Topic not found"
// @Failure     502  {object}  handlers.ErrorResponse  "Engine failure"
// @Router      /query [post]
func (h *Handlers) Query(c *gin.Context) {
	ctx := c.Request.Context()

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "query and topic_id required")
		return
	}

	topicPrompt, err := h.deps.Topics.PromptFor(ctx, req.TopicID)
	if err != nil {
		if errors.Is(err, services.ErrTopicNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "topic not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load topic")
		return
	}

	systemPrompt := topicPrompt
	if h.deps.BasePrompt != "" {
		systemPrompt = h.deps.BasePrompt + "\n\n" + topicPrompt
	}

	reply, err := h.deps.Generator.Generate(ctx, strings.TrimSpace(req.Query), systemPrompt)
	if err != nil {
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Str("topic_id", req.TopicID).Msg("generation failed")
		fail(c, http.StatusBadGateway, ErrCodeEngine, "debate engine unavailable")
		return
	}
	ok(c, http.StatusOK, QueryResponse{Response: reply})
}

// SpeechToText godoc
// @ID          speechToText
// @Summary     Transcribe an audio clip
// @Description Accepts a multipart audio upload (field "file"), decodes it to WAV, and returns the recognized text.
// @Tags        Engines
// @Accept      multipart/form-data
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer session token"
// @Param       file           formData  file  true  "Audio clip (WebM/Opus or any ffmpeg-readable format)"
//
// @Success     200  {object}  handlers.TranscriptionResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid upload"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     502  {object}  handlers.ErrorResponse  "Engine failure"
// @Router      /speech-to-text [post]
func (h *Handlers) SpeechToText(c *gin.Context) {
	ctx := c.Request.Context()

	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "audio file required (multipart field \"file\")")
		return
	}
	if fh.Size == 0 {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "uploaded audio file is empty")
		return
	}
	if fh.Size > h.deps.MaxAudioUploadSize {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput,
			fmt.Sprintf("audio too large: max %d bytes", h.deps.MaxAudioUploadSize))
		return
	}

	if err := os.MkdirAll(h.deps.TempAudioDir, 0o755); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store upload")
		return
	}
	rawPath := filepath.Join(h.deps.TempAudioDir, uuid.NewString()+".upload")
	wavPath := filepath.Join(h.deps.TempAudioDir, uuid.NewString()+".wav")
	defer func() {
		for _, p := range []string{rawPath, wavPath} {
			if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
				middleware.LoggerFrom(c).Warn().Err(rmErr).Str("path", p).Msg("temp audio cleanup failed")
			}
		}
	}()

	if err := c.SaveUploadedFile(fh, rawPath); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not store upload")
		return
	}

	if err := engine.ConvertToWAV(ctx, h.deps.FFmpegPath, rawPath, wavPath); err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("audio conversion failed")
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "audio could not be decoded")
		return
	}

	out, err := h.deps.Transcriber.Transcribe(ctx, wavPath)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("transcription failed")
		fail(c, http.StatusBadGateway, ErrCodeEngine, "transcription engine unavailable")
		return
	}
	ok(c, http.StatusOK, TranscriptionResponse{Text: out.Text, Language: out.Language})
}

// TextToSpeech godoc
// @ID          textToSpeech
// @Summary     Synthesize speech
// @Description Renders text as a WAV clip and streams it back.
// @Tags        Engines
// @Accept      json
// @Produce     audio/wav
//
// @Param       Authorization  header  string  true  "Bearer session token"
// @Param       body           body    handlers.SynthesisRequest  true  "Synthesis payload"
//
// @Success     200  {file}    file  "WAV audio"
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthenticated"
// @Failure     502  {object}  handlers.ErrorResponse  "Synthesis failure"
// @Router      /text-to-speech [post]
func (h *Handlers) TextToSpeech(c *gin.Context) {
	var req SynthesisRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "text required")
		return
	}
	if len(req.Text) > maxSynthesisRunes {
		fail(c, http.StatusBadRequest, ErrCodeInvalidInput, "text too long")
		return
	}

	audio, err := h.deps.Synthesizer.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("synthesis failed")
		fail(c, http.StatusBadGateway, ErrCodeSynthesis, "synthesis engine unavailable")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=speech.wav")
	c.Header("Content-Length", strconv.Itoa(len(audio)))
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "audio/wav", audio)
}
