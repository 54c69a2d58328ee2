package engine

import "errors"

// Sentinel failures surfaced by the engine clients. Handlers map these to
// upstream-failure responses rather than generic internal errors.
var (
	// ErrGeneration means the language model endpoint failed or returned
	// nothing usable.
	ErrGeneration = errors.New("language engine request failed")

	// ErrTranscription means the speech recognition endpoint failed or
	// produced no text.
	ErrTranscription = errors.New("transcription engine request failed")

	// ErrSynthesis means the speech synthesis endpoint failed or returned
	// empty audio.
	ErrSynthesis = errors.New("synthesis engine request failed")

	// ErrEmptyInput means the caller handed an engine nothing to work on.
	ErrEmptyInput = errors.New("empty engine input")
)
