package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ConvertToWAV shells out to ffmpeg to decode src (typically browser-recorded
// WebM/Opus) into 16 kHz mono 16-bit PCM WAV at dst, the input format the
// recognition engine expects. The first few hundred bytes of ffmpeg's stderr
// are folded into the error on failure.
func ConvertToWAV(ctx context.Context, ffmpegPath, src, dst string) error {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", src,
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		dst,
	)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		detail := stderr.String()
		if len(detail) > 200 {
			detail = detail[len(detail)-200:]
		}
		return fmt.Errorf("%w: ffmpeg: %v: %s", ErrTranscription, err, strings.TrimSpace(detail))
	}

	info, err := os.Stat(dst)
	if err != nil {
		return fmt.Errorf("%w: converted file missing: %v", ErrTranscription, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: conversion produced empty file", ErrTranscription)
	}
	return nil
}

// PurgeStaleAudio deletes scratch audio files in dir older than maxAge and
// reports how many were removed. Normal requests clean up after themselves;
// this catches files orphaned by crashes or kills mid-request. A missing dir
// is not an error.
func PurgeStaleAudio(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not purge stale audio file")
			continue
		}
		removed++
	}
	return removed, nil
}
