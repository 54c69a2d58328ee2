package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConvertToWAV_MissingBinary(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.webm")
	if err := os.WriteFile(src, []byte("not audio"), 0o600); err != nil {
		t.Fatalf("write src: %v", err)
	}

	err := ConvertToWAV(context.Background(), "/nonexistent/ffmpeg", src, filepath.Join(dir, "out.wav"))
	if err == nil {
		t.Fatalf("expected error for missing binary")
	}
	if !errors.Is(err, ErrTranscription) {
		t.Fatalf("error not wrapped: %v", err)
	}
}

func TestPurgeStaleAudio(t *testing.T) {
	dir := t.TempDir()

	stale := filepath.Join(dir, "old.wav")
	fresh := filepath.Join(dir, "new.wav")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
	past := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	n, err := PurgeStaleAudio(dir, time.Hour)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed=%d want 1", n)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale file survived")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh file removed: %v", err)
	}

	// idempotent second sweep
	n, err = PurgeStaleAudio(dir, time.Hour)
	if err != nil || n != 0 {
		t.Fatalf("second sweep: n=%d err=%v", n, err)
	}
}

func TestPurgeStaleAudio_MissingDir(t *testing.T) {
	n, err := PurgeStaleAudio(filepath.Join(t.TempDir(), "nope"), time.Hour)
	if err != nil || n != 0 {
		t.Fatalf("missing dir should be a no-op: n=%d err=%v", n, err)
	}
}
