package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
)

func TestFileStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("PutAndGet", func(t *testing.T) {
		s, err := NewFileStorage(ctx, FileConfig{Directory: t.TempDir()})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		url, err := s.Put(ctx, "baseline/login_baseline.png", []byte("payload"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		data, err := s.Get(ctx, url)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !bytes.Equal(data, []byte("payload")) {
			t.Errorf("Expected stored payload to round-trip, got %q", data)
		}
	})

	t.Run("PutCreatesParentDirectories", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStorage(ctx, FileConfig{Directory: dir})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		url, err := s.Put(ctx, "a/b/c.png", []byte("x"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if url != filepath.Join(dir, "a", "b", "c.png") {
			t.Errorf("Unexpected url: %s", url)
		}
	})

	t.Run("URL", func(t *testing.T) {
		dir := t.TempDir()
		s, err := NewFileStorage(ctx, FileConfig{Directory: dir})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if url := s.URL("diff/diff.png"); url != filepath.Join(dir, "diff", "diff.png") {
			t.Errorf("Unexpected url: %s", url)
		}
	})

	t.Run("Exists", func(t *testing.T) {
		s, err := NewFileStorage(ctx, FileConfig{Directory: t.TempDir()})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		exists, err := s.Exists(ctx, s.URL("missing.png"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if exists {
			t.Error("Expected missing key to not exist")
		}

		url, err := s.Put(ctx, "present.png", []byte("x"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		exists, err = s.Exists(ctx, url)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !exists {
			t.Error("Expected stored key to exist")
		}
	})
}
