package baseline

import (
	"os"
	"path/filepath"
	"testing"
)

func TestKeys(t *testing.T) {
	t.Run("BaselineKey", func(t *testing.T) {
		if key := BaselineKey("login"); key != "baseline/login_baseline.png" {
			t.Errorf("Unexpected key: %s", key)
		}
	})

	t.Run("TemplateKey", func(t *testing.T) {
		if key := TemplateKey("login"); key != "baseline/login_element.png" {
			t.Errorf("Unexpected key: %s", key)
		}
	})

	t.Run("CurrentKey", func(t *testing.T) {
		if key := CurrentKey(); key != "results/current.png" {
			t.Errorf("Unexpected key: %s", key)
		}
	})

	t.Run("DiffKey", func(t *testing.T) {
		if key := DiffKey(); key != "diff/diff.png" {
			t.Errorf("Unexpected key: %s", key)
		}
	})
}

func TestNewLayout(t *testing.T) {
	t.Run("DefaultRoot", func(t *testing.T) {
		layout := NewLayout("")
		if layout.Root != "screenshots" {
			t.Errorf("Expected default root to be screenshots, got %s", layout.Root)
		}
	})

	t.Run("ExplicitRoot", func(t *testing.T) {
		layout := NewLayout("/tmp/shots")
		if layout.Root != "/tmp/shots" {
			t.Errorf("Expected explicit root to be kept, got %s", layout.Root)
		}
	})
}

func TestLayout_Paths(t *testing.T) {
	layout := NewLayout("screenshots")

	if p := layout.BaselinePath("home"); p != filepath.Join("screenshots", "baseline", "home_baseline.png") {
		t.Errorf("Unexpected baseline path: %s", p)
	}
	if p := layout.TemplatePath("home"); p != filepath.Join("screenshots", "baseline", "home_element.png") {
		t.Errorf("Unexpected template path: %s", p)
	}
	if p := layout.CurrentPath(); p != filepath.Join("screenshots", "results", "current.png") {
		t.Errorf("Unexpected current path: %s", p)
	}
	if p := layout.DiffPath(); p != filepath.Join("screenshots", "diff", "diff.png") {
		t.Errorf("Unexpected diff path: %s", p)
	}
}

func TestLayout_EnsureDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "screenshots")
	layout := NewLayout(root)

	if err := layout.EnsureDirs(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for _, dir := range []string{"baseline", "results", "diff"} {
		info, err := os.Stat(filepath.Join(root, dir))
		if err != nil {
			t.Errorf("Expected directory %s to exist: %v", dir, err)
			continue
		}
		if !info.IsDir() {
			t.Errorf("Expected %s to be a directory", dir)
		}
	}

	// Idempotent
	if err := layout.EnsureDirs(); err != nil {
		t.Errorf("Expected repeated EnsureDirs to succeed: %v", err)
	}
}
