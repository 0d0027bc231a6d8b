// Package baseline owns the on-disk layout for visual regression artifacts:
// where reference screenshots, fresh captures, and diff images live, and how
// they are named.
package baseline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
)

const (
	baselineDir = "baseline"
	resultsDir  = "results"
	diffDir     = "diff"
)

// BaselineKey is the storage key for a full-page reference screenshot.
func BaselineKey(name string) string {
	return path.Join(baselineDir, name+"_baseline.png")
}

// TemplateKey is the storage key for an element reference screenshot.
func TemplateKey(name string) string {
	return path.Join(baselineDir, name+"_element.png")
}

// CurrentKey is the storage key for the most recent capture.
func CurrentKey() string {
	return path.Join(resultsDir, "current.png")
}

// DiffKey is the storage key for the annotated diff image.
func DiffKey() string {
	return path.Join(diffDir, "diff.png")
}

// Layout maps storage keys onto a local screenshot directory tree:
//
//	<root>/baseline/<name>_baseline.png
//	<root>/baseline/<name>_element.png
//	<root>/results/current.png
//	<root>/diff/diff.png
type Layout struct {
	Root string
}

func NewLayout(root string) *Layout {
	if root == "" {
		root = "screenshots"
	}
	return &Layout{Root: root}
}

// EnsureDirs creates the full directory tree. Callers invoke this once up
// front.
func (l *Layout) EnsureDirs() error {
	for _, dir := range []string{baselineDir, resultsDir, diffDir} {
		if err := os.MkdirAll(filepath.Join(l.Root, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (l *Layout) BaselinePath(name string) string {
	return filepath.Join(l.Root, filepath.FromSlash(BaselineKey(name)))
}

func (l *Layout) TemplatePath(name string) string {
	return filepath.Join(l.Root, filepath.FromSlash(TemplateKey(name)))
}

func (l *Layout) CurrentPath() string {
	return filepath.Join(l.Root, filepath.FromSlash(CurrentKey()))
}

func (l *Layout) DiffPath() string {
	return filepath.Join(l.Root, filepath.FromSlash(DiffKey()))
}
