package compare

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"path/filepath"
	"testing"

	"baseline-cli/internal/imageio"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func fillRect(img *image.RGBA, x, y, width, height int, c color.Color) {
	draw.Draw(img, image.Rect(x, y, x+width, y+height), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func TestSSIMComparator_Calculate(t *testing.T) {
	comparator := NewSSIMComparator(DefaultConfig())

	t.Run("IdenticalImages", func(t *testing.T) {
		current := createTestImage(100, 100, color.White)
		baseline := createTestImage(100, 100, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.Score != 1.0 {
			t.Errorf("Expected score to be exactly 1.0, got %f", result.Score)
		}
		if len(result.Regions) != 0 {
			t.Errorf("Expected no changed regions, got %d", len(result.Regions))
		}
	})

	t.Run("SameImageInstance", func(t *testing.T) {
		img := createTestImage(100, 100, color.White)

		result, err := comparator.Calculate(img, img)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.Score != 1.0 {
			t.Errorf("Expected score to be exactly 1.0, got %f", result.Score)
		}
	})

	t.Run("ChangedRegionDetected", func(t *testing.T) {
		current := createTestImage(100, 100, color.White)
		fillRect(current, 30, 40, 30, 30, color.Black)
		baseline := createTestImage(100, 100, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.Score >= 1.0 {
			t.Errorf("Expected score below 1.0, got %f", result.Score)
		}
		if len(result.Regions) == 0 {
			t.Fatal("Expected at least one changed region")
		}

		region := result.Regions[0]
		if region.X > 30 || region.Y > 40 ||
			region.X+region.Width < 60 || region.Y+region.Height < 70 {
			t.Errorf("Expected region to cover the changed rectangle, got %+v", region)
		}
	})

	t.Run("PatchBelowMinimumAreaNotAnnotated", func(t *testing.T) {
		current := createTestImage(100, 100, color.White)
		fillRect(current, 40, 40, 5, 5, color.Black)
		baseline := createTestImage(100, 100, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(result.Regions) != 0 {
			t.Errorf("Expected a 5x5 change (25 pixels) to be filtered, got %+v", result.Regions)
		}
	})

	t.Run("PatchAboveMinimumAreaAnnotated", func(t *testing.T) {
		current := createTestImage(100, 100, color.White)
		fillRect(current, 40, 40, 10, 10, color.Black)
		baseline := createTestImage(100, 100, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(result.Regions) != 1 {
			t.Fatalf("Expected a 10x10 change (100 pixels) to be annotated, got %+v", result.Regions)
		}

		region := result.Regions[0]
		if region.X > 40 || region.Y > 40 ||
			region.X+region.Width < 50 || region.Y+region.Height < 50 {
			t.Errorf("Expected region to cover the changed rectangle, got %+v", region)
		}
	})

	t.Run("ScoreSymmetricInArgumentOrder", func(t *testing.T) {
		a := createTestImage(100, 100, color.White)
		fillRect(a, 20, 30, 25, 25, color.Black)
		b := createTestImage(100, 100, color.White)

		forward, err := comparator.Calculate(a, b)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		backward, err := comparator.Calculate(b, a)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if math.Abs(forward.Score-backward.Score) > 1e-6 {
			t.Errorf("Expected symmetric scores for equal-size inputs, got %f and %f", forward.Score, backward.Score)
		}
	})

	t.Run("LargerChangeScoresLower", func(t *testing.T) {
		baseline := createTestImage(100, 100, color.White)

		small := createTestImage(100, 100, color.White)
		fillRect(small, 10, 10, 20, 20, color.Black)

		large := createTestImage(100, 100, color.White)
		fillRect(large, 10, 10, 60, 60, color.Black)

		smallResult, err := comparator.Calculate(small, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		largeResult, err := comparator.Calculate(large, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if largeResult.Score >= smallResult.Score {
			t.Errorf("Expected larger change to score lower, got %f >= %f", largeResult.Score, smallResult.Score)
		}
	})

	t.Run("AnnotatedImageMatchesCurrentDimensions", func(t *testing.T) {
		current := createTestImage(120, 80, color.White)
		fillRect(current, 20, 20, 40, 30, color.Black)
		baseline := createTestImage(120, 80, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		bounds := result.Image.Bounds()
		if bounds.Dx() != 120 || bounds.Dy() != 80 {
			t.Errorf("Expected annotated image to be 120x80, got %dx%d", bounds.Dx(), bounds.Dy())
		}
	})

	t.Run("RegionsOutlinedInRed", func(t *testing.T) {
		current := createTestImage(100, 100, color.White)
		fillRect(current, 30, 30, 40, 40, color.Black)
		baseline := createTestImage(100, 100, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(result.Regions) == 0 {
			t.Fatal("Expected at least one changed region")
		}

		region := result.Regions[0]
		r, g, b, _ := result.Image.At(region.X, region.Y).RGBA()
		if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
			t.Errorf("Expected red outline at region corner, got rgb(%d, %d, %d)", r>>8, g>>8, b>>8)
		}
	})

	t.Run("MismatchedDimensionsResized", func(t *testing.T) {
		current := createTestImage(100, 100, color.White)
		baseline := createTestImage(200, 200, color.White)

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.Score < 0.95 {
			t.Errorf("Expected uniform images to stay similar after resize, got %f", result.Score)
		}

		bounds := result.Image.Bounds()
		if bounds.Dx() != 100 || bounds.Dy() != 100 {
			t.Errorf("Expected annotated image to match current dimensions, got %dx%d", bounds.Dx(), bounds.Dy())
		}
	})

	t.Run("MismatchedDimensionsStrict", func(t *testing.T) {
		strict := NewSSIMComparator(Config{
			WindowSize:    7,
			MinRegionArea: 40,
			Policy:        Strict,
		})

		current := createTestImage(100, 100, color.White)
		baseline := createTestImage(200, 200, color.White)

		_, err := strict.Calculate(current, baseline)
		if !errors.Is(err, DimensionError) {
			t.Errorf("Expected DimensionError, got %v", err)
		}
	})

	t.Run("MinRegionAreaFiltersEverything", func(t *testing.T) {
		c := NewSSIMComparator(Config{
			WindowSize:    7,
			MinRegionArea: 100 * 100,
			Policy:        Lenient,
		})

		current := createTestImage(100, 100, color.White)
		fillRect(current, 30, 30, 30, 30, color.Black)
		baseline := createTestImage(100, 100, color.White)

		result, err := c.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if len(result.Regions) != 0 {
			t.Errorf("Expected all regions filtered out, got %d", len(result.Regions))
		}
	})

	t.Run("HueChangeWithSameLuminance", func(t *testing.T) {
		// BT.601 luminance of rgb(255, 0, 0) and rgb(76, 76, 76) coincide,
		// so a grayscale comparison treats them as identical.
		current := createTestImage(100, 100, color.RGBA{R: 255, A: 255})
		baseline := createTestImage(100, 100, color.RGBA{R: 76, G: 76, B: 76, A: 255})

		result, err := comparator.Calculate(current, baseline)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.Score != 1.0 {
			t.Errorf("Expected equal-luminance images to score 1.0, got %f", result.Score)
		}
	})
}

func TestSSIMComparator_CompareFiles(t *testing.T) {
	comparator := NewSSIMComparator(DefaultConfig())

	writeImage := func(t *testing.T, path string, img image.Image) {
		t.Helper()
		if err := imageio.WritePNG(path, img); err != nil {
			t.Fatalf("Failed to write test image: %v", err)
		}
	}

	t.Run("IdenticalFiles", func(t *testing.T) {
		dir := t.TempDir()
		currentPath := filepath.Join(dir, "current.png")
		baselinePath := filepath.Join(dir, "baseline.png")
		diffPath := filepath.Join(dir, "diff.png")

		writeImage(t, currentPath, createTestImage(50, 50, color.White))
		writeImage(t, baselinePath, createTestImage(50, 50, color.White))

		result, err := comparator.CompareFiles(currentPath, baselinePath, diffPath)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if result.Score != 1.0 {
			t.Errorf("Expected score to be exactly 1.0, got %f", result.Score)
		}

		if _, err := os.Stat(diffPath); err != nil {
			t.Errorf("Expected diff image to be written: %v", err)
		}
	})

	t.Run("MissingCurrentFile", func(t *testing.T) {
		dir := t.TempDir()
		baselinePath := filepath.Join(dir, "baseline.png")
		writeImage(t, baselinePath, createTestImage(50, 50, color.White))

		_, err := comparator.CompareFiles(filepath.Join(dir, "missing.png"), baselinePath, "")
		if !errors.Is(err, imageio.NotFoundError) {
			t.Errorf("Expected NotFoundError, got %v", err)
		}
	})

	t.Run("CorruptBaselineFile", func(t *testing.T) {
		dir := t.TempDir()
		currentPath := filepath.Join(dir, "current.png")
		baselinePath := filepath.Join(dir, "baseline.png")

		writeImage(t, currentPath, createTestImage(50, 50, color.White))
		if err := os.WriteFile(baselinePath, []byte("not a png"), 0644); err != nil {
			t.Fatalf("Failed to write corrupt file: %v", err)
		}

		_, err := comparator.CompareFiles(currentPath, baselinePath, "")
		if !errors.Is(err, imageio.DecodeError) {
			t.Errorf("Expected DecodeError, got %v", err)
		}
	})

	t.Run("NoOutputPath", func(t *testing.T) {
		dir := t.TempDir()
		currentPath := filepath.Join(dir, "current.png")
		baselinePath := filepath.Join(dir, "baseline.png")

		writeImage(t, currentPath, createTestImage(50, 50, color.White))
		writeImage(t, baselinePath, createTestImage(50, 50, color.Black))

		result, err := comparator.CompareFiles(currentPath, baselinePath, "")
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if result.Score >= 1.0 {
			t.Errorf("Expected score below 1.0, got %f", result.Score)
		}
	})
}

func BenchmarkSSIMComparator_Calculate_Small(b *testing.B) {
	comparator := NewSSIMComparator(DefaultConfig())
	current := createTestImage(1920, 1080, color.White)
	baseline := createTestImage(1920, 1080, color.White)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = comparator.Calculate(current, baseline)
	}
}

func BenchmarkSSIMComparator_Calculate_Large(b *testing.B) {
	comparator := NewSSIMComparator(DefaultConfig())
	current := createTestImage(3840, 2160, color.White)
	baseline := createTestImage(3840, 2160, color.White)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = comparator.Calculate(current, baseline)
	}
}
