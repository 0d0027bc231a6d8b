package compare

import (
	"errors"
	"image"

	"baseline-cli/internal/imageio"
)

// DimensionError is returned under the Strict policy when the two inputs do
// not share pixel dimensions.
var DimensionError = errors.New("image dimensions do not match")

// Region is a changed area of the comparison, as a bounding box in the
// coordinate space of the compared images.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

func (r Region) Area() int {
	return r.Width * r.Height
}

// Result carries the outcome of one comparison: the structural similarity
// score in [0, 1], the regions that changed beyond the noise filter, and a
// copy of the second input with those regions outlined.
type Result struct {
	Score   float64
	Image   image.Image
	Regions []Region
}

// DimensionPolicy decides how a comparison treats inputs of different sizes.
type DimensionPolicy int

const (
	// Lenient resizes the second image to the first image's dimensions.
	// Minor viewport drift between captures is accepted silently, at the
	// cost of a skewed score when the true size differs structurally.
	Lenient DimensionPolicy = iota
	// Strict fails the comparison with DimensionError instead.
	Strict
)

type Config struct {
	// WindowSize is the side length of the local SSIM window.
	WindowSize int
	// MinRegionArea filters changed regions: components covering this many
	// pixels or fewer are treated as noise and dropped.
	MinRegionArea int
	Policy        DimensionPolicy
}

func DefaultConfig() Config {
	return Config{
		WindowSize:    7,
		MinRegionArea: 40,
		Policy:        Lenient,
	}
}

type SSIMComparator struct {
	config Config
}

func NewSSIMComparator(c Config) *SSIMComparator {
	if c.WindowSize <= 0 {
		c.WindowSize = 7
	}
	return &SSIMComparator{
		config: c,
	}
}

// Calculate compares current against baseline. The baseline is reconciled to
// the current image's dimensions according to the configured policy, both are
// reduced to grayscale, and a windowed SSIM pass yields the score and a
// per-pixel similarity map. Regions of the map that fall below an automatic
// bimodal threshold are grouped into connected components, filtered by
// MinRegionArea, and outlined in red on a copy of the baseline.
func (s *SSIMComparator) Calculate(current image.Image, baseline image.Image) (*Result, error) {
	width := current.Bounds().Dx()
	height := current.Bounds().Dy()

	if baseline.Bounds().Dx() != width || baseline.Bounds().Dy() != height {
		if s.config.Policy == Strict {
			return nil, DimensionError
		}
		baseline = imageio.Resize(baseline, width, height)
	}

	currentGray := imageio.Grayscale(current)
	baselineGray := imageio.Grayscale(baseline)

	score, similarity := ssimMap(currentGray, baselineGray, s.config.WindowSize)

	mask := thresholdMap(similarity, width, height)
	changed := changedPixels(currentGray, baselineGray)
	regions := findRegions(mask, changed, width, height, s.config.MinRegionArea)

	annotated := drawRegions(baseline, regions)

	return &Result{
		Score:   score,
		Image:   annotated,
		Regions: regions,
	}, nil
}

// CompareFiles runs Calculate over two image files and, when outputPath is
// non-empty, writes the annotated diff image there, overwriting any existing
// file. Errors from missing or undecodable inputs propagate unchanged; no
// partial output is ever written.
func (s *SSIMComparator) CompareFiles(currentPath string, baselinePath string, outputPath string) (*Result, error) {
	current, err := imageio.Load(currentPath)
	if err != nil {
		return nil, err
	}

	baseline, err := imageio.Load(baselinePath)
	if err != nil {
		return nil, err
	}

	result, err := s.Calculate(current, baseline)
	if err != nil {
		return nil, err
	}

	if outputPath != "" {
		if err := imageio.WritePNG(outputPath, result.Image); err != nil {
			return nil, err
		}
	}

	return result, nil
}
