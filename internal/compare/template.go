package compare

import (
	"image"
	"math"
	"runtime"
	"sync"

	"baseline-cli/internal/imageio"
)

// DefaultTemplateThreshold is the correlation a candidate location must reach
// before it counts as a match.
const DefaultTemplateThreshold = 0.8

// Match locates a template inside a larger screenshot.
type Match struct {
	Region Region
	Score  float64
}

// FindTemplate slides template over screenshot and scores each position with
// zero-mean normalized cross-correlation on grayscale intensity. It returns
// the best-scoring location when its correlation reaches threshold, or nil
// when the template appears nowhere; a nil result is an expected outcome, not
// an error. DimensionError is returned when the template is larger than the
// screenshot.
func FindTemplate(screenshot image.Image, template image.Image, threshold float64) (*Match, error) {
	source := imageio.Grayscale(screenshot)
	patch := imageio.Grayscale(template)

	sourceWidth := source.Bounds().Dx()
	sourceHeight := source.Bounds().Dy()
	patchWidth := patch.Bounds().Dx()
	patchHeight := patch.Bounds().Dy()

	if patchWidth > sourceWidth || patchHeight > sourceHeight || patchWidth == 0 || patchHeight == 0 {
		return nil, DimensionError
	}

	patchArea := float64(patchWidth * patchHeight)

	var patchSum float64
	for y := 0; y < patchHeight; y++ {
		row := patch.PixOffset(0, y)
		for x := 0; x < patchWidth; x++ {
			patchSum += float64(patch.Pix[row+x])
		}
	}
	patchMean := patchSum / patchArea

	centered := make([]float64, patchWidth*patchHeight)
	var patchNorm float64
	for y := 0; y < patchHeight; y++ {
		row := patch.PixOffset(0, y)
		for x := 0; x < patchWidth; x++ {
			v := float64(patch.Pix[row+x]) - patchMean
			centered[y*patchWidth+x] = v
			patchNorm += v * v
		}
	}

	rows := sourceHeight - patchHeight + 1
	columns := sourceWidth - patchWidth + 1

	type candidate struct {
		x     int
		y     int
		score float64
	}

	// Use GOMAXPROCS instead of runtime.NumCPU() to consider cgroup.
	numWorkers := runtime.GOMAXPROCS(0)
	rowsPerWorker := rows / numWorkers

	best := make([]candidate, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 {
			endY = rows
		}

		go func(worker int, startY int, endY int) {
			defer wg.Done()

			localBest := candidate{score: math.Inf(-1)}

			for y := startY; y < endY; y++ {
				for x := 0; x < columns; x++ {
					var windowSum float64
					for wy := 0; wy < patchHeight; wy++ {
						row := source.PixOffset(x, y+wy)
						for wx := 0; wx < patchWidth; wx++ {
							windowSum += float64(source.Pix[row+wx])
						}
					}
					windowMean := windowSum / patchArea

					var correlation float64
					var windowNorm float64
					for wy := 0; wy < patchHeight; wy++ {
						row := source.PixOffset(x, y+wy)
						for wx := 0; wx < patchWidth; wx++ {
							v := float64(source.Pix[row+wx]) - windowMean
							correlation += v * centered[wy*patchWidth+wx]
							windowNorm += v * v
						}
					}

					denominator := math.Sqrt(patchNorm * windowNorm)
					var score float64
					if denominator > 0 {
						score = correlation / denominator
					} else if patchNorm == 0 && windowNorm == 0 {
						// Both the template and the window are flat;
						// treat identical intensity as a perfect match.
						score = 1.0
					}

					if score > localBest.score {
						localBest = candidate{x: x, y: y, score: score}
					}
				}
			}

			best[worker] = localBest
		}(i, startY, endY)
	}

	wg.Wait()

	winner := candidate{score: math.Inf(-1)}
	for _, c := range best {
		if c.score > winner.score {
			winner = c
		}
	}

	if winner.score < threshold {
		return nil, nil
	}

	return &Match{
		Region: Region{
			X:      winner.x,
			Y:      winner.y,
			Width:  patchWidth,
			Height: patchHeight,
		},
		Score: winner.score,
	}, nil
}

// FindTemplateFiles is the file-path form of FindTemplate. Missing inputs are
// NotFoundError; a template that simply does not appear still returns
// (nil, nil).
func FindTemplateFiles(screenshotPath string, templatePath string, threshold float64) (*Match, error) {
	screenshot, err := imageio.Load(screenshotPath)
	if err != nil {
		return nil, err
	}

	template, err := imageio.Load(templatePath)
	if err != nil {
		return nil, err
	}

	return FindTemplate(screenshot, template, threshold)
}
