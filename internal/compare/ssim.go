package compare

import (
	"image"
	"runtime"
	"sync"
)

// Structural similarity after Wang et al., computed over a uniform square
// window centered on each pixel. Windows are clamped at the image border
// rather than padded, so every output pixel reflects only real samples.
const (
	ssimK1           = 0.01
	ssimK2           = 0.03
	ssimDynamicRange = 255.0
)

// ssimMap returns the mean SSIM score and the full per-pixel similarity map
// for two grayscale images of identical dimensions.
func ssimMap(a *image.Gray, b *image.Gray, window int) (float64, []float64) {
	width := a.Bounds().Dx()
	height := a.Bounds().Dy()

	similarity := make([]float64, width*height)
	if width == 0 || height == 0 {
		return 0.0, similarity
	}

	c1 := (ssimK1 * ssimDynamicRange) * (ssimK1 * ssimDynamicRange)
	c2 := (ssimK2 * ssimDynamicRange) * (ssimK2 * ssimDynamicRange)

	half := window / 2

	// Use GOMAXPROCS instead of runtime.NumCPU() to consider cgroup.
	numWorkers := runtime.GOMAXPROCS(0)
	rowsPerWorker := height / numWorkers

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := 0; i < numWorkers; i++ {
		startY := i * rowsPerWorker
		endY := startY + rowsPerWorker
		if i == numWorkers-1 {
			endY = height
		}

		go func(startY int, endY int) {
			defer wg.Done()

			for y := startY; y < endY; y++ {
				top := y - half
				if top < 0 {
					top = 0
				}
				bottom := y + half
				if bottom >= height {
					bottom = height - 1
				}

				for x := 0; x < width; x++ {
					left := x - half
					if left < 0 {
						left = 0
					}
					right := x + half
					if right >= width {
						right = width - 1
					}

					var sumA, sumB, sumAA, sumBB, sumAB float64
					n := float64((bottom - top + 1) * (right - left + 1))

					for wy := top; wy <= bottom; wy++ {
						aRow := a.PixOffset(left, wy)
						bRow := b.PixOffset(left, wy)
						for wx := 0; wx <= right-left; wx++ {
							pa := float64(a.Pix[aRow+wx])
							pb := float64(b.Pix[bRow+wx])
							sumA += pa
							sumB += pb
							sumAA += pa * pa
							sumBB += pb * pb
							sumAB += pa * pb
						}
					}

					meanA := sumA / n
					meanB := sumB / n
					varA := sumAA/n - meanA*meanA
					varB := sumBB/n - meanB*meanB
					covAB := sumAB/n - meanA*meanB

					numerator := (2*meanA*meanB + c1) * (2*covAB + c2)
					denominator := (meanA*meanA + meanB*meanB + c1) * (varA + varB + c2)

					similarity[y*width+x] = numerator / denominator
				}
			}
		}(startY, endY)
	}

	wg.Wait()

	var total float64
	for _, v := range similarity {
		total += v
	}

	return total / float64(len(similarity)), similarity
}
