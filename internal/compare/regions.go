package compare

import "image"

// thresholdMap converts the per-pixel similarity map into a binary mask of
// "sufficiently different" pixels. The map is scaled to 8 bits and split with
// Otsu's method; pixels at or below the split are marked as different. A flat
// map has no bimodal split and yields an empty mask.
func thresholdMap(similarity []float64, width int, height int) []bool {
	mask := make([]bool, width*height)

	scaled := make([]uint8, len(similarity))
	minValue := uint8(255)
	maxValue := uint8(0)
	for i, v := range similarity {
		// SSIM can slightly exceed [0, 1] from numerical artifacts.
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		s := uint8(v * 255)
		scaled[i] = s
		if s < minValue {
			minValue = s
		}
		if s > maxValue {
			maxValue = s
		}
	}

	if minValue == maxValue {
		return mask
	}

	threshold := otsuThreshold(scaled)
	for i, s := range scaled {
		if s <= threshold {
			mask[i] = true
		}
	}

	return mask
}

// otsuThreshold picks the split that maximizes between-class variance of the
// 8-bit histogram.
func otsuThreshold(values []uint8) uint8 {
	var histogram [256]int
	for _, v := range values {
		histogram[v]++
	}

	total := len(values)

	var sumAll float64
	for i := 0; i < 256; i++ {
		sumAll += float64(i) * float64(histogram[i])
	}

	var sumBackground float64
	var weightBackground int

	bestThreshold := uint8(0)
	bestVariance := 0.0

	for t := 0; t < 256; t++ {
		weightBackground += histogram[t]
		if weightBackground == 0 {
			continue
		}
		weightForeground := total - weightBackground
		if weightForeground == 0 {
			break
		}

		sumBackground += float64(t) * float64(histogram[t])

		meanBackground := sumBackground / float64(weightBackground)
		meanForeground := (sumAll - sumBackground) / float64(weightForeground)

		variance := float64(weightBackground) * float64(weightForeground) *
			(meanBackground - meanForeground) * (meanBackground - meanForeground)

		if variance > bestVariance {
			bestVariance = variance
			bestThreshold = uint8(t)
		}
	}

	return bestThreshold
}

// changedPixels marks every pixel whose grayscale intensity differs between
// the two images. Component areas are measured against this mask rather than
// the similarity mask: the windowed SSIM pass smears dissimilarity a few
// pixels around a change, and that halo must not push a small change past the
// noise filter.
func changedPixels(a *image.Gray, b *image.Gray) []bool {
	width := a.Bounds().Dx()
	height := a.Bounds().Dy()

	changed := make([]bool, width*height)
	for y := 0; y < height; y++ {
		aRow := a.PixOffset(0, y)
		bRow := b.PixOffset(0, y)
		for x := 0; x < width; x++ {
			changed[y*width+x] = a.Pix[aRow+x] != b.Pix[bRow+x]
		}
	}

	return changed
}

// findRegions extracts 8-connected components of the mask and returns the
// bounding box of each component containing more than minArea changed pixels.
func findRegions(mask []bool, changed []bool, width int, height int, minArea int) []Region {
	visited := make([]bool, len(mask))

	var regions []Region
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !mask[y*width+x] || visited[y*width+x] {
				continue
			}

			region, area := traceComponent(mask, changed, visited, x, y, width, height)
			if area > minArea {
				regions = append(regions, region)
			}
		}
	}

	return regions
}

// traceComponent flood-fills one component starting at (startX, startY) and
// returns its bounding box and the number of changed pixels it covers.
func traceComponent(mask []bool, changed []bool, visited []bool, startX int, startY int, width int, height int) (Region, int) {
	minX := startX
	minY := startY
	maxX := startX
	maxY := startY
	area := 0

	queue := []struct {
		x int
		y int
	}{{startX, startY}}
	visited[startY*width+startX] = true

	for len(queue) > 0 {
		point := queue[0]
		queue = queue[1:]
		if changed[point.y*width+point.x] {
			area++
		}

		if point.x < minX {
			minX = point.x
		}
		if point.x > maxX {
			maxX = point.x
		}
		if point.y < minY {
			minY = point.y
		}
		if point.y > maxY {
			maxY = point.y
		}

		// Check 8 neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}

				nx := point.x + dx
				ny := point.y + dy
				if nx >= 0 && nx < width && ny >= 0 && ny < height &&
					mask[ny*width+nx] && !visited[ny*width+nx] {
					visited[ny*width+nx] = true
					queue = append(queue, struct {
						x int
						y int
					}{nx, ny})
				}
			}
		}
	}

	return Region{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
	}, area
}
