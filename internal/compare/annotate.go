package compare

import (
	"image"
	"image/color"

	"baseline-cli/internal/imageio"
)

const outlineThickness = 2

// drawRegions copies img and outlines each region in red.
func drawRegions(img image.Image, regions []Region) *image.RGBA {
	result := imageio.ToRGBA(img)
	bounds := result.Bounds()

	outline := color.RGBA{R: 255, A: 255}

	for _, region := range regions {
		for thickness := 0; thickness < outlineThickness; thickness++ {
			for x := region.X - thickness; x < region.X+region.Width+thickness; x++ {
				if x >= 0 && x < bounds.Max.X {
					if region.Y-thickness >= 0 {
						result.Set(x, region.Y-thickness, outline)
					}
					if region.Y+region.Height+thickness < bounds.Max.Y {
						result.Set(x, region.Y+region.Height+thickness, outline)
					}
				}
			}

			for y := region.Y - thickness; y < region.Y+region.Height+thickness; y++ {
				if y >= 0 && y < bounds.Max.Y {
					if region.X-thickness >= 0 {
						result.Set(region.X-thickness, y, outline)
					}
					if region.X+region.Width+thickness < bounds.Max.X {
						result.Set(region.X+region.Width+thickness, y, outline)
					}
				}
			}
		}
	}

	return result
}
