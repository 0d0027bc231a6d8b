package imageio

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Resize scales img to width x height with a Catmull-Rom kernel. The input
// is returned unchanged if it already has the requested dimensions.
func Resize(img image.Image, width int, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() == width && bounds.Dy() == height {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Src, nil)
	return dst
}

// Grayscale reduces img to single-channel BT.601 luma.
func Grayscale(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	if rgba, ok := img.(*image.RGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			rowStart := rgba.PixOffset(bounds.Min.X, y)
			grayRowStart := gray.PixOffset(0, y-bounds.Min.Y)
			for x := 0; x < bounds.Dx(); x++ {
				offset := rowStart + x*4
				r := uint32(rgba.Pix[offset])
				g := uint32(rgba.Pix[offset+1])
				b := uint32(rgba.Pix[offset+2])
				// Same BT.601 weights the standard library uses for GrayModel.
				gray.Pix[grayRowStart+x] = uint8((19595*r + 38470*g + 7471*b + 1<<15) >> 16)
			}
		}
		return gray
	}

	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// ToRGBA copies img into a zero-origin RGBA image.
func ToRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}
