package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
)

var NotFoundError = errors.New("image file not found")
var DecodeError = errors.New("failed to decode image")

// Load reads and decodes a raster image from disk. A missing file is
// reported as NotFoundError, undecodable content as DecodeError.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", NotFoundError, path)
		}
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", DecodeError, path, err)
	}

	return img, nil
}

// Decode decodes an in-memory PNG or JPEG.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", DecodeError, err)
	}
	return img, nil
}

func EncodePNG(img image.Image) ([]byte, error) {
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, img); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buffer.Bytes(), nil
}

// WritePNG encodes img and writes it to path, overwriting any existing file.
func WritePNG(path string, img image.Image) error {
	data, err := EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
