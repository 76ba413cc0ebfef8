package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register PNG decoding for file-picker uploads

	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the longer side of the frame sent to the model.
	MaxDimension = 1024
	// jpegQuality trades size against label legibility.
	jpegQuality = 82
)

// ErrUndecodable is returned when the payload is not a decodable image.
var ErrUndecodable = errors.New("imaging: payload is not a decodable image")

// Prepare decodes a captured frame (JPEG or PNG), downscales it so neither
// dimension exceeds MaxDimension while preserving aspect ratio, and re-encodes
// it as JPEG. A JPEG already within bounds is passed through untouched.
func Prepare(raw []byte) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width <= MaxDimension && height <= MaxDimension {
		if format == "jpeg" {
			return raw, nil
		}
		return encode(img)
	}

	targetW, targetH := ScaleDimensions(width, height, MaxDimension)
	scaled := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	return encode(scaled)
}

// ScaleDimensions computes the downscaled size whose longer side equals max,
// preserving aspect ratio. Inputs within bounds are returned unchanged.
func ScaleDimensions(width, height, max int) (int, int) {
	if width <= max && height <= max {
		return width, height
	}
	if width > height {
		return max, rounded(height, width, max)
	}
	return rounded(width, height, max), max
}

func rounded(short, long, max int) int {
	scaled := (short*max + long/2) / long
	if scaled < 1 {
		return 1
	}
	return scaled
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
