package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// GenerateFaceImage creates a synthetic portrait-style test image: a light
// background with skin-tone rectangles roughly where a detector would report
// faces.
func GenerateFaceImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.RGBA{240, 240, 240, 255}}, image.Point{}, draw.Src)

	const faceSize = 80
	const spacing = 100

	fillRect := func(x0, y0 int, c color.RGBA) {
		for y := y0; y < min(y0+faceSize, height); y++ {
			for x := x0; x < min(x0+faceSize, width); x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}

	if width > spacing && height > spacing {
		fillRect(spacing, spacing, color.RGBA{200, 180, 160, 255})
	}
	if width > spacing*3 && height > spacing {
		fillRect(spacing*3, spacing, color.RGBA{180, 160, 140, 255})
	}
	return img
}

// EncodePNG returns the image serialized as PNG bytes.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// EncodeJPEG returns the image serialized as JPEG bytes at the given quality.
func EncodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}))
	return buf.Bytes()
}
