package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newWhiteRGBA(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestDrawRect(t *testing.T) {
	img := newWhiteRGBA(50, 50)
	green := color.RGBA{0, 255, 0, 255}

	DrawRect(img, image.Rect(10, 10, 20, 20), green, 1)

	// Corners of the outline carry the stroke color.
	assert.Equal(t, green, img.RGBAAt(10, 10))
	assert.Equal(t, green, img.RGBAAt(19, 19))
	assert.Equal(t, green, img.RGBAAt(10, 19))
	// Interior is untouched.
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(15, 15))
}

func TestDrawRect_ClipsToBounds(t *testing.T) {
	img := newWhiteRGBA(20, 20)
	red := color.RGBA{255, 0, 0, 255}

	// Rectangle partially outside the image must not panic.
	DrawRect(img, image.Rect(-10, -10, 10, 10), red, 1)
	assert.Equal(t, red, img.RGBAAt(9, 0))

	// Entirely outside is a no-op.
	before := append([]uint8{}, img.Pix...)
	DrawRect(img, image.Rect(100, 100, 120, 120), red, 1)
	assert.Equal(t, before, img.Pix)
}

func TestDrawLabel(t *testing.T) {
	img := newWhiteRGBA(100, 40)
	black := color.RGBA{0, 0, 0, 255}

	DrawLabel(img, "Face 1: 95.0%", 2, 2, black)

	changed := 0
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			changed++
		}
	}
	assert.Positive(t, changed, "label should change pixels")
}

func TestDrawLabel_ClampsAboveTopEdge(t *testing.T) {
	img := newWhiteRGBA(100, 40)

	// Negative y must be clamped into bounds rather than panic.
	assert.NotPanics(t, func() {
		DrawLabel(img, "Face 1: 95.0%", 0, -25, color.Black)
	})
}

func TestDrawLabel_EmptyTextIsNoop(t *testing.T) {
	img := newWhiteRGBA(10, 10)
	before := append([]uint8{}, img.Pix...)
	DrawLabel(img, "", 0, 0, color.Black)
	assert.Equal(t, before, img.Pix)
}

func TestValidateImageConstraints(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 80))

	assert.NoError(t, ValidateImageConstraints(img, DefaultImageConstraints()))
	assert.Error(t, ValidateImageConstraints(nil, DefaultImageConstraints()))
	assert.Error(t, ValidateImageConstraints(img, ImageConstraints{MinWidth: 200, MinHeight: 200}))
	assert.Error(t, ValidateImageConstraints(img, ImageConstraints{MaxWidth: 50, MaxHeight: 50, MinWidth: 1, MinHeight: 1}))
}

func TestCloneRGBA(t *testing.T) {
	src := newWhiteRGBA(10, 10)
	src.Set(5, 5, color.RGBA{1, 2, 3, 255})

	dst := CloneRGBA(src)
	assert.Equal(t, src.Bounds().Dx(), dst.Bounds().Dx())
	assert.Equal(t, src.RGBAAt(5, 5), dst.RGBAAt(5, 5))

	// Mutating the clone must not touch the source.
	dst.Set(0, 0, color.RGBA{9, 9, 9, 255})
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, src.RGBAAt(0, 0))
}
