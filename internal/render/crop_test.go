package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/visage/internal/geometry"
)

func TestCrop_OutputSize(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	tests := []struct {
		name string
		rect geometry.Clamped
	}{
		{name: "interior region", rect: geometry.Clamped{X: 10, Y: 20, Width: 30, Height: 40}},
		{name: "touching right-bottom edge", rect: geometry.Clamped{X: 90, Y: 90, Width: 10, Height: 10}},
		{name: "full image", rect: geometry.Clamped{X: 0, Y: 0, Width: 100, Height: 100}},
		{name: "single pixel", rect: geometry.Clamped{X: 99, Y: 99, Width: 1, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Crop(img, tt.rect)
			assert.Equal(t, tt.rect.Width, out.Bounds().Dx())
			assert.Equal(t, tt.rect.Height, out.Bounds().Dy())
		})
	}
}

func TestCrop_DegenerateYieldsPlaceholder(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	for _, rect := range []geometry.Clamped{
		{X: 10, Y: 10, Width: 0, Height: 10},
		{X: 10, Y: 10, Width: 10, Height: 0},
		{X: 100, Y: 0, Width: 0, Height: 0},
	} {
		out := Crop(img, rect)
		require.NotNil(t, out)
		assert.Equal(t, 0, out.Bounds().Dx())
		assert.Equal(t, 0, out.Bounds().Dy())
	}
}

func TestCrop_ExtractsCorrectPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	marker := color.RGBA{200, 100, 50, 255}
	img.Set(4, 5, marker)

	out := Crop(img, geometry.Clamped{X: 3, Y: 4, Width: 4, Height: 4})

	// (4,5) in the source maps to (1,1) in the crop.
	r, g, b, _ := out.At(out.Bounds().Min.X+1, out.Bounds().Min.Y+1).RGBA()
	assert.Equal(t, uint32(200), r>>8)
	assert.Equal(t, uint32(100), g>>8)
	assert.Equal(t, uint32(50), b>>8)
}

func TestCrop_DoesNotAliasSource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	out := Crop(img, geometry.Clamped{X: 0, Y: 0, Width: 5, Height: 5})

	rgba, ok := out.(*image.NRGBA)
	require.True(t, ok)
	rgba.Set(0, 0, color.RGBA{9, 9, 9, 255})

	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint32(0), r)
}
