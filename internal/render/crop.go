package render

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/visage/internal/geometry"
)

// Crop extracts the sub-image covered by rect into a new buffer with exactly
// rect.Width x rect.Height dimensions. A degenerate rectangle yields a 0x0
// placeholder image rather than an error so batch callers can keep going.
// Pixels outside the rectangle are never touched.
func Crop(img image.Image, rect geometry.Clamped) image.Image {
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect.ImageRect())
}
