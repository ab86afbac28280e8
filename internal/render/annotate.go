// Package render burns detection annotations into image copies and extracts
// per-region sub-images. Inputs are never mutated; every call returns a
// freshly allocated buffer.
package render

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/visage/internal/geometry"
	"github.com/MeKo-Tech/visage/internal/utils"
)

// Annotation pairs a clamped rectangle with its burned-in label. Instances
// are per-request and dropped once the annotated image is produced.
type Annotation struct {
	Rect       geometry.Clamped
	Label      string
	Confidence float64
}

// Options controls how annotations are drawn onto images.
type Options struct {
	Color      color.Color
	Thickness  int
	DrawLabels bool
}

// DefaultOptions returns the fixed visual style: solid green, single-pixel
// stroke, labels enabled.
func DefaultOptions() Options {
	return Options{
		Color:      color.RGBA{0, 255, 0, 255},
		Thickness:  1,
		DrawLabels: true,
	}
}

// labelGap is the vertical offset between a label and its rectangle.
const labelGap = 2

// Annotate draws all annotations onto an RGBA copy of img and returns it.
// Boxes are drawn in input order, later ones painting over earlier ones.
// Degenerate rectangles are skipped entirely. Labels sit just above the
// rectangle's top edge and are clamped into the image near the top boundary.
func Annotate(img image.Image, boxes []Annotation, opt Options) *image.RGBA {
	if opt.Color == nil {
		opt.Color = color.RGBA{0, 255, 0, 255}
	}
	if opt.Thickness <= 0 {
		opt.Thickness = 1
	}

	dst := utils.CloneRGBA(img)
	for _, box := range boxes {
		if box.Rect.Empty() {
			continue
		}
		utils.DrawRect(dst, box.Rect.ImageRect(), opt.Color, opt.Thickness)
		if opt.DrawLabels && box.Label != "" {
			labelY := box.Rect.Y - utils.LabelHeight() - labelGap
			utils.DrawLabel(dst, box.Label, box.Rect.X, labelY, opt.Color)
		}
	}
	return dst
}
