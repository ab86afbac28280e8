package utils

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DrawRect draws an axis-aligned rectangle outline into dst.
func DrawRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	rect = rect.Intersect(dst.Bounds())
	if rect.Empty() {
		return
	}
	// Top and bottom edges
	for t := 0; t < thickness; t++ {
		yTop := rect.Min.Y + t
		yBot := rect.Max.Y - 1 - t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
	}
	// Left and right edges
	for t := 0; t < thickness; t++ {
		xLeft := rect.Min.X + t
		xRight := rect.Max.X - 1 - t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}

// labelFace is the fixed bitmap face used for burned-in labels.
var labelFace = basicfont.Face7x13

// LabelHeight returns the pixel height of the label font.
func LabelHeight() int { return labelFace.Metrics().Height.Ceil() }

// DrawLabel renders text into dst with its top-left corner at (x, y).
// The position is clamped so the text baseline stays inside the image;
// label placement is cosmetic and must never push pixels out of bounds.
func DrawLabel(dst *image.RGBA, text string, x, y int, col color.Color) {
	if text == "" {
		return
	}
	b := dst.Bounds()
	ascent := labelFace.Metrics().Ascent.Ceil()
	height := LabelHeight()

	if y < b.Min.Y {
		y = b.Min.Y
	}
	if y > b.Max.Y-height {
		y = b.Max.Y - height
	}
	if x < b.Min.X {
		x = b.Min.X
	}

	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: labelFace,
		Dot:  fixed.P(x, y+ascent),
	}
	drawer.DrawString(text)
}
