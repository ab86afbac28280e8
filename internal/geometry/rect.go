// Package geometry validates and clamps detection rectangles against image
// bounds. Detection coordinates arrive from an approximate upstream source
// and may be negative or out of range; clamping degrades malformed geometry
// to empty rectangles instead of failing so the rest of a batch can proceed.
package geometry

import "image"

// Dimensions holds the pixel size of a loaded image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DimensionsOf extracts Dimensions from an image.
func DimensionsOf(img image.Image) Dimensions {
	b := img.Bounds()
	return Dimensions{Width: b.Dx(), Height: b.Dy()}
}

// Rect is an unclamped, signed rectangle as produced by a detector.
// It carries no guarantees about sign or bounds until passed through Clamp.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Clamped is a rectangle known to lie within some image's bounds:
// X, Y, Width, Height >= 0, X+Width <= image width and Y+Height <= image
// height. Zero Width or Height marks the rectangle degenerate; downstream
// stages skip those. Construct via Clamp only.
type Clamped struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has zero area.
func (c Clamped) Empty() bool {
	return c.Width <= 0 || c.Height <= 0
}

// AsRect converts back to an unclamped Rect, e.g. for re-clamping against a
// different image.
func (c Clamped) AsRect() Rect {
	return Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
}

// ImageRect converts to the stdlib rectangle form used by pixel operations.
func (c Clamped) ImageRect() image.Rectangle {
	return image.Rect(c.X, c.Y, c.X+c.Width, c.Y+c.Height)
}

// Clamp fits r into d. Negative origins floor to 0 with the requested extent
// preserved, negative sizes collapse to 0, and the extent is then capped so
// the rectangle never exceeds the image. Clamp never fails; callers must
// treat Empty results as skip-this-rectangle.
func Clamp(r Rect, d Dimensions) Clamped {
	x, w := clampAxis(r.X, r.Width, d.Width)
	y, h := clampAxis(r.Y, r.Height, d.Height)
	return Clamped{X: x, Y: y, Width: w, Height: h}
}

// clampAxis clamps one origin/extent pair against a single dimension.
func clampAxis(origin, extent, limit int) (int, int) {
	if origin < 0 {
		origin = 0
	}
	if origin > limit {
		origin = limit
	}
	if extent < 0 {
		extent = 0
	}
	if extent > limit-origin {
		extent = limit - origin
	}
	return origin, extent
}
