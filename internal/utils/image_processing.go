package utils

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ImageConstraints defines the constraints for image processing.
type ImageConstraints struct {
	MaxWidth  int
	MaxHeight int
	MinWidth  int
	MinHeight int
}

// DefaultImageConstraints returns the default constraints for detection input.
func DefaultImageConstraints() ImageConstraints {
	return ImageConstraints{
		MaxWidth:  8192,
		MaxHeight: 8192,
		MinWidth:  1,
		MinHeight: 1,
	}
}

// ValidateImageConstraints checks dimensions against the provided constraints.
func ValidateImageConstraints(img image.Image, constraints ImageConstraints) error {
	if img == nil {
		return &ImageProcessingError{Operation: "validate", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < constraints.MinWidth || h < constraints.MinHeight {
		return &ImageProcessingError{
			Operation: "validate",
			Err: fmt.Errorf(
				"image too small: %dx%d < %dx%d",
				w, h, constraints.MinWidth, constraints.MinHeight,
			),
		}
	}
	if constraints.MaxWidth > 0 && (w > constraints.MaxWidth || h > constraints.MaxHeight) {
		return &ImageProcessingError{
			Operation: "validate",
			Err: fmt.Errorf(
				"image too large: %dx%d > %dx%d",
				w, h, constraints.MaxWidth, constraints.MaxHeight,
			),
		}
	}
	return nil
}

// CloneRGBA copies img into a freshly allocated RGBA buffer anchored at the
// origin. The result never aliases the input's storage.
func CloneRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
