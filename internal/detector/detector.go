// Package detector defines the face-detection capability consumed by the
// pipeline. The shipped implementation is a deterministic stand-in that
// synthesizes boxes from image dimensions; real detectors (ML models,
// classical vision) plug in behind the same interface.
package detector

import (
	"image"
	"log/slog"
)

// Face is a candidate region in image pixel space, unclamped and signed:
// detectors may legitimately report coordinates outside the image.
type Face struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// Detector locates candidate face regions in an image.
type Detector interface {
	Detect(img image.Image) ([]Face, error)
}

// Mock synthesizes detections from image dimensions. Box count and placement
// grow with image size, which makes behavior fully predictable in tests.
type Mock struct {
	minDimension        int
	confidenceThreshold float64
}

// Option configures a Mock detector.
type Option func(*Mock)

// WithMinDimension sets the smallest image dimension that yields detections.
func WithMinDimension(px int) Option {
	return func(m *Mock) { m.minDimension = px }
}

// WithConfidenceThreshold drops detections below the given confidence.
// Values are clamped into [0, 1].
func WithConfidenceThreshold(threshold float64) Option {
	return func(m *Mock) {
		m.confidenceThreshold = min(max(threshold, 0), 1)
	}
}

// NewMock creates a mock detector with default settings.
func NewMock(opts ...Option) *Mock {
	m := &Mock{
		minDimension:        200,
		confidenceThreshold: 0.5,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MinDimension returns the smallest image dimension considered for detection.
func (m *Mock) MinDimension() int { return m.minDimension }

// ConfidenceThreshold returns the configured confidence cutoff.
func (m *Mock) ConfidenceThreshold() float64 { return m.confidenceThreshold }

// Detect returns synthesized face regions for the image.
func (m *Mock) Detect(img image.Image) ([]Face, error) {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	var faces []Face
	if width > m.minDimension && height > m.minDimension {
		faces = append(faces, Face{
			X:          width / 4,
			Y:          height / 4,
			Width:      width / 4,
			Height:     height / 4,
			Confidence: 0.95,
		})
	}
	if width > 400 && height > 400 {
		faces = append(faces, Face{
			X:          width * 2 / 3,
			Y:          height / 3,
			Width:      width / 5,
			Height:     height / 5,
			Confidence: 0.87,
		})
	}
	if width > 600 && height > 600 {
		faces = append(faces, Face{
			X:          width / 2,
			Y:          height * 2 / 3,
			Width:      width / 6,
			Height:     height / 6,
			Confidence: 0.92,
		})
	}

	kept := faces[:0]
	for _, f := range faces {
		if f.Confidence >= m.confidenceThreshold {
			kept = append(kept, f)
		}
	}

	slog.Debug("mock detection completed",
		"width", width, "height", height, "faces", len(kept))
	return kept, nil
}
