package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/visage/internal/common"
	"github.com/MeKo-Tech/visage/internal/detector"
	"github.com/MeKo-Tech/visage/internal/geometry"
	"github.com/MeKo-Tech/visage/internal/render"
)

// ProcessImage runs the full pipeline on a single image.
func (p *Pipeline) ProcessImage(img image.Image) (*DetectionResult, error) {
	return p.ProcessImageContext(context.Background(), img)
}

// ProcessImageContext runs detection, clamps every candidate rectangle,
// annotates one copy of the image, crops each face, and encodes all outputs
// into transport strings. The encode phase runs on the bounded worker pool;
// a saturated pool rejects the request with ErrBusy before any heavy work.
// Per-face crop/encode failures are logged and skipped so one bad rectangle
// never aborts the batch.
func (p *Pipeline) ProcessImageContext(ctx context.Context, img image.Image) (*DetectionResult, error) {
	if p == nil || p.detector == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	total := common.NewNamedTimer("process")
	dims := geometry.DimensionsOf(img)
	res := &DetectionResult{Width: dims.Width, Height: dims.Height}

	// Detection
	detTimer := common.NewTimer()
	faces, err := p.detector.Detect(img)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	res.Processing.DetectionNs = detTimer.Stop().Nanoseconds()

	// Clamp every candidate; malformed geometry degrades to empty rectangles
	// which the annotator and cropper skip.
	clamped := make([]geometry.Clamped, len(faces))
	annotations := make([]render.Annotation, len(faces))
	res.Faces = make([]FaceBox, len(faces))
	for i, f := range faces {
		c := geometry.Clamp(geometry.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}, dims)
		clamped[i] = c
		annotations[i] = render.Annotation{
			Rect:       c,
			Label:      faceLabel(i, f.Confidence),
			Confidence: f.Confidence,
		}
		res.Faces[i] = FaceBox{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height, Confidence: f.Confidence}
	}
	res.TotalFaces = len(faces)

	// Annotation always works on a copy; the caller keeps the original.
	annTimer := common.NewTimer()
	annotated := render.Annotate(img, annotations, p.cfg.Annotate)
	res.Processing.AnnotateNs = annTimer.Stop().Nanoseconds()

	// Re-encoding is the expensive step; gate it through the bounded pool so
	// a burst of large images queues with bounded depth instead of running
	// the process out of memory.
	encTimer := common.NewTimer()
	err = p.pool.Run(ctx, func() error {
		return p.encodeOutputs(img, annotated, clamped, res)
	})
	res.Processing.EncodeNs = encTimer.Stop().Nanoseconds()
	if err != nil {
		return nil, err
	}

	res.Processing.TotalNs = total.Stop().Nanoseconds()
	res.Processing.TotalMs = total.Milliseconds()

	slog.Info("detection completed",
		"faces", res.TotalFaces,
		"cropped", res.CroppedCount,
		"duration_ms", res.Processing.TotalMs)
	return res, nil
}

// encodeOutputs fills the transport-string fields of res. Runs on a pool
// worker.
func (p *Pipeline) encodeOutputs(
	img image.Image,
	annotated image.Image,
	clamped []geometry.Clamped,
	res *DetectionResult,
) error {
	processed, err := EncodeToDataURI(annotated, p.cfg.Encode)
	if err != nil {
		return fmt.Errorf("encoding annotated image: %w", err)
	}
	res.ProcessedImage = processed

	if p.cfg.IncludeOriginal {
		original, err := EncodeToDataURI(img, p.cfg.Encode)
		if err != nil {
			return fmt.Errorf("encoding original image: %w", err)
		}
		res.OriginalImage = original
	}

	if !p.cfg.CropFaces {
		return nil
	}

	res.CroppedFaces = make([]string, 0, len(clamped))
	for i, rect := range clamped {
		if rect.Empty() {
			slog.Debug("skipping degenerate face rectangle", "index", i)
			continue
		}
		uri, err := EncodeToDataURI(render.Crop(img, rect), p.cfg.Encode)
		if err != nil {
			// Isolated per-face failure: keep going with the rest.
			slog.Warn("failed to encode cropped face", "index", i, "error", err)
			continue
		}
		res.CroppedFaces = append(res.CroppedFaces, uri)
	}
	res.CroppedCount = len(res.CroppedFaces)
	return nil
}

// faceLabel formats the burned-in label for face index i (1-based in the
// label) with its confidence as a percentage.
func faceLabel(i int, confidence float64) string {
	return fmt.Sprintf("Face %d: %.1f%%", i+1, confidence*100)
}

// CropFaces clamps and crops the given candidate rectangles out of img,
// encoding each surviving crop as a transport string. Failures are isolated
// per face; the returned slice holds only the successful subset.
func (p *Pipeline) CropFaces(img image.Image, faces []detector.Face) []string {
	dims := geometry.DimensionsOf(img)
	out := make([]string, 0, len(faces))

	for i, f := range faces {
		rect := geometry.Clamp(geometry.Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}, dims)
		if rect.Empty() {
			slog.Debug("skipping degenerate crop rectangle", "index", i)
			continue
		}
		uri, err := EncodeToDataURI(render.Crop(img, rect), p.cfg.Encode)
		if err != nil {
			slog.Warn("failed to crop face", "index", i, "error", err)
			continue
		}
		out = append(out, uri)
	}
	return out
}
