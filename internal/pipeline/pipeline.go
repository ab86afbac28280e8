// Package pipeline composes geometry clamping, annotation, cropping and
// transport encoding into a single per-request orchestrator. All stages
// operate on owned data; pipelines are safe for concurrent use.
package pipeline

import (
	"errors"

	"github.com/MeKo-Tech/visage/internal/detector"
	"github.com/MeKo-Tech/visage/internal/render"
)

// Config holds configuration for the detection pipeline and its components.
type Config struct {
	// Detector settings (mock implementation).
	MinDimension        int
	ConfidenceThreshold float64

	// Annotation style.
	Annotate render.Options

	// Output encoding for transport strings.
	Encode EncodeOptions

	// Result shaping.
	IncludeOriginal bool // echo the input image back as a data URI
	CropFaces       bool // produce per-face crops

	// Bounded concurrency for the expensive re-encode phase.
	Workers    int // 0 = runtime.NumCPU()
	QueueDepth int // pending requests beyond workers; -1 = workers
}

// DefaultConfig returns a default pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		MinDimension:        200,
		ConfidenceThreshold: 0.5,
		Annotate:            render.DefaultOptions(),
		Encode:              DefaultEncodeOptions(),
		IncludeOriginal:     true,
		CropFaces:           true,
		Workers:             0,
		QueueDepth:          -1,
	}
}

// Pipeline runs detection, annotation, cropping and encoding for one image
// per call.
type Pipeline struct {
	detector detector.Detector
	cfg      Config
	pool     *WorkerPool
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
	det detector.Detector
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithDetector swaps in a custom detector implementation.
func (b *Builder) WithDetector(d detector.Detector) *Builder {
	b.det = d
	return b
}

// WithMinDimension sets the smallest image dimension the mock detector
// considers.
func (b *Builder) WithMinDimension(px int) *Builder {
	if px > 0 {
		b.cfg.MinDimension = px
	}
	return b
}

// WithConfidenceThreshold sets the detection confidence cutoff.
func (b *Builder) WithConfidenceThreshold(threshold float64) *Builder {
	b.cfg.ConfidenceThreshold = threshold
	return b
}

// WithAnnotateOptions overrides the annotation style.
func (b *Builder) WithAnnotateOptions(opt render.Options) *Builder {
	b.cfg.Annotate = opt
	return b
}

// WithEncodeOptions overrides the output encoding.
func (b *Builder) WithEncodeOptions(opt EncodeOptions) *Builder {
	b.cfg.Encode = opt
	return b
}

// WithIncludeOriginal toggles echoing the original image in results.
func (b *Builder) WithIncludeOriginal(include bool) *Builder {
	b.cfg.IncludeOriginal = include
	return b
}

// WithCropFaces toggles per-face crop extraction.
func (b *Builder) WithCropFaces(crop bool) *Builder {
	b.cfg.CropFaces = crop
	return b
}

// WithWorkers bounds the re-encode worker pool and its wait queue.
func (b *Builder) WithWorkers(workers, queueDepth int) *Builder {
	b.cfg.Workers = workers
	b.cfg.QueueDepth = queueDepth
	return b
}

// Build validates the configuration and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Encode.Validate(); err != nil {
		return nil, err
	}
	if b.cfg.ConfidenceThreshold < 0 || b.cfg.ConfidenceThreshold > 1 {
		return nil, errors.New("confidence threshold must be in [0,1]")
	}

	det := b.det
	if det == nil {
		det = detector.NewMock(
			detector.WithMinDimension(b.cfg.MinDimension),
			detector.WithConfidenceThreshold(b.cfg.ConfidenceThreshold),
		)
	}

	return &Pipeline{
		detector: det,
		cfg:      b.cfg,
		pool:     NewWorkerPool(b.cfg.Workers, b.cfg.QueueDepth),
	}, nil
}

// Config returns the pipeline's effective configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Close releases the pipeline's worker pool.
func (p *Pipeline) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
