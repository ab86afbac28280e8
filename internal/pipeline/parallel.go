package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
)

// ParallelConfig holds configuration for processing several images at once.
type ParallelConfig struct {
	MaxWorkers   int                           // number of parallel workers (0 = runtime.NumCPU())
	ErrorHandler func(int, image.Image, error) // optional per-image error handler
}

// DefaultParallelConfig returns sensible defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{MaxWorkers: runtime.NumCPU()}
}

type imageJob struct {
	index int
	image image.Image
}

type imageJobResult struct {
	index  int
	result *DetectionResult
	err    error
}

// ProcessImages processes multiple images in parallel using a worker pool.
// Results are returned in input order; failed images leave a nil slot and
// the first error is returned alongside the partial results.
func (p *Pipeline) ProcessImages(images []image.Image, config ParallelConfig) ([]*DetectionResult, error) {
	return p.ProcessImagesContext(context.Background(), images, config)
}

// ProcessImagesContext processes images in parallel with cancellation support.
func (p *Pipeline) ProcessImagesContext(
	ctx context.Context,
	images []image.Image,
	config ParallelConfig,
) ([]*DetectionResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if p == nil || p.detector == nil {
		return nil, errors.New("pipeline not initialized")
	}

	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}
	if config.MaxWorkers > len(images) {
		config.MaxWorkers = len(images)
	}

	jobs := make(chan imageJob, len(images))
	results := make(chan imageJobResult, len(images))

	var wg sync.WaitGroup
	for i := 0; i < config.MaxWorkers; i++ {
		wg.Add(1)
		go p.imageWorker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, img := range images {
			select {
			case jobs <- imageJob{index: i, image: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	resultMap := make(map[int]*DetectionResult, len(images))
	errorMap := make(map[int]error, len(images))
	for r := range results {
		resultMap[r.index] = r.result
		errorMap[r.index] = r.err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*DetectionResult, len(images))
	var firstError error
	for i := range images {
		if err := errorMap[i]; err != nil {
			if firstError == nil {
				firstError = fmt.Errorf("image %d: %w", i, err)
			}
			if config.ErrorHandler != nil {
				config.ErrorHandler(i, images[i], err)
			}
		} else {
			ordered[i] = resultMap[i]
		}
	}
	return ordered, firstError
}

// imageWorker processes images from the jobs channel.
func (p *Pipeline) imageWorker(
	ctx context.Context,
	jobs <-chan imageJob,
	results chan<- imageJobResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			result, err := p.ProcessImageContext(ctx, job.image)
			select {
			case results <- imageJobResult{index: job.index, result: result, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
