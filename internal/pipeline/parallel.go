package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig holds configuration for concurrent document processing.
type ParallelConfig struct {
	MaxWorkers       int                           // number of workers (0 = runtime.NumCPU())
	ProgressCallback ProgressCallback              // optional progress reporting
	ErrorHandler     func(int, image.Image, error) // optional per-document error handler
}

// DefaultParallelConfig returns defaults for concurrent processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers: runtime.NumCPU(),
	}
}

type documentJob struct {
	index int
	image image.Image
}

type documentResult struct {
	index  int
	result *StructuredResult
	err    error
}

// ProcessImagesParallel processes images concurrently using a worker pool.
// Results keep the input order.
func (p *Pipeline) ProcessImagesParallel(images []image.Image, opts Options, config ParallelConfig) ([]*StructuredResult, error) {
	return p.ProcessImagesParallelContext(context.Background(), images, opts, config)
}

// ProcessImagesParallelContext is ProcessImagesParallel with cancellation
// support. Failed documents leave a nil slot; the first error is returned
// alongside the remaining results.
func (p *Pipeline) ProcessImagesParallelContext(ctx context.Context, images []image.Image, opts Options, config ParallelConfig) ([]*StructuredResult, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if p == nil || p.extractor == nil || p.matcher == nil {
		return nil, errors.New("pipeline not initialized")
	}

	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}

	// Sequential is cheaper for a single document or worker.
	if len(images) == 1 || config.MaxWorkers == 1 {
		return p.ProcessImagesContext(ctx, images, opts)
	}

	if config.ProgressCallback != nil {
		config.ProgressCallback.OnStart(len(images))
		defer config.ProgressCallback.OnComplete()
	}

	jobs := make(chan documentJob, len(images))
	results := make(chan documentResult, len(images))

	var wg sync.WaitGroup
	for range config.MaxWorkers {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg, opts)
	}

	go func() {
		defer close(jobs)
		for i, img := range images {
			select {
			case jobs <- documentJob{index: i, image: img}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	resultMap := make(map[int]*StructuredResult)
	errorMap := make(map[int]error)
	processed := 0

	for result := range results {
		resultMap[result.index] = result.result
		errorMap[result.index] = result.err
		processed++

		if config.ProgressCallback != nil {
			config.ProgressCallback.OnProgress(processed, len(images))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*StructuredResult, len(images))
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

func (p *Pipeline) worker(
	ctx context.Context,
	jobs <-chan documentJob,
	results chan<- documentResult,
	wg *sync.WaitGroup,
	opts Options,
) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}

			result, err := p.ProcessImageContext(ctx, job.image, opts)

			select {
			case results <- documentResult{index: job.index, result: result, err: err}:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// ParallelStats holds throughput statistics for a parallel run.
type ParallelStats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	FailedDocuments    int           `json:"failed_documents"`
	WorkerCount        int           `json:"worker_count"`
	TotalDuration      time.Duration `json:"total_duration_ns"`
	AveragePerDocument time.Duration `json:"average_per_document_ns"`
	ThroughputPerSec   float64       `json:"throughput_per_sec"`
}

// CalculateParallelStats summarizes a parallel run.
func CalculateParallelStats(results []*StructuredResult, duration time.Duration, workerCount int) ParallelStats {
	processed := 0
	failed := 0
	for _, result := range results {
		if result != nil {
			processed++
		} else {
			failed++
		}
	}

	var avgPerDocument time.Duration
	var throughput float64
	if processed > 0 && duration > 0 {
		avgPerDocument = duration / time.Duration(processed)
		throughput = float64(processed) / duration.Seconds()
	}

	return ParallelStats{
		TotalDocuments:     len(results),
		ProcessedDocuments: processed,
		FailedDocuments:    failed,
		WorkerCount:        workerCount,
		TotalDuration:      duration,
		AveragePerDocument: avgPerDocument,
		ThroughputPerSec:   throughput,
	}
}
