package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/fendaq/text-detection-1/internal/detector"
)

// ParallelConfig bounds the two worker pools: regions within one image and
// images across a batch. Detection post-processing itself is sequential per
// image; only the network-bound region work fans out.
type ParallelConfig struct {
	RegionWorkers int // Workers for per-image region processing (0 = NumCPU)
	ImageWorkers  int // Workers for cross-image processing (0 = NumCPU)
}

// DefaultParallelConfig returns worker pools sized to the machine.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		RegionWorkers: runtime.NumCPU(),
		ImageWorkers:  runtime.NumCPU(),
	}
}

type regionJob struct {
	region detector.TextRegion
}

type regionOutcome struct {
	index  int
	result *RegionResult
	err    error
}

// processRegions runs rectification + recognition for each region across a
// bounded worker pool and collects survivors keyed by detection index.
func (p *Pipeline) processRegions(ctx context.Context, img image.Image,
	regions []detector.TextRegion,
) (map[int]RegionResult, error) {
	results := make(map[int]RegionResult, len(regions))
	if len(regions) == 0 {
		return results, nil
	}

	workers := p.cfg.Parallel.RegionWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(regions) {
		workers = len(regions)
	}

	if workers == 1 {
		for _, region := range regions {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rr, err := p.processRegion(ctx, img, region)
			if err != nil {
				return nil, err
			}
			if rr != nil {
				results[region.Index] = *rr
			}
		}
		return results, nil
	}

	jobs := make(chan regionJob, len(regions))
	outcomes := make(chan regionOutcome, len(regions))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					outcomes <- regionOutcome{index: job.region.Index, err: err}
					continue
				}
				rr, err := p.processRegion(ctx, img, job.region)
				outcomes <- regionOutcome{index: job.region.Index, result: rr, err: err}
			}
		}()
	}

	for _, region := range regions {
		jobs <- regionJob{region: region}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = outcome.err
			}
			continue
		}
		if outcome.result != nil {
			results[outcome.index] = *outcome.result
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

type imageJob struct {
	index int
	image image.Image
}

type imageOutcome struct {
	index  int
	result *Result
	err    error
}

// ProcessImages processes images sequentially, stopping at the first error.
func (p *Pipeline) ProcessImages(ctx context.Context, images []image.Image) ([]*Result, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	results := make([]*Result, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.ProcessImage(ctx, img)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}
		results[i] = res
	}
	return results, nil
}

// ProcessImagesParallel processes images across a bounded worker pool and
// returns results in input order.
func (p *Pipeline) ProcessImagesParallel(ctx context.Context, images []image.Image) ([]*Result, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	workers := p.cfg.Parallel.ImageWorkers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if len(images) == 1 || workers == 1 {
		return p.ProcessImages(ctx, images)
	}
	if workers > len(images) {
		workers = len(images)
	}

	jobs := make(chan imageJob, len(images))
	outcomes := make(chan imageOutcome, len(images))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					outcomes <- imageOutcome{index: job.index, err: err}
					continue
				}
				res, err := p.ProcessImage(ctx, job.image)
				outcomes <- imageOutcome{index: job.index, result: res, err: err}
			}
		}()
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
		close(outcomes)
	}()

	results := make([]*Result, len(images))
	var firstErr error
	for outcome := range outcomes {
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("image %d: %w", outcome.index, outcome.err)
			}
			continue
		}
		results[outcome.index] = outcome.result
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}
