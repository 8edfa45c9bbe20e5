package pipeline

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessImagesSequential(t *testing.T) {
	p := bandPipeline(t)
	images := []image.Image{bandImage(), bandImage(), bandImage()}

	results, err := p.ProcessImages(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		require.NotNil(t, res)
		assert.Len(t, res.Regions, 1)
	}
}

func TestProcessImagesEmptyInput(t *testing.T) {
	p := bandPipeline(t)
	_, err := p.ProcessImages(context.Background(), nil)
	assert.Error(t, err)
}

func TestProcessImagesParallelOrdered(t *testing.T) {
	p := bandPipeline(t)
	images := make([]image.Image, 8)
	for i := range images {
		images[i] = bandImage()
	}

	results, err := p.ProcessImagesParallel(context.Background(), images)
	require.NoError(t, err)
	require.Len(t, results, 8)
	for i, res := range results {
		require.NotNil(t, res, "result %d missing", i)
		assert.Equal(t, 72, res.Width)
		assert.Len(t, res.Regions, 1)
	}
}

func TestProcessImagesParallelSingleImageFallsBack(t *testing.T) {
	p := bandPipeline(t)
	results, err := p.ProcessImagesParallel(context.Background(), []image.Image{bandImage()})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Len(t, results[0].Regions, 1)
}

func TestProcessImagesParallelCancelled(t *testing.T) {
	p := bandPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ProcessImagesParallel(ctx, []image.Image{bandImage(), bandImage()})
	assert.Error(t, err)
}

func TestRegionWorkerPoolMatchesSequential(t *testing.T) {
	seqCfg := DefaultConfig()
	seqCfg.Parallel.RegionWorkers = 1
	parCfg := DefaultConfig()
	parCfg.Parallel.RegionWorkers = 4

	for _, cfg := range []Config{seqCfg, parCfg} {
		p := bandPipeline(t)
		p.cfg = cfg
		res, err := p.ProcessImage(context.Background(), bandImage())
		require.NoError(t, err)
		require.Len(t, res.Regions, 1)
		assert.Equal(t, "AB", res.Regions[0].Text)
	}
}

func TestDefaultParallelConfig(t *testing.T) {
	cfg := DefaultParallelConfig()
	assert.Positive(t, cfg.RegionWorkers)
	assert.Positive(t, cfg.ImageWorkers)
}
