package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/fendaq/text-detection-1/internal/detector"
	"github.com/fendaq/text-detection-1/internal/rectify"
)

// RegionResult pairs a detected region with its recognized text.
type RegionResult struct {
	Region     detector.TextRegion `json:"region"`
	Text       string              `json:"text"`
	Confidence float64             `json:"confidence"`
}

// Result is the per-image pipeline output. Regions is keyed by detection
// index; indices of regions dropped during rectification or recognition are
// absent, so gaps are expected.
type Result struct {
	Width   int                  `json:"width"`
	Height  int                  `json:"height"`
	Regions map[int]RegionResult `json:"regions"`

	Processing struct {
		DetectionNs   int64 `json:"detection_ns"`
		RecognitionNs int64 `json:"recognition_ns"`
		TotalNs       int64 `json:"total_ns"`
	} `json:"processing"`
}

// ProcessImage runs detection then per-region rectification and recognition
// on a single image.
func (p *Pipeline) ProcessImage(ctx context.Context, img image.Image) (*Result, error) {
	if p == nil || p.det == nil || p.rec == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	bounds := img.Bounds()
	slog.Debug("starting image processing", "width", bounds.Dx(), "height", bounds.Dy())
	totalStart := time.Now()

	detStart := time.Now()
	regions, err := p.det.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	detNs := time.Since(detStart).Nanoseconds()
	p.metrics.RegionsDetected.Add(float64(len(regions)))
	slog.Debug("detection finished", "regions", len(regions), "duration_ms", detNs/1e6)

	recStart := time.Now()
	results, err := p.processRegions(ctx, img, regions)
	if err != nil {
		return nil, err
	}
	recNs := time.Since(recStart).Nanoseconds()

	out := &Result{
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
		Regions: results,
	}
	out.Processing.DetectionNs = detNs
	out.Processing.RecognitionNs = recNs
	out.Processing.TotalNs = time.Since(totalStart).Nanoseconds()

	p.metrics.ImagesProcessed.Inc()
	p.metrics.ImageDuration.Observe(time.Since(totalStart).Seconds())

	slog.Debug("image processing finished",
		"regions_detected", len(regions),
		"regions_recognized", len(out.Regions),
		"total_ms", out.Processing.TotalNs/1e6)
	return out, nil
}

// processRegion rectifies and recognizes one region. A nil result with a
// nil error means the region was dropped.
func (p *Pipeline) processRegion(ctx context.Context, img image.Image,
	region detector.TextRegion,
) (*RegionResult, error) {
	strip, err := rectify.CropRegion(img, region, p.cfg.Rectify)
	if err != nil {
		if errors.Is(err, rectify.ErrInvalidCrop) {
			slog.Debug("dropping region with invalid crop", "index", region.Index)
			p.metrics.RegionsDropped.WithLabelValues(DropInvalidCrop).Inc()
			return nil, nil
		}
		slog.Warn("region crop failed", "index", region.Index, "error", err)
		p.metrics.RegionsDropped.WithLabelValues(DropCropFailed).Inc()
		return nil, nil
	}

	rec, err := p.rec.Recognize(ctx, strip)
	if err != nil {
		return nil, fmt.Errorf("region %d: %w", region.Index, err)
	}
	if rec.Text == "" {
		slog.Debug("dropping region with empty decode", "index", region.Index)
		p.metrics.RegionsDropped.WithLabelValues(DropEmptyDecode).Inc()
		return nil, nil
	}

	return &RegionResult{
		Region:     region,
		Text:       rec.Text,
		Confidence: rec.Confidence,
	}, nil
}
