// Package detector implements the geometric post-processing that turns raw
// detection-network tensors into oriented text regions: anchor generation,
// regression decoding, confidence/size filtering, non-max suppression,
// line chaining and quadrilateral fitting.
package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// Detector wraps a detection network with the post-processing pipeline.
type Detector struct {
	cfg Config
	net Network
}

// New creates a Detector around the given network collaborator.
func New(net Network, cfg Config) (*Detector, error) {
	if net == nil {
		return nil, errors.New("detection network is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid detector config: %w", err)
	}
	return &Detector{cfg: cfg, net: net}, nil
}

// Config returns a copy of the detector's configuration.
func (d *Detector) Config() Config { return d.cfg }

// Detect runs the network on img and post-processes its output into text
// regions, ordered and indexed by detection emission order. Degenerate
// chains are dropped silently; their indices are consumed and not reused.
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]TextRegion, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := d.net.Detect(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("detection network: %w", err)
	}
	if err := raw.Validate(); err != nil {
		return nil, fmt.Errorf("detection network output: %w", err)
	}

	bounds := img.Bounds()
	regions := d.PostProcess(raw, bounds.Dx(), bounds.Dy())
	slog.Debug("detection complete",
		"grid_h", raw.GridH, "grid_w", raw.GridW, "regions", len(regions))
	return regions, nil
}

// PostProcess turns validated raw detection tensors into text regions for an
// image of the given pixel dimensions. The stages run strictly in sequence:
// anchors, box decoding, filtering, NMS, line chaining, quad fitting. NMS and
// the connector are global over the proposal set and intentionally
// single-threaded.
func (d *Detector) PostProcess(raw *RawDetection, imgW, imgH int) []TextRegion {
	anchors := GenerateAnchors(raw.GridH, raw.GridW, d.cfg.Stride, d.cfg.AnchorHeights)
	boxes := DecodeBoxes(anchors, raw.Regressions, imgW, imgH)
	proposals := FilterProposals(boxes, raw.Scores, d.cfg.ScoreThreshold, d.cfg.MinSize)
	kept := NonMaxSuppression(proposals, d.cfg.NMSThreshold)
	chains := ConnectProposals(kept, d.cfg.Connector)

	regions := make([]TextRegion, 0, len(chains))
	for idx, chain := range chains {
		region, ok := FitQuad(chain)
		if !ok {
			slog.Debug("dropping degenerate chain", "index", idx, "proposals", len(chain))
			continue
		}
		region.Index = idx
		regions = append(regions, region)
	}
	return regions
}
