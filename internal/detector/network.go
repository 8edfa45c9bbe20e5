package detector

import (
	"context"
	"fmt"
	"image"
)

// RawDetection holds the raw tensors produced by a detection network for one
// image: a foreground score per anchor and a (Δcenter_y, Δlog_height)
// regression pair per anchor. Scores are laid out row-major over the feature
// grid with the anchor variant as the fastest dimension; Regressions
// interleave the two offsets per anchor in the same order.
type RawDetection struct {
	Scores      []float32 // len = GridH*GridW*AnchorsPerCell
	Regressions []float32 // len = 2*GridH*GridW*AnchorsPerCell
	GridH       int
	GridW       int
}

// Validate checks the tensor shapes against the grid dimensions. A mismatch
// indicates a contract violation by the network and is fatal.
func (r *RawDetection) Validate() error {
	if r == nil {
		return fmt.Errorf("detection output is nil")
	}
	if r.GridH <= 0 || r.GridW <= 0 {
		return fmt.Errorf("invalid feature grid %dx%d", r.GridH, r.GridW)
	}
	n := r.GridH * r.GridW * AnchorsPerCell
	if len(r.Scores) != n {
		return fmt.Errorf("score tensor length %d != %d for grid %dx%d",
			len(r.Scores), n, r.GridH, r.GridW)
	}
	if len(r.Regressions) != 2*n {
		return fmt.Errorf("regression tensor length %d != %d for grid %dx%d",
			len(r.Regressions), 2*n, r.GridH, r.GridW)
	}
	return nil
}

// Network is the detection-stage collaborator: a function from an image to
// per-anchor scores and regressions. Implementations must be safe for
// concurrent use.
type Network interface {
	Detect(ctx context.Context, img image.Image) (*RawDetection, error)
}
