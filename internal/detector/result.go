package detector

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/fendaq/text-detection-1/internal/utils"
)

// TextRegion is the final detection unit: an oriented quadrilateral with a
// confidence score and the axis-aligned box used for cropping. Index is the
// region's position in detection emission order; indices are not reused
// after downstream drops, so gaps are expected. Immutable once created.
type TextRegion struct {
	Index      int
	Quad       [4]utils.Point // corners in order tl, tr, br, bl
	Box        utils.Box      // axis-aligned bounds over the member proposals
	Confidence float64
}

// TiltAngle returns the signed rotation angle of the region's top edge in
// degrees, measured between the top-left and top-right corners.
func (r TextRegion) TiltAngle() float64 {
	return math.Atan2(r.Quad[1].Y-r.Quad[0].Y, r.Quad[1].X-r.Quad[0].X) * 180 / math.Pi
}

// RegionJSON is a serializable representation of one detected region.
type RegionJSON struct {
	Index      int        `json:"index"`
	Confidence float64    `json:"confidence"`
	Quad       [8]float64 `json:"quad"`
	Box        BoxJSON    `json:"box"`
}

type BoxJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// RegionsToJSON serializes regions for callers that want a wire format; the
// core itself defines none.
func RegionsToJSON(regions []TextRegion) ([]byte, error) {
	out := make([]RegionJSON, 0, len(regions))
	for _, r := range regions {
		rr := RegionJSON{
			Index:      r.Index,
			Confidence: r.Confidence,
			Box: BoxJSON{
				X: int(r.Box.MinX),
				Y: int(r.Box.MinY),
				W: int(r.Box.Width()),
				H: int(r.Box.Height()),
			},
		}
		for i, p := range r.Quad {
			rr.Quad[2*i] = p.X
			rr.Quad[2*i+1] = p.Y
		}
		out = append(out, rr)
	}
	return json.MarshalIndent(out, "", "  ")
}

// ValidateRegions performs basic sanity checks against image dimensions.
func ValidateRegions(regions []TextRegion, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.New("invalid image dimensions for validation")
	}
	for _, r := range regions {
		if r.Box.Width() <= 0 || r.Box.Height() <= 0 {
			return fmt.Errorf("region %d has non-positive box size", r.Index)
		}
		if r.Box.MinX < 0 || r.Box.MinY < 0 || r.Box.MaxX > float64(width) || r.Box.MaxY > float64(height) {
			return fmt.Errorf("region %d box out of bounds", r.Index)
		}
	}
	return nil
}
