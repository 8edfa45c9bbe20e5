package detector

import "github.com/fendaq/text-detection-1/internal/utils"

// GenerateAnchors builds the canonical anchor grid for a gridH x gridW
// feature map at the given stride. Anchors are emitted row-major with the
// height variant as the fastest dimension, matching the network's score and
// regression layout. Every anchor has width = stride and is centered on its
// cell's pixel location.
func GenerateAnchors(gridH, gridW, stride int, heights []float64) []utils.Box {
	anchors := make([]utils.Box, 0, gridH*gridW*len(heights))
	halfW := float64(stride) / 2
	for row := range gridH {
		cy := float64(row*stride) + float64(stride)/2
		for col := range gridW {
			cx := float64(col*stride) + float64(stride)/2
			for _, h := range heights {
				anchors = append(anchors, utils.Box{
					MinX: cx - halfW,
					MinY: cy - h/2,
					MaxX: cx + halfW,
					MaxY: cy + h/2,
				})
			}
		}
	}
	return anchors
}
