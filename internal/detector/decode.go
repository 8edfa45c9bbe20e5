package detector

import (
	"math"

	"github.com/fendaq/text-detection-1/internal/utils"
)

// DecodeBoxes applies (Δcenter_y, Δlog_height) regressions to anchors and
// clips the result to the image. The detector regresses only the vertical
// center and height; the horizontal extent stays at the anchor's fixed
// stride width. Regressions are interleaved per anchor: [dy0, dh0, dy1, dh1, ...].
//
// Every returned box satisfies 0 <= x1 <= x2 <= imgW-1 and
// 0 <= y1 <= y2 <= imgH-1.
func DecodeBoxes(anchors []utils.Box, regressions []float32, imgW, imgH int) []utils.Box {
	maxX := float64(imgW - 1)
	maxY := float64(imgH - 1)
	boxes := make([]utils.Box, len(anchors))
	for i, a := range anchors {
		ha := a.Height()
		cya := a.CenterY()

		dy := float64(regressions[2*i])
		dh := float64(regressions[2*i+1])

		cy := dy*ha + cya
		h := math.Exp(dh) * ha

		y1 := utils.Clamp(cy-h/2, 0, maxY)
		y2 := utils.Clamp(cy+h/2, 0, maxY)
		x1 := utils.Clamp(a.MinX, 0, maxX)
		x2 := utils.Clamp(a.MaxX, 0, maxX)

		boxes[i] = utils.NewBox(x1, y1, x2, y2)
	}
	return boxes
}
