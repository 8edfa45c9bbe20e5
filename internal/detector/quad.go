package detector

import (
	"math"

	"github.com/fendaq/text-detection-1/internal/utils"
)

// fitLine computes the least-squares line y = k*x + b through the given
// points. Single points and vertical stacks fall back to a horizontal line
// through the mean, which keeps singleton chains valid.
func fitLine(pts []utils.Point) (k, b float64) {
	n := float64(len(pts))
	if n == 0 {
		return 0, math.NaN()
	}
	var sumX, sumY float64
	for _, p := range pts {
		sumX += p.X
		sumY += p.Y
	}
	meanX := sumX / n
	meanY := sumY / n

	var num, den float64
	for _, p := range pts {
		num += (p.X - meanX) * (p.Y - meanY)
		den += (p.X - meanX) * (p.X - meanX)
	}
	if den == 0 {
		return 0, meanY
	}
	k = num / den
	return k, meanY - k*meanX
}

// FitQuad fits a chain of proposals (ordered left to right) to an oriented
// quadrilateral. The tilt comes from a least-squares fit over the member box
// centers; the top and bottom edges are the extremal offsets of the member
// boxes' top-left and bottom-right corners relative to that slope; the left
// and right edges come from the leftmost and rightmost member. For a zero
// tilt chain the quad degenerates to the chain's axis-aligned bounding
// rectangle.
//
// The returned bool is false for degenerate chains (NaN/Inf fit or
// zero-length line); such chains are dropped by the caller, never surfaced
// as errors.
func FitQuad(chain []Proposal) (TextRegion, bool) {
	if len(chain) == 0 {
		return TextRegion{}, false
	}

	x0 := chain[0].Box.MinX
	x1 := chain[0].Box.MaxX
	aabb := chain[0].Box
	centers := make([]utils.Point, len(chain))
	var scoreSum float64
	for i, p := range chain {
		centers[i] = utils.Point{X: p.Box.CenterX(), Y: p.Box.CenterY()}
		x0 = math.Min(x0, p.Box.MinX)
		x1 = math.Max(x1, p.Box.MaxX)
		aabb = aabb.Union(p.Box)
		scoreSum += p.Score
	}
	if x1 <= x0 {
		return TextRegion{}, false
	}

	k, _ := fitLine(centers)

	// Extremal offsets of member tops and bottoms relative to the slope.
	b1 := math.Inf(1)
	b2 := math.Inf(-1)
	for i, p := range chain {
		b1 = math.Min(b1, p.Box.MinY-k*centers[i].X)
		b2 = math.Max(b2, p.Box.MaxY-k*centers[i].X)
	}

	tl := utils.Point{X: x0, Y: k*x0 + b1}
	tr := utils.Point{X: x1, Y: k*x1 + b1}
	bl := utils.Point{X: x0, Y: k*x0 + b2}
	br := utils.Point{X: x1, Y: k*x1 + b2}

	// Shift the short corners perpendicular to the baseline so the quad hugs
	// the tilted line instead of its sheared parallelogram.
	disX := tr.X - tl.X
	disY := tr.Y - tl.Y
	width := math.Hypot(disX, disY)
	if width == 0 {
		return TextRegion{}, false
	}
	perp := (bl.Y - tl.Y) * disY / width
	dx := math.Abs(perp * disX / width)
	dy := math.Abs(perp * disY / width)
	if k < 0 {
		tl.X -= dx
		tl.Y += dy
		br.X += dx
		br.Y -= dy
	} else {
		tr.X += dx
		tr.Y += dy
		bl.X -= dx
		bl.Y -= dy
	}

	quad := [4]utils.Point{tl, tr, br, bl}
	for _, p := range quad {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return TextRegion{}, false
		}
	}

	return TextRegion{
		Quad:       quad,
		Box:        aabb,
		Confidence: scoreSum / float64(len(chain)),
	}, true
}
