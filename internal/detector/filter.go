package detector

import "github.com/fendaq/text-detection-1/internal/utils"

// Proposal is a decoded anchor with its foreground score attached.
type Proposal struct {
	Box   utils.Box
	Score float64
}

// FilterProposals applies the confidence and minimum-size filters to decoded
// boxes. Both filters are boolean masks combined by intersection, so their
// order does not affect the result: a box survives when its score is strictly
// above the threshold and both its width and height reach minSize. Survivors
// keep their anchor order.
func FilterProposals(boxes []utils.Box, scores []float32, scoreThreshold, minSize float64) []Proposal {
	kept := make([]Proposal, 0, len(boxes))
	for i, b := range boxes {
		score := float64(scores[i])
		if score <= scoreThreshold {
			continue
		}
		if b.Width() < minSize || b.Height() < minSize {
			continue
		}
		kept = append(kept, Proposal{Box: b, Score: score})
	}
	return kept
}
