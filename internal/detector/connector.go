package detector

import (
	"errors"

	"github.com/fendaq/text-detection-1/internal/utils"
)

// ConnectorConfig holds the compatibility heuristics used when grouping
// proposals into text lines. The defaults follow the CTPN connector; all
// three are empirical and should be tuned against representative fixtures.
type ConnectorConfig struct {
	MaxHorizontalGap    float64 // Max gap in pixels between a box's right edge and its successor's left edge (default: 50)
	MinVerticalOverlap  float64 // Min vertical extent overlap relative to the smaller height (default: 0.7)
	MinHeightSimilarity float64 // Min height ratio min/max between neighbors (default: 0.7)
}

// DefaultConnectorConfig returns the default line-connector heuristics.
func DefaultConnectorConfig() ConnectorConfig {
	return ConnectorConfig{
		MaxHorizontalGap:    50,
		MinVerticalOverlap:  0.7,
		MinHeightSimilarity: 0.7,
	}
}

// Validate checks connector thresholds.
func (c ConnectorConfig) Validate() error {
	if c.MaxHorizontalGap <= 0 {
		return errors.New("max horizontal gap must be > 0")
	}
	if c.MinVerticalOverlap <= 0 || c.MinVerticalOverlap > 1 {
		return errors.New("min vertical overlap must be in (0, 1]")
	}
	if c.MinHeightSimilarity <= 0 || c.MinHeightSimilarity > 1 {
		return errors.New("min height similarity must be in (0, 1]")
	}
	return nil
}

// linkEligible reports whether b can directly follow a on the same text line.
func linkEligible(a, b Proposal, cfg ConnectorConfig) bool {
	if b.Box.MinX <= a.Box.MinX {
		return false
	}
	if b.Box.MinX-a.Box.MaxX > cfg.MaxHorizontalGap {
		return false
	}
	if utils.VerticalOverlap(a.Box, b.Box) < cfg.MinVerticalOverlap {
		return false
	}
	return utils.HeightSimilarity(a.Box, b.Box) >= cfg.MinHeightSimilarity
}

// pairScore ranks candidate neighbors: higher vertical overlap and smaller
// horizontal gap win.
func pairScore(a, b Proposal, cfg ConnectorConfig) float64 {
	gap := b.Box.MinX - a.Box.MaxX
	if gap < 0 {
		gap = 0
	}
	return utils.VerticalOverlap(a.Box, b.Box) + (1 - gap/cfg.MaxHorizontalGap)
}

// ConnectProposals groups NMS-surviving proposals into left-to-right chains,
// each chain representing one physical text line. For every proposal the best
// right neighbor and best left neighbor are computed; an edge is kept only
// when both ends agree (mutual best match), which prevents one proposal from
// being claimed by two chains. Edges always point strictly rightward, so the
// agreed edges form acyclic simple paths.
//
// Every input proposal lands in exactly one chain; proposals with no eligible
// neighbor form valid singleton chains. Chains are emitted in the order their
// first-visited member appears in the input (NMS emission order), members
// ordered left to right.
func ConnectProposals(proposals []Proposal, cfg ConnectorConfig) [][]Proposal {
	n := len(proposals)
	if n == 0 {
		return nil
	}

	bestRight := make([]int, n)
	bestLeft := make([]int, n)
	for i := range n {
		bestRight[i] = -1
		bestLeft[i] = -1
	}

	for i := range n {
		var bestScore float64
		for j := range n {
			if i == j || !linkEligible(proposals[i], proposals[j], cfg) {
				continue
			}
			s := pairScore(proposals[i], proposals[j], cfg)
			if bestRight[i] == -1 || s > bestScore {
				bestRight[i] = j
				bestScore = s
			}
		}
	}
	for j := range n {
		var bestScore float64
		for i := range n {
			if i == j || !linkEligible(proposals[i], proposals[j], cfg) {
				continue
			}
			s := pairScore(proposals[i], proposals[j], cfg)
			if bestLeft[j] == -1 || s > bestScore {
				bestLeft[j] = i
				bestScore = s
			}
		}
	}

	// Keep only mutually agreed edges.
	next := make([]int, n)
	prev := make([]int, n)
	for i := range n {
		next[i] = -1
		prev[i] = -1
	}
	for i := range n {
		j := bestRight[i]
		if j >= 0 && bestLeft[j] == i {
			next[i] = j
			prev[j] = i
		}
	}

	assigned := make([]bool, n)
	chains := make([][]Proposal, 0, n)
	for i := range n {
		if assigned[i] {
			continue
		}
		// Walk to the leftmost member of i's chain, then collect rightward.
		start := i
		for prev[start] != -1 {
			start = prev[start]
		}
		chain := make([]Proposal, 0, 4)
		for k := start; k != -1; k = next[k] {
			assigned[k] = true
			chain = append(chain, proposals[k])
		}
		chains = append(chains, chain)
	}
	return chains
}
