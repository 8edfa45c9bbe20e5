package detector

import (
	"sort"

	"github.com/fendaq/text-detection-1/internal/mempool"
	"github.com/fendaq/text-detection-1/internal/utils"
)

// NonMaxSuppression performs greedy IoU-based suppression: proposals are
// visited in descending score order (ties broken by original index so the
// result is deterministic), each emitted proposal suppresses every remaining
// proposal whose IoU with it exceeds the threshold. The returned slice is in
// emission order. Re-running on its own output is a no-op.
func NonMaxSuppression(proposals []Proposal, iouThreshold float64) []Proposal {
	if len(proposals) <= 1 {
		return proposals
	}

	order := make([]int, len(proposals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		if proposals[order[a]].Score != proposals[order[b]].Score {
			return proposals[order[a]].Score > proposals[order[b]].Score
		}
		return order[a] < order[b]
	})

	suppressed := mempool.GetBool(len(proposals))
	defer mempool.PutBool(suppressed)

	kept := make([]Proposal, 0, len(proposals))
	for pos, i := range order {
		if suppressed[i] {
			continue
		}
		kept = append(kept, proposals[i])
		for _, j := range order[pos+1:] {
			if suppressed[j] {
				continue
			}
			if utils.IoU(proposals[i].Box, proposals[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}
