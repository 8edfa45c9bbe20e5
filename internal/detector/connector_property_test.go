package detector

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
)

func TestConnectProposals_PartitionProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every proposal appears in exactly one chain", prop.ForAll(
		func(proposals []Proposal) bool {
			// Connector operates on NMS output; suppress duplicates first.
			kept := NonMaxSuppression(proposals, 0.3)
			chains := ConnectProposals(kept, DefaultConnectorConfig())

			seen := make(map[Proposal]int)
			total := 0
			for _, chain := range chains {
				if len(chain) == 0 {
					return false
				}
				total += len(chain)
				for _, p := range chain {
					seen[p]++
				}
			}
			if total != len(kept) {
				return false
			}
			for _, count := range seen {
				if count != 1 {
					return false
				}
			}
			return true
		},
		genProposals(),
	))

	properties.TestingRun(t)
}

func TestConnectProposals_Determinism(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("same input yields identical chains", prop.ForAll(
		func(proposals []Proposal) bool {
			kept := NonMaxSuppression(proposals, 0.3)
			a := ConnectProposals(kept, DefaultConnectorConfig())
			b := ConnectProposals(kept, DefaultConnectorConfig())
			if len(a) != len(b) {
				return false
			}
			for i := range a {
				if len(a[i]) != len(b[i]) {
					return false
				}
				for j := range a[i] {
					if a[i][j] != b[i][j] {
						return false
					}
				}
			}
			return true
		},
		genProposals(),
	))

	properties.TestingRun(t)
}
