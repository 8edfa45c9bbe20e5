package detector

import (
	"testing"

	"github.com/fendaq/text-detection-1/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectProposalsAdjacentChain(t *testing.T) {
	proposals := []Proposal{
		{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9},
		{Box: utils.NewBox(16, 0, 32, 32), Score: 0.85},
		{Box: utils.NewBox(32, 0, 48, 32), Score: 0.8},
		{Box: utils.NewBox(48, 0, 64, 32), Score: 0.95},
	}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())
	require.Len(t, chains, 1)
	require.Len(t, chains[0], 4)
	// Members ordered left to right.
	for i := 1; i < len(chains[0]); i++ {
		assert.Greater(t, chains[0][i].Box.MinX, chains[0][i-1].Box.MinX)
	}
}

func TestConnectProposalsGapBreaksChain(t *testing.T) {
	proposals := []Proposal{
		{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9},
		{Box: utils.NewBox(16, 0, 32, 32), Score: 0.85},
		// 68 px gap to the previous right edge, beyond the 50 px default.
		{Box: utils.NewBox(100, 0, 116, 32), Score: 0.8},
	}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())
	require.Len(t, chains, 2)
}

func TestConnectProposalsVerticalMisalignment(t *testing.T) {
	proposals := []Proposal{
		{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9},
		// Horizontally adjacent but on a different line.
		{Box: utils.NewBox(16, 40, 32, 72), Score: 0.85},
	}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())
	require.Len(t, chains, 2)
	assert.Len(t, chains[0], 1)
	assert.Len(t, chains[1], 1)
}

func TestConnectProposalsHeightMismatch(t *testing.T) {
	proposals := []Proposal{
		{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9},
		// Overlapping vertical extent but four times the height.
		{Box: utils.NewBox(16, 0, 32, 128), Score: 0.85},
	}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())
	require.Len(t, chains, 2)
}

func TestConnectProposalsTwoStackedLines(t *testing.T) {
	proposals := []Proposal{
		{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9},
		{Box: utils.NewBox(20, 0, 36, 32), Score: 0.8},
		{Box: utils.NewBox(0, 40, 16, 72), Score: 0.85},
		{Box: utils.NewBox(20, 40, 36, 72), Score: 0.75},
	}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())
	require.Len(t, chains, 2)
	for _, chain := range chains {
		assert.Len(t, chain, 2)
	}
}

func TestConnectProposalsPartition(t *testing.T) {
	proposals := []Proposal{
		{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9},
		{Box: utils.NewBox(16, 2, 32, 30), Score: 0.8},
		{Box: utils.NewBox(60, 0, 76, 40), Score: 0.7},
		{Box: utils.NewBox(200, 200, 216, 232), Score: 0.95},
	}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())

	total := 0
	for _, chain := range chains {
		assert.NotEmpty(t, chain)
		total += len(chain)
	}
	assert.Equal(t, len(proposals), total)
}

func TestConnectProposalsSingleton(t *testing.T) {
	proposals := []Proposal{{Box: utils.NewBox(0, 0, 16, 32), Score: 0.9}}
	chains := ConnectProposals(proposals, DefaultConnectorConfig())
	require.Len(t, chains, 1)
	assert.Len(t, chains[0], 1)
}

func TestConnectProposalsEmpty(t *testing.T) {
	assert.Nil(t, ConnectProposals(nil, DefaultConnectorConfig()))
}

func TestConnectorConfigValidate(t *testing.T) {
	cfg := DefaultConnectorConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.MaxHorizontalGap = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MinVerticalOverlap = 1.5
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MinHeightSimilarity = 0
	assert.Error(t, bad.Validate())
}
