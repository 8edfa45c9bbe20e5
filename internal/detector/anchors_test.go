package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAnchorsCount(t *testing.T) {
	tests := []struct {
		h, w int
	}{
		{1, 1},
		{3, 5},
		{10, 10},
		{0, 7},
	}
	for _, tt := range tests {
		anchors := GenerateAnchors(tt.h, tt.w, 16, defaultAnchorHeights)
		assert.Len(t, anchors, tt.h*tt.w*AnchorsPerCell)
	}
}

func TestGenerateAnchorsWidthEqualsStride(t *testing.T) {
	anchors := GenerateAnchors(4, 6, 16, defaultAnchorHeights)
	for _, a := range anchors {
		assert.InDelta(t, 16.0, a.Width(), 1e-9)
	}
}

func TestGenerateAnchorsCentering(t *testing.T) {
	anchors := GenerateAnchors(2, 2, 16, defaultAnchorHeights)
	require.Len(t, anchors, 2*2*AnchorsPerCell)

	// First anchor of cell (0,0): centered at (8,8) with height 11.
	a := anchors[0]
	assert.InDelta(t, 8.0, a.CenterX(), 1e-9)
	assert.InDelta(t, 8.0, a.CenterY(), 1e-9)
	assert.InDelta(t, 11.0, a.Height(), 1e-9)

	// First anchor of cell (1,1): centered at (24,24).
	b := anchors[(1*2+1)*AnchorsPerCell]
	assert.InDelta(t, 24.0, b.CenterX(), 1e-9)
	assert.InDelta(t, 24.0, b.CenterY(), 1e-9)
}

func TestGenerateAnchorsVariantHeights(t *testing.T) {
	anchors := GenerateAnchors(1, 1, 16, defaultAnchorHeights)
	for i, h := range defaultAnchorHeights {
		assert.InDelta(t, h, anchors[i].Height(), 1e-9)
	}
}
