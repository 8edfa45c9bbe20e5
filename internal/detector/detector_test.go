package detector

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNetwork returns a canned detection output regardless of the image.
type stubNetwork struct {
	out *RawDetection
	err error
}

func (s *stubNetwork) Detect(_ context.Context, _ image.Image) (*RawDetection, error) {
	return s.out, s.err
}

// bandDetection emits high scores for the height-16 anchor variant across
// all columns of the first grid row, simulating one horizontal text band.
func bandDetection(gridH, gridW int) *RawDetection {
	n := gridH * gridW * AnchorsPerCell
	raw := &RawDetection{
		Scores:      make([]float32, n),
		Regressions: make([]float32, 2*n),
		GridH:       gridH,
		GridW:       gridW,
	}
	for col := range gridW {
		idx := col*AnchorsPerCell + 1 // variant 1 = height 16
		raw.Scores[idx] = 0.95
	}
	return raw
}

func TestDetectorSingleBand(t *testing.T) {
	net := &stubNetwork{out: bandDetection(2, 4)}
	det, err := New(net, DefaultConfig())
	require.NoError(t, err)

	// 72x40 keeps the 4x16 px grid span clear of the clipping border.
	img := image.NewNRGBA(image.Rect(0, 0, 72, 40))
	regions, err := det.Detect(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, regions, 1)

	r := regions[0]
	assert.Equal(t, 0, r.Index)
	// The band's anchors span x in [0,64] and y in [0,16].
	assert.InDelta(t, 0.0, r.Box.MinX, 1e-6)
	assert.InDelta(t, 64.0, r.Box.MaxX, 1e-6)
	assert.InDelta(t, 0.0, r.Box.MinY, 1e-6)
	assert.InDelta(t, 16.0, r.Box.MaxY, 1e-6)
	assert.InDelta(t, 0.95, r.Confidence, 1e-6)
	assert.InDelta(t, 0.0, r.TiltAngle(), 1e-6)
}

func TestDetectorMalformedOutputIsFatal(t *testing.T) {
	raw := bandDetection(2, 4)
	raw.Scores = raw.Scores[:10] // wrong shape: contract violation
	net := &stubNetwork{out: raw}
	det, err := New(net, DefaultConfig())
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	_, err = det.Detect(context.Background(), img)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score tensor")
}

func TestDetectorNetworkErrorPropagates(t *testing.T) {
	net := &stubNetwork{err: errors.New("session failure")}
	det, err := New(net, DefaultConfig())
	require.NoError(t, err)

	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	_, err = det.Detect(context.Background(), img)
	assert.ErrorContains(t, err, "session failure")
}

func TestDetectorNilImage(t *testing.T) {
	det, err := New(&stubNetwork{out: bandDetection(1, 1)}, DefaultConfig())
	require.NoError(t, err)
	_, err = det.Detect(context.Background(), nil)
	assert.Error(t, err)
}

func TestDetectorContextCancelled(t *testing.T) {
	det, err := New(&stubNetwork{out: bandDetection(1, 1)}, DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	_, err = det.Detect(ctx, img)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDetectorValidation(t *testing.T) {
	_, err := New(nil, DefaultConfig())
	assert.Error(t, err)

	bad := DefaultConfig()
	bad.Stride = 0
	_, err = New(&stubNetwork{}, bad)
	assert.Error(t, err)

	bad = DefaultConfig()
	bad.AnchorHeights = []float64{16}
	_, err = New(&stubNetwork{}, bad)
	assert.Error(t, err)
}

func TestRawDetectionValidate(t *testing.T) {
	raw := bandDetection(3, 3)
	require.NoError(t, raw.Validate())

	raw.Regressions = raw.Regressions[:5]
	assert.Error(t, raw.Validate())

	var nilRaw *RawDetection
	assert.Error(t, nilRaw.Validate())

	zero := &RawDetection{}
	assert.Error(t, zero.Validate())
}
