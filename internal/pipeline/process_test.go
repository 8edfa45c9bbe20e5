package pipeline

import (
	"context"
	"errors"
	"image"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fendaq/text-detection-1/internal/recognizer"
	"github.com/fendaq/text-detection-1/internal/testutil"
)

func testCharset(t *testing.T) *recognizer.Charset {
	t.Helper()
	cs, err := recognizer.NewCharset([]string{"A", "B", "C", "-"})
	require.NoError(t, err)
	return cs
}

// bandPipeline assembles a pipeline whose detection network reports one
// horizontal band and whose recognition network decodes to "AB".
func bandPipeline(t *testing.T) *Pipeline {
	t.Helper()
	detNet := &testutil.StubDetectionNetwork{Out: testutil.BandDetection(2, 4, 0.95)}
	recNet := &testutil.StubRecognitionNetwork{Probs: testutil.PathProbs([]int{0, 0, 3, 1}, 4)}

	p, err := New(detNet, recNet, testCharset(t), DefaultConfig())
	require.NoError(t, err)
	return p
}

// bandImage is sized so the stubbed band's anchors stay clear of clipping.
func bandImage() image.Image {
	return testutil.BandImage(72, 40, image.Rect(0, 0, 64, 16))
}

func TestProcessImageEndToEnd(t *testing.T) {
	p := bandPipeline(t)

	res, err := p.ProcessImage(context.Background(), bandImage())
	require.NoError(t, err)

	assert.Equal(t, 72, res.Width)
	assert.Equal(t, 40, res.Height)
	require.Len(t, res.Regions, 1)

	rr, ok := res.Regions[0]
	require.True(t, ok, "region should be keyed by detection index 0")
	assert.Equal(t, "AB", rr.Text)
	assert.InDelta(t, 0.9, rr.Confidence, 1e-6)
	assert.InDelta(t, 0.0, rr.Region.Box.MinX, 1e-6)
	assert.InDelta(t, 64.0, rr.Region.Box.MaxX, 1e-6)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(p.metrics.ImagesProcessed))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(p.metrics.RegionsDetected))
}

func TestProcessImageEmptyDecodeDropsRegion(t *testing.T) {
	detNet := &testutil.StubDetectionNetwork{Out: testutil.BandDetection(2, 4, 0.95)}
	// All timesteps decode to blank.
	recNet := &testutil.StubRecognitionNetwork{Probs: testutil.PathProbs([]int{3, 3, 3}, 4)}
	p, err := New(detNet, recNet, testCharset(t), DefaultConfig())
	require.NoError(t, err)

	res, err := p.ProcessImage(context.Background(), bandImage())
	require.NoError(t, err)
	assert.Empty(t, res.Regions)
	assert.Equal(t, 1.0,
		promtestutil.ToFloat64(p.metrics.RegionsDropped.WithLabelValues(DropEmptyDecode)))
}

func TestProcessImageNoRegions(t *testing.T) {
	detNet := &testutil.StubDetectionNetwork{Out: testutil.BandDetection(2, 4, 0.1)} // below threshold
	recNet := &testutil.StubRecognitionNetwork{Probs: testutil.PathProbs([]int{0}, 4)}
	p, err := New(detNet, recNet, testCharset(t), DefaultConfig())
	require.NoError(t, err)

	res, err := p.ProcessImage(context.Background(), bandImage())
	require.NoError(t, err)
	assert.Empty(t, res.Regions)
}

func TestProcessImageRecognitionErrorPropagates(t *testing.T) {
	detNet := &testutil.StubDetectionNetwork{Out: testutil.BandDetection(2, 4, 0.95)}
	wantErr := errors.New("recognition session failure")
	recNet := &testutil.StubRecognitionNetwork{Err: wantErr}
	p, err := New(detNet, recNet, testCharset(t), DefaultConfig())
	require.NoError(t, err)

	_, err = p.ProcessImage(context.Background(), bandImage())
	assert.ErrorIs(t, err, wantErr)
}

func TestProcessImageDetectionErrorPropagates(t *testing.T) {
	detNet := &testutil.StubDetectionNetwork{Err: errors.New("detection session failure")}
	recNet := &testutil.StubRecognitionNetwork{Probs: testutil.PathProbs([]int{0}, 4)}
	p, err := New(detNet, recNet, testCharset(t), DefaultConfig())
	require.NoError(t, err)

	_, err = p.ProcessImage(context.Background(), bandImage())
	assert.ErrorContains(t, err, "detection session failure")
}

func TestProcessImageNilImage(t *testing.T) {
	p := bandPipeline(t)
	_, err := p.ProcessImage(context.Background(), nil)
	assert.Error(t, err)
}

func TestProcessImageCancelledContext(t *testing.T) {
	p := bandPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.ProcessImage(ctx, bandImage())
	assert.ErrorIs(t, err, context.Canceled)
}
