package testutil

import (
	"context"
	"image"

	"github.com/fendaq/text-detection-1/internal/detector"
	"github.com/fendaq/text-detection-1/internal/recognizer"
)

// StubDetectionNetwork emits a fixed detection output regardless of the
// input image. With Err set it fails instead.
type StubDetectionNetwork struct {
	Out *detector.RawDetection
	Err error
}

// Detect implements detector.Network.
func (s *StubDetectionNetwork) Detect(_ context.Context, _ image.Image) (*detector.RawDetection, error) {
	return s.Out, s.Err
}

// BandDetection builds a raw detection with high scores for the height-16
// anchor variant across every column of the first grid row, simulating a
// single horizontal text band.
func BandDetection(gridH, gridW int, score float32) *detector.RawDetection {
	n := gridH * gridW * detector.AnchorsPerCell
	raw := &detector.RawDetection{
		Scores:      make([]float32, n),
		Regressions: make([]float32, 2*n),
		GridH:       gridH,
		GridW:       gridW,
	}
	for col := range gridW {
		raw.Scores[col*detector.AnchorsPerCell+1] = score
	}
	return raw
}

// StubRecognitionNetwork returns a fixed probability matrix for every
// strip. With Err set it fails instead.
type StubRecognitionNetwork struct {
	Probs *recognizer.Probs
	Err   error
}

// Recognize implements recognizer.Network.
func (s *StubRecognitionNetwork) Recognize(_ context.Context, _ image.Image) (*recognizer.Probs, error) {
	return s.Probs, s.Err
}

// PathProbs builds a [len(path), numClasses] matrix putting probability 0.9
// on each step's class, for driving the CTC decoder down a known path.
func PathProbs(path []int, numClasses int) *recognizer.Probs {
	data := make([]float32, len(path)*numClasses)
	for t, idx := range path {
		for j := range numClasses {
			data[t*numClasses+j] = 0.1 / float32(numClasses-1)
		}
		data[t*numClasses+idx] = 0.9
	}
	return &recognizer.Probs{Data: data, T: len(path), C: numClasses}
}
