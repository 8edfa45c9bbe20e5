// Package recognizer turns rectified text strips into strings via a
// recognition network and greedy CTC decoding.
package recognizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// Network is the recognition-stage collaborator: a function from a
// grayscale text strip to a per-timestep character probability matrix.
// Implementations must be safe for concurrent use.
type Network interface {
	Recognize(ctx context.Context, strip image.Image) (*Probs, error)
}

// Config holds configuration for the recognizer.
type Config struct {
	ImageHeight int // Strip height fed to the network (default: 32)
	BlankIndex  int // CTC blank class index; -1 selects the last class
}

// DefaultConfig returns the default recognizer configuration.
func DefaultConfig() Config {
	return Config{
		ImageHeight: 32,
		BlankIndex:  -1,
	}
}

// Result is the decoded output for one strip.
type Result struct {
	Text            string
	Confidence      float64
	CharConfidences []float64
}

// Recognizer wraps a recognition network with preprocessing and decoding.
type Recognizer struct {
	cfg     Config
	net     Network
	charset *Charset
}

// New creates a Recognizer around the given network and charset.
func New(net Network, charset *Charset, cfg Config) (*Recognizer, error) {
	if net == nil {
		return nil, errors.New("recognition network is nil")
	}
	if charset == nil || charset.Size() == 0 {
		return nil, errors.New("charset is empty")
	}
	if cfg.ImageHeight <= 0 {
		return nil, errors.New("image height must be > 0")
	}
	return &Recognizer{cfg: cfg, net: net, charset: charset}, nil
}

// Config returns a copy of the recognizer's configuration.
func (r *Recognizer) Config() Config { return r.cfg }

// Recognize preprocesses the strip, runs the network and decodes the
// probability matrix. An empty Text means "no text recognized" and is not
// an error; callers drop the region.
func (r *Recognizer) Recognize(ctx context.Context, strip image.Image) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	prepared, err := PrepareStrip(strip, r.cfg.ImageHeight)
	if err != nil {
		return Result{}, fmt.Errorf("prepare strip: %w", err)
	}

	probs, err := r.net.Recognize(ctx, prepared)
	if err != nil {
		return Result{}, fmt.Errorf("recognition network: %w", err)
	}
	if err := probs.Validate(); err != nil {
		return Result{}, fmt.Errorf("recognition network output: %w", err)
	}
	if probs.C != r.charset.Size() {
		return Result{}, fmt.Errorf("recognition network output: %d classes != charset size %d",
			probs.C, r.charset.Size())
	}

	text, charProbs := DecodeBestPath(probs, r.charset, r.cfg.BlankIndex)
	slog.Debug("strip decoded", "timesteps", probs.T, "chars", len(charProbs))
	return Result{
		Text:            text,
		Confidence:      SequenceConfidence(charProbs),
		CharConfidences: charProbs,
	}, nil
}
