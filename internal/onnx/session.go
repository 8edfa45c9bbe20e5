package onnx

import (
	"context"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/yalue/onnxruntime_go"

	"github.com/fendaq/text-detection-1/internal/detector"
	"github.com/fendaq/text-detection-1/internal/recognizer"
)

// SessionConfig holds settings shared by both model sessions.
type SessionConfig struct {
	ModelPath  string
	NumThreads int // 0 for auto
	GPU        GPUConfig
}

// Validate checks the session configuration.
func (c SessionConfig) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if _, err := os.Stat(c.ModelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", c.ModelPath)
	}
	return c.GPU.Validate()
}

// modelInfo fetches and checks the model's input/output signature.
func modelInfo(modelPath string, wantOutputs int) ([]onnxruntime_go.InputOutputInfo, []onnxruntime_go.InputOutputInfo, error) {
	inputs, outputs, err := onnxruntime_go.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, nil, fmt.Errorf("expected 1 input, got %d", len(inputs))
	}
	if len(outputs) != wantOutputs {
		return nil, nil, fmt.Errorf("expected %d outputs, got %d", wantOutputs, len(outputs))
	}
	if len(inputs[0].Dimensions) != 4 {
		return nil, nil, fmt.Errorf("expected 4D input tensor, got %dD", len(inputs[0].Dimensions))
	}
	return inputs, outputs, nil
}

// createSession builds a dynamic session for the given input/output names.
func createSession(cfg SessionConfig, inputNames, outputNames []string) (*onnxruntime_go.DynamicAdvancedSession, error) {
	opts, err := onnxruntime_go.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	defer func() {
		if derr := opts.Destroy(); derr != nil {
			fmt.Fprintf(os.Stderr, "Failed to destroy session options: %v\n", derr)
		}
	}()

	if err := cfg.GPU.ConfigureSession(opts); err != nil {
		return nil, fmt.Errorf("failed to configure GPU: %w", err)
	}
	if cfg.NumThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.NumThreads); err != nil {
			return nil, fmt.Errorf("failed to set thread count: %w", err)
		}
	}

	session, err := onnxruntime_go.NewDynamicAdvancedSession(cfg.ModelPath, inputNames, outputNames, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}
	return session, nil
}

// run executes the session on one input tensor and returns the raw output
// values. The caller owns the outputs and must Destroy them.
func run(session *onnxruntime_go.DynamicAdvancedSession, t Tensor, numOutputs int) ([]onnxruntime_go.Value, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid input tensor: %w", err)
	}
	input, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(t.Shape...), t.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() {
		if derr := input.Destroy(); derr != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", derr)
		}
	}()

	outputs := make([]onnxruntime_go.Value, numOutputs)
	if err := session.Run([]onnxruntime_go.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return outputs, nil
}

func destroyValues(values []onnxruntime_go.Value) {
	for _, v := range values {
		if v == nil {
			continue
		}
		if err := v.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying output tensor: %v\n", err)
		}
	}
}

// floatOutput type-asserts an output value and returns its data and shape.
func floatOutput(v onnxruntime_go.Value) ([]float32, []int64, error) {
	ft, ok := v.(*onnxruntime_go.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("expected float32 tensor, got %T", v)
	}
	return ft.GetData(), v.GetShape(), nil
}

// DetectionSession runs the detection model. The model takes one
// [1, 3, H, W] image tensor and produces two NCHW maps over the feature
// grid: per-anchor text scores ([1, K, gh, gw]) and vertical regressions
// ([1, 2K, gh, gw]).
type DetectionSession struct {
	cfg     SessionConfig
	session *onnxruntime_go.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewDetectionSession loads the detection model and prepares a session.
func NewDetectionSession(cfg SessionConfig) (*DetectionSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := EnsureInitialized(cfg.GPU.UseGPU); err != nil {
		return nil, err
	}
	inputs, outputs, err := modelInfo(cfg.ModelPath, 2)
	if err != nil {
		return nil, err
	}
	session, err := createSession(cfg,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name, outputs[1].Name})
	if err != nil {
		return nil, err
	}
	return &DetectionSession{cfg: cfg, session: session}, nil
}

// Detect implements detector.Network.
func (s *DetectionSession) Detect(ctx context.Context, img image.Image) (*detector.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input, err := ImageToDetectionTensor(img)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	defer input.Release()

	s.mu.Lock()
	outputs, err := run(s.session, input, 2)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer destroyValues(outputs)

	scoreData, scoreShape, err := floatOutput(outputs[0])
	if err != nil {
		return nil, fmt.Errorf("score output: %w", err)
	}
	regData, regShape, err := floatOutput(outputs[1])
	if err != nil {
		return nil, fmt.Errorf("regression output: %w", err)
	}
	return rawDetectionFromNCHW(scoreData, scoreShape, regData, regShape)
}

// Close releases the underlying session.
func (s *DetectionSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// rawDetectionFromNCHW reorders the model's channel-major maps into the
// row-major, anchor-variant-fastest layout the post-processing expects.
func rawDetectionFromNCHW(scores []float32, scoreShape []int64,
	regs []float32, regShape []int64,
) (*detector.RawDetection, error) {
	if len(scoreShape) != 4 || scoreShape[0] != 1 {
		return nil, fmt.Errorf("unexpected score shape %v", scoreShape)
	}
	if len(regShape) != 4 || regShape[0] != 1 {
		return nil, fmt.Errorf("unexpected regression shape %v", regShape)
	}
	k := int(scoreShape[1])
	gh := int(scoreShape[2])
	gw := int(scoreShape[3])
	if k != detector.AnchorsPerCell {
		return nil, fmt.Errorf("score channels %d != %d anchors per cell", k, detector.AnchorsPerCell)
	}
	if int(regShape[1]) != 2*k || int(regShape[2]) != gh || int(regShape[3]) != gw {
		return nil, fmt.Errorf("regression shape %v does not match score shape %v", regShape, scoreShape)
	}
	n := gh * gw
	if len(scores) != k*n || len(regs) != 2*k*n {
		return nil, fmt.Errorf("output data length mismatch for grid %dx%d", gh, gw)
	}

	raw := &detector.RawDetection{
		Scores:      make([]float32, k*n),
		Regressions: make([]float32, 2*k*n),
		GridH:       gh,
		GridW:       gw,
	}
	for a := range k {
		for y := range gh {
			for x := range gw {
				cell := y*gw + x
				anchor := cell*k + a
				raw.Scores[anchor] = scores[a*n+cell]
				raw.Regressions[2*anchor] = regs[(2*a)*n+cell]
				raw.Regressions[2*anchor+1] = regs[(2*a+1)*n+cell]
			}
		}
	}
	return raw, nil
}

// RecognitionSession runs the recognition model. The model takes one
// [1, 1, H, W] strip tensor and produces a [1, T, C] (or [T, 1, C])
// per-timestep class probability map.
type RecognitionSession struct {
	cfg     SessionConfig
	session *onnxruntime_go.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewRecognitionSession loads the recognition model and prepares a session.
func NewRecognitionSession(cfg SessionConfig) (*RecognitionSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := EnsureInitialized(cfg.GPU.UseGPU); err != nil {
		return nil, err
	}
	inputs, outputs, err := modelInfo(cfg.ModelPath, 1)
	if err != nil {
		return nil, err
	}
	session, err := createSession(cfg, []string{inputs[0].Name}, []string{outputs[0].Name})
	if err != nil {
		return nil, err
	}
	return &RecognitionSession{cfg: cfg, session: session}, nil
}

// Recognize implements recognizer.Network.
func (s *RecognitionSession) Recognize(ctx context.Context, strip image.Image) (*recognizer.Probs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input, err := StripToRecognitionTensor(strip)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	defer input.Release()

	s.mu.Lock()
	outputs, err := run(s.session, input, 1)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer destroyValues(outputs)

	data, shape, err := floatOutput(outputs[0])
	if err != nil {
		return nil, fmt.Errorf("probability output: %w", err)
	}
	return probsFromOutput(data, shape)
}

// Close releases the underlying session.
func (s *RecognitionSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// probsFromOutput interprets a rank-3 output as [T, C] by dropping the
// singleton batch dimension wherever the exporter put it.
func probsFromOutput(data []float32, shape []int64) (*recognizer.Probs, error) {
	if len(shape) != 3 {
		return nil, fmt.Errorf("expected 3D probability tensor, got shape %v", shape)
	}
	var t, c int
	switch {
	case shape[0] == 1: // [1, T, C]
		t, c = int(shape[1]), int(shape[2])
	case shape[1] == 1: // [T, 1, C]
		t, c = int(shape[0]), int(shape[2])
	default:
		return nil, fmt.Errorf("no singleton batch dimension in shape %v", shape)
	}
	out := make([]float32, len(data))
	copy(out, data)
	p := &recognizer.Probs{Data: out, T: t, C: c}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
