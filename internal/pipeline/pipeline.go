// Package pipeline wires the detection and recognition stages into a
// per-image orchestrator with a silent-drop partial-failure policy.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fendaq/text-detection-1/internal/detector"
	"github.com/fendaq/text-detection-1/internal/models"
	"github.com/fendaq/text-detection-1/internal/onnx"
	"github.com/fendaq/text-detection-1/internal/recognizer"
	"github.com/fendaq/text-detection-1/internal/rectify"
)

// Config holds configuration for the pipeline and its components.
type Config struct {
	ModelsDir string

	DetectionModelPath   string
	RecognitionModelPath string
	DictionaryPath       string

	Detector   detector.Config
	Rectify    rectify.Config
	Recognizer recognizer.Config

	NumThreads int // CPU threads per ONNX session (0 = auto)
	GPU        onnx.GPUConfig

	Parallel ParallelConfig
}

// DefaultConfig returns a pipeline config with component defaults.
func DefaultConfig() Config {
	return Config{
		ModelsDir:  models.GetModelsDir(""),
		Detector:   detector.DefaultConfig(),
		Rectify:    rectify.DefaultConfig(),
		Recognizer: recognizer.DefaultConfig(),
		NumThreads: 0,
		GPU:        onnx.DefaultGPUConfig(),
		Parallel:   DefaultParallelConfig(),
	}
}

// resolvePaths fills in model and dictionary paths from the models dir
// where no explicit override is set.
func (c *Config) resolvePaths() {
	if c.DetectionModelPath == "" {
		c.DetectionModelPath = models.GetDetectionModelPath(c.ModelsDir)
	}
	if c.RecognitionModelPath == "" {
		c.RecognitionModelPath = models.GetRecognitionModelPath(c.ModelsDir)
	}
	if c.DictionaryPath == "" {
		c.DictionaryPath = models.GetDictionaryPath(c.ModelsDir, "")
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg Config
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// NewBuilderFrom creates a builder seeded with an existing configuration,
// for callers that assemble a Config elsewhere (e.g. the file loader).
func NewBuilderFrom(cfg Config) *Builder { return &Builder{cfg: cfg} }

// WithModelsDir sets the directory models and the dictionary are resolved
// from.
func (b *Builder) WithModelsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ModelsDir = dir
	}
	return b
}

// WithDetectionModelPath overrides the detection model path directly.
func (b *Builder) WithDetectionModelPath(path string) *Builder {
	if path != "" {
		b.cfg.DetectionModelPath = path
	}
	return b
}

// WithRecognitionModelPath overrides the recognition model path directly.
func (b *Builder) WithRecognitionModelPath(path string) *Builder {
	if path != "" {
		b.cfg.RecognitionModelPath = path
	}
	return b
}

// WithDictionaryPath overrides the dictionary path directly.
func (b *Builder) WithDictionaryPath(path string) *Builder {
	if path != "" {
		b.cfg.DictionaryPath = path
	}
	return b
}

// WithScoreThreshold sets the proposal confidence cutoff.
func (b *Builder) WithScoreThreshold(t float64) *Builder {
	b.cfg.Detector.ScoreThreshold = t
	return b
}

// WithNMSThreshold sets the IoU threshold for non-max suppression.
func (b *Builder) WithNMSThreshold(t float64) *Builder {
	b.cfg.Detector.NMSThreshold = t
	return b
}

// WithConnector replaces the line-chaining configuration.
func (b *Builder) WithConnector(cfg detector.ConnectorConfig) *Builder {
	b.cfg.Detector.Connector = cfg
	return b
}

// WithLooseCrop toggles margin expansion around region crops.
func (b *Builder) WithLooseCrop(loose bool) *Builder {
	b.cfg.Rectify.LooseCrop = loose
	return b
}

// WithImageHeight sets the strip height fed to the recognition model.
func (b *Builder) WithImageHeight(h int) *Builder {
	if h > 0 {
		b.cfg.Recognizer.ImageHeight = h
	}
	return b
}

// WithBlankIndex overrides the CTC blank class index.
func (b *Builder) WithBlankIndex(idx int) *Builder {
	b.cfg.Recognizer.BlankIndex = idx
	return b
}

// WithThreads sets the CPU thread count per ONNX session.
func (b *Builder) WithThreads(n int) *Builder {
	if n >= 0 {
		b.cfg.NumThreads = n
	}
	return b
}

// WithGPU toggles CUDA acceleration for both sessions.
func (b *Builder) WithGPU(enabled bool) *Builder {
	b.cfg.GPU.UseGPU = enabled
	return b
}

// WithGPUDevice selects the CUDA device.
func (b *Builder) WithGPUDevice(deviceID int) *Builder {
	if deviceID >= 0 {
		b.cfg.GPU.DeviceID = deviceID
	}
	return b
}

// WithRegionWorkers bounds the per-image region worker pool.
func (b *Builder) WithRegionWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Parallel.RegionWorkers = n
	}
	return b
}

// WithImageWorkers bounds the cross-image worker pool.
func (b *Builder) WithImageWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Parallel.ImageWorkers = n
	}
	return b
}

// Config returns a copy of the builder's configuration.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that model files exist and the configuration is sane.
func (b *Builder) Validate() error {
	b.cfg.resolvePaths()

	if err := b.cfg.Detector.Validate(); err != nil {
		return fmt.Errorf("detector config: %w", err)
	}
	if b.cfg.Recognizer.ImageHeight <= 0 {
		return errors.New("recognizer image height must be > 0")
	}
	if err := b.cfg.GPU.Validate(); err != nil {
		return fmt.Errorf("gpu config: %w", err)
	}
	if _, err := os.Stat(b.cfg.DetectionModelPath); err != nil {
		return fmt.Errorf("detection model not found: %s", b.cfg.DetectionModelPath)
	}
	if _, err := os.Stat(b.cfg.RecognitionModelPath); err != nil {
		return fmt.Errorf("recognition model not found: %s", b.cfg.RecognitionModelPath)
	}
	if _, err := os.Stat(b.cfg.DictionaryPath); err != nil {
		return fmt.Errorf("dictionary not found: %s", b.cfg.DictionaryPath)
	}
	return nil
}

// Pipeline runs detection, rectification and recognition per image.
type Pipeline struct {
	cfg     Config
	det     *detector.Detector
	rec     *recognizer.Recognizer
	metrics *Metrics

	closers []io.Closer
}

// Build initializes the pipeline with ONNX-backed networks.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	detSession, err := onnx.NewDetectionSession(onnx.SessionConfig{
		ModelPath:  b.cfg.DetectionModelPath,
		NumThreads: b.cfg.NumThreads,
		GPU:        b.cfg.GPU,
	})
	if err != nil {
		return nil, fmt.Errorf("init detection session: %w", err)
	}
	recSession, err := onnx.NewRecognitionSession(onnx.SessionConfig{
		ModelPath:  b.cfg.RecognitionModelPath,
		NumThreads: b.cfg.NumThreads,
		GPU:        b.cfg.GPU,
	})
	if err != nil {
		_ = detSession.Close()
		return nil, fmt.Errorf("init recognition session: %w", err)
	}

	charset, err := recognizer.LoadCharset(b.cfg.DictionaryPath)
	if err != nil {
		_ = detSession.Close()
		_ = recSession.Close()
		return nil, fmt.Errorf("load dictionary: %w", err)
	}

	p, err := New(detSession, recSession, charset, b.cfg)
	if err != nil {
		_ = detSession.Close()
		_ = recSession.Close()
		return nil, err
	}
	p.closers = append(p.closers, detSession, recSession)
	return p, nil
}

// New assembles a pipeline from already-constructed network collaborators.
// Used directly in tests with stub networks; Build is the ONNX-backed path.
func New(detNet detector.Network, recNet recognizer.Network,
	charset *recognizer.Charset, cfg Config,
) (*Pipeline, error) {
	det, err := detector.New(detNet, cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("init detector: %w", err)
	}
	rec, err := recognizer.New(recNet, charset, cfg.Recognizer)
	if err != nil {
		return nil, fmt.Errorf("init recognizer: %w", err)
	}
	return &Pipeline{
		cfg:     cfg,
		det:     det,
		rec:     rec,
		metrics: NewMetrics(),
	}, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Metrics returns the pipeline's metric set for host registration.
func (p *Pipeline) Metrics() *Metrics { return p.metrics }

// Close releases the underlying sessions, if the pipeline owns any.
func (p *Pipeline) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}
