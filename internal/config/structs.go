// Package config loads application configuration from YAML files and
// environment variables and maps it onto the pipeline configuration.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/fendaq/text-detection-1/internal/detector"
	"github.com/fendaq/text-detection-1/internal/pipeline"
)

// Config is the file-level application configuration.
type Config struct {
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`

	Detector   DetectorConfig   `mapstructure:"detector" yaml:"detector" json:"detector"`
	Rectify    RectifyConfig    `mapstructure:"rectify" yaml:"rectify" json:"rectify"`
	Recognizer RecognizerConfig `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Parallel   ParallelConfig   `mapstructure:"parallel" yaml:"parallel" json:"parallel"`
	GPU        GPUConfig        `mapstructure:"gpu" yaml:"gpu" json:"gpu"`
}

// DetectorConfig contains detection post-processing settings.
type DetectorConfig struct {
	ModelPath           string  `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	ScoreThreshold      float64 `mapstructure:"score_threshold" yaml:"score_threshold" json:"score_threshold"`
	NMSThreshold        float64 `mapstructure:"nms_threshold" yaml:"nms_threshold" json:"nms_threshold"`
	MaxHorizontalGap    float64 `mapstructure:"max_horizontal_gap" yaml:"max_horizontal_gap" json:"max_horizontal_gap"`
	MinVerticalOverlap  float64 `mapstructure:"min_vertical_overlap" yaml:"min_vertical_overlap" json:"min_vertical_overlap"`
	MinHeightSimilarity float64 `mapstructure:"min_height_similarity" yaml:"min_height_similarity" json:"min_height_similarity"`
	NumThreads          int     `mapstructure:"num_threads" yaml:"num_threads" json:"num_threads"`
}

// RectifyConfig contains region crop settings.
type RectifyConfig struct {
	LooseCrop bool    `mapstructure:"loose_crop" yaml:"loose_crop" json:"loose_crop"`
	MarginX   float64 `mapstructure:"margin_x" yaml:"margin_x" json:"margin_x"`
	MarginY   float64 `mapstructure:"margin_y" yaml:"margin_y" json:"margin_y"`
}

// RecognizerConfig contains recognition settings.
type RecognizerConfig struct {
	ModelPath   string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
	DictPath    string `mapstructure:"dict_path" yaml:"dict_path" json:"dict_path"`
	ImageHeight int    `mapstructure:"image_height" yaml:"image_height" json:"image_height"`
	BlankIndex  int    `mapstructure:"blank_index" yaml:"blank_index" json:"blank_index"`
}

// ParallelConfig contains worker pool settings.
type ParallelConfig struct {
	RegionWorkers int `mapstructure:"region_workers" yaml:"region_workers" json:"region_workers"`
	ImageWorkers  int `mapstructure:"image_workers" yaml:"image_workers" json:"image_workers"`
}

// GPUConfig contains GPU acceleration settings.
type GPUConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Device      int    `mapstructure:"device" yaml:"device" json:"device"`
	MemoryLimit uint64 `mapstructure:"memory_limit" yaml:"memory_limit" json:"memory_limit"`
}

// DefaultConfig returns file-level defaults matching the component defaults.
func DefaultConfig() Config {
	pcfg := pipeline.DefaultConfig()
	return Config{
		ModelsDir: pcfg.ModelsDir,
		LogLevel:  "info",
		Detector: DetectorConfig{
			ScoreThreshold:      pcfg.Detector.ScoreThreshold,
			NMSThreshold:        pcfg.Detector.NMSThreshold,
			MaxHorizontalGap:    pcfg.Detector.Connector.MaxHorizontalGap,
			MinVerticalOverlap:  pcfg.Detector.Connector.MinVerticalOverlap,
			MinHeightSimilarity: pcfg.Detector.Connector.MinHeightSimilarity,
		},
		Rectify: RectifyConfig{
			LooseCrop: pcfg.Rectify.LooseCrop,
			MarginX:   pcfg.Rectify.MarginX,
			MarginY:   pcfg.Rectify.MarginY,
		},
		Recognizer: RecognizerConfig{
			ImageHeight: pcfg.Recognizer.ImageHeight,
			BlankIndex:  pcfg.Recognizer.BlankIndex,
		},
		Parallel: ParallelConfig{
			RegionWorkers: pcfg.Parallel.RegionWorkers,
			ImageWorkers:  pcfg.Parallel.ImageWorkers,
		},
		GPU: GPUConfig{
			Enabled: pcfg.GPU.UseGPU,
			Device:  pcfg.GPU.DeviceID,
		},
	}
}

// Validate checks ranges the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Detector.ScoreThreshold < 0 || c.Detector.ScoreThreshold >= 1 {
		return fmt.Errorf("detector.score_threshold must be in [0, 1), got %g", c.Detector.ScoreThreshold)
	}
	if c.Detector.NMSThreshold <= 0 || c.Detector.NMSThreshold >= 1 {
		return fmt.Errorf("detector.nms_threshold must be in (0, 1), got %g", c.Detector.NMSThreshold)
	}
	if c.Recognizer.ImageHeight <= 0 {
		return fmt.Errorf("recognizer.image_height must be > 0, got %d", c.Recognizer.ImageHeight)
	}
	if c.GPU.Enabled && c.GPU.Device < 0 {
		return fmt.Errorf("gpu.device must be non-negative, got %d", c.GPU.Device)
	}
	return nil
}

// ToPipelineConfig overlays the file configuration onto pipeline defaults.
func (c *Config) ToPipelineConfig() pipeline.Config {
	pcfg := pipeline.DefaultConfig()

	if c.ModelsDir != "" {
		pcfg.ModelsDir = c.ModelsDir
	}
	pcfg.DetectionModelPath = c.Detector.ModelPath
	pcfg.RecognitionModelPath = c.Recognizer.ModelPath
	pcfg.DictionaryPath = c.Recognizer.DictPath

	pcfg.Detector.ScoreThreshold = c.Detector.ScoreThreshold
	pcfg.Detector.NMSThreshold = c.Detector.NMSThreshold
	pcfg.Detector.Connector = detector.ConnectorConfig{
		MaxHorizontalGap:    c.Detector.MaxHorizontalGap,
		MinVerticalOverlap:  c.Detector.MinVerticalOverlap,
		MinHeightSimilarity: c.Detector.MinHeightSimilarity,
	}
	pcfg.NumThreads = c.Detector.NumThreads

	pcfg.Rectify.LooseCrop = c.Rectify.LooseCrop
	if c.Rectify.MarginX > 0 {
		pcfg.Rectify.MarginX = c.Rectify.MarginX
	}
	if c.Rectify.MarginY > 0 {
		pcfg.Rectify.MarginY = c.Rectify.MarginY
	}

	pcfg.Recognizer.ImageHeight = c.Recognizer.ImageHeight
	pcfg.Recognizer.BlankIndex = c.Recognizer.BlankIndex

	if c.Parallel.RegionWorkers > 0 {
		pcfg.Parallel.RegionWorkers = c.Parallel.RegionWorkers
	}
	if c.Parallel.ImageWorkers > 0 {
		pcfg.Parallel.ImageWorkers = c.Parallel.ImageWorkers
	}

	pcfg.GPU.UseGPU = c.GPU.Enabled
	pcfg.GPU.DeviceID = c.GPU.Device
	pcfg.GPU.MemLimit = c.GPU.MemoryLimit

	return pcfg
}

// DumpYAML renders the effective configuration as YAML.
func (c *Config) DumpYAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return out, nil
}
