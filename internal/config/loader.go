package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of configuration files, without
	// extension.
	ConfigFileName = "textdet"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "TEXTDET"
)

// Loader reads configuration from files and the environment.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewIsolatedLoader creates a loader on a private viper instance. Used in
// tests to avoid global state.
func NewIsolatedLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads configuration from the search paths and environment. A missing
// config file is not an error; defaults apply.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return l.unmarshal()
}

// LoadWithFile reads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the config file read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper exposes the underlying viper instance for flag binding.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "textdet"))
	}
	l.v.AddConfigPath("/etc/textdet")
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("models_dir", defaults.ModelsDir)
	l.v.SetDefault("log_level", defaults.LogLevel)

	l.v.SetDefault("detector.score_threshold", defaults.Detector.ScoreThreshold)
	l.v.SetDefault("detector.nms_threshold", defaults.Detector.NMSThreshold)
	l.v.SetDefault("detector.max_horizontal_gap", defaults.Detector.MaxHorizontalGap)
	l.v.SetDefault("detector.min_vertical_overlap", defaults.Detector.MinVerticalOverlap)
	l.v.SetDefault("detector.min_height_similarity", defaults.Detector.MinHeightSimilarity)
	l.v.SetDefault("detector.num_threads", defaults.Detector.NumThreads)

	l.v.SetDefault("rectify.loose_crop", defaults.Rectify.LooseCrop)
	l.v.SetDefault("rectify.margin_x", defaults.Rectify.MarginX)
	l.v.SetDefault("rectify.margin_y", defaults.Rectify.MarginY)

	l.v.SetDefault("recognizer.image_height", defaults.Recognizer.ImageHeight)
	l.v.SetDefault("recognizer.blank_index", defaults.Recognizer.BlankIndex)

	l.v.SetDefault("parallel.region_workers", defaults.Parallel.RegionWorkers)
	l.v.SetDefault("parallel.image_workers", defaults.Parallel.ImageWorkers)

	l.v.SetDefault("gpu.enabled", defaults.GPU.Enabled)
	l.v.SetDefault("gpu.device", defaults.GPU.Device)
	l.v.SetDefault("gpu.memory_limit", defaults.GPU.MemoryLimit)
}
