package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textdet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithFile(t *testing.T) {
	path := writeConfig(t, `
models_dir: /opt/models
log_level: debug
detector:
  score_threshold: 0.6
  nms_threshold: 0.25
  max_horizontal_gap: 60
recognizer:
  image_height: 48
parallel:
  region_workers: 2
`)

	cfg, err := NewIsolatedLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/models", cfg.ModelsDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.InDelta(t, 0.6, cfg.Detector.ScoreThreshold, 1e-9)
	assert.InDelta(t, 0.25, cfg.Detector.NMSThreshold, 1e-9)
	assert.InDelta(t, 60, cfg.Detector.MaxHorizontalGap, 1e-9)
	assert.Equal(t, 48, cfg.Recognizer.ImageHeight)
	assert.Equal(t, 2, cfg.Parallel.RegionWorkers)

	// Unset keys keep their defaults.
	assert.InDelta(t, 0.7, cfg.Detector.MinVerticalOverlap, 1e-9)
	assert.Equal(t, -1, cfg.Recognizer.BlankIndex)
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := NewIsolatedLoader().LoadWithFile("/nonexistent/textdet.yaml")
	assert.Error(t, err)
}

func TestLoadWithFileMalformed(t *testing.T) {
	path := writeConfig(t, "detector: [not a map\n")
	_, err := NewIsolatedLoader().LoadWithFile(path)
	assert.Error(t, err)
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	path := writeConfig(t, `
detector:
  score_threshold: 1.5
`)
	_, err := NewIsolatedLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "score_threshold")
}

func TestLoadWithEmptyPathUsesDefaults(t *testing.T) {
	// Run from a temp dir so no stray textdet.yaml is picked up.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := NewIsolatedLoader().LoadWithFile("")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, cfg.Detector.ScoreThreshold, 1e-9)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TEXTDET_LOG_LEVEL", "warn")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	require.NoError(t, os.Chdir(t.TempDir()))

	cfg, err := NewIsolatedLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
