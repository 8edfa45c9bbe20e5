package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelsDirExplicit(t *testing.T) {
	assert.Equal(t, "/custom/models", GetModelsDir("/custom/models"))
}

func TestGetModelsDirEnv(t *testing.T) {
	t.Setenv(EnvModelsDir, "/env/models")
	assert.Equal(t, "/env/models", GetModelsDir(""))
}

func TestGetModelsDirExplicitBeatsEnv(t *testing.T) {
	t.Setenv(EnvModelsDir, "/env/models")
	assert.Equal(t, "/explicit", GetModelsDir("/explicit"))
}

func TestResolveModelPathOrganized(t *testing.T) {
	dir := t.TempDir()
	organized := filepath.Join(dir, TypeDetection)
	require.NoError(t, os.MkdirAll(organized, 0o755))
	path := filepath.Join(organized, DetectionModel)
	require.NoError(t, os.WriteFile(path, []byte("model"), 0o644))

	assert.Equal(t, path, ResolveModelPath(dir, TypeDetection, DetectionModel))
}

func TestResolveModelPathFlatFallback(t *testing.T) {
	dir := t.TempDir()
	// No organized subdirectory; resolver falls back to the flat layout.
	assert.Equal(t, filepath.Join(dir, DetectionModel),
		ResolveModelPath(dir, TypeDetection, DetectionModel))
}

func TestGetDictionaryPathDefault(t *testing.T) {
	dir := t.TempDir()
	path := GetDictionaryPath(dir, "")
	assert.Equal(t, filepath.Join(dir, DictionaryDefault), path)
}

func TestGetDetectionAndRecognitionPaths(t *testing.T) {
	dir := t.TempDir()
	assert.Contains(t, GetDetectionModelPath(dir), DetectionModel)
	assert.Contains(t, GetRecognitionModelPath(dir), RecognitionModel)
}

func TestValidateModelExists(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "missing.onnx")
	assert.Error(t, ValidateModelExists(missing))

	present := filepath.Join(dir, "present.onnx")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))
	assert.NoError(t, ValidateModelExists(present))
}
