// Package models resolves filesystem paths for the bundled ONNX models
// and the recognition dictionary.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Model filenames.
const (
	DetectionModel   = "ctpn_det.onnx"
	RecognitionModel = "crnn_rec.onnx"

	DictionaryDefault = "charset_std.txt"
)

// Model type subdirectories.
const (
	TypeDetection    = "detection"
	TypeRecognition  = "recognition"
	TypeDictionaries = "dictionaries"
)

// DefaultModelsDir is the models directory relative to the project root.
const DefaultModelsDir = "models"

// EnvModelsDir overrides the models directory when set.
const EnvModelsDir = "TEXTDET_MODELS_DIR"

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", errors.New("could not find project root (go.mod not found)")
}

// GetModelsDir returns the models directory. Priority: explicit parameter,
// TEXTDET_MODELS_DIR, project root + "models", then the bare default.
func GetModelsDir(modelsDir string) string {
	if modelsDir != "" {
		return modelsDir
	}
	if envDir := os.Getenv(EnvModelsDir); envDir != "" {
		return envDir
	}
	if projectRoot, err := findProjectRoot(); err == nil {
		return filepath.Join(projectRoot, DefaultModelsDir)
	}
	return DefaultModelsDir
}

// ResolveModelPath resolves a filename to its full path. The organized
// layout (models/<type>/<file>) is preferred; a flat models/ directory is
// accepted for backward compatibility.
func ResolveModelPath(modelsDir, modelType, filename string) string {
	baseDir := GetModelsDir(modelsDir)
	if modelType != "" {
		organized := filepath.Join(baseDir, modelType, filename)
		if _, err := os.Stat(organized); err == nil {
			return organized
		}
	}
	return filepath.Join(baseDir, filename)
}

// GetDetectionModelPath returns the path of the detection model.
func GetDetectionModelPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeDetection, DetectionModel)
}

// GetRecognitionModelPath returns the path of the recognition model.
func GetRecognitionModelPath(modelsDir string) string {
	return ResolveModelPath(modelsDir, TypeRecognition, RecognitionModel)
}

// GetDictionaryPath returns the path of a dictionary file. An empty
// filename selects the default charset.
func GetDictionaryPath(modelsDir, filename string) string {
	if filename == "" {
		filename = DictionaryDefault
	}
	return ResolveModelPath(modelsDir, TypeDictionaries, filename)
}

// ValidateModelExists checks that a model file exists.
func ValidateModelExists(modelPath string) error {
	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", modelPath)
	}
	return nil
}
