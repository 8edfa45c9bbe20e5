package onnx

import (
	"fmt"
	"strconv"

	"github.com/yalue/onnxruntime_go"
)

// GPUConfig holds CUDA acceleration settings shared by both model sessions.
type GPUConfig struct {
	UseGPU              bool   // Enable CUDA execution provider
	DeviceID            int    // CUDA device ID (default: 0)
	MemLimit            uint64 // GPU memory limit in bytes (0 = unlimited)
	ArenaExtendStrategy string // "kNextPowerOfTwo" or "kSameAsRequested"
}

// DefaultGPUConfig returns CPU-only defaults.
func DefaultGPUConfig() GPUConfig {
	return GPUConfig{
		UseGPU:              false,
		DeviceID:            0,
		MemLimit:            0,
		ArenaExtendStrategy: "kNextPowerOfTwo",
	}
}

// Validate checks the GPU configuration.
func (c GPUConfig) Validate() error {
	if !c.UseGPU {
		return nil
	}
	if c.DeviceID < 0 {
		return fmt.Errorf("device ID must be non-negative, got %d", c.DeviceID)
	}
	switch c.ArenaExtendStrategy {
	case "", "kNextPowerOfTwo", "kSameAsRequested":
		return nil
	default:
		return fmt.Errorf("invalid arena extend strategy: %s", c.ArenaExtendStrategy)
	}
}

// ConfigureSession appends the CUDA execution provider to the session
// options when GPU use is requested. With UseGPU false it is a no-op and
// the session runs on CPU.
func (c GPUConfig) ConfigureSession(opts *onnxruntime_go.SessionOptions) error {
	if !c.UseGPU {
		return nil
	}

	cudaOpts, err := onnxruntime_go.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("failed to create CUDA provider options (GPU may not be available): %w", err)
	}
	defer func() {
		if derr := cudaOpts.Destroy(); derr != nil {
			fmt.Printf("Warning: failed to destroy CUDA provider options: %v\n", derr)
		}
	}()

	settings := map[string]string{
		"device_id": strconv.Itoa(c.DeviceID),
	}
	if c.MemLimit > 0 {
		settings["gpu_mem_limit"] = strconv.FormatUint(c.MemLimit, 10)
	}
	if c.ArenaExtendStrategy != "" {
		settings["arena_extend_strategy"] = c.ArenaExtendStrategy
	}

	if err := cudaOpts.Update(settings); err != nil {
		return fmt.Errorf("failed to update CUDA provider options: %w", err)
	}
	if err := opts.AppendExecutionProviderCUDA(cudaOpts); err != nil {
		return fmt.Errorf("failed to append CUDA execution provider: %w", err)
	}
	return nil
}
