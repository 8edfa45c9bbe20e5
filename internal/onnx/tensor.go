package onnx

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/fendaq/text-detection-1/internal/mempool"
)

// Tensor is a float32 tensor in row-major NCHW layout, ready to hand to
// ONNX Runtime. Data may come from the mempool; callers that obtained a
// tensor from a pooled constructor must call Release when done.
type Tensor struct {
	Data   []float32
	Shape  []int64
	pooled bool
}

// Release returns pooled backing storage to the mempool. Safe to call on
// non-pooled tensors.
func (t *Tensor) Release() {
	if t.pooled && t.Data != nil {
		mempool.PutFloat32(t.Data)
		t.Data = nil
	}
}

// Validate checks that the data length matches the NCHW shape.
func (t *Tensor) Validate() error {
	if len(t.Shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(t.Shape))
	}
	expected := int64(1)
	for i, v := range t.Shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
		expected *= v
	}
	if int64(len(t.Data)) != expected {
		return fmt.Errorf("tensor data length %d != expected %d for shape %v",
			len(t.Data), expected, t.Shape)
	}
	return nil
}

// Detection preprocessing subtracts the training-set channel means in BGR
// order, matching the convention the detection model was trained with.
var detectionMeans = [3]float32{102.9801, 115.9465, 122.7717} // B, G, R

// ImageToDetectionTensor converts an image to a [1, 3, H, W] tensor with
// BGR channel order and mean subtraction. The backing buffer is pooled.
func ImageToDetectionTensor(img image.Image) (Tensor, error) {
	if img == nil {
		return Tensor{}, errors.New("input image is nil")
	}
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Tensor{}, errors.New("invalid image dimensions")
	}

	plane := w * h
	data := mempool.GetFloat32(3 * plane)
	for y := range h {
		for x := range w {
			r, g, b, _ := nrgba.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			idx := y*w + x
			data[idx] = float32(b>>8) - detectionMeans[0]
			data[plane+idx] = float32(g>>8) - detectionMeans[1]
			data[2*plane+idx] = float32(r>>8) - detectionMeans[2]
		}
	}
	return Tensor{
		Data:   data,
		Shape:  []int64{1, 3, int64(h), int64(w)},
		pooled: true,
	}, nil
}

// StripToRecognitionTensor converts a grayscale strip to a [1, 1, H, W]
// tensor with pixels scaled to [-0.5, 0.5], the range the recognition model
// was trained with. The backing buffer is pooled.
func StripToRecognitionTensor(strip image.Image) (Tensor, error) {
	if strip == nil {
		return Tensor{}, errors.New("input strip is nil")
	}
	bounds := strip.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return Tensor{}, errors.New("invalid strip dimensions")
	}

	data := mempool.GetFloat32(w * h)
	for y := range h {
		for x := range w {
			r, g, b, _ := strip.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// Luminance from 16-bit channels, then scale to [-0.5, 0.5].
			gray := float32(0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8))
			data[y*w+x] = gray/255 - 0.5
		}
	}
	return Tensor{
		Data:   data,
		Shape:  []int64{1, 1, int64(h), int64(w)},
		pooled: true,
	}, nil
}
