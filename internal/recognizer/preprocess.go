package recognizer

import (
	"errors"
	"image"

	"github.com/fendaq/text-detection-1/internal/utils"
)

// PrepareStrip converts a rectified crop into the form the recognition
// network expects: grayscale scaled to the target height with the aspect
// ratio preserved.
func PrepareStrip(img image.Image, targetHeight int) (image.Image, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if targetHeight <= 0 {
		return nil, errors.New("target height must be > 0")
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, errors.New("input image is empty")
	}
	gray := utils.ToGrayscale(img)
	return utils.ResizeToHeight(gray, targetHeight), nil
}
