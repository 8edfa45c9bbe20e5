package utils

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// CropImageRect crops an image to the given rectangle.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	return imaging.Crop(img, rect)
}

// CropImageBox crops an image to the given box, clamped to the image bounds.
func CropImageBox(img image.Image, box Box) image.Image {
	return imaging.Crop(img, box.ToRect(img.Bounds()))
}

// ToGrayscale converts an image to grayscale.
func ToGrayscale(img image.Image) *image.NRGBA {
	return imaging.Grayscale(img)
}

// RotateExpand rotates an image counter-clockwise by angle degrees about its
// center, growing the canvas so the whole rotated image fits. New areas are
// filled with bg.
func RotateExpand(img image.Image, angle float64, bg color.Color) *image.NRGBA {
	return imaging.Rotate(img, angle, bg)
}

// ResizeToHeight scales an image to the target height preserving aspect
// ratio. Width is kept at least 1 pixel.
func ResizeToHeight(img image.Image, height int) *image.NRGBA {
	b := img.Bounds()
	if b.Dy() == 0 || height <= 0 {
		return imaging.New(1, 1, color.White)
	}
	w := int(float64(b.Dx()) * float64(height) / float64(b.Dy()))
	if w < 1 {
		w = 1
	}
	return imaging.Resize(img, w, height, imaging.Linear)
}
