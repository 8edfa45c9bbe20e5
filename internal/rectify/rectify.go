// Package rectify deskews and crops detected text regions so the
// recognition stage always sees a roughly horizontal strip.
package rectify

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/fendaq/text-detection-1/internal/detector"
	"github.com/fendaq/text-detection-1/internal/utils"
)

// ErrInvalidCrop marks a region whose rectified crop failed the geometric
// sanity checks. Callers drop the region; this is a filtering decision, not
// a hard failure.
var ErrInvalidCrop = errors.New("invalid crop geometry")

// Config holds rectification options.
type Config struct {
	LooseCrop bool    // Expand the crop box by the margins below
	MarginX   float64 // Horizontal expansion as a fraction of region width (default: 0.10)
	MarginY   float64 // Vertical expansion as a fraction of region height (default: 0.20)
}

// DefaultConfig returns the default rectification configuration.
func DefaultConfig() Config {
	return Config{
		LooseCrop: false,
		MarginX:   0.10,
		MarginY:   0.20,
	}
}

// angleEpsilon below which rotation is skipped and the axis-aligned crop is
// used directly.
const angleEpsilon = 1e-3

// CropRegion deskews the source image by the region's tilt angle and crops
// the region's bounding rectangle from the rotated canvas. The crop is
// rejected with ErrInvalidCrop when it collapses below one pixel or comes
// out taller than wide, which a correctly rectified text line cannot be.
func CropRegion(img image.Image, region detector.TextRegion, cfg Config) (image.Image, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	p1, p3 := cropCorners(region, cfg, w, h)
	angle := region.TiltAngle()

	if math.Abs(angle) < angleEpsilon {
		return cropChecked(img, p1, p3, bounds.Dx(), bounds.Dy())
	}

	rotated := utils.RotateExpand(img, angle, color.White)
	rb := rotated.Bounds()

	m := rotationMatrix(angle, w, h, float64(rb.Dx()), float64(rb.Dy()))
	q1 := m.apply(p1)
	q3 := m.apply(p3)
	return cropChecked(rotated, q1, q3, rb.Dx(), rb.Dy())
}

// cropCorners derives the top-left and bottom-right crop corners from the
// region's axis-aligned box, optionally expanded by the loose-crop margins,
// pre-clamped to the source image.
func cropCorners(region detector.TextRegion, cfg Config, w, h float64) (utils.Point, utils.Point) {
	box := region.Box
	var xlen, ylen float64
	if cfg.LooseCrop {
		xlen = box.Width() * cfg.MarginX
		ylen = box.Height() * cfg.MarginY
	}
	p1 := utils.Point{
		X: math.Max(1, box.MinX-xlen),
		Y: math.Max(1, box.MinY-ylen),
	}
	p3 := utils.Point{
		X: math.Min(box.MaxX+xlen, w-2),
		Y: math.Min(box.MaxY+ylen, h-2),
	}
	return p1, p3
}

// affine is a 2x3 transform matrix in row-major order.
type affine [6]float64

func (m affine) apply(p utils.Point) utils.Point {
	return utils.Point{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// rotationMatrix builds the affine transform that maps source pixel
// coordinates into the expanded rotated canvas: a rotation by angle degrees
// about the source center followed by a translation centering the result in
// the new canvas.
func rotationMatrix(angle, w, h, newW, newH float64) affine {
	rad := angle * math.Pi / 180
	alpha := math.Cos(rad)
	beta := math.Sin(rad)
	cx := math.Floor(w / 2)
	cy := math.Floor(h / 2)

	m := affine{
		alpha, beta, (1-alpha)*cx - beta*cy,
		-beta, alpha, beta*cx + (1-alpha)*cy,
	}
	m[2] += math.Floor((newW - w) / 2)
	m[5] += math.Floor((newH - h) / 2)
	return m
}

// cropChecked crops [p1, p3] from img clamped to [1, dim-1] and applies the
// sanity checks.
func cropChecked(img image.Image, p1, p3 utils.Point, canvasW, canvasH int) (image.Image, error) {
	x1 := utils.ClampInt(int(p1.X), 1, canvasW-1)
	y1 := utils.ClampInt(int(p1.Y), 1, canvasH-1)
	x2 := utils.ClampInt(int(p3.X), 1, canvasW-1)
	y2 := utils.ClampInt(int(p3.Y), 1, canvasH-1)

	cw := x2 - x1
	ch := y2 - y1
	if cw < 1 || ch < 1 || ch > cw {
		return nil, ErrInvalidCrop
	}

	b := img.Bounds()
	rect := image.Rect(b.Min.X+x1, b.Min.Y+y1, b.Min.X+x2, b.Min.Y+y2)
	return utils.CropImageRect(img, rect), nil
}
