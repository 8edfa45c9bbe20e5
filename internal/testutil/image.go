// Package testutil provides synthetic image fixtures and stub network
// collaborators for pipeline tests.
package testutil

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WhiteCanvas returns a white RGBA image of the given size.
func WhiteCanvas(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	return img
}

// DrawBand paints a dark horizontal band onto img at the given rectangle,
// simulating a line of text.
func DrawBand(img *image.RGBA, band image.Rectangle) {
	dark := color.RGBA{A: 255, R: 32, G: 32, B: 32}
	draw.Draw(img, band.Intersect(img.Bounds()), &image.Uniform{dark}, image.Point{}, draw.Src)
}

// BandImage returns a white canvas with one dark band.
func BandImage(width, height int, band image.Rectangle) *image.RGBA {
	img := WhiteCanvas(width, height)
	DrawBand(img, band)
	return img
}

// TextImage renders text centered on a white canvas with the basic 7x13
// face, for realistic recognition strips.
func TextImage(text string, width, height int) *image.RGBA {
	img := WhiteCanvas(width, height)
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: face,
	}
	textWidth := font.MeasureString(face, text).Ceil()
	textHeight := face.Metrics().Height.Ceil()
	drawer.Dot = fixed.P((width-textWidth)/2, (height+textHeight)/2)
	drawer.DrawString(text)
	return img
}

// TiltedBandImage returns a band image rotated by the given angle in
// degrees, with white fill on the expanded canvas.
func TiltedBandImage(width, height int, band image.Rectangle, angle float64) image.Image {
	img := BandImage(width, height, band)
	if angle == 0 {
		return img
	}
	return imaging.Rotate(img, angle, color.White)
}
