package imagery

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Canvas is the decoded reference image drawn at the sampling resolution.
// It is never written after NewCanvas returns.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas draws src onto a w*h canvas, resampling bilinearly when the
// sizes differ.
func NewCanvas(src image.Image, w, h int) *Canvas {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	if src.Bounds().Size() == dst.Bounds().Size() {
		draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	}
	return &Canvas{img: dst}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Bounds().Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Bounds().Dy() }

// Pixel returns the color at x, y. Coordinates are clamped to the canvas.
func (c *Canvas) Pixel(x, y int) color.RGBA {
	x = min(max(x, 0), c.Width()-1)
	y = min(max(y, 0), c.Height()-1)
	return c.img.RGBAAt(x, y)
}
