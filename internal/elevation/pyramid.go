package elevation

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// LevelSize returns the DEM grid size stored for a quadtree level: the
// geographic scheme's tile count times subgrid cells per side.
func LevelSize(level, subgrid int) (width, height int) {
	subgrid = max(subgrid, 1)
	return (2 << level) * subgrid, (1 << level) * subgrid
}

// Heightmap maps the luminance of a grayscale-ish image onto heights in
// [Min, Max]. Black is Min; white is Max.
type Heightmap struct {
	Image image.Image
	Min   float64
	Max   float64
}

// Grid resamples the heightmap to width x height and returns the heights
// row-major with row 0 at the north edge of the image.
func (h Heightmap) Grid(width, height int) []float64 {
	dst := image.NewGray16(image.Rect(0, 0, width, height))
	if b := h.Image.Bounds(); b.Dx() == width && b.Dy() == height {
		draw.Draw(dst, dst.Bounds(), h.Image, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), h.Image, b, draw.Src, nil)
	}

	out := make([]float64, 0, width*height)
	span := h.Max - h.Min
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(dst.At(x, y)).(color.Gray16)
			out = append(out, h.Min+span*float64(g.Y)/0xffff)
		}
	}
	return out
}
