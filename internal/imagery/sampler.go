package imagery

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Faultbox/blockterrain/internal/async"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// Tint is a quantized RGB color with channels in [0, 1).
type Tint [3]float64

// UV maps a position to normalized image coordinates with v = 0 at the
// north edge.
func UV(c geodesy.Cartographic) (u, v float64) {
	u = c.Longitude/math.Pi*0.5 + 0.5
	v = 1 - (c.Latitude/math.Pi + 0.5)
	return u, v
}

// Lookup returns the pixel nearest to c.
func (c *Canvas) Lookup(p geodesy.Cartographic) color.RGBA {
	u, v := UV(p)
	return c.Pixel(int(math.Floor(u*float64(c.Width()))), int(math.Floor(v*float64(c.Height()))))
}

// SampleColors looks up one color per centroid, in input order.
func SampleColors(c *Canvas, centroids []geodesy.Cartographic) []color.RGBA {
	out := make([]color.RGBA, len(centroids))
	for i, p := range centroids {
		out[i] = c.Lookup(p)
	}
	return out
}

// QuantizeChannel snaps v in [0, 1] down to a multiple of 1/levels. The
// top of the range maps to (levels-1)/levels so exactly levels values occur.
func QuantizeChannel(v float64, levels int) float64 {
	if levels < 1 {
		levels = 1
	}
	l := float64(levels)
	step := math.Floor(min(max(v, 0), 1) * l)
	return min(step, l-1) / l
}

// QuantizeColor quantizes each of the RGB channels of c.
func QuantizeColor(c color.RGBA, levels int) Tint {
	return Tint{
		QuantizeChannel(float64(c.R)/255, levels),
		QuantizeChannel(float64(c.G)/255, levels),
		QuantizeChannel(float64(c.B)/255, levels),
	}
}

// TintStrategy decides which quantized color tints each cell.
type TintStrategy int

const (
	// TileUniform tints every cell with the first cell's color.
	TileUniform TintStrategy = iota
	// PerCell tints every cell with its own color.
	PerCell
)

// ParseTintStrategy accepts "tile_uniform" and "per_cell".
func ParseTintStrategy(s string) (TintStrategy, error) {
	switch s {
	case "tile_uniform":
		return TileUniform, nil
	case "per_cell":
		return PerCell, nil
	}
	return TileUniform, fmt.Errorf("unknown tint strategy %q", s)
}

func (s TintStrategy) String() string {
	if s == PerCell {
		return "per_cell"
	}
	return "tile_uniform"
}

// Apply returns the tint for every cell given each cell's own quantized
// color.
func (s TintStrategy) Apply(colors []Tint) []Tint {
	out := make([]Tint, len(colors))
	if s == PerCell || len(colors) == 0 {
		copy(out, colors)
		return out
	}
	for i := range out {
		out[i] = colors[0]
	}
	return out
}

// Sampler looks up cell colors once the reference image is ready.
type Sampler struct {
	ref *Reference
}

// NewSampler creates a sampler over ref.
func NewSampler(ref *Reference) *Sampler {
	return &Sampler{ref: ref}
}

// Sample resolves to one raw color per centroid after the reference image
// is ready. The lookup itself is synchronous.
func (s *Sampler) Sample(centroids []geodesy.Cartographic) *async.Future[[]color.RGBA] {
	return async.Then(s.ref.Ready(), func(c *Canvas) ([]color.RGBA, error) {
		return SampleColors(c, centroids), nil
	})
}
