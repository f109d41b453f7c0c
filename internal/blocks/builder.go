package blocks

import (
	"fmt"
	"image/color"
	"math"

	"github.com/Faultbox/blockterrain/internal/elevation"
	"github.com/Faultbox/blockterrain/internal/imagery"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// Options configure a Builder.
type Options struct {
	Ellipsoid   geodesy.Ellipsoid
	Projection  geodesy.GeographicProjection
	HeightScale float64
	Granularity float64 // Tessellation step in radians
	ColorLevels int
	Strategy    imagery.TintStrategy
	TopTexture  string
	WallTexture string
}

// Builder turns sampled cells into tile primitives.
type Builder struct {
	opts Options
}

// NewBuilder creates a builder.
func NewBuilder(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Cells subdivides rect into n*n cells with their centroids.
func (b *Builder) Cells(rect geodesy.Rectangle, n int) []Cell {
	rects := geodesy.Subdivide(rect, n)
	cells := make([]Cell, len(rects))
	for i, r := range rects {
		cells[i] = Cell{Rectangle: r, Centroid: r.Center()}
	}
	return cells
}

// Centroids returns the cell centroids in cell order.
func Centroids(cells []Cell) []geodesy.Cartographic {
	out := make([]geodesy.Cartographic, len(cells))
	for i, c := range cells {
		out[i] = c.Centroid
	}
	return out
}

// Fill stores the raw samples in cells and quantizes them. heights and
// colors must both have one entry per cell.
func (b *Builder) Fill(cells []Cell, heights []float64, colors []color.RGBA) error {
	if len(heights) != len(cells) || len(colors) != len(cells) {
		return fmt.Errorf("%w: %d cells, %d heights, %d colors",
			elevation.ErrLengthMismatch, len(cells), len(heights), len(colors))
	}

	own := make([]imagery.Tint, len(cells))
	for i := range cells {
		c := &cells[i]
		half := b.opts.Ellipsoid.GroundDiagonal(c.Rectangle) / 2
		c.RawHeight = heights[i]
		c.Height = elevation.QuantizeHeight(heights[i], b.opts.HeightScale, half)
		c.RawColor = colors[i]
		c.Color = imagery.QuantizeColor(colors[i], b.opts.ColorLevels)
		own[i] = c.Color
	}
	for i, tint := range b.opts.Strategy.Apply(own) {
		cells[i].Tint = tint
	}
	return nil
}

// Build assembles the top and wall primitives for filled cells and fits
// the bounding spheres over the whole tile rectangle.
func (b *Builder) Build(tileRect geodesy.Rectangle, cells []Cell) Result {
	res := Result{
		Top: Primitive{
			Name:      "top",
			Instances: make([]Instance, 0, len(cells)),
			Material:  b.topMaterial(),
		},
		Walls: Primitive{
			Name:      "walls",
			Instances: make([]Instance, 0, len(cells)),
		},
	}

	e := b.opts.Ellipsoid
	for _, c := range cells {
		res.MaxHeight = math.Max(res.MaxHeight, c.Height)
		res.Top.Instances = append(res.Top.Instances, Instance{
			Geometry: RectangleGeometry(e, c.Rectangle, c.Height, b.opts.Granularity),
			Color:    [4]float64{c.Color[0], c.Color[1], c.Color[2], 1},
			Tint:     c.Color,
		})
		res.Walls.Instances = append(res.Walls.Instances, Instance{
			Geometry: WallGeometry(e, c.Rectangle.Ring(0), 0, c.Height, b.opts.Granularity),
			Color:    [4]float64{1, 1, 1, 1},
			Tint:     c.Tint,
		})
	}

	var uniform imagery.Tint
	if len(cells) > 0 {
		uniform = cells[0].Tint
	}
	res.Walls.Material = b.wallMaterial(uniform)
	res.Sphere3D, res.Sphere2D = b.Spheres(tileRect, res.MaxHeight)
	return res
}

// Spheres returns the 3D and 2D bounding spheres of rect with blocks up to
// maxHeight.
func (b *Builder) Spheres(rect geodesy.Rectangle, maxHeight float64) (geodesy.BoundingSphere, geodesy.BoundingSphere) {
	return geodesy.SphereFromRectangle3D(rect, b.opts.Ellipsoid, 0, maxHeight),
		geodesy.SphereFromRectangle2D(rect, b.opts.Projection)
}

// topMaterial modulates the top texture by each block's quantized color.
func (b *Builder) topMaterial() Material {
	return Material{
		Texture:   b.opts.TopTexture,
		TintMode:  TintPerInstance,
		TintScale: 1,
		Modulate:  1,
		State: RenderState{
			Translucent: true,
			DepthTest:   true,
			DepthMask:   false,
			Blend:       BlendAlpha,
			FaceForward: true,
		},
	}
}

// wallMaterial brightens the wall texture by (1 + tint) / 2.
func (b *Builder) wallMaterial(uniform imagery.Tint) Material {
	m := Material{
		Texture:   b.opts.WallTexture,
		TintMode:  TintUniform,
		Tint:      uniform,
		TintScale: 1,
		TintBias:  1,
		Modulate:  0.5,
		State: RenderState{
			DepthTest: true,
			DepthMask: true,
			Blend:     BlendOpaque,
		},
	}
	if b.opts.Strategy == imagery.PerCell {
		m.TintMode = TintPerInstance
		m.Tint = imagery.Tint{}
	}
	return m
}
