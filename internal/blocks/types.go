// Package blocks builds the block meshes of one tile: a tessellated top
// face per cell and a wall skirt down to zero around it.
package blocks

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/blockterrain/internal/imagery"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// Vertex is one mesh vertex in Earth-fixed Cartesian coordinates.
type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	ST       [2]float64
}

// Geometry is an indexed triangle list. Triangles wind counter-clockwise
// seen from outside.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint32
}

// Instance is one cell's share of a primitive.
type Instance struct {
	Geometry Geometry
	Color    [4]float64 // Per-instance color attribute
	Tint     imagery.Tint
}

// TintMode selects where a material takes its tint from.
type TintMode int

const (
	TintNone        TintMode = iota
	TintUniform              // Material.Tint for every instance
	TintPerInstance          // Instance.Tint
)

// BlendMode is the framebuffer blend equation.
type BlendMode int

const (
	BlendOpaque BlendMode = iota
	BlendAlpha            // src*srcAlpha + dst*(1-srcAlpha)
)

// RenderState is the fixed-function state a primitive is drawn with.
type RenderState struct {
	Translucent bool
	DepthTest   bool
	DepthMask   bool
	Blend       BlendMode
	FaceForward bool
}

// Material describes a diffuse-mapped surface. The diffuse color of a texel
// is texel * (TintBias + TintScale*tint) * Modulate.
type Material struct {
	Texture   string
	TintMode  TintMode
	Tint      imagery.Tint
	TintScale float64
	TintBias  float64
	Modulate  float64
	State     RenderState
}

// Diffuse evaluates the material for one texel of an instance.
func (m Material) Diffuse(texel [3]float64, instance imagery.Tint) [3]float64 {
	var tint imagery.Tint
	switch m.TintMode {
	case TintNone:
		return texel
	case TintUniform:
		tint = m.Tint
	case TintPerInstance:
		tint = instance
	}

	var out [3]float64
	for i := range out {
		out[i] = texel[i] * (m.TintBias + m.TintScale*tint[i]) * m.Modulate
	}
	return out
}

// Primitive is a set of instances sharing one material. It is what the
// render backend turns into a drawable.
type Primitive struct {
	Name      string
	Instances []Instance
	Material  Material
}

// VertexCount returns the total vertex count over all instances.
func (p Primitive) VertexCount() int {
	n := 0
	for _, inst := range p.Instances {
		n += len(inst.Geometry.Vertices)
	}
	return n
}

// Cell is one block of a tile during generation.
type Cell struct {
	Rectangle geodesy.Rectangle
	Centroid  geodesy.Cartographic
	RawHeight float64
	Height    float64 // Quantized block height
	RawColor  color.RGBA
	Color     imagery.Tint // The cell's own quantized color
	Tint      imagery.Tint // Color chosen by the tint strategy
}

// Result is everything a tile keeps from one generation.
type Result struct {
	Top       Primitive
	Walls     Primitive
	Sphere3D  geodesy.BoundingSphere
	Sphere2D  geodesy.BoundingSphere
	MaxHeight float64
}
