package geodesy

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// rectangleSamples is the number of sample points per rectangle side used to
// fit a 3D bounding sphere.
const rectangleSamples = 9

// BoundingSphere is a sphere enclosing some geometry.
type BoundingSphere struct {
	Center mgl64.Vec3
	Radius float64
}

// SphereFromPoints returns a sphere centred on the axis-aligned bounds of
// points that encloses all of them.
func SphereFromPoints(points []mgl64.Vec3) BoundingSphere {
	if len(points) == 0 {
		return BoundingSphere{}
	}

	lo, hi := points[0], points[0]
	for _, p := range points[1:] {
		for i := range 3 {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}

	center := lo.Add(hi).Mul(0.5)
	var radius float64
	for _, p := range points {
		radius = math.Max(radius, p.Sub(center).Len())
	}
	return BoundingSphere{Center: center, Radius: radius}
}

// SphereFromRectangle3D fits a sphere around r on the ellipsoid between
// minHeight and maxHeight.
func SphereFromRectangle3D(r Rectangle, e Ellipsoid, minHeight, maxHeight float64) BoundingSphere {
	lats := make([]float64, 0, rectangleSamples+1)
	for i := range rectangleSamples {
		lats = append(lats, r.South+float64(i)/float64(rectangleSamples-1)*r.Height())
	}
	// The widest circle of latitude bulges out between samples.
	if r.South < 0 && r.North > 0 {
		lats = append(lats, 0)
	}

	points := make([]mgl64.Vec3, 0, len(lats)*rectangleSamples*2)
	for _, lat := range lats {
		for i := range rectangleSamples {
			lon := r.West + float64(i)/float64(rectangleSamples-1)*r.Width()
			for _, h := range [2]float64{minHeight, maxHeight} {
				points = append(points, e.CartographicToCartesian(Cartographic{Longitude: lon, Latitude: lat, Height: h}))
			}
		}
	}
	return SphereFromPoints(points)
}

// SphereFromRectangle2D fits a sphere around r in the projected plane. The
// centre is returned in (height, x, y) order, the axis layout of the flattened
// scene modes.
func SphereFromRectangle2D(r Rectangle, p GeographicProjection) BoundingSphere {
	sw := p.Project(r.Southwest())
	ne := p.Project(r.Northeast())

	center := sw.Add(ne).Mul(0.5)
	radius := ne.Sub(sw).Len() * 0.5
	return BoundingSphere{
		Center: mgl64.Vec3{center[2], center[0], center[1]},
		Radius: radius,
	}
}

// Distance returns the distance from p to the sphere surface, or zero when p
// lies inside the sphere.
func (s BoundingSphere) Distance(p mgl64.Vec3) float64 {
	return math.Max(0, s.Center.Sub(p).Len()-s.Radius)
}

// Contains reports whether p lies inside or on the sphere.
func (s BoundingSphere) Contains(p mgl64.Vec3) bool {
	return s.Center.Sub(p).Len() <= s.Radius
}
