package geodesy

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ellipsoid is an axis-aligned ellipsoid centred at the origin.
type Ellipsoid struct {
	Radii        mgl64.Vec3
	radiiSquared mgl64.Vec3
}

// WGS84 is the WGS84 reference ellipsoid in meters.
var WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

// NewEllipsoid creates an ellipsoid with the given semi-axes.
func NewEllipsoid(x, y, z float64) Ellipsoid {
	return Ellipsoid{
		Radii:        mgl64.Vec3{x, y, z},
		radiiSquared: mgl64.Vec3{x * x, y * y, z * z},
	}
}

// MaximumRadius returns the largest semi-axis.
func (e Ellipsoid) MaximumRadius() float64 {
	return math.Max(e.Radii[0], math.Max(e.Radii[1], e.Radii[2]))
}

// GeodeticSurfaceNormal returns the unit normal at the given position.
func (e Ellipsoid) GeodeticSurfaceNormal(c Cartographic) mgl64.Vec3 {
	cosLat := math.Cos(c.Latitude)
	return mgl64.Vec3{
		cosLat * math.Cos(c.Longitude),
		cosLat * math.Sin(c.Longitude),
		math.Sin(c.Latitude),
	}
}

// CartographicToCartesian converts a geodetic position to Earth-fixed
// Cartesian coordinates.
func (e Ellipsoid) CartographicToCartesian(c Cartographic) mgl64.Vec3 {
	n := e.GeodeticSurfaceNormal(c)
	k := mgl64.Vec3{
		e.radiiSquared[0] * n[0],
		e.radiiSquared[1] * n[1],
		e.radiiSquared[2] * n[2],
	}
	gamma := math.Sqrt(n.Dot(k))
	return k.Mul(1 / gamma).Add(n.Mul(c.Height))
}

// GroundDiagonal returns the straight-line distance between the north-west
// and south-east corners of r on the ellipsoid surface.
func (e Ellipsoid) GroundDiagonal(r Rectangle) float64 {
	nw := e.CartographicToCartesian(r.Northwest())
	se := e.CartographicToCartesian(r.Southeast())
	return nw.Sub(se).Len()
}
