package geodesy

import "github.com/go-gl/mathgl/mgl64"

// GeographicProjection maps longitude and latitude linearly onto a plane
// scaled by the ellipsoid's maximum radius.
type GeographicProjection struct {
	Ellipsoid Ellipsoid
}

// Project returns (lon*a, lat*a, height).
func (p GeographicProjection) Project(c Cartographic) mgl64.Vec3 {
	a := p.Ellipsoid.MaximumRadius()
	return mgl64.Vec3{c.Longitude * a, c.Latitude * a, c.Height}
}
