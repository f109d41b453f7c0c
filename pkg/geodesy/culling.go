package geodesy

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Intersect classifies a volume against a culling volume.
type Intersect int

const (
	Outside      Intersect = -1
	Intersecting Intersect = 0
	Inside       Intersect = 1
)

func (i Intersect) String() string {
	switch i {
	case Outside:
		return "outside"
	case Inside:
		return "inside"
	default:
		return "intersecting"
	}
}

// Plane is the set of points p with Normal·p + Distance = 0. The normal points
// into the culling volume.
type Plane struct {
	Normal   mgl64.Vec3
	Distance float64
}

// NewPlane builds a plane through point with the given normal.
func NewPlane(normal, point mgl64.Vec3) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Distance: -n.Dot(point)}
}

// SignedDistance returns the signed distance from p to the plane.
func (pl Plane) SignedDistance(p mgl64.Vec3) float64 {
	return pl.Normal.Dot(p) + pl.Distance
}

// CullingVolume is an intersection of half-spaces.
type CullingVolume struct {
	Planes []Plane
}

// ComputeVisibility classifies s against every plane.
func (cv CullingVolume) ComputeVisibility(s BoundingSphere) Intersect {
	intersecting := false
	for _, pl := range cv.Planes {
		d := pl.SignedDistance(s.Center)
		if d < -s.Radius {
			return Outside
		}
		if d < s.Radius {
			intersecting = true
		}
	}
	if intersecting {
		return Intersecting
	}
	return Inside
}

// PerspectiveFrustum returns the six-plane culling volume of a perspective
// camera. fovY is in radians, aspect is width/height.
func PerspectiveFrustum(position, direction, up mgl64.Vec3, fovY, aspect, near, far float64) CullingVolume {
	dir := direction.Normalize()
	right := dir.Cross(up).Normalize()
	u := right.Cross(dir)

	t := near * math.Tan(fovY*0.5)
	r := t * aspect

	nearCenter := position.Add(dir.Mul(near))
	farCenter := position.Add(dir.Mul(far))

	left := nearCenter.Sub(right.Mul(r)).Sub(position).Cross(u)
	rightN := u.Cross(nearCenter.Add(right.Mul(r)).Sub(position))
	bottom := right.Cross(nearCenter.Sub(u.Mul(t)).Sub(position))
	top := nearCenter.Add(u.Mul(t)).Sub(position).Cross(right)

	return CullingVolume{Planes: []Plane{
		NewPlane(left, position),
		NewPlane(rightN, position),
		NewPlane(bottom, position),
		NewPlane(top, position),
		NewPlane(dir, nearCenter),
		NewPlane(dir.Mul(-1), farCenter),
	}}
}
