// Package geodesy provides geodetic rectangles, the WGS84 ellipsoid and the
// bounding volumes used to cull and rank globe tiles.
package geodesy

import "math"

// Cartographic is a geodetic position. Longitude and latitude are in radians,
// height is in meters above the ellipsoid.
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

// CartographicFromDegrees builds a Cartographic from degree angles.
func CartographicFromDegrees(lon, lat, height float64) Cartographic {
	return Cartographic{
		Longitude: lon * math.Pi / 180,
		Latitude:  lat * math.Pi / 180,
		Height:    height,
	}
}

// Rectangle is a geodetic rectangle with bounds in radians.
// Rectangles produced by the geographic tiling scheme never cross the antimeridian.
type Rectangle struct {
	West  float64
	South float64
	East  float64
	North float64
}

// MaxRectangle covers the whole globe.
var MaxRectangle = Rectangle{West: -math.Pi, South: -math.Pi / 2, East: math.Pi, North: math.Pi / 2}

// RectangleFromDegrees builds a Rectangle from degree bounds.
func RectangleFromDegrees(west, south, east, north float64) Rectangle {
	const toRad = math.Pi / 180
	return Rectangle{West: west * toRad, South: south * toRad, East: east * toRad, North: north * toRad}
}

// Width returns the angular longitude extent.
func (r Rectangle) Width() float64 { return r.East - r.West }

// Height returns the angular latitude extent.
func (r Rectangle) Height() float64 { return r.North - r.South }

// Center returns the centroid of the rectangle at zero height.
func (r Rectangle) Center() Cartographic {
	return Cartographic{Longitude: (r.West + r.East) * 0.5, Latitude: (r.South + r.North) * 0.5}
}

// Northwest returns the north-west corner.
func (r Rectangle) Northwest() Cartographic {
	return Cartographic{Longitude: r.West, Latitude: r.North}
}

// Southeast returns the south-east corner.
func (r Rectangle) Southeast() Cartographic {
	return Cartographic{Longitude: r.East, Latitude: r.South}
}

// Southwest returns the south-west corner.
func (r Rectangle) Southwest() Cartographic {
	return Cartographic{Longitude: r.West, Latitude: r.South}
}

// Northeast returns the north-east corner.
func (r Rectangle) Northeast() Cartographic {
	return Cartographic{Longitude: r.East, Latitude: r.North}
}

// ScaleLatitudes multiplies both latitude bounds by f. A factor slightly below
// one pulls tiles touching a pole away from it.
func (r Rectangle) ScaleLatitudes(f float64) Rectangle {
	r.North *= f
	r.South *= f
	return r
}

// Ring returns the closed boundary west-south, west-north, east-north,
// east-south, west-south at the given height.
func (r Rectangle) Ring(height float64) []Cartographic {
	return []Cartographic{
		{Longitude: r.West, Latitude: r.South, Height: height},
		{Longitude: r.West, Latitude: r.North, Height: height},
		{Longitude: r.East, Latitude: r.North, Height: height},
		{Longitude: r.East, Latitude: r.South, Height: height},
		{Longitude: r.West, Latitude: r.South, Height: height},
	}
}
