package blocks

import (
	"math"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// segments returns how many steps of at most granularity cover extent.
func segments(extent, granularity float64) int {
	if granularity <= 0 || extent <= 0 {
		return 1
	}
	return max(1, int(math.Ceil(extent/granularity)))
}

// RectangleGeometry tessellates r on the ellipsoid at a constant height.
func RectangleGeometry(e geodesy.Ellipsoid, r geodesy.Rectangle, height, granularity float64) Geometry {
	cols := segments(r.Width(), granularity)
	rows := segments(r.Height(), granularity)

	g := Geometry{
		Vertices: make([]Vertex, 0, (cols+1)*(rows+1)),
		Indices:  make([]uint32, 0, cols*rows*6),
	}
	for j := 0; j <= rows; j++ {
		t := float64(j) / float64(rows)
		lat := r.South + t*r.Height()
		if j == rows {
			lat = r.North
		}
		for i := 0; i <= cols; i++ {
			s := float64(i) / float64(cols)
			lon := r.West + s*r.Width()
			if i == cols {
				lon = r.East
			}
			c := geodesy.Cartographic{Longitude: lon, Latitude: lat, Height: height}
			g.Vertices = append(g.Vertices, Vertex{
				Position: e.CartographicToCartesian(c),
				Normal:   e.GeodeticSurfaceNormal(c),
				ST:       [2]float64{s, t},
			})
		}
	}

	stride := uint32(cols + 1)
	for j := uint32(0); j < uint32(rows); j++ {
		for i := uint32(0); i < uint32(cols); i++ {
			sw := j*stride + i
			se := sw + 1
			nw := sw + stride
			ne := nw + 1
			g.Indices = append(g.Indices, sw, se, nw, nw, se, ne)
		}
	}
	return g
}
