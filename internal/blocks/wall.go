package blocks

import (
	"math"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// WallGeometry extrudes the polyline ring into a vertical wall between
// minHeight and maxHeight. Each ring edge is split into steps of at most
// granularity. Walls are emitted even when the heights are equal.
func WallGeometry(e geodesy.Ellipsoid, ring []geodesy.Cartographic, minHeight, maxHeight, granularity float64) Geometry {
	points := densify(ring, granularity)
	if len(points) < 2 {
		return Geometry{}
	}

	total := 0.0
	for i := 1; i < len(points); i++ {
		total += angularLength(points[i-1], points[i])
	}

	var g Geometry
	walked := 0.0
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		step := angularLength(a, b)
		if step == 0 {
			continue
		}

		a0, a1 := a, a
		b0, b1 := b, b
		a0.Height, b0.Height = minHeight, minHeight
		a1.Height, b1.Height = maxHeight, maxHeight

		pa0, pa1 := e.CartographicToCartesian(a0), e.CartographicToCartesian(a1)
		pb0, pb1 := e.CartographicToCartesian(b0), e.CartographicToCartesian(b1)

		mid := geodesy.Cartographic{Longitude: (a.Longitude + b.Longitude) / 2, Latitude: (a.Latitude + b.Latitude) / 2}
		normal := e.GeodeticSurfaceNormal(mid).Cross(pb0.Sub(pa0)).Normalize()

		s0 := walked / total
		walked += step
		s1 := walked / total

		base := uint32(len(g.Vertices))
		g.Vertices = append(g.Vertices,
			Vertex{Position: pa0, Normal: normal, ST: [2]float64{s0, 0}},
			Vertex{Position: pa1, Normal: normal, ST: [2]float64{s0, 1}},
			Vertex{Position: pb0, Normal: normal, ST: [2]float64{s1, 0}},
			Vertex{Position: pb1, Normal: normal, ST: [2]float64{s1, 1}},
		)
		g.Indices = append(g.Indices,
			base, base+1, base+2,
			base+1, base+3, base+2,
		)
	}
	return g
}

// densify inserts evenly spaced points so no ring edge spans more than
// granularity in longitude or latitude.
func densify(ring []geodesy.Cartographic, granularity float64) []geodesy.Cartographic {
	if len(ring) == 0 {
		return nil
	}
	out := []geodesy.Cartographic{ring[0]}
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		n := segments(angularLength(a, b), granularity)
		for k := 1; k <= n; k++ {
			f := float64(k) / float64(n)
			p := geodesy.Cartographic{
				Longitude: a.Longitude + f*(b.Longitude-a.Longitude),
				Latitude:  a.Latitude + f*(b.Latitude-a.Latitude),
			}
			if k == n {
				p = b
			}
			out = append(out, p)
		}
	}
	return out
}

func angularLength(a, b geodesy.Cartographic) float64 {
	return math.Max(math.Abs(b.Longitude-a.Longitude), math.Abs(b.Latitude-a.Latitude))
}
