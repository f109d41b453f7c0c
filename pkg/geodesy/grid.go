package geodesy

// Subdivide partitions r into an n×n row-major grid of equal-angle rectangles.
// Rows run south to north and columns west to east. Neighbouring cells share
// bit-identical edges and the outer edges equal r's bounds. n < 1 is treated as 1.
func Subdivide(r Rectangle, n int) []Rectangle {
	if n < 1 {
		n = 1
	}

	lons := splits(r.West, r.East, n)
	lats := splits(r.South, r.North, n)

	cells := make([]Rectangle, 0, n*n)
	for y := range n {
		for x := range n {
			cells = append(cells, Rectangle{
				West:  lons[x],
				South: lats[y],
				East:  lons[x+1],
				North: lats[y+1],
			})
		}
	}
	return cells
}

// Centroids returns the center of every rectangle in order.
func Centroids(rects []Rectangle) []Cartographic {
	out := make([]Cartographic, len(rects))
	for i, r := range rects {
		out[i] = r.Center()
	}
	return out
}

func splits(lo, hi float64, n int) []float64 {
	out := make([]float64, n+1)
	d := hi - lo
	for i := range n {
		out[i] = lo + float64(i)/float64(n)*d
	}
	out[n] = hi
	return out
}
