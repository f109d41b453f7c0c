package geodesy

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCartographicToCartesian_Axes(t *testing.T) {
	tests := []struct {
		name string
		in   Cartographic
		want mgl64.Vec3
	}{
		{"prime meridian", Cartographic{}, mgl64.Vec3{6378137.0, 0, 0}},
		{"east", Cartographic{Longitude: math.Pi / 2}, mgl64.Vec3{0, 6378137.0, 0}},
		{"north pole", Cartographic{Latitude: math.Pi / 2}, mgl64.Vec3{0, 0, 6356752.3142451793}},
		{"raised", Cartographic{Height: 1000}, mgl64.Vec3{6379137.0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WGS84.CartographicToCartesian(tt.in)
			for i := range 3 {
				if !approx(got[i], tt.want[i], 1e-6) {
					t.Errorf("CartographicToCartesian() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestGroundDiagonal(t *testing.T) {
	// A one-degree cell at the equator is ~157 km corner to corner.
	r := RectangleFromDegrees(0, 0, 1, 1)
	d := WGS84.GroundDiagonal(r)
	if d < 155000 || d > 159000 {
		t.Errorf("GroundDiagonal() = %v, want ~157 km", d)
	}

	// The same angular cell is narrower near the pole.
	high := WGS84.GroundDiagonal(RectangleFromDegrees(0, 80, 1, 81))
	if high >= d {
		t.Errorf("polar cell diagonal %v should be smaller than equatorial %v", high, d)
	}

	if got := WGS84.GroundDiagonal(Rectangle{}); got != 0 {
		t.Errorf("degenerate rectangle diagonal = %v, want 0", got)
	}
}

func TestProject(t *testing.T) {
	p := GeographicProjection{Ellipsoid: WGS84}
	got := p.Project(Cartographic{Longitude: 1, Latitude: -0.5, Height: 7})
	want := mgl64.Vec3{6378137.0, -0.5 * 6378137.0, 7}
	if got != want {
		t.Errorf("Project() = %v, want %v", got, want)
	}
}
