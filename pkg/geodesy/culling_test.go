package geodesy

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testFrustum() CullingVolume {
	// Camera at the origin looking down +X with Z up.
	return PerspectiveFrustum(
		mgl64.Vec3{0, 0, 0},
		mgl64.Vec3{1, 0, 0},
		mgl64.Vec3{0, 0, 1},
		math.Pi/3, 1, 1, 1000,
	)
}

func TestPerspectiveFrustum_Visibility(t *testing.T) {
	cv := testFrustum()

	tests := []struct {
		name   string
		sphere BoundingSphere
		want   Intersect
	}{
		{"ahead", BoundingSphere{Center: mgl64.Vec3{100, 0, 0}, Radius: 1}, Inside},
		{"behind", BoundingSphere{Center: mgl64.Vec3{-100, 0, 0}, Radius: 1}, Outside},
		{"far left", BoundingSphere{Center: mgl64.Vec3{100, 500, 0}, Radius: 1}, Outside},
		{"far right", BoundingSphere{Center: mgl64.Vec3{100, -500, 0}, Radius: 1}, Outside},
		{"far above", BoundingSphere{Center: mgl64.Vec3{100, 0, 500}, Radius: 1}, Outside},
		{"far below", BoundingSphere{Center: mgl64.Vec3{100, 0, -500}, Radius: 1}, Outside},
		{"beyond far plane", BoundingSphere{Center: mgl64.Vec3{2000, 0, 0}, Radius: 1}, Outside},
		{"straddles far plane", BoundingSphere{Center: mgl64.Vec3{1000, 0, 0}, Radius: 10}, Intersecting},
		{"contains camera", BoundingSphere{Center: mgl64.Vec3{0, 0, 0}, Radius: 50}, Intersecting},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cv.ComputeVisibility(tt.sphere); got != tt.want {
				t.Errorf("ComputeVisibility() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCullingVolume_Empty(t *testing.T) {
	var cv CullingVolume
	if got := cv.ComputeVisibility(BoundingSphere{Radius: 1}); got != Inside {
		t.Errorf("empty culling volume = %v, want inside", got)
	}
}
