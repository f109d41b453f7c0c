package elevation

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func TestLevelSize(t *testing.T) {
	tests := []struct {
		level, subgrid int
		w, h           int
	}{
		{0, 1, 2, 1},
		{0, 5, 10, 5},
		{2, 1, 8, 4},
		{3, 2, 32, 16},
		{1, 0, 4, 2},
	}
	for _, tt := range tests {
		w, h := LevelSize(tt.level, tt.subgrid)
		if w != tt.w || h != tt.h {
			t.Errorf("LevelSize(%d, %d) = %dx%d, want %dx%d", tt.level, tt.subgrid, w, h, tt.w, tt.h)
		}
	}
}

func TestHeightmapGrid(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetGray(x, 0, color.Gray{Y: 255})
		img.SetGray(x, 1, color.Gray{Y: 0})
	}
	hm := Heightmap{Image: img, Min: -100, Max: 900}

	grid := hm.Grid(4, 2)
	if len(grid) != 8 {
		t.Fatalf("len(grid) = %d, want 8", len(grid))
	}
	for x := 0; x < 4; x++ {
		if math.Abs(grid[x]-900) > 1e-6 {
			t.Errorf("north row[%d] = %v, want 900", x, grid[x])
		}
		if math.Abs(grid[4+x]+100) > 1e-6 {
			t.Errorf("south row[%d] = %v, want -100", x, grid[4+x])
		}
	}
}

func TestHeightmapGridResamples(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 64; x++ {
			img.SetGray(x, y, color.Gray{Y: 128})
		}
	}
	grid := Heightmap{Image: img, Min: 0, Max: 1000}.Grid(2, 1)

	want := 1000 * float64(0x8080) / 0xffff
	for i, h := range grid {
		if math.Abs(h-want) > 1 {
			t.Errorf("grid[%d] = %v, want about %v", i, h, want)
		}
	}
}
