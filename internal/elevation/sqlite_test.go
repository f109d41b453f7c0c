package elevation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

func writeTestDEM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dem.sqlite")

	db, err := CreateSQLiteDEM(path)
	if err != nil {
		t.Fatalf("CreateSQLiteDEM() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	// Level 0: 2x1, west half 100 m, east half 200 m.
	if err := WriteDEMLevel(ctx, db, 0, 2, 1, []float64{100, 200}); err != nil {
		t.Fatalf("WriteDEMLevel(0) error = %v", err)
	}
	// Level 2: 4x2 quadrants numbered in row-major order from the north-west.
	if err := WriteDEMLevel(ctx, db, 2, 4, 2, []float64{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("WriteDEMLevel(2) error = %v", err)
	}
	return path
}

func TestSQLiteDEM_LevelFor(t *testing.T) {
	dem, err := OpenSQLiteDEM(writeTestDEM(t))
	if err != nil {
		t.Fatalf("OpenSQLiteDEM() error = %v", err)
	}
	defer dem.Close()

	if n := len(dem.Levels()); n != 2 {
		t.Fatalf("Levels() has %d entries, want 2", n)
	}

	tests := []struct{ requested, want int }{
		{0, 0}, {1, 0}, {2, 2}, {9, 2}, {-1, 0},
	}
	for _, tt := range tests {
		if got := dem.LevelFor(tt.requested).Level; got != tt.want {
			t.Errorf("LevelFor(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestSQLiteDEM_SampleTerrain(t *testing.T) {
	dem, err := OpenSQLiteDEM(writeTestDEM(t))
	if err != nil {
		t.Fatalf("OpenSQLiteDEM() error = %v", err)
	}
	defer dem.Close()

	ps := []geodesy.Cartographic{
		geodesy.CartographicFromDegrees(-170, 45, 0),
		geodesy.CartographicFromDegrees(170, -45, 0),
		geodesy.CartographicFromDegrees(180, -90, 0), // clamps into the last cell
	}

	tests := []struct {
		level int
		want  []float64
	}{
		{0, []float64{100, 200, 200}},
		{1, []float64{100, 200, 200}},
		{3, []float64{1, 8, 8}},
	}
	for _, tt := range tests {
		got, err := dem.SampleTerrain(context.Background(), tt.level, ps)
		if err != nil {
			t.Fatalf("SampleTerrain(level %d) error = %v", tt.level, err)
		}
		for i := range tt.want {
			if got[i].Height != tt.want[i] {
				t.Errorf("level %d: height[%d] = %v, want %v", tt.level, i, got[i].Height, tt.want[i])
			}
		}
	}
}

func TestWriteDEMLevel_Mismatch(t *testing.T) {
	db, err := CreateSQLiteDEM(filepath.Join(t.TempDir(), "dem.sqlite"))
	if err != nil {
		t.Fatalf("CreateSQLiteDEM() error = %v", err)
	}
	defer db.Close()

	err = WriteDEMLevel(context.Background(), db, 0, 2, 2, []float64{1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("WriteDEMLevel() error = %v, want ErrLengthMismatch", err)
	}
}

func TestOpenSQLiteDEM_Missing(t *testing.T) {
	if _, err := OpenSQLiteDEM(filepath.Join(t.TempDir(), "nope.sqlite")); err == nil {
		t.Error("expected error opening missing DEM")
	}
}
