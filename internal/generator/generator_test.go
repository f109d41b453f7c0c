package generator

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/blockterrain/internal/config"
	"github.com/Faultbox/blockterrain/internal/elevation"
	"github.com/Faultbox/blockterrain/internal/logger"
)

func init() {
	logger.InitNop()
}

func writeWorld(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 64), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, "world.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating image: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding image: %v", err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Imagery.Path = writeWorld(t, dir)
	cfg.Imagery.Width, cfg.Imagery.Height = 8, 4
	cfg.Terrain.SubgridCount = 2
	cfg.Elevation.Workers = 2
	cfg.Elevation.CacheSize = 64
	cfg.Output.Level = 0
	cfg.Output.MaxFrames = 500
	cfg.Output.OBJPath = filepath.Join(dir, "out", "level0.obj")
	return cfg
}

func TestRun_FauxSource(t *testing.T) {
	cfg := testConfig(t)

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer g.Close()

	report, err := g.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Tiles != 2 || report.Done != 2 {
		t.Errorf("report = %+v, want 2 of 2 tiles done", report)
	}
	// Two primitives per tile.
	if report.Commands != 4 {
		t.Errorf("Commands = %d, want 4", report.Commands)
	}
	if got := len(g.Meshes()); got != 4 {
		t.Errorf("len(Meshes()) = %d, want 4", got)
	}
	if report.OBJ.Triangles == 0 {
		t.Error("expected triangles in the exported obj")
	}
	if _, err := os.Stat(cfg.Output.OBJPath); err != nil {
		t.Errorf("obj not written: %v", err)
	}
}

func TestRun_SQLiteSource(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.OBJPath = ""
	cfg.Elevation.Source = config.SourceSQLite
	cfg.Elevation.Database = filepath.Join(t.TempDir(), "dem.sqlite")

	db, err := elevation.CreateSQLiteDEM(cfg.Elevation.Database)
	if err != nil {
		t.Fatalf("CreateSQLiteDEM() error = %v", err)
	}
	if err := elevation.WriteDEMLevel(context.Background(), db, 0, 2, 1, []float64{100, 200}); err != nil {
		t.Fatalf("WriteDEMLevel() error = %v", err)
	}
	db.Close()

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer g.Close()

	report, err := g.Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Done != 2 {
		t.Errorf("Done = %d, want 2", report.Done)
	}
}

func TestNew_MissingDEM(t *testing.T) {
	cfg := testConfig(t)
	cfg.Elevation.Source = config.SourceSQLite
	cfg.Elevation.Database = filepath.Join(t.TempDir(), "absent.sqlite")

	if _, err := New(cfg); err == nil {
		t.Fatal("New() with a missing DEM should fail")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Terrain.SubgridCount = 0

	if _, err := New(cfg); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("New() error = %v, want ErrInvalid", err)
	}
}

func TestRun_MissingImageGivesUp(t *testing.T) {
	cfg := testConfig(t)
	cfg.Imagery.Path = filepath.Join(t.TempDir(), "missing.png")
	cfg.Output.MaxFrames = 40

	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer g.Close()

	report, err := g.Run()
	if !errors.Is(err, ErrIncomplete) {
		t.Fatalf("Run() error = %v, want ErrIncomplete", err)
	}
	if report.Done != 0 {
		t.Errorf("Done = %d, want 0", report.Done)
	}
	// Every tile fails once and then once per retry.
	if want := 2 * (maxRetries + 1); report.Failures != want {
		t.Errorf("Failures = %d, want %d", report.Failures, want)
	}
}
