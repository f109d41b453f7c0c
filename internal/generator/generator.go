// Package generator drives the tile provider over one quadtree level until
// every tile has its blocks.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/blockterrain/internal/async"
	"github.com/Faultbox/blockterrain/internal/config"
	"github.com/Faultbox/blockterrain/internal/elevation"
	"github.com/Faultbox/blockterrain/internal/export"
	"github.com/Faultbox/blockterrain/internal/imagery"
	"github.com/Faultbox/blockterrain/internal/logger"
	"github.com/Faultbox/blockterrain/internal/metrics"
	"github.com/Faultbox/blockterrain/internal/provider"
	"github.com/Faultbox/blockterrain/internal/render"
	"github.com/Faultbox/blockterrain/internal/tile"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// ErrIncomplete is returned by Run when the frame budget ran out before every
// tile finished loading.
var ErrIncomplete = errors.New("tiles still loading")

// maxRetries is how many times a failed tile is sent back to Start.
const maxRetries = 3

// frameWait bounds how long one frame waits for background work.
const frameWait = 16 * time.Millisecond

// Report summarizes a run.
type Report struct {
	Frames   int
	Tiles    int
	Done     int
	Failures int
	Commands int
	OBJ      export.Stats
	Elapsed  time.Duration
}

// Generator owns the loop, provider and backends for one run.
type Generator struct {
	cfg      *config.Config
	loop     *async.Loop
	backend  *render.Headless
	provider *provider.TileProvider
	tiles    []*tile.Tile
	closers  []func() error
	server   *http.Server
	failures int
	retries  map[string]int
	closed   bool
	log      *zap.Logger
}

// New wires the elevation source, cache tiers, reference image and headless
// backend described by cfg.
func New(cfg *config.Config) (*Generator, error) {
	g := &Generator{
		cfg:     cfg,
		loop:    async.NewLoop(cfg.Elevation.Workers),
		backend: render.NewHeadless(cfg.Render.ReadyAfterFrames),
		retries: make(map[string]int),
		log:     logger.Named("generator"),
	}

	service, err := g.openElevation()
	if err != nil {
		g.Close()
		return nil, err
	}

	ref := imagery.LoadReference(g.loop, cfg.Imagery.Path, cfg.Imagery.Width, cfg.Imagery.Height)

	g.provider, err = provider.New(cfg, g.loop, service, ref, g.backend)
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create tile provider: %w", err)
	}
	g.provider.ErrorEvent().AddListener(g.onLoadError)

	g.tiles = g.provider.TilingScheme().LevelTiles(cfg.Output.Level)

	if cfg.Metrics.Listen != "" {
		g.serveMetrics(cfg.Metrics.Listen)
	}

	g.log.Info("generator initialized",
		zap.Int("level", cfg.Output.Level),
		zap.Int("tiles", len(g.tiles)),
		zap.String("elevation", cfg.Elevation.Source),
		zap.String("tint", cfg.Terrain.TintStrategy))
	return g, nil
}

// openElevation builds the backing service and stacks the configured cache
// tiers in front of it, fastest first.
func (g *Generator) openElevation() (elevation.Service, error) {
	ecfg := g.cfg.Elevation

	var service elevation.Service
	switch ecfg.Source {
	case config.SourceSQLite:
		dem, err := elevation.OpenSQLiteDEM(ecfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to open DEM: %w", err)
		}
		g.closers = append(g.closers, dem.Close)
		service = dem
	default:
		service = &elevation.Faux{Seed: ecfg.Seed, MaxHeight: ecfg.MaxHeight}
	}

	var tiers []elevation.Tier
	if ecfg.CacheSize > 0 {
		tiers = append(tiers, elevation.Tier{Name: "memory", Store: elevation.NewMemoryStore(ecfg.CacheSize)})
	}
	if client := elevation.OpenRedis(ecfg.Redis.Addr, ecfg.Redis.Password, ecfg.Redis.DB); client != nil {
		store := elevation.NewRedisStore(client, ecfg.Redis.TTL)
		g.closers = append(g.closers, store.Close)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			// Reads against an unreachable tier are treated as misses.
			g.log.Warn("redis cache unreachable", zap.String("addr", ecfg.Redis.Addr), zap.Error(err))
		}
		tiers = append(tiers, elevation.Tier{Name: "redis", Store: store})
	}
	if len(tiers) == 0 {
		return service, nil
	}
	return elevation.NewCached(service, tiers...), nil
}

func (g *Generator) onLoadError(e *provider.LoadError) {
	g.failures++

	key := fmt.Sprintf("L%d/%d/%d", e.Level, e.X, e.Y)
	if g.retries[key] >= maxRetries {
		g.log.Error("giving up on tile", zap.String("tile", key), zap.Int("attempts", g.retries[key]+1))
		return
	}
	g.retries[key]++
	e.Retry = true
	g.log.Debug("retrying tile", zap.String("tile", key), zap.Int("attempt", g.retries[key]))
}

func (g *Generator) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	g.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	g.log.Info("serving metrics", zap.String("addr", addr))
}

// Run pumps frames until every tile is Done or the frame budget is spent,
// then exports the result if an OBJ path is configured.
func (g *Generator) Run() (Report, error) {
	start := time.Now()
	report := Report{Tiles: len(g.tiles)}

	frame := &render.FrameState{
		Mode:       render.Scene3D,
		Projection: geodesy.GeographicProjection{Ellipsoid: geodesy.WGS84},
	}

	for report.Frames < g.cfg.Output.MaxFrames {
		frame.FrameNumber++
		report.Frames++

		commands := g.frame(frame)
		report.Done = g.countDone()
		if report.Done == len(g.tiles) {
			report.Commands = commands
			break
		}
		g.wait()
	}

	report.Failures = g.failures
	report.Elapsed = time.Since(start)

	g.log.Info("generation finished",
		zap.Int("frames", report.Frames),
		zap.Int("done", report.Done),
		zap.Int("tiles", report.Tiles),
		zap.Int("failures", report.Failures),
		zap.Duration("elapsed", report.Elapsed))

	if report.Done < len(g.tiles) {
		return report, fmt.Errorf("%w: %d of %d after %d frames", ErrIncomplete, len(g.tiles)-report.Done, len(g.tiles), report.Frames)
	}

	if path := g.cfg.Output.OBJPath; path != "" {
		stats, err := export.WriteOBJFile(path, g.Meshes(), mgl64.Vec3{})
		if err != nil {
			return report, fmt.Errorf("failed to export %s: %w", path, err)
		}
		report.OBJ = stats
		g.log.Info("exported obj",
			zap.String("path", path),
			zap.Int("vertices", stats.Vertices),
			zap.Int("triangles", stats.Triangles))
	}
	return report, nil
}

// frame runs one provider update and returns the number of queued commands.
func (g *Generator) frame(frame *render.FrameState) int {
	g.loop.Poll()

	g.provider.BeginUpdate(frame)
	var commands []render.Command
	for _, t := range g.tiles {
		g.provider.LoadTile(frame, t)
		if t.State == tile.Done {
			g.provider.ShowTileThisFrame(t, frame, &commands)
		}
	}
	g.provider.EndUpdate(frame)
	return len(commands)
}

func (g *Generator) wait() {
	if g.loop.Pending() > 0 {
		return
	}
	select {
	case <-g.loop.Wake():
	case <-time.After(frameWait):
	}
}

func (g *Generator) countDone() int {
	n := 0
	for _, t := range g.tiles {
		if t.State == tile.Done {
			n++
		}
	}
	return n
}

// Tiles returns the tiles being generated.
func (g *Generator) Tiles() []*tile.Tile { return g.tiles }

// Meshes returns the descriptors of every finished tile, top then walls.
func (g *Generator) Meshes() []export.Mesh {
	var meshes []export.Mesh
	for _, t := range g.tiles {
		data, ok := t.Data.(*provider.TileData)
		if !ok || !data.HasGeometry() {
			continue
		}
		if d, ok := data.Top.(render.Describer); ok {
			meshes = append(meshes, export.Mesh{Name: t.String() + "/top", Primitive: d.Descriptor()})
		}
		if d, ok := data.Walls.(render.Describer); ok {
			meshes = append(meshes, export.Mesh{Name: t.String() + "/walls", Primitive: d.Descriptor()})
		}
	}
	return meshes
}

// Close releases the provider, the caches and the worker pool. It is safe to
// call more than once.
func (g *Generator) Close() {
	if g.closed {
		return
	}
	g.closed = true

	if g.provider != nil && !g.provider.IsDestroyed() {
		for _, t := range g.tiles {
			t.FreeResources()
		}
		g.provider.Destroy()
	}
	if g.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		g.server.Shutdown(ctx)
		cancel()
	}
	for _, c := range g.closers {
		if err := c(); err != nil {
			g.log.Warn("close failed", zap.Error(err))
		}
	}
	g.loop.Close()
}
