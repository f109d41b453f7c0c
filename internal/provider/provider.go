// Package provider implements the block tile provider the host quadtree
// engine drives: LOD metrics, the per-tile load state machine and
// visibility.
package provider

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"go.uber.org/zap"

	"github.com/Faultbox/blockterrain/internal/async"
	"github.com/Faultbox/blockterrain/internal/blocks"
	"github.com/Faultbox/blockterrain/internal/config"
	"github.com/Faultbox/blockterrain/internal/elevation"
	"github.com/Faultbox/blockterrain/internal/imagery"
	"github.com/Faultbox/blockterrain/internal/logger"
	"github.com/Faultbox/blockterrain/internal/metrics"
	"github.com/Faultbox/blockterrain/internal/render"
	"github.com/Faultbox/blockterrain/internal/tile"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// ErrDestroyed is returned by operations on a destroyed provider.
var ErrDestroyed = errors.New("provider: destroyed")

// Occluder hides spheres behind the globe or other occluding bodies.
type Occluder interface {
	IsVisible(s geodesy.BoundingSphere) bool
}

// TileProvider generates block geometry for globe tiles. All methods must
// be called on the loop goroutine.
type TileProvider struct {
	scheme  *tile.GeographicTilingScheme
	heights *elevation.Sampler
	colors  *imagery.Sampler
	builder *blocks.Builder
	backend render.Backend

	errorEvent     async.Event[*LoadError]
	levelZeroError float64
	poleScale      float64
	subgrid        int

	destroyed bool
	loading   int // tiles seen in Loading since BeginUpdate
	log       *zap.Logger
}

// New creates a provider. The config is read once here; later changes to it
// have no effect.
func New(cfg *config.Config, loop *async.Loop, service elevation.Service, ref *imagery.Reference, backend render.Backend) (*TileProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := imagery.ParseTintStrategy(cfg.Terrain.TintStrategy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	scheme := tile.NewGeographicTilingScheme()
	return &TileProvider{
		scheme:  scheme,
		heights: elevation.NewSampler(loop, service, cfg.Elevation.Timeout),
		colors:  imagery.NewSampler(ref),
		builder: blocks.NewBuilder(blocks.Options{
			Ellipsoid:   scheme.Ellipsoid,
			Projection:  scheme.Projection,
			HeightScale: cfg.Terrain.HeightScale,
			Granularity: cfg.Terrain.Granularity(),
			ColorLevels: cfg.Terrain.ColorQuantizeLevels,
			Strategy:    strategy,
			TopTexture:  cfg.Imagery.TopTexture,
			WallTexture: cfg.Imagery.WallTexture,
		}),
		backend:        backend,
		levelZeroError: tile.DefaultLevelZeroMaximumGeometricError(scheme) * cfg.Terrain.DetailFactor,
		poleScale:      cfg.Terrain.PoleScale,
		subgrid:        cfg.Terrain.SubgridCount,
		log:            logger.Named("provider"),
	}, nil
}

// TilingScheme returns the geographic scheme tiles are laid out on.
func (p *TileProvider) TilingScheme() *tile.GeographicTilingScheme { return p.scheme }

// ErrorEvent is raised for every failed tile load.
func (p *TileProvider) ErrorEvent() *async.Event[*LoadError] { return &p.errorEvent }

// Ready reports whether the provider can load tiles.
func (p *TileProvider) Ready() bool { return !p.destroyed }

// GetLevelMaximumGeometricError returns the geometric error of tiles at
// level. Each level halves the error of its parent.
func (p *TileProvider) GetLevelMaximumGeometricError(level int) float64 {
	return math.Ldexp(p.levelZeroError, -level)
}

// BeginUpdate starts a frame.
func (p *TileProvider) BeginUpdate(frame *render.FrameState) {
	p.loading = 0
}

// EndUpdate finishes a frame.
func (p *TileProvider) EndUpdate(frame *render.FrameState) {
	if p.loading > 0 {
		p.log.Debug("frame finished", zap.Uint64("frame", frame.FrameNumber), zap.Int("loading_tiles", p.loading))
	}
}

// LoadTile advances t through its load lifecycle. The first call launches
// sampling; later calls move the tile to Done once its primitives are ready.
func (p *TileProvider) LoadTile(frame *render.FrameState, t *tile.Tile) {
	if p.destroyed {
		return
	}
	if t.State == tile.Start {
		p.startLoad(t)
	}
	if t.State != tile.Loading {
		return
	}
	p.loading++

	data, ok := t.Data.(*TileData)
	if !ok || !data.HasGeometry() {
		return
	}
	data.Top.Update(frame, nil)
	data.Walls.Update(frame, nil)
	if data.Top.Ready() && data.Walls.Ready() && t.Advance(tile.Done) {
		t.Renderable = true
		metrics.TileLoadsCompleted.Inc()
	}
}

func (p *TileProvider) startLoad(t *tile.Tile) {
	rect := t.Rectangle.ScaleLatitudes(p.poleScale)
	cells := p.builder.Cells(rect, p.subgrid)

	data := &TileData{}
	data.Sphere3D, data.Sphere2D = p.builder.Spheres(rect, 0)
	t.Data = data
	t.Advance(tile.Loading)
	metrics.TileLoadsStarted.Inc()
	p.log.Debug("tile load started", zap.Stringer("tile", t), zap.Int("cells", len(cells)))

	centroids := blocks.Centroids(cells)
	heights := async.WrapErr(p.heights.Sample(centroids, t.Level), tagStage(metrics.StageElevation))
	colors := async.WrapErr(p.colors.Sample(centroids), tagStage(metrics.StageImagery))

	async.Both(colors, heights).OnComplete(func(samples async.Pair[[]color.RGBA, []float64], err error) {
		p.complete(t, data, rect, cells, samples, err)
	})
}

// complete runs once both samplers have settled. It drops the result when
// the tile has since been released, reset or handed new data.
func (p *TileProvider) complete(t *tile.Tile, data *TileData, rect geodesy.Rectangle, cells []blocks.Cell, samples async.Pair[[]color.RGBA, []float64], err error) {
	if p.destroyed || data.released || t.Data != data || t.State != tile.Loading {
		metrics.StaleResults.Inc()
		p.log.Debug("stale tile result dropped", zap.Stringer("tile", t))
		return
	}
	if err != nil {
		p.fail(t, data, err)
		return
	}

	if err := p.builder.Fill(cells, samples.Second, samples.First); err != nil {
		p.fail(t, data, err)
		return
	}
	res := p.builder.Build(rect, cells)

	data.Top = p.backend.CreatePrimitive(res.Top)
	data.Walls = p.backend.CreatePrimitive(res.Walls)
	data.Sphere3D = res.Sphere3D
	data.Sphere2D = res.Sphere2D
	data.Err = nil
}

func (p *TileProvider) fail(t *tile.Tile, data *TileData, err error) {
	stage, cause := stageOf(err)
	data.Err = cause
	metrics.TileLoadsFailed.WithLabelValues(stage).Inc()
	p.log.Warn("tile load failed",
		zap.Stringer("tile", t),
		zap.String("stage", stage),
		zap.Error(cause))

	le := &LoadError{X: t.X, Y: t.Y, Level: t.Level, Stage: stage, Err: cause}
	p.errorEvent.Raise(le)
	if le.Retry {
		t.FreeResources()
	}
}

// ComputeTileVisibility classifies t against the frame's culling volume
// and, when given, the occluder.
func (p *TileProvider) ComputeTileVisibility(t *tile.Tile, frame *render.FrameState, occluder Occluder) geodesy.Intersect {
	s := p.sphere(t, frame.Mode)
	vis := frame.CullingVolume.ComputeVisibility(s)
	if vis != geodesy.Outside && occluder != nil && !occluder.IsVisible(s) {
		return geodesy.Outside
	}
	return vis
}

// ShowTileThisFrame queues the draw commands of a loaded tile.
func (p *TileProvider) ShowTileThisFrame(t *tile.Tile, frame *render.FrameState, commands *[]render.Command) {
	data, ok := t.Data.(*TileData)
	if !ok || !data.HasGeometry() {
		return
	}
	data.Top.Update(frame, commands)
	data.Walls.Update(frame, commands)
}

// ComputeDistanceToTile returns the camera's distance to the tile's
// bounding sphere, zero when the camera is inside it.
func (p *TileProvider) ComputeDistanceToTile(t *tile.Tile, frame *render.FrameState) float64 {
	return p.sphere(t, frame.Mode).Distance(frame.CameraPosition)
}

// sphere returns the tile's bounding sphere for mode, falling back to one
// fitted to its rectangle when the tile has no data yet.
func (p *TileProvider) sphere(t *tile.Tile, mode render.SceneMode) geodesy.BoundingSphere {
	if data, ok := t.Data.(*TileData); ok {
		return data.Sphere(mode)
	}
	s3, s2 := p.builder.Spheres(t.Rectangle.ScaleLatitudes(p.poleScale), 0)
	if mode == render.Scene3D {
		return s3
	}
	return s2
}

// IsDestroyed reports whether Destroy has been called.
func (p *TileProvider) IsDestroyed() bool { return p.destroyed }

// Destroy stops the provider. Results of loads still in flight are
// discarded when they arrive. Tiles keep their data until the host frees
// them.
func (p *TileProvider) Destroy() error {
	if p.destroyed {
		return ErrDestroyed
	}
	p.destroyed = true
	p.log.Info("tile provider destroyed")
	return nil
}
