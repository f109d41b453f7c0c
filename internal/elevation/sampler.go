package elevation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Faultbox/blockterrain/internal/async"
	"github.com/Faultbox/blockterrain/internal/metrics"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// quantizeEpsilon absorbs floating point error so that a height already on
// the grid does not fall one step below it.
const quantizeEpsilon = 1e-9

// Sampler fetches raw elevations for cell centroids off the frame loop.
type Sampler struct {
	loop    *async.Loop
	service Service
	timeout time.Duration
}

// NewSampler creates a sampler. A zero timeout means no deadline.
func NewSampler(loop *async.Loop, service Service, timeout time.Duration) *Sampler {
	return &Sampler{loop: loop, service: service, timeout: timeout}
}

// RequestLevel is the level actually queried for a tile at level. One level
// coarser is requested since it is more likely to be cached.
func RequestLevel(level int) int {
	return max(0, level-1)
}

// Sample resolves to one raw elevation per centroid, in input order. The
// future settles on the loop goroutine.
func (s *Sampler) Sample(centroids []geodesy.Cartographic, level int) *async.Future[[]float64] {
	positions := make([]geodesy.Cartographic, len(centroids))
	copy(positions, centroids)
	requestLevel := RequestLevel(level)

	return async.Go(s.loop, func() ([]float64, error) {
		ctx := context.Background()
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		start := time.Now()
		sampled, err := s.service.SampleTerrain(ctx, requestLevel, positions)
		metrics.ElevationFetchSeconds.Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("sampling terrain at level %d: %w", requestLevel, err)
		}
		if len(sampled) != len(positions) {
			return nil, fmt.Errorf("%w: asked for %d, got %d", ErrLengthMismatch, len(positions), len(sampled))
		}

		heights := make([]float64, len(sampled))
		for i, p := range sampled {
			heights[i] = p.Height
		}
		return heights, nil
	})
}

// QuantizeHeight scales a raw elevation and snaps it down onto a grid whose
// step is half the cell's ground diagonal. Negative elevations clamp to 0.
func QuantizeHeight(raw, heightScale, halfDiagonal float64) float64 {
	if halfDiagonal <= 0 || math.IsNaN(raw) {
		return 0
	}
	return math.Floor(math.Max(0, raw)*heightScale/halfDiagonal+quantizeEpsilon) * halfDiagonal
}

// SnapHeight snaps an already scaled height onto the same grid. It is the
// identity on QuantizeHeight's output for the same step.
func SnapHeight(height, halfDiagonal float64) float64 {
	return QuantizeHeight(height, 1, halfDiagonal)
}
