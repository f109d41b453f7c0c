package elevation

import (
	"context"
	"math"
	"time"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// Faux is an offline source returning pseudo-random heights in
// [0, MaxHeight). The same seed and position always give the same height.
type Faux struct {
	Seed      uint64
	MaxHeight float64
	Delay     time.Duration // Simulated latency per request
}

// SampleTerrain implements Service.
func (f *Faux) SampleTerrain(ctx context.Context, level int, positions []geodesy.Cartographic) ([]geodesy.Cartographic, error) {
	if f.Delay > 0 {
		timer := time.NewTimer(f.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]geodesy.Cartographic, len(positions))
	for i, p := range positions {
		h := mix(f.Seed ^ mix(math.Float64bits(p.Longitude)) ^ mix(math.Float64bits(p.Latitude)<<1))
		p.Height = float64(h>>11) / (1 << 53) * f.MaxHeight
		out[i] = p
	}
	return out, nil
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
