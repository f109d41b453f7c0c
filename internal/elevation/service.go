// Package elevation samples terrain heights for tile cells and snaps them
// into block heights.
package elevation

import (
	"context"
	"errors"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// ErrLengthMismatch is returned when a service answers with a different
// number of samples than it was asked for.
var ErrLengthMismatch = errors.New("elevation: sample count mismatch")

// Service answers height queries. Implementations return one position per
// input, in input order, with Height filled in. SampleTerrain may block; it
// is never called on the frame loop goroutine.
type Service interface {
	SampleTerrain(ctx context.Context, level int, positions []geodesy.Cartographic) ([]geodesy.Cartographic, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, level int, positions []geodesy.Cartographic) ([]geodesy.Cartographic, error)

// SampleTerrain calls f.
func (f ServiceFunc) SampleTerrain(ctx context.Context, level int, positions []geodesy.Cartographic) ([]geodesy.Cartographic, error) {
	return f(ctx, level, positions)
}
