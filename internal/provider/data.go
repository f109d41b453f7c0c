package provider

import (
	"errors"
	"fmt"

	"github.com/Faultbox/blockterrain/internal/metrics"
	"github.com/Faultbox/blockterrain/internal/render"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// TileData is the payload the provider attaches to a tile. It owns the
// tile's two primitives.
type TileData struct {
	Top      render.Primitive
	Walls    render.Primitive
	Sphere3D geodesy.BoundingSphere
	Sphere2D geodesy.BoundingSphere

	// Err is the last load failure, if any.
	Err error

	released bool
}

// HasGeometry reports whether the primitives have been created.
func (d *TileData) HasGeometry() bool {
	return d.Top != nil && d.Walls != nil
}

// Released reports whether Release has been called.
func (d *TileData) Released() bool { return d.released }

// Sphere returns the bounding sphere for the scene mode.
func (d *TileData) Sphere(mode render.SceneMode) geodesy.BoundingSphere {
	if mode == render.Scene3D {
		return d.Sphere3D
	}
	return d.Sphere2D
}

// Release destroys the primitives. Calling it again is a no-op.
func (d *TileData) Release() {
	if d.released {
		return
	}
	d.released = true

	for _, p := range []render.Primitive{d.Top, d.Walls} {
		if p != nil && !p.IsDestroyed() {
			p.Destroy()
			metrics.PrimitivesReleased.Inc()
		}
	}
	d.Top, d.Walls = nil, nil
}

// LoadError reports a tile whose sampling failed. Listeners of the
// provider's error event may set Retry to have the tile start over on its
// next load.
type LoadError struct {
	X, Y, Level int
	Stage       string
	Err         error
	Retry       bool
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading tile L%d/%d/%d (%s): %v", e.Level, e.X, e.Y, e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// stageError tags a pipeline failure with the stage that produced it.
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }

func (e *stageError) Unwrap() error { return e.err }

func tagStage(stage string) func(error) error {
	return func(err error) error { return &stageError{stage: stage, err: err} }
}

// stageOf splits err into its stage and the underlying error.
func stageOf(err error) (string, error) {
	var se *stageError
	if errors.As(err, &se) {
		return se.stage, se.err
	}
	return metrics.StageBuild, err
}
