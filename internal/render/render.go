// Package render is the boundary to the drawing backend. The tile pipeline
// only produces backend-neutral primitive descriptors and asks for a ready
// flag; everything GPU-side lives behind Backend.
package render

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/blockterrain/internal/blocks"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// SceneMode is the active projection of the scene.
type SceneMode int

const (
	Scene3D SceneMode = iota
	Scene2D
	ColumbusView
)

func (m SceneMode) String() string {
	switch m {
	case Scene3D:
		return "3D"
	case Scene2D:
		return "2D"
	case ColumbusView:
		return "columbus"
	default:
		return "unknown"
	}
}

// FrameState is the per-frame view the host passes to the provider.
type FrameState struct {
	Mode           SceneMode
	FrameNumber    uint64
	CameraPosition mgl64.Vec3
	CullingVolume  geodesy.CullingVolume
	Projection     geodesy.GeographicProjection
}

// Command is one draw request queued during a frame.
type Command struct {
	Primitive string
	Instances int
	Material  blocks.Material
}

// Primitive is a drawable owned by one tile.
type Primitive interface {
	// Update advances any pending GPU work and, when commands is non-nil,
	// appends this frame's draw commands.
	Update(frame *FrameState, commands *[]Command)
	Ready() bool
	Destroy()
	IsDestroyed() bool
}

// Backend turns descriptors into drawables.
type Backend interface {
	CreatePrimitive(p blocks.Primitive) Primitive
}
