// Package tile defines the quadtree tile nodes owned by the host engine and
// the geographic tiling scheme that lays them out.
package tile

import (
	"fmt"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// LoadState is a tile's position in its load lifecycle.
type LoadState int

const (
	// Start is the initial state; the tile carries no data.
	Start LoadState = iota
	// Loading means sampling or geometry upload is in flight.
	Loading
	// Done means geometry is live and the tile can render.
	Done
)

func (s LoadState) String() string {
	switch s {
	case Start:
		return "start"
	case Loading:
		return "loading"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// Data is the payload a tile provider attaches to a tile. Release frees any
// resources it holds and must be safe to call more than once.
type Data interface {
	Release()
}

// Tile is one node of the LOD quadtree.
type Tile struct {
	X, Y, Level int
	Rectangle   geodesy.Rectangle

	State      LoadState
	Renderable bool
	Data       Data
}

// New creates a tile covering the scheme cell (x, y) at level.
func New(scheme *GeographicTilingScheme, x, y, level int) *Tile {
	return &Tile{
		X:         x,
		Y:         y,
		Level:     level,
		Rectangle: scheme.TileXYToRectangle(x, y, level),
	}
}

// Advance moves the tile forward to s. Backward or repeated transitions are
// refused; only FreeResources returns a tile to Start.
func (t *Tile) Advance(s LoadState) bool {
	if s <= t.State {
		return false
	}
	t.State = s
	return true
}

// FreeResources releases the tile's data and resets it to Start.
func (t *Tile) FreeResources() {
	if t.Data != nil {
		t.Data.Release()
		t.Data = nil
	}
	t.State = Start
	t.Renderable = false
}

func (t *Tile) String() string {
	return fmt.Sprintf("L%d/%d/%d", t.Level, t.X, t.Y)
}
