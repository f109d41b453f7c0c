package tile

import (
	"math"

	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// Heightmap quality and tile width used to derive the default geometric error.
const (
	heightmapTerrainQuality = 0.25
	heightmapTileWidth      = 65
)

// GeographicTilingScheme splits the globe into two level-zero tiles, one per
// hemisphere of longitude, and halves each tile per level.
type GeographicTilingScheme struct {
	Ellipsoid  geodesy.Ellipsoid
	Rectangle  geodesy.Rectangle
	Projection geodesy.GeographicProjection

	rootX, rootY int
}

// NewGeographicTilingScheme creates the WGS84 geographic scheme.
func NewGeographicTilingScheme() *GeographicTilingScheme {
	return &GeographicTilingScheme{
		Ellipsoid:  geodesy.WGS84,
		Rectangle:  geodesy.MaxRectangle,
		Projection: geodesy.GeographicProjection{Ellipsoid: geodesy.WGS84},
		rootX:      2,
		rootY:      1,
	}
}

// NumberOfXTilesAtLevel returns the tile count along longitude.
func (s *GeographicTilingScheme) NumberOfXTilesAtLevel(level int) int {
	return s.rootX << level
}

// NumberOfYTilesAtLevel returns the tile count along latitude.
func (s *GeographicTilingScheme) NumberOfYTilesAtLevel(level int) int {
	return s.rootY << level
}

// TileXYToRectangle returns the rectangle of tile (x, y). Row 0 is the
// northernmost row.
func (s *GeographicTilingScheme) TileXYToRectangle(x, y, level int) geodesy.Rectangle {
	w := s.Rectangle.Width() / float64(s.NumberOfXTilesAtLevel(level))
	h := s.Rectangle.Height() / float64(s.NumberOfYTilesAtLevel(level))

	west := s.Rectangle.West + float64(x)*w
	north := s.Rectangle.North - float64(y)*h
	return geodesy.Rectangle{West: west, South: north - h, East: west + w, North: north}
}

// LevelTiles creates every tile at level in row-major order.
func (s *GeographicTilingScheme) LevelTiles(level int) []*Tile {
	nx, ny := s.NumberOfXTilesAtLevel(level), s.NumberOfYTilesAtLevel(level)
	tiles := make([]*Tile, 0, nx*ny)
	for y := range ny {
		for x := range nx {
			tiles = append(tiles, New(s, x, y, level))
		}
	}
	return tiles
}

// DefaultLevelZeroMaximumGeometricError returns the level-zero error of a
// heightmap terrain laid out on s.
func DefaultLevelZeroMaximumGeometricError(s *GeographicTilingScheme) float64 {
	return s.Ellipsoid.MaximumRadius() * 2 * math.Pi * heightmapTerrainQuality /
		float64(heightmapTileWidth*s.NumberOfXTilesAtLevel(0))
}
