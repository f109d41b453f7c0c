package elevation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/Faultbox/blockterrain/pkg/geodesy"

	_ "github.com/mattn/go-sqlite3"
)

const demSchema = `
	CREATE TABLE IF NOT EXISTS dem_levels (
		level INTEGER PRIMARY KEY,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS dem (
		level INTEGER,
		row INTEGER,
		col INTEGER,
		height REAL,
		PRIMARY KEY (level, row, col)
	);
`

// DEMLevel describes one stored grid of the pyramid. Grids are global and
// equirectangular with row 0 at the north pole.
type DEMLevel struct {
	Level  int
	Width  int
	Height int
}

// Cell returns the grid cell containing c.
func (l DEMLevel) Cell(c geodesy.Cartographic) (row, col int) {
	u := (c.Longitude + math.Pi) / (2 * math.Pi)
	v := (math.Pi/2 - c.Latitude) / math.Pi
	col = min(max(int(math.Floor(u*float64(l.Width))), 0), l.Width-1)
	row = min(max(int(math.Floor(v*float64(l.Height))), 0), l.Height-1)
	return row, col
}

// SQLiteDEM serves heights from a sqlite DEM pyramid.
type SQLiteDEM struct {
	db     *sql.DB
	levels []DEMLevel // ascending by Level
	lookup *sql.Stmt
}

// OpenSQLiteDEM opens an existing pyramid written by WriteDEMLevel.
func OpenSQLiteDEM(path string) (*SQLiteDEM, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening DEM %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	levels, err := readLevels(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading DEM levels: %w", err)
	}
	if len(levels) == 0 {
		db.Close()
		return nil, fmt.Errorf("DEM %s has no levels", path)
	}

	stmt, err := db.Prepare("SELECT height FROM dem WHERE level = ? AND row = ? AND col = ?")
	if err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteDEM{db: db, levels: levels, lookup: stmt}, nil
}

func readLevels(db *sql.DB) ([]DEMLevel, error) {
	rows, err := db.Query("SELECT level, width, height FROM dem_levels ORDER BY level")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []DEMLevel
	for rows.Next() {
		var l DEMLevel
		if err := rows.Scan(&l.Level, &l.Width, &l.Height); err != nil {
			return nil, err
		}
		if l.Width < 1 || l.Height < 1 {
			return nil, fmt.Errorf("level %d has empty grid %dx%d", l.Level, l.Width, l.Height)
		}
		levels = append(levels, l)
	}
	return levels, rows.Err()
}

// Levels returns the stored pyramid levels, coarsest first.
func (d *SQLiteDEM) Levels() []DEMLevel {
	return d.levels
}

// LevelFor picks the finest stored level not finer than level, or the
// coarsest one if every stored level is finer.
func (d *SQLiteDEM) LevelFor(level int) DEMLevel {
	i := sort.Search(len(d.levels), func(i int) bool { return d.levels[i].Level > level })
	if i == 0 {
		return d.levels[0]
	}
	return d.levels[i-1]
}

// SampleTerrain implements Service. Cells missing from the grid read as 0.
func (d *SQLiteDEM) SampleTerrain(ctx context.Context, level int, positions []geodesy.Cartographic) ([]geodesy.Cartographic, error) {
	grid := d.LevelFor(level)

	out := make([]geodesy.Cartographic, len(positions))
	for i, p := range positions {
		row, col := grid.Cell(p)

		var h float64
		err := d.lookup.QueryRowContext(ctx, grid.Level, row, col).Scan(&h)
		switch {
		case err == nil:
		case errors.Is(err, sql.ErrNoRows):
			h = 0
		default:
			return nil, fmt.Errorf("reading DEM level %d cell %d,%d: %w", grid.Level, row, col, err)
		}

		p.Height = h
		out[i] = p
	}
	return out, nil
}

// Close releases the database.
func (d *SQLiteDEM) Close() error {
	d.lookup.Close()
	return d.db.Close()
}

// CreateSQLiteDEM creates a fresh pyramid database at path, replacing any
// existing file.
func CreateSQLiteDEM(path string) (*sql.DB, error) {
	os.Remove(path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(demSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// WriteDEMLevel stores a row-major width*height grid as one pyramid level,
// replacing whatever was stored for that level.
func WriteDEMLevel(ctx context.Context, db *sql.DB, level, width, height int, heights []float64) error {
	if len(heights) != width*height {
		return fmt.Errorf("%w: level %d grid is %dx%d but has %d heights", ErrLengthMismatch, level, width, height, len(heights))
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM dem WHERE level = ?", level); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT OR REPLACE INTO dem_levels (level, width, height) VALUES (?, ?, ?)", level, width, height); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO dem (level, row, col, height) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			if _, err := stmt.ExecContext(ctx, level, row, col, heights[row*width+col]); err != nil {
				return fmt.Errorf("writing level %d cell %d,%d: %w", level, row, col, err)
			}
		}
	}
	return tx.Commit()
}
