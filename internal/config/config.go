// Package config handles configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Tint strategies.
const (
	TintTileUniform = "tile_uniform"
	TintPerCell     = "per_cell"
)

// Elevation sources.
const (
	SourceFaux   = "faux"
	SourceSQLite = "sqlite"
)

// Config holds all settings. It is read-only once Load returns.
type Config struct {
	Terrain   TerrainConfig   `yaml:"terrain"`
	Elevation ElevationConfig `yaml:"elevation"`
	Imagery   ImageryConfig   `yaml:"imagery"`
	Render    RenderConfig    `yaml:"render"`
	Output    OutputConfig    `yaml:"output"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// TerrainConfig holds the block generation parameters.
type TerrainConfig struct {
	DetailFactor        float64 `yaml:"detail_factor"`         // Scales the level-zero geometric error
	ColorQuantizeLevels int     `yaml:"color_quantize_levels"` // Steps per color channel
	HeightScale         float64 `yaml:"height_scale"`          // Elevation multiplier
	GranularityDegrees  float64 `yaml:"granularity_degrees"`   // Tessellation step
	SubgridCount        int     `yaml:"subgrid_count"`         // Cells per tile side
	PoleScale           float64 `yaml:"pole_scale"`            // Latitude shrink applied to every tile
	TintStrategy        string  `yaml:"tint_strategy"`
}

// Granularity returns the tessellation step in radians.
func (t TerrainConfig) Granularity() float64 {
	return t.GranularityDegrees * math.Pi / 180
}

// ElevationConfig selects and tunes the elevation source.
type ElevationConfig struct {
	Source    string        `yaml:"source"`
	Database  string        `yaml:"database"`
	Timeout   time.Duration `yaml:"timeout"`
	Workers   int           `yaml:"workers"`
	CacheSize int           `yaml:"cache_size"`
	Seed      uint64        `yaml:"seed"`
	MaxHeight float64       `yaml:"max_height"`
	Redis     RedisConfig   `yaml:"redis"`
}

// RedisConfig enables the shared elevation cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ImageryConfig holds the reference image and material textures.
type ImageryConfig struct {
	Path        string `yaml:"path"`
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	TopTexture  string `yaml:"top_texture"`
	WallTexture string `yaml:"wall_texture"`
}

// RenderConfig tunes the headless backend.
type RenderConfig struct {
	ReadyAfterFrames int `yaml:"ready_after_frames"`
}

// OutputConfig drives the blockgen command.
type OutputConfig struct {
	Level     int    `yaml:"level"`
	OBJPath   string `yaml:"obj_path"`
	MaxFrames int    `yaml:"max_frames"`
}

// MetricsConfig enables the prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with the stock blocky look.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			DetailFactor:        1.0,
			ColorQuantizeLevels: 6,
			HeightScale:         50.0,
			GranularityDegrees:  20,
			SubgridCount:        5,
			PoleScale:           0.99,
			TintStrategy:        TintTileUniform,
		},
		Elevation: ElevationConfig{
			Source:    SourceFaux,
			Timeout:   10 * time.Second,
			Workers:   4,
			CacheSize: 4096,
			Seed:      1,
			MaxHeight: 10000,
			Redis: RedisConfig{
				TTL: 24 * time.Hour,
			},
		},
		Imagery: ImageryConfig{
			Path:        "textures/earthtex.jpg",
			Width:       1024,
			Height:      512,
			TopTexture:  "textures/top-face.jpg",
			WallTexture: "textures/dirt-grass.jpg",
		},
		Render: RenderConfig{
			ReadyAfterFrames: 1,
		},
		Output: OutputConfig{
			Level:     2,
			OBJPath:   "",
			MaxFrames: 600,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports the first setting the pipeline cannot work with.
func (c *Config) Validate() error {
	t := c.Terrain
	switch {
	case t.ColorQuantizeLevels < 1:
		return fmt.Errorf("%w: color_quantize_levels must be >= 1, got %d", ErrInvalid, t.ColorQuantizeLevels)
	case t.SubgridCount < 1:
		return fmt.Errorf("%w: subgrid_count must be >= 1, got %d", ErrInvalid, t.SubgridCount)
	case t.GranularityDegrees <= 0:
		return fmt.Errorf("%w: granularity_degrees must be positive, got %v", ErrInvalid, t.GranularityDegrees)
	case t.PoleScale <= 0 || t.PoleScale > 1:
		return fmt.Errorf("%w: pole_scale must be in (0, 1], got %v", ErrInvalid, t.PoleScale)
	case t.DetailFactor <= 0:
		return fmt.Errorf("%w: detail_factor must be positive, got %v", ErrInvalid, t.DetailFactor)
	case t.HeightScale < 0:
		return fmt.Errorf("%w: height_scale must not be negative, got %v", ErrInvalid, t.HeightScale)
	}

	if t.TintStrategy != TintTileUniform && t.TintStrategy != TintPerCell {
		return fmt.Errorf("%w: unknown tint_strategy %q", ErrInvalid, t.TintStrategy)
	}

	switch c.Elevation.Source {
	case SourceFaux:
	case SourceSQLite:
		if c.Elevation.Database == "" {
			return fmt.Errorf("%w: elevation.database is required for the sqlite source", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown elevation source %q", ErrInvalid, c.Elevation.Source)
	}

	if c.Imagery.Width < 1 || c.Imagery.Height < 1 {
		return fmt.Errorf("%w: imagery canvas must be at least 1x1, got %dx%d", ErrInvalid, c.Imagery.Width, c.Imagery.Height)
	}
	return nil
}
