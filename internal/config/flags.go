package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagEnvFile     = flag.String("env", ".env", "Path to env file with BLOCKY_* overrides")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagLevel       = flag.Int("level", -1, "Tile level to generate")
	flagSubgrid     = flag.Int("subgrid", 0, "Cells per tile side")
	flagQuantize    = flag.Int("quantize", 0, "Color quantization levels")
	flagHeightScale = flag.Float64("height-scale", -1, "Elevation multiplier")
	flagTint        = flag.String("tint", "", "Tint strategy: tile_uniform or per_cell")
	flagOffline     = flag.Bool("offline", false, "Use the faux elevation source")
	flagDEM         = flag.String("dem", "", "Path to a sqlite DEM; selects the sqlite source")
	flagImage       = flag.String("image", "", "Reference world image")
	flagOut         = flag.String("out", "", "Write generated geometry to this OBJ file")
	flagMetrics     = flag.String("metrics", "", "Serve prometheus metrics on this address")
	flagDumpConfig  = flag.String("dump-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// EnvFile returns the env file path from the --env flag.
func EnvFile() string {
	return *flagEnvFile
}

// DumpConfigPath returns the --dump-config target, empty when not set.
func DumpConfigPath() string {
	return *flagDumpConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLevel >= 0 {
		cfg.Output.Level = *flagLevel
	}
	if *flagSubgrid > 0 {
		cfg.Terrain.SubgridCount = *flagSubgrid
	}
	if *flagQuantize > 0 {
		cfg.Terrain.ColorQuantizeLevels = *flagQuantize
	}
	if *flagHeightScale >= 0 {
		cfg.Terrain.HeightScale = *flagHeightScale
	}
	if *flagTint != "" {
		cfg.Terrain.TintStrategy = *flagTint
	}
	if *flagDEM != "" {
		cfg.Elevation.Source = SourceSQLite
		cfg.Elevation.Database = *flagDEM
	}
	if *flagOffline {
		cfg.Elevation.Source = SourceFaux
	}
	if *flagImage != "" {
		cfg.Imagery.Path = *flagImage
	}
	if *flagOut != "" {
		cfg.Output.OBJPath = *flagOut
	}
	if *flagMetrics != "" {
		cfg.Metrics.Listen = *flagMetrics
	}
}
