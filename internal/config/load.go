package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load builds the configuration with priority:
// defaults < yaml file < .env file < process environment < flags.
func Load() (*Config, error) {
	cfg := Default()

	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	lookup, err := envLookup(EnvFile())
	if err != nil {
		return nil, err
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		filepath.Join(ConfigDir(), "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "BlockTerrain")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "BlockTerrain")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "blockterrain")
		}
		return filepath.Join(home, ".config", "blockterrain")
	}
}

// loadFromFile merges a yaml file over the values already in cfg.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// envLookup returns a lookup over the process environment that falls back
// to the variables in envFile. A missing file is not an error.
func envLookup(envFile string) (func(string) (string, bool), error) {
	fileVars := map[string]string{}
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			fileVars = vars
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
	}

	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}, nil
}

// applyEnv overrides cfg from BLOCKY_* variables.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *float64) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = f
		return nil
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = n
		return nil
	}
	duration := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}
		*dst = d
		return nil
	}

	str("BLOCKY_TINT_STRATEGY", &cfg.Terrain.TintStrategy)
	str("BLOCKY_ELEVATION_SOURCE", &cfg.Elevation.Source)
	str("BLOCKY_ELEVATION_DB", &cfg.Elevation.Database)
	str("BLOCKY_REDIS_ADDR", &cfg.Elevation.Redis.Addr)
	str("BLOCKY_REDIS_PASSWORD", &cfg.Elevation.Redis.Password)
	str("BLOCKY_IMAGE", &cfg.Imagery.Path)
	str("BLOCKY_METRICS_LISTEN", &cfg.Metrics.Listen)
	str("BLOCKY_LOG_LEVEL", &cfg.Logging.Level)
	str("BLOCKY_LOG_FILE", &cfg.Logging.LogFile)

	for _, err := range []error{
		num("BLOCKY_DETAIL_FACTOR", &cfg.Terrain.DetailFactor),
		num("BLOCKY_HEIGHT_SCALE", &cfg.Terrain.HeightScale),
		integer("BLOCKY_COLOR_QUANTIZE_LEVELS", &cfg.Terrain.ColorQuantizeLevels),
		integer("BLOCKY_SUBGRID_COUNT", &cfg.Terrain.SubgridCount),
		integer("BLOCKY_REDIS_DB", &cfg.Elevation.Redis.DB),
		duration("BLOCKY_ELEVATION_TIMEOUT", &cfg.Elevation.Timeout),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}
