// Command blockgen generates blocky voxel terrain for one quadtree level and
// optionally writes it out as OBJ.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/blockterrain/internal/config"
	"github.com/Faultbox/blockterrain/internal/generator"
	"github.com/Faultbox/blockterrain/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== blockgen ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if path := config.DumpConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			logger.Error("failed to write config", zap.String("path", path), zap.Error(err))
			os.Exit(1)
		}
		logger.Info("config written", zap.String("path", path))
		return
	}

	g, err := generator.New(cfg)
	if err != nil {
		logger.Error("failed to create generator", zap.Error(err))
		os.Exit(1)
	}
	defer g.Close()

	report, err := g.Run()
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		g.Close()
		logger.Sync()
		os.Exit(1)
	}

	fmt.Printf("level %d: %d tiles in %d frames (%s), %d failed loads\n",
		cfg.Output.Level, report.Done, report.Frames, report.Elapsed.Round(1e6), report.Failures)
	if cfg.Output.OBJPath != "" {
		fmt.Printf("wrote %s: %d vertices, %d triangles\n", cfg.Output.OBJPath, report.OBJ.Vertices, report.OBJ.Triangles)
	}
}
