// demtool builds and inspects the sqlite DEM pyramids read by blockgen.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/Faultbox/blockterrain/internal/elevation"
	"github.com/Faultbox/blockterrain/internal/imagery"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		cmdBuild(args)
	case "info":
		cmdInfo(args)
	case "sample":
		cmdSample(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`demtool - DEM pyramid utility

Usage:
  demtool <command> [options]

Commands:
  build [flags] <heightmap> <out.sqlite>   Build a pyramid from a grayscale heightmap
  info <dem.sqlite>                        List the stored levels
  sample <dem.sqlite> <lon> <lat> [level]  Look up one height (degrees)

Build flags:
  -levels N      Number of levels to store, starting at 0 (default 6)
  -subgrid N     Cells per tile side (default 5)
  -min H         Height of black pixels in meters (default -500)
  -max H         Height of white pixels in meters (default 8800)

Examples:
  demtool build -levels 4 heightmap.webp dem.sqlite
  demtool info dem.sqlite
  demtool sample dem.sqlite 86.92 27.99 3`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func cmdBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	levels := fs.Int("levels", 6, "number of levels")
	subgrid := fs.Int("subgrid", 5, "cells per tile side")
	minH := fs.Float64("min", -500, "height of black pixels")
	maxH := fs.Float64("max", 8800, "height of white pixels")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: demtool build [flags] <heightmap> <out.sqlite>")
		os.Exit(1)
	}
	if *levels < 1 {
		fail("-levels must be at least 1")
	}

	src, err := imagery.DecodeFile(fs.Arg(0))
	if err != nil {
		fail("%v", err)
	}
	hm := elevation.Heightmap{Image: src, Min: *minH, Max: *maxH}

	db, err := elevation.CreateSQLiteDEM(fs.Arg(1))
	if err != nil {
		fail("creating %s: %v", fs.Arg(1), err)
	}
	defer db.Close()

	b := src.Bounds()
	fmt.Printf("Heightmap: %s (%dx%d)\n", fs.Arg(0), b.Dx(), b.Dy())

	ctx := context.Background()
	for level := 0; level < *levels; level++ {
		w, h := elevation.LevelSize(level, *subgrid)
		if err := elevation.WriteDEMLevel(ctx, db, level, w, h, hm.Grid(w, h)); err != nil {
			fail("%v", err)
		}
		fmt.Printf("  level %d: %dx%d\n", level, w, h)
	}
	fmt.Printf("Wrote %d levels to %s\n", *levels, fs.Arg(1))
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: demtool info <dem.sqlite>")
		os.Exit(1)
	}

	dem, err := elevation.OpenSQLiteDEM(args[0])
	if err != nil {
		fail("%v", err)
	}
	defer dem.Close()

	levels := dem.Levels()
	fmt.Printf("DEM: %s\n", args[0])
	fmt.Printf("Levels: %d\n\n", len(levels))
	fmt.Printf("%-6s %8s %8s %10s\n", "LEVEL", "WIDTH", "HEIGHT", "CELLS")
	for _, l := range levels {
		fmt.Printf("%-6d %8d %8d %10d\n", l.Level, l.Width, l.Height, l.Width*l.Height)
	}
}

func cmdSample(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "Usage: demtool sample <dem.sqlite> <lon> <lat> [level]")
		os.Exit(1)
	}

	lon, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		fail("bad longitude %q", args[1])
	}
	lat, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fail("bad latitude %q", args[2])
	}
	level := math.MaxInt32
	if len(args) > 3 {
		if level, err = strconv.Atoi(args[3]); err != nil {
			fail("bad level %q", args[3])
		}
	}

	dem, err := elevation.OpenSQLiteDEM(args[0])
	if err != nil {
		fail("%v", err)
	}
	defer dem.Close()

	pos := []geodesy.Cartographic{geodesy.CartographicFromDegrees(lon, lat, 0)}
	out, err := dem.SampleTerrain(context.Background(), level, pos)
	if err != nil {
		fail("%v", err)
	}
	used := dem.LevelFor(level)
	fmt.Printf("%.5f %.5f -> %.2f m (level %d)\n", lon, lat, out[0].Height, used.Level)
}
