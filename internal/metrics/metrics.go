// Package metrics exposes prometheus counters for the tile pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Failure stages used as the "stage" label of TileLoadsFailed.
const (
	StageElevation = "elevation"
	StageImagery   = "imagery"
	StageBuild     = "build"
)

var (
	TileLoadsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockterrain_tile_loads_started_total",
		Help: "Tiles moved from Start to Loading",
	})
	TileLoadsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockterrain_tile_loads_completed_total",
		Help: "Tiles moved from Loading to Done",
	})
	TileLoadsFailed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blockterrain_tile_loads_failed_total",
		Help: "Tile loads whose sampling failed, by stage",
	}, []string{"stage"})
	StaleResults = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockterrain_stale_results_total",
		Help: "Sampling results dropped because their tile was released or reset",
	})
	PrimitivesReleased = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockterrain_primitives_released_total",
		Help: "Render primitives destroyed with their tile",
	})
	ElevationFetchSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "blockterrain_elevation_fetch_seconds",
		Help:    "Elevation service round trip per tile",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})
	ElevationCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "blockterrain_elevation_cache_hits_total",
		Help: "Elevation samples served from a cache tier",
	}, []string{"tier"})
	ElevationCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockterrain_elevation_cache_misses_total",
		Help: "Elevation samples that reached the backing service",
	})
)

func init() {
	prometheus.MustRegister(TileLoadsStarted)
	prometheus.MustRegister(TileLoadsCompleted)
	prometheus.MustRegister(TileLoadsFailed)
	prometheus.MustRegister(StaleResults)
	prometheus.MustRegister(PrimitivesReleased)
	prometheus.MustRegister(ElevationFetchSeconds)
	prometheus.MustRegister(ElevationCacheHits)
	prometheus.MustRegister(ElevationCacheMisses)
}

// Handler serves the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
