package solver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Solve metrics
	solvesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_planner_solves_total",
			Help: "Total number of solves by result type",
		},
		[]string{"result"},
	)
	solveErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_planner_solve_errors_total",
			Help: "Total number of solves rejected with an error, by error code",
		},
		[]string{"code"},
	)
	solveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "factory_planner_solve_duration_seconds",
			Help:    "Duration of the simplex solve in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	solvePivots = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "factory_planner_solve_pivots",
			Help:    "Number of simplex pivots per solve",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// Adjusted dataset cache metrics
	adjustedCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_planner_adjusted_cache_hits_total",
			Help: "Total number of adjusted dataset cache hits",
		},
	)
	adjustedCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_planner_adjusted_cache_misses_total",
			Help: "Total number of adjusted dataset cache misses",
		},
	)
)
