package solver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Default cache settings for adjusted datasets.
const (
	DefaultCacheTTL     = 10 * time.Minute
	DefaultCacheCleanup = 15 * time.Minute
)

// Planner solves on behalf of long-lived callers such as the HTTP server.
// It memoizes adjusted datasets by dataset, settings and adjustment so
// repeated solves that only change objectives skip the graph build. A
// Planner is safe for concurrent use.
type Planner struct {
	logger *zap.Logger
	cache  *cache.Cache
}

// NewPlanner returns a Planner whose cache entries expire after ttl. A
// non-positive ttl selects DefaultCacheTTL.
func NewPlanner(logger *zap.Logger, ttl time.Duration) *Planner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Planner{
		logger: logger,
		cache:  cache.New(ttl, DefaultCacheCleanup),
	}
}

// Adjusted returns the adjusted dataset for the inputs, building it on a
// cache miss.
func (p *Planner) Adjusted(cat *dataset.Catalog, settings map[string]graph.RecipeSettings, adj graph.AdjustmentData) (*graph.AdjustedDataset, error) {
	key, err := cacheKey(cat, settings, adj)
	if err != nil {
		return nil, err
	}
	if cached, ok := p.cache.Get(key); ok {
		adjustedCacheHits.Inc()
		return cached.(*graph.AdjustedDataset), nil
	}
	adjustedCacheMisses.Inc()

	ds, err := graph.Build(cat, settings, adj)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(key, ds)
	p.logger.Debug("built adjusted dataset",
		zap.String("op", "solver.Planner.Adjusted"),
		zap.String("dataset", cat.ID()),
		zap.Int("recipes", ds.Len()),
		zap.String("key", key),
	)
	return ds, nil
}

// Solve is SolveContext with caching, metrics and logging.
func (p *Planner) Solve(ctx context.Context, cat *dataset.Catalog, settings map[string]graph.RecipeSettings, adj graph.AdjustmentData, objs []objective.Objective) (*MatrixResult, error) {
	ds, err := p.Adjusted(cat, settings, adj)
	if err != nil {
		p.reject(err)
		return nil, err
	}

	result, err := SolveAdjusted(ctx, ds, objs)
	if err != nil {
		p.reject(err)
		return nil, err
	}

	solvesTotal.WithLabelValues(string(result.ResultType)).Inc()
	if result.ResultType != Skipped {
		solveDuration.Observe(result.Time.Seconds())
		solvePivots.Observe(float64(result.Pivots))
	}
	p.logger.Debug("solve complete",
		zap.String("op", "solver.Planner.Solve"),
		zap.String("dataset", cat.ID()),
		zap.String("result", string(result.ResultType)),
		zap.Int("steps", len(result.Steps)),
		zap.Int("pivots", result.Pivots),
		zap.Duration("elapsed", result.Time),
	)
	return result, nil
}

// Flush drops every cached adjusted dataset.
func (p *Planner) Flush() {
	p.cache.Flush()
}

func (p *Planner) reject(err error) {
	code := string(apperrors.CodeOf(err))
	if code == "" {
		code = "UNKNOWN"
	}
	solveErrorsTotal.WithLabelValues(code).Inc()
	p.logger.Warn("solve rejected",
		zap.String("op", "solver.Planner.Solve"),
		zap.String("code", code),
		zap.Error(err),
	)
}

// cacheKey hashes the catalog identity with the canonical JSON encoding of
// the settings and adjustment. encoding/json sorts map keys, so equal
// settings always hash equally.
func cacheKey(cat *dataset.Catalog, settings map[string]graph.RecipeSettings, adj graph.AdjustmentData) (string, error) {
	if cat == nil {
		return "", fmt.Errorf("catalog cannot be nil")
	}
	if len(settings) == 0 {
		settings = nil
	}
	encoded, err := json.Marshal(struct {
		Settings   map[string]graph.RecipeSettings `json:"settings"`
		Adjustment graph.AdjustmentData            `json:"adjustment"`
	}{settings, adj})
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}

	h := xxhash.New()
	_, _ = fmt.Fprintf(h, "%s\x00%p\x00", cat.ID(), cat)
	_, _ = h.Write(encoded)
	return cat.ID() + ":" + strconv.FormatUint(h.Sum64(), 16), nil
}
