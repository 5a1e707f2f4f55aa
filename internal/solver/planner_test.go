package solver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPlannerCachesAdjustedDatasets(t *testing.T) {
	cat := vanilla(t)
	planner := NewPlanner(zap.NewNop(), 0)

	settings := map[string]graph.RecipeSettings{"iron-plate": {Machine: "electric-furnace"}}
	hits := testutil.ToFloat64(adjustedCacheHits)
	misses := testutil.ToFloat64(adjustedCacheMisses)

	first, err := planner.Adjusted(cat, settings, graph.AdjustmentData{})
	require.NoError(t, err)
	second, err := planner.Adjusted(cat, map[string]graph.RecipeSettings{"iron-plate": {Machine: "electric-furnace"}}, graph.AdjustmentData{})
	require.NoError(t, err)
	assert.Same(t, first, second)

	third, err := planner.Adjusted(cat, settings, graph.AdjustmentData{MiningBonus: r("1/10")})
	require.NoError(t, err)
	assert.NotSame(t, first, third)

	empty, err := planner.Adjusted(cat, map[string]graph.RecipeSettings{}, graph.AdjustmentData{})
	require.NoError(t, err)
	none, err := planner.Adjusted(cat, nil, graph.AdjustmentData{})
	require.NoError(t, err)
	assert.Same(t, empty, none)

	assert.Equal(t, hits+2, testutil.ToFloat64(adjustedCacheHits))
	assert.Equal(t, misses+3, testutil.ToFloat64(adjustedCacheMisses))

	planner.Flush()
	fresh, err := planner.Adjusted(cat, settings, graph.AdjustmentData{})
	require.NoError(t, err)
	assert.NotSame(t, first, fresh)
}

func TestPlannerMatchesSolve(t *testing.T) {
	cat := vanilla(t)
	planner := NewPlanner(nil, 0)
	objs := []objective.Objective{demand("electronic-circuit", "5/2")}

	direct, err := Solve(cat, nil, graph.AdjustmentData{}, objs)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		cached, err := planner.Solve(context.Background(), cat, nil, graph.AdjustmentData{}, objs)
		require.NoError(t, err)
		assert.Equal(t, direct.ResultType, cached.ResultType)
		assert.True(t, direct.Cost.Equal(cached.Cost))

		a, _ := json.Marshal(direct.Steps)
		b, _ := json.Marshal(cached.Steps)
		assert.JSONEq(t, string(a), string(b))
	}
}

func TestPlannerRejects(t *testing.T) {
	cat := vanilla(t)
	planner := NewPlanner(zap.NewNop(), 0)
	before := testutil.ToFloat64(solveErrorsTotal.WithLabelValues(string(apperrors.ErrCodeInvalidRecipeSettings)))

	_, err := planner.Solve(context.Background(), cat,
		map[string]graph.RecipeSettings{"iron-plate": {Fuel: "uranium"}}, graph.AdjustmentData{},
		[]objective.Objective{demand("iron-plate", "1")})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidRecipeSettings))

	after := testutil.ToFloat64(solveErrorsTotal.WithLabelValues(string(apperrors.ErrCodeInvalidRecipeSettings)))
	assert.Equal(t, before+1, after)

	_, err = planner.Adjusted(nil, nil, graph.AdjustmentData{})
	assert.Error(t, err)
}

func TestPlannerConcurrentSolves(t *testing.T) {
	cat := vanilla(t)
	planner := NewPlanner(nil, 0)
	objs := []objective.Objective{demand("automation-science-pack", "1")}

	want, err := Solve(cat, nil, graph.AdjustmentData{}, objs)
	require.NoError(t, err)

	results := make(chan *MatrixResult, 8)
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			res, err := planner.Solve(context.Background(), cat, nil, graph.AdjustmentData{}, objs)
			results <- res
			errs <- err
		}()
	}
	for i := 0; i < 8; i++ {
		require.NoError(t, <-errs)
		got := <-results
		assert.True(t, want.Cost.Equal(got.Cost))
	}
}
