package solver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/internal/simplex"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarios = `
id: scenarios
items: [{id: a}, {id: b}, {id: c}]
recipes:
  - {id: r1, time: 1, out: {a: 1}}
  - {id: r2, time: 1, out: {c: 1}}
`

const smelting = `
id: smelting
items: [{id: ore}, {id: plate}]
recipes:
  - {id: mine, time: 1, out: {ore: 1}}
  - {id: smelt, time: 1, in: {ore: 2}, out: {plate: 1}}
`

func r(s string) rational.Rational { return rational.MustParse(s) }

func decode(t *testing.T, doc string) *dataset.Catalog {
	t.Helper()
	cat, err := dataset.Decode(strings.NewReader(doc))
	require.NoError(t, err)
	return cat
}

func vanilla(t *testing.T) *dataset.Catalog {
	t.Helper()
	cat, err := dataset.LoadFile(filepath.Join("..", "..", "testdata", "dataset.yaml"))
	require.NoError(t, err)
	return cat
}

func demand(item, rate string) objective.Objective {
	return objective.Objective{Item: item, Rate: r(rate), Type: objective.Output}
}

func TestSolveSingleRecipe(t *testing.T) {
	cat := decode(t, scenarios)

	result, err := Solve(cat, nil, graph.AdjustmentData{}, []objective.Objective{demand("a", "5")})
	require.NoError(t, err)

	assert.Equal(t, Solved, result.ResultType)
	assert.Equal(t, simplex.Optimal, result.Status)
	require.Len(t, result.Steps, 1)
	step := result.Steps[0]
	assert.Equal(t, "r1", step.ID)
	assert.Equal(t, "a", step.Item)
	assert.Equal(t, "5", step.Rate.String())
	assert.Equal(t, "5", step.Recipes[0].Flow.String())
	assert.Equal(t, "5", step.Machines.String())
	assert.Equal(t, "5", result.Cost.String())
	assert.Equal(t, map[string]string{"r1": "5"}, flowStrings(result))
	require.Len(t, result.Details, 1)
}

func TestSolveWithoutProducer(t *testing.T) {
	cat := decode(t, scenarios)

	result, err := Solve(cat, nil, graph.AdjustmentData{}, []objective.Objective{demand("b", "1")})
	require.NoError(t, err)

	assert.Equal(t, Failed, result.ResultType)
	assert.Equal(t, simplex.Infeasible, result.Status)
	assert.Empty(t, result.Steps)
	assert.Empty(t, result.Details)
	assert.True(t, result.Cost.IsZero())
}

func TestSolveExcludingOnlyProducer(t *testing.T) {
	cat := decode(t, scenarios)
	objs := []objective.Objective{demand("c", "2")}

	result, err := Solve(cat, nil, graph.AdjustmentData{}, objs)
	require.NoError(t, err)
	require.Equal(t, Solved, result.ResultType)

	result, err = Solve(cat, map[string]graph.RecipeSettings{"r2": {Excluded: true}}, graph.AdjustmentData{}, objs)
	require.NoError(t, err)
	assert.Equal(t, Failed, result.ResultType)
	assert.Empty(t, result.Steps)
}

func TestSolveSkipped(t *testing.T) {
	cat := decode(t, scenarios)

	result, err := Solve(cat, nil, graph.AdjustmentData{}, nil)
	require.NoError(t, err)
	assert.Equal(t, Skipped, result.ResultType)
	assert.Empty(t, result.Steps)
	assert.Zero(t, result.Pivots)
}

func TestSolveGearChain(t *testing.T) {
	cat := vanilla(t)

	result, err := Solve(cat, nil, graph.AdjustmentData{}, []objective.Objective{demand("iron-gear-wheel", "1")})
	require.NoError(t, err)
	require.Equal(t, Solved, result.ResultType)

	assert.Equal(t, map[string]string{
		"coal":            "18/125",
		"iron-gear-wheel": "1",
		"iron-ore":        "2",
		"iron-plate":      "2",
	}, flowStrings(result))
	assert.Equal(t, "1461/125", result.Cost.String())
	assert.Equal(t, "1461/125", result.Machines().String())
	assert.Equal(t, "11523/25", result.Power().String())

	plate, err := result.Step("iron-plate")
	require.NoError(t, err)
	assert.Equal(t, "32/5", plate.Machines.String())

	_, err = result.Step("copper-plate")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestSolveConservationAndDemand(t *testing.T) {
	cat := vanilla(t)
	objs := []objective.Objective{
		demand("automation-science-pack", "1/5"),
		demand("electronic-circuit", "3/2"),
		demand("research-progress", "1/10"),
	}
	settings := map[string]graph.RecipeSettings{
		"iron-plate":         {Machine: "electric-furnace", Modules: []string{"productivity-module", "speed-module"}},
		"electronic-circuit": {Machine: "assembling-machine-2", Beacons: []graph.BeaconSettings{{Beacon: "beacon", Count: 4, Modules: []string{"speed-module"}}}},
	}

	result, err := Solve(cat, settings, graph.AdjustmentData{MiningBonus: r("1/5")}, objs)
	require.NoError(t, err)
	require.Equal(t, Solved, result.ResultType)

	net := make(map[string]rational.Rational)
	for _, s := range result.Steps {
		for _, o := range s.Outputs {
			net[o.Item] = net[o.Item].Add(o.Rate)
		}
		for _, in := range s.Inputs {
			net[in.Item] = net[in.Item].Sub(in.Rate)
		}
	}

	demanded := map[string]rational.Rational{}
	for _, o := range objs {
		demanded[o.Item] = o.Rate
	}
	for item, value := range net {
		if want, ok := demanded[item]; ok {
			assert.False(t, value.Less(want), "%s: net %s below demand %s", item, value, want)
			continue
		}
		assert.True(t, value.IsZero(), "%s: intermediate not conserved, net %s", item, value)
	}
	for item := range demanded {
		_, ok := net[item]
		assert.True(t, ok, "%s missing from plan", item)
	}
}

func TestSolveExcludedRecipeNeverInSteps(t *testing.T) {
	cat := decode(t, `
id: alternatives
items: [{id: ore}, {id: plate}]
recipes:
  - {id: mine, time: 1, out: {ore: 1}}
  - {id: smelt-fast, time: 1, in: {ore: 1}, out: {plate: 1}}
  - {id: smelt-slow, time: 4, in: {ore: 1}, out: {plate: 1}}
`)
	objs := []objective.Objective{demand("plate", "2")}

	result, err := Solve(cat, nil, graph.AdjustmentData{}, objs)
	require.NoError(t, err)
	assert.Contains(t, flowStrings(result), "smelt-fast")

	result, err = Solve(cat, map[string]graph.RecipeSettings{"smelt-fast": {Excluded: true}}, graph.AdjustmentData{}, objs)
	require.NoError(t, err)
	require.Equal(t, Solved, result.ResultType)
	for _, s := range result.Steps {
		for _, rf := range s.Recipes {
			assert.NotEqual(t, "smelt-fast", rf.Recipe)
		}
	}
	assert.Equal(t, map[string]string{"mine": "2", "smelt-slow": "2"}, flowStrings(result))
	assert.Equal(t, "10", result.Cost.String())
}

func TestSolveIdempotent(t *testing.T) {
	cat := vanilla(t)
	objs := []objective.Objective{demand("automation-science-pack", "1"), demand("electronic-circuit", "2")}

	first, err := Solve(cat, nil, graph.AdjustmentData{NetProductionOnly: true}, objs)
	require.NoError(t, err)
	second, err := Solve(cat, nil, graph.AdjustmentData{NetProductionOnly: true}, objs)
	require.NoError(t, err)

	a, err := json.Marshal(first.Steps)
	require.NoError(t, err)
	b, err := json.Marshal(second.Steps)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
	assert.True(t, first.Cost.Equal(second.Cost))
	assert.Equal(t, first.Pivots, second.Pivots)
}

func TestSolveMaximize(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		objs  []objective.Objective
		flows map[string]string
		cost  string
	}{
		{
			name: "bounded by an input",
			doc: `
id: input-only
items: [{id: ore}, {id: plate}]
recipes:
  - {id: smelt, time: 1, in: {ore: 2}, out: {plate: 1}}
`,
			objs: []objective.Objective{
				{Item: "plate", Type: objective.Maximize},
				{Item: "ore", Rate: r("10"), Type: objective.Input},
			},
			flows: map[string]string{"smelt": "5"},
			cost:  "5",
		},
		{
			name: "bounded by a limit",
			doc:  smelting,
			objs: []objective.Objective{
				{Item: "plate", Type: objective.Maximize},
				{Item: "plate", Rate: r("3"), Type: objective.Limit},
			},
			flows: map[string]string{"mine": "6", "smelt": "3"},
			cost:  "9",
		},
		{
			name: "many cycles per unit",
			doc: `
id: slow-yield
items: [{id: ore}, {id: plate}]
recipes:
  - {id: smelt, time: 1, in: {ore: 1}, out: {plate: 1/10000000}}
`,
			objs: []objective.Objective{
				{Item: "plate", Type: objective.Maximize},
				{Item: "ore", Rate: r("10"), Type: objective.Input},
			},
			flows: map[string]string{"smelt": "10"},
			cost:  "10",
		},
		{
			name: "cheapest recipe at the maximum",
			doc: `
id: two-furnaces
items: [{id: ore}, {id: plate}]
recipes:
  - {id: smelt-a, time: 2, in: {ore: 1}, out: {plate: 1}}
  - {id: smelt-b, time: 1, in: {ore: 1}, out: {plate: 1}}
`,
			objs: []objective.Objective{
				{Item: "plate", Type: objective.Maximize},
				{Item: "ore", Rate: r("10"), Type: objective.Input},
			},
			flows: map[string]string{"smelt-b": "10"},
			cost:  "10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Solve(decode(t, tt.doc), nil, graph.AdjustmentData{}, tt.objs)
			require.NoError(t, err)
			require.Equal(t, Solved, result.ResultType)
			assert.Equal(t, tt.flows, flowStrings(result))
			assert.Equal(t, tt.cost, result.Cost.String())
			assert.NotEmpty(t, result.Steps)
		})
	}
}

func TestSolveLimitInfeasible(t *testing.T) {
	result, err := Solve(decode(t, smelting), nil, graph.AdjustmentData{}, []objective.Objective{
		demand("plate", "4"),
		{Item: "plate", Rate: r("3"), Type: objective.Limit},
	})
	require.NoError(t, err)
	assert.Equal(t, Failed, result.ResultType)
}

func TestSolveErrors(t *testing.T) {
	cat := decode(t, smelting)

	tests := []struct {
		name     string
		settings map[string]graph.RecipeSettings
		objs     []objective.Objective
		code     apperrors.ErrorCode
	}{
		{
			name: "unknown item",
			objs: []objective.Objective{demand("gear", "1")},
			code: apperrors.ErrCodeUnknownItem,
		},
		{
			name: "conflicting objectives",
			objs: []objective.Objective{{Item: "plate", Type: objective.Maximize}, {Item: "ore", Type: objective.Maximize}},
			code: apperrors.ErrCodeConflictingObjectives,
		},
		{
			name:     "invalid settings",
			settings: map[string]graph.RecipeSettings{"smelt": {Machine: "furnace"}},
			objs:     []objective.Objective{demand("plate", "1")},
			code:     apperrors.ErrCodeInvalidRecipeSettings,
		},
		{
			name: "unbounded maximize",
			objs: []objective.Objective{{Item: "plate", Type: objective.Maximize}},
			code: apperrors.ErrCodeSolverInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Solve(cat, tt.settings, graph.AdjustmentData{}, tt.objs)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, apperrors.IsCode(err, tt.code), "unexpected error: %v", err)
		})
	}
}

func TestSolveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := SolveContext(ctx, decode(t, smelting), nil, graph.AdjustmentData{}, []objective.Objective{demand("plate", "1")})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
}

func flowStrings(result *MatrixResult) map[string]string {
	out := make(map[string]string, len(result.Flows))
	for id, f := range result.Flows {
		out[id] = f.String()
	}
	return out
}
