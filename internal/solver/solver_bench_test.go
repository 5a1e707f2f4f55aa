package solver

import (
	"context"
	"fmt"
	"testing"

	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// chainCatalog builds tiers of items where each tier is made from the one
// below by two competing recipes.
func chainCatalog(b *testing.B, tiers int) *dataset.Catalog {
	b.Helper()
	ds := &dataset.Dataset{ID: fmt.Sprintf("chain-%d", tiers)}
	for i := 0; i <= tiers; i++ {
		ds.Items = append(ds.Items, dataset.Item{ID: fmt.Sprintf("item-%03d", i)})
	}
	ds.Recipes = append(ds.Recipes, dataset.Recipe{
		ID:   "source",
		Time: rational.One,
		Out:  map[string]rational.Rational{"item-000": rational.One},
	})
	for i := 1; i <= tiers; i++ {
		in := fmt.Sprintf("item-%03d", i-1)
		out := fmt.Sprintf("item-%03d", i)
		ds.Recipes = append(ds.Recipes,
			dataset.Recipe{
				ID:   fmt.Sprintf("fast-%03d", i),
				Time: rational.MustNew(int64(i%3+1), 2),
				In:   map[string]rational.Rational{in: rational.FromInt(2)},
				Out:  map[string]rational.Rational{out: rational.One},
			},
			dataset.Recipe{
				ID:   fmt.Sprintf("slow-%03d", i),
				Time: rational.FromInt(int64(i%5 + 2)),
				In:   map[string]rational.Rational{in: rational.FromInt(3)},
				Out:  map[string]rational.Rational{out: rational.FromInt(2)},
			},
		)
	}
	cat, err := dataset.NewCatalog(ds)
	if err != nil {
		b.Fatal(err)
	}
	return cat
}

func BenchmarkSolveChain(b *testing.B) {
	for _, tiers := range []int{5, 20, 50} {
		b.Run(fmt.Sprintf("tiers=%d", tiers), func(b *testing.B) {
			cat := chainCatalog(b, tiers)
			objs := []objective.Objective{{
				Item: fmt.Sprintf("item-%03d", tiers),
				Rate: rational.MustNew(3, 2),
				Type: objective.Output,
			}}
			planner := NewPlanner(nil, 0)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				result, err := planner.Solve(context.Background(), cat, nil, graph.AdjustmentData{}, objs)
				if err != nil {
					b.Fatal(err)
				}
				if result.ResultType != Solved {
					b.Fatalf("unexpected result %s", result.ResultType)
				}
			}
		})
	}
}
