// Package solver is the entry point of the production-chain solver. Solve
// runs the whole pipeline: adjust recipes, normalize objectives, assemble
// the matrix, run the simplex and build the steps.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/matrix"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/internal/simplex"
	"github.com/iwvelando/factory-planner/internal/steps"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// ResultType tags the outcome of a solve.
type ResultType string

const (
	// Solved means an optimal plan was found.
	Solved ResultType = "solved"
	// Failed means the objectives cannot be met; the result has no steps.
	Failed ResultType = "failed"
	// Skipped means there was nothing to solve for.
	Skipped ResultType = "skipped"
)

// MatrixResult is the outcome of one solve. Results are built fresh for
// every call and never modified afterwards.
type MatrixResult struct {
	Steps      []steps.Step       `json:"steps"`
	Details    []steps.StepDetail `json:"details,omitempty"`
	ResultType ResultType         `json:"resultType"`
	Status     simplex.Status     `json:"status"`
	Pivots     int                `json:"pivots"`
	Time       time.Duration      `json:"time"`
	// Cost is the total recipe cost of the plan; zero unless Solved.
	Cost rational.Rational `json:"cost"`
	// Flows maps every recipe with positive flow to its cycles per second.
	Flows map[string]rational.Rational `json:"flows,omitempty"`
}

// Solve runs a solve without a deadline.
func Solve(cat *dataset.Catalog, settings map[string]graph.RecipeSettings, adj graph.AdjustmentData, objs []objective.Objective) (*MatrixResult, error) {
	return SolveContext(context.Background(), cat, settings, adj, objs)
}

// SolveContext adjusts the dataset and solves objs against it. Invalid
// settings or objectives are returned as errors before anything is solved.
// An infeasible plan is a Failed result, not an error.
func SolveContext(ctx context.Context, cat *dataset.Catalog, settings map[string]graph.RecipeSettings, adj graph.AdjustmentData, objs []objective.Objective) (*MatrixResult, error) {
	ds, err := graph.Build(cat, settings, adj)
	if err != nil {
		return nil, err
	}
	return SolveAdjusted(ctx, ds, objs)
}

// SolveAdjusted solves objs against an already adjusted dataset.
func SolveAdjusted(ctx context.Context, ds *graph.AdjustedDataset, objs []objective.Objective) (*MatrixResult, error) {
	normalized, err := objective.Normalize(objs, ds)
	if err != nil {
		return nil, err
	}
	if normalized.Empty() {
		return &MatrixResult{ResultType: Skipped}, nil
	}

	start := time.Now()
	m := matrix.Assemble(ds, normalized)

	// A maximize solve runs in two stages: the largest feasible net
	// production of the item, then the cheapest plan that keeps it.
	pivots := 0
	if m.Maximize != "" {
		stage, err := simplex.Solve(ctx, m.MaximizeProblem())
		if err != nil {
			return nil, err
		}
		pivots = stage.Pivots
		switch stage.Status {
		case simplex.Infeasible:
			return &MatrixResult{ResultType: Failed, Status: stage.Status, Pivots: pivots, Time: time.Since(start)}, nil
		case simplex.Unbounded:
			return nil, apperrors.NewWithContext(apperrors.ErrCodeSolverInternal,
				fmt.Sprintf("maximized item %q is unbounded: no input or limit constrains it", m.Maximize),
				map[string]any{"maximize": m.Maximize, "pivots": stage.Pivots})
		}
		m.FixMaximum(stage.Value.Neg())
	}

	sol, err := simplex.Solve(ctx, m.Problem())
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	result := &MatrixResult{Status: sol.Status, Pivots: pivots + sol.Pivots, Time: elapsed}
	switch sol.Status {
	case simplex.Infeasible:
		result.ResultType = Failed
		return result, nil
	case simplex.Unbounded:
		return nil, apperrors.NewWithContext(apperrors.ErrCodeSolverInternal,
			"solve is unbounded: a cycle reduces cost without limit",
			map[string]any{"maximize": normalized.Maximize, "pivots": sol.Pivots})
	}

	if err := m.Check(sol.X); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSolverInternal, "solution failed verification", err)
	}

	result.ResultType = Solved
	result.Cost = m.RecipeCost(sol.X)
	result.Flows = make(map[string]rational.Rational)
	for j, id := range m.Recipes {
		if sol.X[j].IsPositive() {
			result.Flows[id] = sol.X[j]
		}
	}
	result.Steps = steps.Build(ds, normalized, m.Recipes, sol.X)
	result.Details = steps.Details(result.Steps)
	return result, nil
}

// Step returns the step with the given id.
func (r *MatrixResult) Step(id string) (*steps.Step, error) {
	for i := range r.Steps {
		if r.Steps[i].ID == id {
			return &r.Steps[i], nil
		}
	}
	return nil, apperrors.New(apperrors.ErrCodeNotFound, fmt.Sprintf("step %q not found", id))
}

// Power returns the total electric draw of the plan in kW.
func (r *MatrixResult) Power() rational.Rational {
	total := rational.Zero
	for _, s := range r.Steps {
		total = total.Add(s.Power)
	}
	return total
}

// Machines returns the total machine count of the plan.
func (r *MatrixResult) Machines() rational.Rational {
	total := rational.Zero
	for _, s := range r.Steps {
		total = total.Add(s.Machines)
	}
	return total
}
