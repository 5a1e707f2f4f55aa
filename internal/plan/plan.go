// Package plan solves every active scenario of a plan file.
package plan

import (
	"context"
	"fmt"

	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/solver"
	"github.com/iwvelando/factory-planner/pkg/adapters"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Plan holds the solved result of one scenario.
type Plan struct {
	Name   string               `json:"name"`
	Result *solver.MatrixResult `json:"result"`
}

// GetPlans solves the active scenarios of conf concurrently against cat.
// Plans are returned in scenario order. The first failing scenario cancels
// the rest and its error is returned, prefixed with the scenario name.
func GetPlans(ctx context.Context, logger *zap.Logger, planner *solver.Planner, cat *dataset.Catalog, conf config.Configuration) ([]Plan, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if planner == nil {
		planner = solver.NewPlanner(logger, 0)
	}

	var active []config.Scenario
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "plan.GetPlans"),
			)
			continue
		}
		active = append(active, scenario)
	}

	plans := make([]Plan, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, scenario := range active {
		g.Go(func() error {
			adapter := adapters.NewScenarioAdapter(conf.Common, scenario)
			settings, err := adapter.Settings()
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}

			result, err := planner.Solve(gctx, cat, settings, adapter.Adjustment(), adapter.Objectives())
			if err != nil {
				return fmt.Errorf("scenario %s: %w", scenario.Name, err)
			}
			if result.ResultType == solver.Failed {
				logger.Warn(fmt.Sprintf("scenario %s has no feasible plan", scenario.Name),
					zap.String("op", "plan.GetPlans"),
				)
			}

			plans[i] = Plan{Name: scenario.Name, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return plans, nil
}
