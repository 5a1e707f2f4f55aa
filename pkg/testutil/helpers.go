// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/factory-planner/internal/plan"
	"github.com/iwvelando/factory-planner/internal/steps"
)

// FindPlan finds a plan by scenario name in the results slice.
// Returns a pointer to the plan if found, nil otherwise.
func FindPlan(results []plan.Plan, name string) *plan.Plan {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindStep finds a step by id. Returns nil if not found.
func FindStep(plan []steps.Step, id string) *steps.Step {
	for i := range plan {
		if plan[i].ID == id {
			return &plan[i]
		}
	}
	return nil
}
