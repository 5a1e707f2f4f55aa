// Package adapters provides adapter implementations between different package interfaces.
package adapters

import (
	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
)

// ScenarioAdapter layers a config.Scenario over the plan's common inputs
// to produce what the solver takes.
type ScenarioAdapter struct {
	Common   config.Common
	Scenario config.Scenario
}

// NewScenarioAdapter creates a new adapter
func NewScenarioAdapter(common config.Common, scenario config.Scenario) ScenarioAdapter {
	return ScenarioAdapter{Common: common, Scenario: scenario}
}

// GetName returns the scenario name
func (a ScenarioAdapter) GetName() string {
	return a.Scenario.Name
}

// Settings returns the common recipe settings with scenario entries
// replacing common ones for the same recipe. A recipe listed twice in the
// same list is an error.
func (a ScenarioAdapter) Settings() (map[string]graph.RecipeSettings, error) {
	merged, err := config.SettingsMap(a.Common.Settings)
	if err != nil {
		return nil, err
	}
	overrides, err := config.SettingsMap(a.Scenario.Settings)
	if err != nil {
		return nil, err
	}
	for recipe, s := range overrides {
		merged[recipe] = s
	}
	return merged, nil
}

// Adjustment returns the scenario adjustment when set, else the common one.
func (a ScenarioAdapter) Adjustment() graph.AdjustmentData {
	if a.Scenario.Adjustment != nil {
		return *a.Scenario.Adjustment
	}
	return a.Common.Adjustment
}

// Objectives returns the common objectives followed by the scenario's.
// Repeats are left for objective.Normalize to combine.
func (a ScenarioAdapter) Objectives() []objective.Objective {
	return ObjectivesFromConfig(append(append([]config.ObjectiveConfig(nil), a.Common.Objectives...), a.Scenario.Objectives...))
}

// ObjectivesFromConfig converts config objectives to the solver's form
func ObjectivesFromConfig(objs []config.ObjectiveConfig) []objective.Objective {
	if objs == nil {
		return nil
	}

	out := make([]objective.Objective, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.ToObjective())
	}
	return out
}
