package adapters

import (
	"testing"

	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

func setting(recipe, machine string) config.RecipeSettingsConfig {
	return config.RecipeSettingsConfig{Recipe: recipe, RecipeSettings: graph.RecipeSettings{Machine: machine}}
}

func TestScenarioAdapterSettings(t *testing.T) {
	common := config.Common{
		Settings: []config.RecipeSettingsConfig{
			setting("iron-plate", "stone-furnace"),
			setting("iron-gear-wheel", "assembling-machine-1"),
		},
	}
	scenario := config.Scenario{
		Name:     "Upgrade",
		Settings: []config.RecipeSettingsConfig{setting("iron-plate", "electric-furnace")},
	}

	adapter := NewScenarioAdapter(common, scenario)
	if adapter.GetName() != "Upgrade" {
		t.Errorf("GetName() = %s, expected 'Upgrade'", adapter.GetName())
	}

	settings, err := adapter.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if len(settings) != 2 {
		t.Fatalf("Settings() length = %d, expected 2", len(settings))
	}
	if settings["iron-plate"].Machine != "electric-furnace" {
		t.Errorf("iron-plate machine = %s, expected scenario override", settings["iron-plate"].Machine)
	}
	if settings["iron-gear-wheel"].Machine != "assembling-machine-1" {
		t.Errorf("iron-gear-wheel machine = %s, expected common value", settings["iron-gear-wheel"].Machine)
	}

	// The common list must not be modified by merging.
	if common.Settings[0].Machine != "stone-furnace" {
		t.Errorf("common settings were mutated")
	}
}

func TestScenarioAdapterSettingsDuplicate(t *testing.T) {
	adapter := NewScenarioAdapter(config.Common{}, config.Scenario{
		Settings: []config.RecipeSettingsConfig{setting("coal", ""), setting("coal", "")},
	})
	if _, err := adapter.Settings(); err == nil {
		t.Errorf("Settings() expected error for duplicate recipe")
	}
}

func TestScenarioAdapterAdjustment(t *testing.T) {
	common := config.Common{Adjustment: graph.AdjustmentData{MiningBonus: rational.MustParse("1/10")}}

	adapter := NewScenarioAdapter(common, config.Scenario{})
	if !adapter.Adjustment().MiningBonus.Equal(rational.MustParse("1/10")) {
		t.Errorf("Adjustment() should fall back to common")
	}

	override := graph.AdjustmentData{NetProductionOnly: true}
	adapter = NewScenarioAdapter(common, config.Scenario{Adjustment: &override})
	adj := adapter.Adjustment()
	if !adj.NetProductionOnly || !adj.MiningBonus.IsZero() {
		t.Errorf("Adjustment() = %+v, expected scenario override", adj)
	}
}

func TestScenarioAdapterObjectives(t *testing.T) {
	common := config.Common{
		Objectives: []config.ObjectiveConfig{{Item: "iron-plate", Rate: rational.One}},
	}
	scenario := config.Scenario{
		Objectives: []config.ObjectiveConfig{
			{Item: "iron-plate", Rate: rational.FromInt(2), Type: "output"},
			{Item: "coal", Rate: rational.FromInt(5), Type: "supply"},
		},
	}

	objs := NewScenarioAdapter(common, scenario).Objectives()
	if len(objs) != 3 {
		t.Fatalf("Objectives() length = %d, expected 3", len(objs))
	}
	if objs[0].Type != objective.Output {
		t.Errorf("objs[0].Type = %s, expected output for empty type", objs[0].Type)
	}
	if objs[2].Type != objective.Input || objs[2].Item != "coal" {
		t.Errorf("objs[2] = %+v, expected coal input", objs[2])
	}
	if len(common.Objectives) != 1 {
		t.Errorf("common objectives were mutated")
	}
}

func TestObjectivesFromConfigNil(t *testing.T) {
	if got := ObjectivesFromConfig(nil); got != nil {
		t.Errorf("ObjectivesFromConfig(nil) = %v, expected nil", got)
	}
}
