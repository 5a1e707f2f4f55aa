package plan

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/solver"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
	"go.uber.org/zap"
)

func loadCatalog(t *testing.T) *dataset.Catalog {
	t.Helper()
	cat, err := dataset.LoadFile(filepath.Join("..", "..", "testdata", "dataset.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	return cat
}

func TestGetPlans(t *testing.T) {
	cat := loadCatalog(t)
	logger := zap.NewNop()

	conf := config.Configuration{
		Common: config.Common{
			Dataset: "dataset.yaml",
			Objectives: []config.ObjectiveConfig{
				{Item: "iron-gear-wheel", Rate: rational.One, Type: "output"},
			},
		},
		Scenarios: []config.Scenario{
			{Name: "Baseline", Active: true},
			{Name: "Disabled", Active: false},
			{
				Name:   "Excluded mining",
				Active: true,
				Settings: []config.RecipeSettingsConfig{
					{Recipe: "iron-ore", RecipeSettings: graph.RecipeSettings{Excluded: true}},
				},
			},
		},
	}

	plans, err := GetPlans(context.Background(), logger, solver.NewPlanner(logger, 0), cat, conf)
	if err != nil {
		t.Fatalf("GetPlans() error = %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("GetPlans() returned %d plans, expected 2", len(plans))
	}

	if plans[0].Name != "Baseline" || plans[1].Name != "Excluded mining" {
		t.Errorf("plan order = %s, %s", plans[0].Name, plans[1].Name)
	}

	baseline := plans[0].Result
	if baseline.ResultType != solver.Solved {
		t.Fatalf("Baseline result = %s, expected solved", baseline.ResultType)
	}
	if flow := baseline.Flows["iron-plate"]; !flow.Equal(rational.FromInt(2)) {
		t.Errorf("iron-plate flow = %s, expected 2", flow)
	}

	if plans[1].Result.ResultType != solver.Failed {
		t.Errorf("Excluded mining result = %s, expected failed", plans[1].Result.ResultType)
	}
}

func TestGetPlansScenarioOverridesCommon(t *testing.T) {
	cat := loadCatalog(t)

	conf := config.Configuration{
		Common: config.Common{
			Objectives: []config.ObjectiveConfig{
				{Item: "iron-plate", Rate: rational.One, Type: "output"},
			},
		},
		Scenarios: []config.Scenario{
			{
				Name:   "More plates",
				Active: true,
				Objectives: []config.ObjectiveConfig{
					{Item: "iron-plate", Rate: rational.One, Type: "output"},
				},
			},
		},
	}

	plans, err := GetPlans(context.Background(), nil, nil, cat, conf)
	if err != nil {
		t.Fatalf("GetPlans() error = %v", err)
	}
	if flow := plans[0].Result.Flows["iron-plate"]; !flow.Equal(rational.FromInt(2)) {
		t.Errorf("iron-plate flow = %s, expected summed demand 2", flow)
	}
}

func TestGetPlansError(t *testing.T) {
	cat := loadCatalog(t)

	conf := config.Configuration{
		Scenarios: []config.Scenario{
			{
				Name:   "Unknown",
				Active: true,
				Objectives: []config.ObjectiveConfig{
					{Item: "unobtainium", Rate: rational.One, Type: "output"},
				},
			},
		},
	}

	_, err := GetPlans(context.Background(), nil, nil, cat, conf)
	if err == nil {
		t.Fatalf("GetPlans() expected error")
	}
	if !apperrors.IsCode(err, apperrors.ErrCodeUnknownItem) {
		t.Errorf("GetPlans() error = %v, expected UNKNOWN_ITEM", err)
	}
}

func TestGetPlansNoActiveScenarios(t *testing.T) {
	plans, err := GetPlans(context.Background(), nil, nil, loadCatalog(t), config.Configuration{})
	if err != nil {
		t.Fatalf("GetPlans() error = %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("GetPlans() returned %d plans, expected 0", len(plans))
	}
}
