package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/factory-planner/internal/plan"
	"github.com/iwvelando/factory-planner/internal/simplex"
	"github.com/iwvelando/factory-planner/internal/solver"
	"github.com/iwvelando/factory-planner/internal/steps"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

func samplePlans() []plan.Plan {
	r := rational.MustParse
	return []plan.Plan{
		{
			Name: "Gears",
			Result: &solver.MatrixResult{
				ResultType: solver.Solved,
				Status:     simplex.Optimal,
				Pivots:     4,
				Cost:       r("1461/125"),
				Steps: []steps.Step{
					{
						ID: "iron-ore", Item: "iron-ore", Rate: r("2"),
						Recipes:  []steps.RecipeFlow{{Recipe: "iron-ore", Flow: r("2"), Machines: r("4")}},
						Machines: r("4"), Power: r("360"),
					},
					{
						ID: "iron-gear-wheel", Item: "iron-gear-wheel", Rate: r("1"),
						Recipes:  []steps.RecipeFlow{{Recipe: "iron-gear-wheel", Flow: r("1"), Machines: r("1")}},
						Machines: r("1"), Power: r("1500"), Depth: 2,
						Inputs: []steps.StepOutput{{Item: "iron-plate", Rate: r("2")}},
					},
				},
			},
		},
		{
			Name:   "Impossible",
			Result: &solver.MatrixResult{ResultType: solver.Failed, Status: simplex.Infeasible},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, samplePlans())
	output := buf.String()

	for _, want := range []string{
		"--- Results for scenario Gears ---",
		"Result: solved (optimal, 4 pivots",
		"Step | Rate | Machines | Power | Inputs",
		"iron-ore | 2/s iron-ore | 4 (4) | 360 kW |",
		"iron-gear-wheel | 1/s iron-gear-wheel | 1 (1) | 1.5 MW | 2/s iron-plate",
		"Total: cost 11.688 (1461/125), 5 machines, 1.86 MW",
		"--- Results for scenario Impossible ---",
		"Result: failed (infeasible",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat missing %q in:\n%s", want, output)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, samplePlans()); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("CsvFormat() produced %d lines, expected 4:\n%s", len(lines), buf.String())
	}
	if lines[0] != "scenario,result,step,item,rate,recipes,machines,power_kw,depth,cyclic" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "Gears,solved,iron-ore,iron-ore,2,iron-ore=2,4,360,0,false" {
		t.Errorf("unexpected row %q", lines[1])
	}
	if lines[3] != "Impossible,failed,,,,,,,," {
		t.Errorf("unexpected failed row %q", lines[3])
	}

	if CsvString(samplePlans()) != buf.String() {
		t.Errorf("CsvString() differs from CsvFormat()")
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, samplePlans()); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSONFormat() produced invalid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0]["name"] != "Gears" {
		t.Errorf("unexpected JSON: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"cost": "1461/125"`) {
		t.Errorf("JSONFormat should keep exact rationals: %s", buf.String())
	}
}
