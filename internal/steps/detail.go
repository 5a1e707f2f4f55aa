package steps

import (
	"sort"

	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Tab names a section of a step's drill-down view.
type Tab string

const (
	TabOutputs  Tab = "outputs"
	TabInputs   Tab = "inputs"
	TabRecipes  Tab = "recipes"
	TabMachines Tab = "machines"
)

// MachineCount is the number of one machine type running in a step.
type MachineCount struct {
	Machine string            `json:"machine"`
	Count   rational.Rational `json:"count"`
	Power   rational.Rational `json:"power"`
}

// StepDetail groups a step's outputs, inputs, recipes and machines into the
// tabs that have content.
type StepDetail struct {
	StepID   string         `json:"stepId"`
	Tabs     []Tab          `json:"tabs"`
	Outputs  []StepOutput   `json:"outputs,omitempty"`
	Inputs   []StepOutput   `json:"inputs,omitempty"`
	Recipes  []RecipeFlow   `json:"recipes,omitempty"`
	Machines []MachineCount `json:"machines,omitempty"`
}

// Details builds one StepDetail per step, in plan order.
func Details(plan []Step) []StepDetail {
	out := make([]StepDetail, len(plan))
	for i, s := range plan {
		d := StepDetail{
			StepID:  s.ID,
			Outputs: s.Outputs,
			Inputs:  s.Inputs,
			Recipes: s.Recipes,
		}

		byMachine := make(map[string]*MachineCount)
		for _, r := range s.Recipes {
			if r.Machine == "" {
				continue
			}
			mc, ok := byMachine[r.Machine]
			if !ok {
				mc = &MachineCount{Machine: r.Machine}
				byMachine[r.Machine] = mc
			}
			mc.Count = mc.Count.Add(r.Machines)
			mc.Power = mc.Power.Add(r.Power)
		}
		for _, mc := range byMachine {
			d.Machines = append(d.Machines, *mc)
		}
		sort.Slice(d.Machines, func(a, b int) bool { return d.Machines[a].Machine < d.Machines[b].Machine })

		if len(d.Outputs) > 0 {
			d.Tabs = append(d.Tabs, TabOutputs)
		}
		if len(d.Inputs) > 0 {
			d.Tabs = append(d.Tabs, TabInputs)
		}
		if len(d.Recipes) > 0 {
			d.Tabs = append(d.Tabs, TabRecipes)
		}
		if len(d.Machines) > 0 {
			d.Tabs = append(d.Tabs, TabMachines)
		}
		out[i] = d
	}
	return out
}
