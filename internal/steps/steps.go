// Package steps turns a solved flow vector into the ordered production
// plan: one Step per recipe, or per group of recipes that feed each other
// in a cycle.
package steps

import (
	"sort"
	"strings"

	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// RecipeFlow is one recipe running inside a step.
type RecipeFlow struct {
	Recipe   string            `json:"recipe"`
	Machine  string            `json:"machine,omitempty"`
	Flow     rational.Rational `json:"flow"`
	Machines rational.Rational `json:"machines"`
	Power    rational.Rational `json:"power"`
}

// StepOutput is an item leaving (or, for inputs, entering) a step.
type StepOutput struct {
	Item string            `json:"item"`
	Rate rational.Rational `json:"rate"`
	// Share is the fraction of all production (or consumption) of the
	// item that happens in this step.
	Share rational.Rational `json:"share"`
	// Recipes are the recipes of the step that produce (or consume) it.
	Recipes []string `json:"recipes"`
	// Links are the ids of the steps on the other side of the flow:
	// consumers for an output, producers for an input.
	Links []string `json:"links,omitempty"`
	// Objective marks items named by an objective.
	Objective bool `json:"objective,omitempty"`
}

// Step is one node of the plan.
type Step struct {
	ID string `json:"id"`
	// Item is the step's primary output, the one with the largest rate.
	Item     string            `json:"item"`
	Rate     rational.Rational `json:"rate"`
	Recipes  []RecipeFlow      `json:"recipes"`
	Machines rational.Rational `json:"machines"`
	Power    rational.Rational `json:"power"`
	Outputs  []StepOutput      `json:"outputs"`
	Inputs   []StepOutput      `json:"inputs,omitempty"`
	// Cyclic is set when the step groups recipes that feed each other.
	Cyclic bool `json:"cyclic,omitempty"`
	// Depth is the length of the longest producer chain ahead of the step.
	Depth int `json:"depth"`
}

// Build groups the recipes with positive flow into steps. recipes and
// flows are parallel; recipes must be present in ds.
func Build(ds *graph.AdjustedDataset, objs *objective.Normalized, recipes []string, flows []rational.Rational) []Step {
	active := make([]*graph.AdjustedRecipe, 0, len(recipes))
	flow := make(map[string]rational.Rational, len(recipes))
	for j, id := range recipes {
		if !flows[j].IsPositive() {
			continue
		}
		r, ok := ds.Recipe(id)
		if !ok {
			continue
		}
		active = append(active, r)
		flow[id] = flows[j]
	}
	sort.Slice(active, func(a, b int) bool { return active[a].ID < active[b].ID })
	if len(active) == 0 {
		return nil
	}

	g := newDependencies(active)
	groups := g.components()
	order, depth := g.order(groups)

	netOnly := ds.Adjustment().NetProductionOnly
	objectiveItems := make(map[string]bool)
	if objs != nil {
		for _, item := range objs.Items() {
			objectiveItems[item] = true
		}
	}

	out := make([]Step, len(order))
	for i, gi := range order {
		out[i] = newStep(groups[gi], flow, netOnly)
		out[i].Depth = depth[gi]
	}
	link(out, objectiveItems)
	return out
}

func newStep(members []*graph.AdjustedRecipe, flow map[string]rational.Rational, netOnly bool) Step {
	ids := make([]string, len(members))
	for i, r := range members {
		ids[i] = r.ID
	}
	s := Step{
		ID:     strings.Join(ids, "+"),
		Cyclic: len(members) > 1,
	}

	produced := make(map[string]rational.Rational)
	consumed := make(map[string]rational.Rational)
	producers := make(map[string][]string)
	consumers := make(map[string][]string)
	for _, r := range members {
		f := flow[r.ID]
		machines := f.Mul(r.Time)
		power := machines.Mul(r.Power)
		s.Recipes = append(s.Recipes, RecipeFlow{
			Recipe:   r.ID,
			Machine:  r.Machine,
			Flow:     f,
			Machines: machines,
			Power:    power,
		})
		s.Machines = s.Machines.Add(machines)
		s.Power = s.Power.Add(power)

		for item, amount := range r.Out {
			produced[item] = produced[item].Add(f.Mul(amount))
			producers[item] = append(producers[item], r.ID)
		}
		for item, amount := range r.In {
			consumed[item] = consumed[item].Add(f.Mul(amount))
			consumers[item] = append(consumers[item], r.ID)
		}
	}

	if netOnly {
		for item, in := range consumed {
			out, ok := produced[item]
			if !ok {
				continue
			}
			net := out.Sub(in)
			delete(produced, item)
			delete(consumed, item)
			switch {
			case net.IsPositive():
				produced[item] = net
			case net.IsNegative():
				consumed[item] = net.Neg()
			}
		}
	}

	for item, rate := range produced {
		s.Outputs = append(s.Outputs, StepOutput{Item: item, Rate: rate, Recipes: sorted(producers[item])})
	}
	for item, rate := range consumed {
		s.Inputs = append(s.Inputs, StepOutput{Item: item, Rate: rate, Recipes: sorted(consumers[item])})
	}
	sort.Slice(s.Outputs, func(a, b int) bool {
		if c := s.Outputs[a].Rate.Cmp(s.Outputs[b].Rate); c != 0 {
			return c > 0
		}
		return s.Outputs[a].Item < s.Outputs[b].Item
	})
	sort.Slice(s.Inputs, func(a, b int) bool { return s.Inputs[a].Item < s.Inputs[b].Item })

	if len(s.Outputs) > 0 {
		s.Item = s.Outputs[0].Item
		s.Rate = s.Outputs[0].Rate
	}
	return s
}

// link fills the shares and cross-step references of every output and
// input.
func link(plan []Step, objectiveItems map[string]bool) {
	totalOut := make(map[string]rational.Rational)
	totalIn := make(map[string]rational.Rational)
	producedBy := make(map[string][]string)
	consumedBy := make(map[string][]string)
	for _, s := range plan {
		for _, o := range s.Outputs {
			totalOut[o.Item] = totalOut[o.Item].Add(o.Rate)
			producedBy[o.Item] = append(producedBy[o.Item], s.ID)
		}
		for _, in := range s.Inputs {
			totalIn[in.Item] = totalIn[in.Item].Add(in.Rate)
			consumedBy[in.Item] = append(consumedBy[in.Item], s.ID)
		}
	}

	for i := range plan {
		s := &plan[i]
		for k := range s.Outputs {
			o := &s.Outputs[k]
			if total := totalOut[o.Item]; !total.IsZero() {
				o.Share = o.Rate.MustDiv(total)
			}
			o.Links = without(consumedBy[o.Item], s.ID)
			o.Objective = objectiveItems[o.Item]
		}
		for k := range s.Inputs {
			in := &s.Inputs[k]
			if total := totalIn[in.Item]; !total.IsZero() {
				in.Share = in.Rate.MustDiv(total)
			}
			in.Links = without(producedBy[in.Item], s.ID)
			in.Objective = objectiveItems[in.Item]
		}
	}
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func without(ids []string, id string) []string {
	var out []string
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
