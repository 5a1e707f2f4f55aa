package graph

import (
	"fmt"
	"sort"

	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// minEffect is the floor for the speed and consumption multipliers.
var minEffect = rational.MustNew(1, 5)

// kilo converts MJ of fuel value into kJ of machine usage.
var kilo = rational.FromInt(1000)

// AdjustedRecipe is a recipe with every multiplier folded in. Time is the
// wall-clock seconds per cycle on the chosen machine, so the machine count
// for a flow f is simply f * Time.
type AdjustedRecipe struct {
	ID           string
	Name         string
	Category     string
	Time         rational.Rational
	In           map[string]rational.Rational
	Out          map[string]rational.Rational
	Machine      string
	Fuel         string
	Speed        rational.Rational
	Productivity rational.Rational
	Consumption  rational.Rational
	// Power is the electric draw of one machine in kW; zero for burners.
	Power rational.Rational
	Cost  rational.Rational
}

// Net returns output minus input of item per cycle.
func (r *AdjustedRecipe) Net(item string) rational.Rational {
	return r.Out[item].Sub(r.In[item])
}

// Items returns every item the recipe touches, ascending.
func (r *AdjustedRecipe) Items() []string {
	seen := make(map[string]bool, len(r.In)+len(r.Out))
	items := make([]string, 0, len(r.In)+len(r.Out))
	for _, m := range []map[string]rational.Rational{r.In, r.Out} {
		for item := range m {
			if !seen[item] {
				seen[item] = true
				items = append(items, item)
			}
		}
	}
	sort.Strings(items)
	return items
}

// AdjustedDataset is the immutable result of Build.
type AdjustedDataset struct {
	catalog    *dataset.Catalog
	adjustment AdjustmentData
	recipes    map[string]*AdjustedRecipe
	ids        []string
}

// Catalog returns the dataset the recipes were adjusted from.
func (d *AdjustedDataset) Catalog() *dataset.Catalog { return d.catalog }

// Adjustment returns the global modifiers used to build d.
func (d *AdjustedDataset) Adjustment() AdjustmentData { return d.adjustment }

// Recipe returns an adjusted recipe by id. Excluded recipes are absent.
func (d *AdjustedDataset) Recipe(id string) (*AdjustedRecipe, bool) {
	r, ok := d.recipes[id]
	return r, ok
}

// IDs returns the adjusted recipe ids in ascending order.
func (d *AdjustedDataset) IDs() []string {
	return append([]string(nil), d.ids...)
}

// Len returns the number of adjusted recipes.
func (d *AdjustedDataset) Len() int { return len(d.ids) }

// HasItem reports whether the item is defined by the dataset.
func (d *AdjustedDataset) HasItem(id string) bool {
	return d.catalog.HasItem(id)
}

// Build applies settings and adj to every recipe in cat. Settings for
// recipes the dataset does not define and dangling machine, fuel, module or
// beacon references fail with an INVALID_RECIPE_SETTINGS error. Excluded
// recipes are left out of the result entirely.
func Build(cat *dataset.Catalog, settings map[string]RecipeSettings, adj AdjustmentData) (*AdjustedDataset, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog cannot be nil")
	}

	settingIDs := make([]string, 0, len(settings))
	for id := range settings {
		settingIDs = append(settingIDs, id)
	}
	sort.Strings(settingIDs)
	for _, id := range settingIDs {
		if _, ok := cat.Recipe(id); !ok {
			return nil, invalidSettings(id, "unknown recipe", nil)
		}
	}

	out := &AdjustedDataset{
		catalog:    cat,
		adjustment: adj,
		recipes:    make(map[string]*AdjustedRecipe),
	}
	for _, id := range cat.RecipeIDs() {
		s := settings[id]
		recipe, _ := cat.Recipe(id)
		// Settings of excluded recipes are still checked against the dataset.
		adjusted, err := adjust(cat, recipe, s, adj)
		if err != nil {
			return nil, err
		}
		if s.Excluded {
			continue
		}
		out.recipes[id] = adjusted
		out.ids = append(out.ids, id)
	}
	return out, nil
}

// effects accumulates module and beacon bonuses before the multipliers are
// formed.
type effects struct {
	speed        rational.Rational
	productivity rational.Rational
	consumption  rational.Rational
}

func (e *effects) add(m *dataset.Module, scale rational.Rational) {
	e.speed = e.speed.Add(m.Speed.Mul(scale))
	e.productivity = e.productivity.Add(m.Productivity.Mul(scale))
	e.consumption = e.consumption.Add(m.Consumption.Mul(scale))
}

func adjust(cat *dataset.Catalog, recipe *dataset.Recipe, s RecipeSettings, adj AdjustmentData) (*AdjustedRecipe, error) {
	opts, err := RecipeOptions(cat, recipe.ID, s)
	if err != nil {
		return nil, err
	}

	machineSpeed := rational.One
	var machine *dataset.Machine
	if opts.Machine != "" {
		machine, _ = cat.Machine(opts.Machine)
		machineSpeed = machine.Speed
	}

	fuel, err := resolveFuel(cat, recipe.ID, machine, opts, s.Fuel)
	if err != nil {
		return nil, err
	}

	fx, err := collectEffects(cat, recipe.ID, opts, s)
	if err != nil {
		return nil, err
	}
	switch recipe.Category {
	case dataset.CategoryMining:
		fx.productivity = fx.productivity.Add(adj.MiningBonus)
	case dataset.CategoryResearch:
		fx.speed = fx.speed.Add(adj.ResearchBonus)
	}

	r := &AdjustedRecipe{
		ID:           recipe.ID,
		Name:         recipe.Name,
		Category:     recipe.Category,
		Machine:      opts.Machine,
		In:           make(map[string]rational.Rational, len(recipe.In)+1),
		Out:          make(map[string]rational.Rational, len(recipe.Out)),
		Speed:        rational.Max(rational.One.Add(fx.speed), minEffect),
		Productivity: rational.Max(rational.One.Add(fx.productivity), rational.One),
		Consumption:  rational.Max(rational.One.Add(fx.consumption), minEffect),
	}

	// Speed.
	r.Time, err = recipe.Time.Div(machineSpeed.Mul(r.Speed))
	if err != nil {
		return nil, err
	}

	// Productivity applies to the part of each output not returned as a
	// catalyst.
	for item, amount := range recipe.In {
		if !amount.IsZero() {
			r.In[item] = amount
		}
	}
	for item, amount := range recipe.Out {
		catalyst := rational.Max(rational.Min(recipe.In[item], amount), rational.Zero)
		bonus := amount.Sub(catalyst).Mul(r.Productivity)
		if total := catalyst.Add(bonus); !total.IsZero() {
			r.Out[item] = total
		}
	}

	// Consumption.
	if machine != nil {
		usage := machine.Usage.Mul(r.Consumption)
		if fuel != nil {
			r.Fuel = fuel.ID
			perCycle := usage.Mul(r.Time).MustDiv(fuel.Value.Mul(kilo))
			if !perCycle.IsZero() {
				r.In[fuel.ID] = r.In[fuel.ID].Add(perCycle)
			}
		} else {
			r.Power = usage
		}
	}

	if s.Cost != nil {
		if s.Cost.IsNegative() {
			return nil, invalidSettings(recipe.ID, "cost cannot be negative", map[string]any{"cost": s.Cost.String()})
		}
		r.Cost = *s.Cost
	} else {
		r.Cost = r.Time
	}
	return r, nil
}

func resolveFuel(cat *dataset.Catalog, recipeID string, machine *dataset.Machine, opts Options, choice string) (*dataset.Fuel, error) {
	if machine == nil || !machine.Burner() {
		if choice != "" {
			return nil, invalidSettings(recipeID, fmt.Sprintf("fuel %q set for a machine that burns no fuel", choice),
				map[string]any{"fuel": choice})
		}
		return nil, nil
	}
	if choice == "" {
		if len(opts.Fuels) == 0 {
			return nil, invalidSettings(recipeID, fmt.Sprintf("no fuel available for machine %q", machine.ID),
				map[string]any{"machine": machine.ID})
		}
		choice = opts.Fuels[0]
	}
	if !contains(opts.Fuels, choice) {
		return nil, invalidSettings(recipeID, fmt.Sprintf("fuel %q cannot be burned by %q", choice, machine.ID),
			map[string]any{"fuel": choice, "machine": machine.ID})
	}
	fuel, _ := cat.Fuel(choice)
	return fuel, nil
}

func collectEffects(cat *dataset.Catalog, recipeID string, opts Options, s RecipeSettings) (effects, error) {
	var fx effects
	if len(s.Modules) > opts.ModuleSlots {
		return fx, invalidSettings(recipeID, fmt.Sprintf("%d modules exceed %d slots", len(s.Modules), opts.ModuleSlots),
			map[string]any{"machine": opts.Machine})
	}
	for _, id := range s.Modules {
		module, err := lookupModule(cat, recipeID, opts, id)
		if err != nil {
			return fx, err
		}
		fx.add(module, rational.One)
	}

	for _, bs := range s.Beacons {
		beacon, ok := cat.Beacon(bs.Beacon)
		if !ok {
			return fx, invalidSettings(recipeID, fmt.Sprintf("beacon %q is not defined", bs.Beacon),
				map[string]any{"beacon": bs.Beacon})
		}
		if bs.Count < 0 {
			return fx, invalidSettings(recipeID, fmt.Sprintf("beacon count %d is negative", bs.Count),
				map[string]any{"beacon": bs.Beacon})
		}
		if len(bs.Modules) > beacon.Modules {
			return fx, invalidSettings(recipeID, fmt.Sprintf("%d modules exceed %d beacon slots", len(bs.Modules), beacon.Modules),
				map[string]any{"beacon": bs.Beacon})
		}
		scale := beacon.Effectivity.Mul(rational.FromInt(int64(bs.Count)))
		for _, id := range bs.Modules {
			module, err := lookupModule(cat, recipeID, opts, id)
			if err != nil {
				return fx, err
			}
			fx.add(module, scale)
		}
	}
	return fx, nil
}

func lookupModule(cat *dataset.Catalog, recipeID string, opts Options, id string) (*dataset.Module, error) {
	module, ok := cat.Module(id)
	if !ok {
		return nil, invalidSettings(recipeID, fmt.Sprintf("module %q is not defined", id), map[string]any{"module": id})
	}
	if !contains(opts.Modules, id) {
		return nil, invalidSettings(recipeID, fmt.Sprintf("module %q is not allowed", id), map[string]any{"module": id})
	}
	return module, nil
}
