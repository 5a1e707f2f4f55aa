package dataset

import (
	"fmt"
	"sort"

	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Catalog is a read-only, indexed view over a Dataset. It is safe for
// concurrent use because nothing mutates it after NewCatalog returns.
type Catalog struct {
	ds       *Dataset
	items    map[string]*Item
	recipes  map[string]*Recipe
	machines map[string]*Machine
	modules  map[string]*Module
	beacons  map[string]*Beacon
	fuels    map[string]*Fuel
}

// NewCatalog indexes ds. It rejects duplicate ids and the few structural
// defects that would otherwise surface as division by zero deep inside the
// solver (non-positive machine speed or fuel value, negative recipe time or
// amounts).
func NewCatalog(ds *Dataset) (*Catalog, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset cannot be nil")
	}

	c := &Catalog{
		ds:       ds,
		items:    make(map[string]*Item, len(ds.Items)),
		recipes:  make(map[string]*Recipe, len(ds.Recipes)),
		machines: make(map[string]*Machine, len(ds.Machines)),
		modules:  make(map[string]*Module, len(ds.Modules)),
		beacons:  make(map[string]*Beacon, len(ds.Beacons)),
		fuels:    make(map[string]*Fuel, len(ds.Fuels)),
	}

	for i := range ds.Items {
		item := &ds.Items[i]
		if _, dup := c.items[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", item.ID)
		}
		c.items[item.ID] = item
	}

	for i := range ds.Recipes {
		recipe := &ds.Recipes[i]
		if _, dup := c.recipes[recipe.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %q", recipe.ID)
		}
		if recipe.Time.IsNegative() {
			return nil, fmt.Errorf("recipe %q has negative time %s", recipe.ID, recipe.Time)
		}
		if err := checkAmounts(recipe.ID, "input", recipe.In); err != nil {
			return nil, err
		}
		if err := checkAmounts(recipe.ID, "output", recipe.Out); err != nil {
			return nil, err
		}
		c.recipes[recipe.ID] = recipe
	}

	for i := range ds.Machines {
		machine := &ds.Machines[i]
		if _, dup := c.machines[machine.ID]; dup {
			return nil, fmt.Errorf("duplicate machine id %q", machine.ID)
		}
		if !machine.Speed.IsPositive() {
			return nil, fmt.Errorf("machine %q must have a positive speed", machine.ID)
		}
		c.machines[machine.ID] = machine
	}

	for i := range ds.Modules {
		module := &ds.Modules[i]
		if _, dup := c.modules[module.ID]; dup {
			return nil, fmt.Errorf("duplicate module id %q", module.ID)
		}
		c.modules[module.ID] = module
	}

	for i := range ds.Beacons {
		beacon := &ds.Beacons[i]
		if _, dup := c.beacons[beacon.ID]; dup {
			return nil, fmt.Errorf("duplicate beacon id %q", beacon.ID)
		}
		c.beacons[beacon.ID] = beacon
	}

	for i := range ds.Fuels {
		fuel := &ds.Fuels[i]
		if _, dup := c.fuels[fuel.ID]; dup {
			return nil, fmt.Errorf("duplicate fuel id %q", fuel.ID)
		}
		if !fuel.Value.IsPositive() {
			return nil, fmt.Errorf("fuel %q must have a positive energy value", fuel.ID)
		}
		c.fuels[fuel.ID] = fuel
	}

	return c, nil
}

func checkAmounts(recipeID, side string, amounts map[string]rational.Rational) error {
	items := make([]string, 0, len(amounts))
	for item := range amounts {
		items = append(items, item)
	}
	sort.Strings(items)
	for _, item := range items {
		if amounts[item].IsNegative() {
			return fmt.Errorf("recipe %q has negative %s amount %s of %q", recipeID, side, amounts[item], item)
		}
	}
	return nil
}

// ID returns the dataset identifier.
func (c *Catalog) ID() string { return c.ds.ID }

// Dataset returns the underlying dataset. Callers must not modify it.
func (c *Catalog) Dataset() *Dataset { return c.ds }

// Item looks up an item by id.
func (c *Catalog) Item(id string) (*Item, bool) {
	item, ok := c.items[id]
	return item, ok
}

// HasItem reports whether the dataset defines the item.
func (c *Catalog) HasItem(id string) bool {
	_, ok := c.items[id]
	return ok
}

// Recipe looks up a recipe by id.
func (c *Catalog) Recipe(id string) (*Recipe, bool) {
	recipe, ok := c.recipes[id]
	return recipe, ok
}

// Machine looks up a machine by id.
func (c *Catalog) Machine(id string) (*Machine, bool) {
	machine, ok := c.machines[id]
	return machine, ok
}

// Module looks up a module by id.
func (c *Catalog) Module(id string) (*Module, bool) {
	module, ok := c.modules[id]
	return module, ok
}

// Beacon looks up a beacon by id.
func (c *Catalog) Beacon(id string) (*Beacon, bool) {
	beacon, ok := c.beacons[id]
	return beacon, ok
}

// Fuel looks up a fuel by item id.
func (c *Catalog) Fuel(id string) (*Fuel, bool) {
	fuel, ok := c.fuels[id]
	return fuel, ok
}

// RecipeIDs returns every recipe id in ascending order.
func (c *Catalog) RecipeIDs() []string {
	ids := make([]string, 0, len(c.recipes))
	for id := range c.recipes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FuelsFor returns the ids of fuels usable by the machine, ascending.
func (c *Catalog) FuelsFor(machine *Machine) []string {
	if machine == nil || !machine.Burner() {
		return nil
	}
	categories := make(map[string]bool, len(machine.Fuels))
	for _, category := range machine.Fuels {
		categories[category] = true
	}
	var ids []string
	for id, fuel := range c.fuels {
		if categories[fuel.Category] {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// ModulesFor returns the ids of modules the recipe may use, ascending.
func (c *Catalog) ModulesFor(recipeID string) []string {
	var ids []string
	for id, module := range c.modules {
		if module.Allows(recipeID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
