// Package dataset defines the game data consumed by the solver: items,
// recipes, machines, modules, beacons and fuels. Datasets are loaded once
// from the bundled game-data files and treated as immutable afterwards.
package dataset

import (
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Recipe categories that receive global bonuses.
const (
	CategoryMining   = "mining"
	CategoryResearch = "research"
)

// Item is a producible or consumable thing.
type Item struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Icon     string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Recipe transforms inputs into outputs over Time seconds when run by a
// machine of speed 1. A recipe may list several outputs; cycles between
// recipes are allowed.
type Recipe struct {
	ID        string                       `yaml:"id" json:"id"`
	Name      string                       `yaml:"name,omitempty" json:"name,omitempty"`
	Category  string                       `yaml:"category,omitempty" json:"category,omitempty"`
	Time      rational.Rational            `yaml:"time" json:"time"`
	In        map[string]rational.Rational `yaml:"in,omitempty" json:"in,omitempty"`
	Out       map[string]rational.Rational `yaml:"out,omitempty" json:"out,omitempty"`
	Producers []string                     `yaml:"producers,omitempty" json:"producers,omitempty"`
}

// Machine runs recipes. Usage is the power draw in kW. A machine with
// fuel categories is a burner and consumes fuel proportional to Usage.
type Machine struct {
	ID      string            `yaml:"id" json:"id"`
	Name    string            `yaml:"name,omitempty" json:"name,omitempty"`
	Speed   rational.Rational `yaml:"speed" json:"speed"`
	Modules int               `yaml:"modules,omitempty" json:"modules,omitempty"`
	Usage   rational.Rational `yaml:"usage,omitempty" json:"usage,omitempty"`
	Fuels   []string          `yaml:"fuels,omitempty" json:"fuels,omitempty"`
}

// Burner reports whether the machine consumes fuel items.
func (m Machine) Burner() bool {
	return len(m.Fuels) > 0
}

// Module modifies a machine's effects. Values are fractional bonuses, so a
// speed of 1/5 is +20%. A non-empty Limitation restricts the module to the
// listed recipe ids.
type Module struct {
	ID           string            `yaml:"id" json:"id"`
	Name         string            `yaml:"name,omitempty" json:"name,omitempty"`
	Speed        rational.Rational `yaml:"speed,omitempty" json:"speed,omitempty"`
	Productivity rational.Rational `yaml:"productivity,omitempty" json:"productivity,omitempty"`
	Consumption  rational.Rational `yaml:"consumption,omitempty" json:"consumption,omitempty"`
	Limitation   []string          `yaml:"limitation,omitempty" json:"limitation,omitempty"`
}

// Allows reports whether the module may be used by the recipe.
func (m Module) Allows(recipeID string) bool {
	if len(m.Limitation) == 0 {
		return true
	}
	for _, id := range m.Limitation {
		if id == recipeID {
			return true
		}
	}
	return false
}

// Beacon shares its modules' effects with nearby machines at the given
// effectivity.
type Beacon struct {
	ID          string            `yaml:"id" json:"id"`
	Name        string            `yaml:"name,omitempty" json:"name,omitempty"`
	Effectivity rational.Rational `yaml:"effectivity" json:"effectivity"`
	Modules     int               `yaml:"modules" json:"modules"`
}

// Fuel describes an item that can be burned. Value is the energy in MJ.
type Fuel struct {
	ID       string            `yaml:"id" json:"id"`
	Category string            `yaml:"category" json:"category"`
	Value    rational.Rational `yaml:"value" json:"value"`
}

// Dataset is the complete raw game data.
type Dataset struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name,omitempty" json:"name,omitempty"`
	Version  string    `yaml:"version,omitempty" json:"version,omitempty"`
	Items    []Item    `yaml:"items" json:"items"`
	Recipes  []Recipe  `yaml:"recipes" json:"recipes"`
	Machines []Machine `yaml:"machines,omitempty" json:"machines,omitempty"`
	Modules  []Module  `yaml:"modules,omitempty" json:"modules,omitempty"`
	Beacons  []Beacon  `yaml:"beacons,omitempty" json:"beacons,omitempty"`
	Fuels    []Fuel    `yaml:"fuels,omitempty" json:"fuels,omitempty"`
}
