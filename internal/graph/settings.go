// Package graph turns the raw dataset plus user settings into the adjusted
// recipe set the solver works on. The transformation is pure: the catalog
// and settings are never modified and a fresh AdjustedDataset is returned on
// every call.
package graph

import (
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// BeaconSettings describes Count beacons of one type surrounding a machine,
// each holding the listed modules.
type BeaconSettings struct {
	Beacon  string   `yaml:"beacon" json:"beacon" mapstructure:"beacon"`
	Count   int      `yaml:"count" json:"count" mapstructure:"count"`
	Modules []string `yaml:"modules,omitempty" json:"modules,omitempty" mapstructure:"modules"`
}

// RecipeSettings are the per-recipe user overrides. Empty Machine and Fuel
// select the defaults (first listed producer, first compatible fuel). A nil
// Cost falls back to machine-time per cycle.
type RecipeSettings struct {
	Excluded bool               `yaml:"excluded,omitempty" json:"excluded,omitempty" mapstructure:"excluded"`
	Machine  string             `yaml:"machine,omitempty" json:"machine,omitempty" mapstructure:"machine"`
	Fuel     string             `yaml:"fuel,omitempty" json:"fuel,omitempty" mapstructure:"fuel"`
	Modules  []string           `yaml:"modules,omitempty" json:"modules,omitempty" mapstructure:"modules"`
	Beacons  []BeaconSettings   `yaml:"beacons,omitempty" json:"beacons,omitempty" mapstructure:"beacons"`
	Cost     *rational.Rational `yaml:"cost,omitempty" json:"cost,omitempty" mapstructure:"cost"`
}

// AdjustmentData holds the global modifiers applied to every recipe.
type AdjustmentData struct {
	// MiningBonus is added to the productivity of mining recipes.
	MiningBonus rational.Rational `yaml:"miningBonus,omitempty" json:"miningBonus,omitempty" mapstructure:"miningBonus"`
	// ResearchBonus is added to the speed of research recipes.
	ResearchBonus rational.Rational `yaml:"researchBonus,omitempty" json:"researchBonus,omitempty" mapstructure:"researchBonus"`
	// NetProductionOnly nets an item's inputs against its outputs inside a
	// step instead of listing both.
	NetProductionOnly bool `yaml:"netProductionOnly,omitempty" json:"netProductionOnly,omitempty" mapstructure:"netProductionOnly"`
}
