package graph

import (
	"fmt"

	"github.com/iwvelando/factory-planner/internal/dataset"
	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
)

// Options lists the choices a recipe accepts given the machine selected in
// its settings. Fuel and module options are derived from the dataset and
// are never set directly.
type Options struct {
	Recipe      string   `json:"recipe"`
	Machine     string   `json:"machine,omitempty"`
	Machines    []string `json:"machines,omitempty"`
	Fuels       []string `json:"fuels,omitempty"`
	Modules     []string `json:"modules,omitempty"`
	ModuleSlots int      `json:"moduleSlots"`
	Beacons     []string `json:"beacons,omitempty"`
}

// RecipeOptions resolves the options for recipeID under settings s.
func RecipeOptions(cat *dataset.Catalog, recipeID string, s RecipeSettings) (Options, error) {
	recipe, ok := cat.Recipe(recipeID)
	if !ok {
		return Options{}, invalidSettings(recipeID, "unknown recipe", nil)
	}

	opts := Options{
		Recipe:   recipeID,
		Machines: append([]string(nil), recipe.Producers...),
		Modules:  cat.ModulesFor(recipeID),
	}
	for _, beacon := range cat.Dataset().Beacons {
		opts.Beacons = append(opts.Beacons, beacon.ID)
	}

	machineID := s.Machine
	if machineID == "" && len(recipe.Producers) > 0 {
		machineID = recipe.Producers[0]
	}
	if machineID == "" {
		return opts, nil
	}
	if !contains(recipe.Producers, machineID) {
		return opts, invalidSettings(recipeID, fmt.Sprintf("machine %q cannot run this recipe", machineID),
			map[string]any{"machine": machineID})
	}
	machine, ok := cat.Machine(machineID)
	if !ok {
		return opts, invalidSettings(recipeID, fmt.Sprintf("machine %q is not defined", machineID),
			map[string]any{"machine": machineID})
	}

	opts.Machine = machineID
	opts.ModuleSlots = machine.Modules
	opts.Fuels = cat.FuelsFor(machine)
	return opts, nil
}

func invalidSettings(recipeID, message string, context map[string]any) error {
	if context == nil {
		context = map[string]any{}
	}
	context["recipe"] = recipeID
	return apperrors.NewWithContext(apperrors.ErrCodeInvalidRecipeSettings,
		fmt.Sprintf("recipe %q: %s", recipeID, message), context)
}

func contains(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
