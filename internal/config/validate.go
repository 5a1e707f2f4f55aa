package config

import (
	"fmt"

	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/pkg/validation"
)

// Validate returns the first structural problem with the configuration:
// failed field tags, unsupported objectives, duplicate scenario names or
// recipes configured twice in one settings list.
func (c *Configuration) Validate() error {
	if err := validation.NewValidator().Struct(c); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}

	if _, err := SettingsMap(c.Common.Settings); err != nil {
		return fmt.Errorf("common: %w", err)
	}
	for i := range c.Common.Objectives {
		if err := c.Common.Objectives[i].Validate(); err != nil {
			return fmt.Errorf("common: %w", err)
		}
	}

	names := make(map[string]bool, len(c.Scenarios))
	for i := range c.Scenarios {
		scenario := &c.Scenarios[i]
		if names[scenario.Name] {
			return fmt.Errorf("duplicate scenario name %q", scenario.Name)
		}
		names[scenario.Name] = true

		if _, err := SettingsMap(scenario.Settings); err != nil {
			return fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		for j := range scenario.Objectives {
			if err := scenario.Objectives[j].Validate(); err != nil {
				return fmt.Errorf("scenario %q: %w", scenario.Name, err)
			}
		}
	}
	return nil
}

// SettingsMap indexes a settings list by recipe id.
func SettingsMap(settings []RecipeSettingsConfig) (map[string]graph.RecipeSettings, error) {
	out := make(map[string]graph.RecipeSettings, len(settings))
	for _, s := range settings {
		if _, dup := out[s.Recipe]; dup {
			return nil, fmt.Errorf("recipe %q is configured more than once", s.Recipe)
		}
		out[s.Recipe] = s.RecipeSettings
	}
	return out, nil
}
