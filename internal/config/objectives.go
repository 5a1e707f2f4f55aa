package config

import (
	"fmt"
	"strings"

	"github.com/iwvelando/factory-planner/internal/objective"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// ObjectiveConfig is one production goal as written in a plan file.
type ObjectiveConfig struct {
	Item string            `yaml:"item" mapstructure:"item" validate:"required"`
	Rate rational.Rational `yaml:"rate,omitempty" mapstructure:"rate"`
	Type string            `yaml:"type,omitempty" mapstructure:"type" validate:"omitempty,oneof=output input maximize limit"`
}

// CanonicalObjectiveType returns the canonical identifier for an objective
// type, accepting the common spellings users write.
func CanonicalObjectiveType(value string) string {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "", "output", "produce", "target":
		return string(objective.Output)
	case "input", "consume", "supply":
		return string(objective.Input)
	case "maximize", "maximise", "max":
		return string(objective.Maximize)
	case "limit", "cap":
		return string(objective.Limit)
	default:
		return strings.ToLower(trimmed)
	}
}

// Normalize ensures defaults and canonical values are applied before validation.
func (o *ObjectiveConfig) Normalize() {
	if o == nil {
		return
	}
	o.Item = strings.TrimSpace(o.Item)
	o.Type = CanonicalObjectiveType(o.Type)
}

// Validate returns an error when the objective is unsupported.
func (o *ObjectiveConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("objective cannot be nil")
	}

	o.Normalize()

	if o.Item == "" {
		return fmt.Errorf("objective requires an item")
	}
	switch objective.Type(o.Type) {
	case objective.Output, objective.Input, objective.Limit:
		if o.Rate.IsNegative() {
			return fmt.Errorf("objective for %q has negative rate %s", o.Item, o.Rate)
		}
	case objective.Maximize:
		if !o.Rate.IsZero() {
			return fmt.Errorf("maximize objective for %q must not set a rate", o.Item)
		}
	default:
		return fmt.Errorf("objective type %q is not supported", o.Type)
	}
	return nil
}

// ToObjective converts the config entry to the solver's form.
func (o ObjectiveConfig) ToObjective() objective.Objective {
	return objective.Objective{
		Item: o.Item,
		Rate: o.Rate,
		Type: objective.Type(CanonicalObjectiveType(o.Type)),
	}
}
