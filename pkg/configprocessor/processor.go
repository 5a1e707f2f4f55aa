// Package configprocessor provides shared configuration processing utilities.
package configprocessor

import "fmt"

// SettingInfo represents recipe settings information
type SettingInfo struct {
	Recipe   string
	Excluded bool
	// Tuned is set when a machine, fuel, module, beacon or cost is chosen.
	Tuned bool
}

// ObjectiveInfo represents objective information
type ObjectiveInfo struct {
	Item     string
	Type     string
	ZeroRate bool
}

// ScenarioInfo represents scenario configuration information
type ScenarioInfo struct {
	Name       string
	Active     bool
	Settings   []SettingInfo
	Objectives []ObjectiveInfo
}

// Processor handles configuration processing and validation
type Processor struct{}

// NewProcessor creates a new configuration processor
func NewProcessor() *Processor {
	return &Processor{}
}

// ValidateConfiguration validates the configuration and returns warnings
func (p *Processor) ValidateConfiguration(commonSettings []SettingInfo, commonObjectives []ObjectiveInfo, scenarios []ScenarioInfo) []string {
	var warnings []string

	warnings = append(warnings, settingWarnings("Common", commonSettings)...)
	warnings = append(warnings, objectiveWarnings("Common", commonObjectives)...)

	active := 0
	for _, scenario := range scenarios {
		if !scenario.Active {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s' is inactive and will not be solved", scenario.Name))
			continue
		}
		active++

		scope := fmt.Sprintf("Scenario '%s'", scenario.Name)
		warnings = append(warnings, settingWarnings(scope, scenario.Settings)...)
		warnings = append(warnings, objectiveWarnings(scope, scenario.Objectives)...)

		if len(commonObjectives)+len(scenario.Objectives) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s has no objectives and will be skipped", scope))
		}

		seen := make(map[string]bool)
		for _, o := range commonObjectives {
			seen[o.Item+"/"+o.Type] = true
		}
		for _, o := range scenario.Objectives {
			if seen[o.Item+"/"+o.Type] {
				warnings = append(warnings, fmt.Sprintf("%s repeats common %s objective for '%s'; rates are summed", scope, o.Type, o.Item))
			}
		}
	}

	if len(scenarios) > 0 && active == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be solved")
	}

	if len(warnings) == 0 {
		return nil
	}
	return warnings
}

func settingWarnings(scope string, settings []SettingInfo) []string {
	var warnings []string
	for _, s := range settings {
		if s.Excluded && s.Tuned {
			warnings = append(warnings, fmt.Sprintf("%s settings for excluded recipe '%s' are ignored", scope, s.Recipe))
		}
	}
	return warnings
}

func objectiveWarnings(scope string, objectives []ObjectiveInfo) []string {
	var warnings []string
	seen := make(map[string]bool)
	for _, o := range objectives {
		key := o.Item + "/" + o.Type
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("%s has duplicate %s objectives for '%s'", scope, o.Type, o.Item))
		}
		seen[key] = true
		if o.ZeroRate && o.Type != "maximize" {
			warnings = append(warnings, fmt.Sprintf("%s %s objective for '%s' has a zero rate", scope, o.Type, o.Item))
		}
	}
	return warnings
}
