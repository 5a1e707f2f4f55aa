package configprocessor

import (
	"strings"
	"testing"
)

func TestNewProcessor(t *testing.T) {
	processor := NewProcessor()
	if processor == nil {
		t.Error("NewProcessor() returned nil")
	}
}

func TestProcessor_ValidateConfiguration(t *testing.T) {
	processor := NewProcessor()

	tests := []struct {
		name             string
		commonSettings   []SettingInfo
		commonObjectives []ObjectiveInfo
		scenarios        []ScenarioInfo
		expectedWarnings []string
	}{
		{
			name:             "Valid configuration",
			commonSettings:   []SettingInfo{{Recipe: "iron-plate", Tuned: true}},
			commonObjectives: []ObjectiveInfo{{Item: "iron-plate", Type: "output"}},
			scenarios:        []ScenarioInfo{{Name: "Base", Active: true}},
		},
		{
			name:           "Excluded recipe with settings",
			commonSettings: []SettingInfo{{Recipe: "iron-plate", Excluded: true, Tuned: true}},
			scenarios: []ScenarioInfo{{
				Name:       "Base",
				Active:     true,
				Objectives: []ObjectiveInfo{{Item: "gear", Type: "output"}},
			}},
			expectedWarnings: []string{"Common settings for excluded recipe 'iron-plate' are ignored"},
		},
		{
			name:             "Zero rate and duplicate objectives",
			commonObjectives: []ObjectiveInfo{{Item: "gear", Type: "output", ZeroRate: true}},
			scenarios: []ScenarioInfo{{
				Name:   "Base",
				Active: true,
				Objectives: []ObjectiveInfo{
					{Item: "gear", Type: "output"},
					{Item: "ore", Type: "limit"},
					{Item: "ore", Type: "limit"},
					{Item: "plate", Type: "maximize", ZeroRate: true},
				},
			}},
			expectedWarnings: []string{
				"Common output objective for 'gear' has a zero rate",
				"Scenario 'Base' has duplicate limit objectives for 'ore'",
				"Scenario 'Base' repeats common output objective for 'gear'; rates are summed",
			},
		},
		{
			name:      "Inactive scenarios only",
			scenarios: []ScenarioInfo{{Name: "Old", Active: false}},
			expectedWarnings: []string{
				"Scenario 'Old' is inactive and will not be solved",
				"No active scenarios; nothing will be solved",
			},
		},
		{
			name:             "Active scenario without objectives",
			scenarios:        []ScenarioInfo{{Name: "Empty", Active: true}},
			expectedWarnings: []string{"Scenario 'Empty' has no objectives and will be skipped"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := processor.ValidateConfiguration(tt.commonSettings, tt.commonObjectives, tt.scenarios)

			if len(warnings) != len(tt.expectedWarnings) {
				t.Fatalf("expected %d warnings, got %d: %v", len(tt.expectedWarnings), len(warnings), warnings)
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.expectedWarnings {
				if !strings.Contains(joined, want) {
					t.Errorf("missing warning %q in %v", want, warnings)
				}
			}
		})
	}
}
