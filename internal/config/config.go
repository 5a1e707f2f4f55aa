// Package config defines the data structures of a plan file and includes
// functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/iwvelando/factory-planner/internal/graph"
	"github.com/iwvelando/factory-planner/pkg/configprocessor"
	"github.com/iwvelando/factory-planner/pkg/constants"
	"github.com/spf13/viper"
)

// Configuration holds a complete plan: the shared inputs, the scenarios to
// solve, and logging/output options.
type Configuration struct {
	Common    Common        `yaml:"common" mapstructure:"common"`
	Scenarios []Scenario    `yaml:"scenarios" mapstructure:"scenarios" validate:"dive"`
	Logging   LoggingConfig `yaml:"logging,omitempty" mapstructure:"logging"`
	Output    OutputConfig  `yaml:"output,omitempty" mapstructure:"output"`

	// baseDir resolves relative dataset paths.
	baseDir string
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format     string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=json console"`
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"`
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format" validate:"omitempty,oneof=pretty csv json"`
}

// Common holds the dataset and the settings, adjustment and objectives
// shared by every scenario.
type Common struct {
	Dataset    string                 `yaml:"dataset" mapstructure:"dataset" validate:"required"`
	Adjustment graph.AdjustmentData   `yaml:"adjustment,omitempty" mapstructure:"adjustment"`
	Settings   []RecipeSettingsConfig `yaml:"settings,omitempty" mapstructure:"settings" validate:"dive"`
	Objectives []ObjectiveConfig      `yaml:"objectives,omitempty" mapstructure:"objectives" validate:"dive"`
}

// Scenario layers its own settings, adjustment and objectives over Common.
type Scenario struct {
	Name       string                 `yaml:"name" mapstructure:"name" validate:"required"`
	Active     bool                   `yaml:"active" mapstructure:"active"`
	Adjustment *graph.AdjustmentData  `yaml:"adjustment,omitempty" mapstructure:"adjustment"`
	Settings   []RecipeSettingsConfig `yaml:"settings,omitempty" mapstructure:"settings" validate:"dive"`
	Objectives []ObjectiveConfig      `yaml:"objectives,omitempty" mapstructure:"objectives" validate:"dive"`
}

// RecipeSettingsConfig names the recipe its settings apply to. Settings are
// a list rather than a map because viper lowercases map keys and recipe
// ids are case-sensitive.
type RecipeSettingsConfig struct {
	Recipe               string `yaml:"recipe" mapstructure:"recipe" validate:"required"`
	graph.RecipeSettings `yaml:",inline" mapstructure:",squash"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// plan there. Relative dataset paths resolve against the plan's directory.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	configuration, err := decode(v)
	if err != nil {
		return nil, err
	}
	configuration.baseDir = filepath.Dir(configPath)
	return configuration, nil
}

// LoadConfigurationFromReader loads a YAML plan from r. Relative dataset
// paths resolve against baseDir.
func LoadConfigurationFromReader(r io.Reader, baseDir string) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	configuration, err := decode(v)
	if err != nil {
		return nil, err
	}
	configuration.baseDir = baseDir
	return configuration, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	for i := range configuration.Common.Objectives {
		configuration.Common.Objectives[i].Normalize()
	}
	for i := range configuration.Scenarios {
		for j := range configuration.Scenarios[i].Objectives {
			configuration.Scenarios[i].Objectives[j].Normalize()
		}
	}
	return &configuration, nil
}

// DatasetPath returns the dataset path, resolved against the plan file's
// directory when relative.
func (c *Configuration) DatasetPath() string {
	if c.Common.Dataset == "" || filepath.IsAbs(c.Common.Dataset) || c.baseDir == "" {
		return c.Common.Dataset
	}
	return filepath.Join(c.baseDir, c.Common.Dataset)
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Structural errors are reported by Validate.
func (c *Configuration) ValidateConfiguration() []string {
	toInfo := func(settings []RecipeSettingsConfig) []configprocessor.SettingInfo {
		var out []configprocessor.SettingInfo
		for _, s := range settings {
			out = append(out, configprocessor.SettingInfo{
				Recipe:   s.Recipe,
				Excluded: s.Excluded,
				Tuned:    s.Machine != "" || s.Fuel != "" || len(s.Modules) > 0 || len(s.Beacons) > 0 || s.Cost != nil,
			})
		}
		return out
	}
	toObjectives := func(objs []ObjectiveConfig) []configprocessor.ObjectiveInfo {
		var out []configprocessor.ObjectiveInfo
		for _, o := range objs {
			out = append(out, configprocessor.ObjectiveInfo{
				Item:     o.Item,
				Type:     o.Type,
				ZeroRate: o.Rate.IsZero(),
			})
		}
		return out
	}

	var scenarios []configprocessor.ScenarioInfo
	for _, scenario := range c.Scenarios {
		scenarios = append(scenarios, configprocessor.ScenarioInfo{
			Name:       scenario.Name,
			Active:     scenario.Active,
			Settings:   toInfo(scenario.Settings),
			Objectives: toObjectives(scenario.Objectives),
		})
	}

	processor := configprocessor.NewProcessor()
	return processor.ValidateConfiguration(toInfo(c.Common.Settings), toObjectives(c.Common.Objectives), scenarios)
}
