package main

import (
	"fmt"
	"io"

	"github.com/iwvelando/factory-planner/internal/solver"
	"github.com/iwvelando/factory-planner/pkg/adapters"
	"github.com/iwvelando/factory-planner/pkg/constants"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	var configLocation string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a plan file and its recipe settings without solving",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), configLocation, logLevel)
		},
	}
	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to plan file")
	return cmd
}

// runValidate loads the plan and builds the adjusted dataset of every
// scenario, which checks every machine, fuel, module and beacon reference.
func runValidate(w io.Writer, configLocation, logLevelOverride string) error {
	conf, cat, logger, err := loadPlan(configLocation, logLevelOverride)
	if logger != nil {
		defer func() {
			_ = logger.Sync()
		}()
	}
	if err != nil {
		return err
	}

	planner := solver.NewPlanner(logger, 0)
	for _, scenario := range conf.Scenarios {
		adapter := adapters.NewScenarioAdapter(conf.Common, scenario)
		settings, err := adapter.Settings()
		if err != nil {
			return fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		ds, err := planner.Adjusted(cat, settings, adapter.Adjustment())
		if err != nil {
			return fmt.Errorf("scenario %s: %w", scenario.Name, err)
		}
		_, _ = fmt.Fprintf(w, "✓ %s: %d recipes\n", scenario.Name, ds.Len())
	}
	for _, warning := range conf.ValidateConfiguration() {
		_, _ = fmt.Fprintf(w, "! %s\n", warning)
	}
	return nil
}
