package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/iwvelando/factory-planner/internal/config"
	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/plan"
	"github.com/iwvelando/factory-planner/internal/solver"
	"github.com/iwvelando/factory-planner/pkg/constants"
	"github.com/iwvelando/factory-planner/pkg/output"
	"github.com/iwvelando/factory-planner/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSolveCommand() *cobra.Command {
	var configLocation, outputFormatFlag string

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Solve every active scenario of a plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSolve(ctx, cmd.OutOrStdout(), configLocation, outputFormatFlag, logLevel)
		},
	}
	cmd.Flags().StringVar(&configLocation, "config", constants.DefaultConfigFile, "path to plan file")
	cmd.Flags().StringVar(&outputFormatFlag, "output-format", "", "type of output override: pretty, csv, json")
	return cmd
}

// loadPlan loads and validates a plan file, its dataset and a logger for it.
func loadPlan(configLocation, logLevelOverride string) (*config.Configuration, *dataset.Catalog, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration at %s (see %s): %w",
			configLocation, constants.ExamplePlanFile, err)
	}

	logger, err := initializeLogger(conf.Logging, logLevelOverride)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, nil, logger, fmt.Errorf("invalid configuration: %w", err)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.loadPlan"),
		)
	}

	cat, err := dataset.LoadFile(conf.DatasetPath())
	if err != nil {
		return nil, nil, logger, err
	}
	logger.Debug("dataset loaded",
		zap.String("op", "main.loadPlan"),
		zap.String("dataset", cat.ID()),
		zap.Int("recipes", len(cat.RecipeIDs())),
	)
	return conf, cat, logger, nil
}

func runSolve(ctx context.Context, w io.Writer, configLocation, outputFormatFlag, logLevelOverride string) error {
	conf, cat, logger, err := loadPlan(configLocation, logLevelOverride)
	if logger != nil {
		defer func() {
			_ = logger.Sync()
		}()
	}
	if err != nil {
		return err
	}

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if outputFormatFlag != "" {
		outputFormat = outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		return err
	}

	results, err := plan.GetPlans(ctx, logger, solver.NewPlanner(logger, 0), cat, *conf)
	if err != nil {
		return fmt.Errorf("failed to solve plan: %w", err)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(w, results)
	case constants.OutputFormatCSV:
		return output.CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return output.JSONFormat(w, results)
	}
	return nil
}
