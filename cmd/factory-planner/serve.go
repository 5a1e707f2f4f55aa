package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/factory-planner/internal/dataset"
	"github.com/iwvelando/factory-planner/internal/server"
	"github.com/iwvelando/factory-planner/internal/solver"
	"github.com/iwvelando/factory-planner/internal/store"
	"github.com/iwvelando/factory-planner/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var serverConfig, address, datasetPath string
	var noDatabase bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(serverConfig)
			if err != nil {
				return err
			}
			if address != "" {
				cfg.Address = address
			}
			if datasetPath != "" {
				cfg.Dataset = datasetPath
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg, !noDatabase)
		},
	}
	cmd.Flags().StringVar(&serverConfig, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "default dataset file override")
	cmd.Flags().BoolVar(&noDatabase, "no-database", false, "disable saved plans")
	return cmd
}

func runServer(ctx context.Context, cfg *server.Config, withDatabase bool) error {
	logger, err := initializeLogger(cfg.Logging, logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := server.Options{
		MaxUploadSize: cfg.UploadSizeBytes(),
		Version:       version,
		Planner:       solver.NewPlanner(logger, cfg.CacheTTL),
		RateLimit:     cfg.RateLimit,
		RateBurst:     cfg.RateBurst,
		SolveTimeout:  cfg.SolveTimeout,
	}

	if cfg.Dataset != "" {
		opts.Catalog, err = dataset.LoadFile(cfg.Dataset)
		if err != nil {
			return err
		}
		logger.Info("dataset loaded",
			zap.String("op", "main.runServer"),
			zap.String("dataset", opts.Catalog.ID()),
		)
	}

	if withDatabase {
		opts.Store, err = store.Open(cfg.Database, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := opts.Store.Close(); closeErr != nil {
				logger.Warn("failed to close store",
					zap.String("op", "main.runServer"),
					zap.Error(closeErr),
				)
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main.runServer"),
			zap.String("address", cfg.Address),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down",
		zap.String("op", "main.runServer"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
