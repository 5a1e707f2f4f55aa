// Command factory-planner solves production plans from the command line
// and serves the planner API.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var logLevel string

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "factory-planner",
		Short:         "Exact production-chain planner",
		Long:          `Compute the recipes, machine counts and item flows that meet production goals at minimum cost.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newSolveCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newServeCommand())
	return rootCmd
}

func main() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"error\": %q}\n", err.Error())
		os.Exit(1)
	}
}
