package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/collegiumai/governance-backend/internal/app"
	"github.com/collegiumai/governance-backend/internal/infrastructure/config"
	"github.com/collegiumai/governance-backend/internal/infrastructure/telemetry"
)

var cfgPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "governance",
		Short: "CollegiumAI governance backend",
		Long:  "Compliance assessment, audit lifecycle, policy management, and governance reporting for the CollegiumAI platform.",
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to configuration file")

	rootCmd.AddCommand(
		newServeCmd(),
		newAssessCmd(),
		newAuditPlanCmd(),
		newPolicyReviewCmd(),
		newReportCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildApp loads config, sets up logging, and wires the engines.
func buildApp() (*app.App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	logger, err := telemetry.SetupLogger(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("setting up logger: %w", err)
	}
	return app.New(cfg, logger), nil
}
