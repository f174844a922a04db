package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/collegiumai/governance-backend/internal/api/rest"
	"github.com/collegiumai/governance-backend/internal/app"
	reportingdomain "github.com/collegiumai/governance-backend/internal/domain/reporting"
	compliancesvc "github.com/collegiumai/governance-backend/internal/service/compliance"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the governance HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return rest.NewServer(application).Start(ctx)
		},
	}
}

func newAssessCmd() *cobra.Command {
	var assessor string
	cmd := &cobra.Command{
		Use:   "assess [framework]",
		Short: "Run a compliance assessment for one framework, or all when none is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			input := compliancesvc.AssessmentInput{Assessor: assessor}
			if len(args) == 1 {
				assessment, err := application.Compliance.AssessFramework(cmd.Context(), args[0], input)
				if err != nil {
					return err
				}
				return printJSON(assessment)
			}

			result, err := application.Integration.RunComprehensiveComplianceCheck(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().StringVar(&assessor, "assessor", "cli", "name recorded as the assessor")
	return cmd
}

func newAuditPlanCmd() *cobra.Command {
	var year int
	cmd := &cobra.Command{
		Use:   "audit-plan",
		Short: "Generate the annual audit plan from the latest assessment results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			plan, err := application.Integration.ScheduleAutomatedAudits(cmd.Context(), year)
			if err != nil {
				return err
			}
			return printJSON(plan)
		},
	}
	cmd.Flags().IntVar(&year, "year", time.Now().Year()+1, "plan year")
	return cmd
}

func newPolicyReviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy-review",
		Short: "List active policies due for review and raise review alerts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			due, err := application.Integration.PerformPolicyLifecycleManagement(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(due)
		},
	}
}

func newReportCmd() *cobra.Command {
	var reportType, format string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a governance report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := buildApp()
			if err != nil {
				return err
			}
			defer application.Close()

			return runReport(cmd.Context(), application, reportType, format)
		},
	}
	cmd.Flags().StringVar(&reportType, "type", "governance_overview", "report type")
	cmd.Flags().StringVar(&format, "format", "json", "report format")
	return cmd
}

func printJSON(payload any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

func runReport(ctx context.Context, application *app.App, reportType, format string) error {
	rt, ok := reportingdomain.ParseReportType(reportType)
	if !ok {
		return fmt.Errorf("unsupported report type: %s", reportType)
	}
	rf, ok := reportingdomain.ParseReportFormat(format)
	if !ok {
		return fmt.Errorf("unsupported report format: %s", format)
	}
	report, err := application.Reporting.GenerateReport(ctx, rt, rf, "cli")
	if err != nil {
		return err
	}
	return printJSON(report)
}
