// Package review handles the ledger review command
package review

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/report"
)

var (
	// outputFormat holds the desired output format for the report (text, json).
	outputFormat string
	// outputFile holds the path of a file the report should be written to.
	outputFile string
)

// Cmd represents the review command
var Cmd = &cobra.Command{
	Use:   "review",
	Short: "Review the results ledgers before export",
	Long: `List the rows that need attention before export: possible duplicates (same
date and amount) and rows whose note carries a review marker or whose account
title could not be resolved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		appContainer, err := root.Container()
		if err != nil {
			return err
		}
		logger := appContainer.GetLogger().WithField("command", "review")

		rep, err := appContainer.Reviewer().PerformReview()
		if err != nil {
			return fmt.Errorf("failed to perform review: %w", err)
		}
		return writeReport(appContainer.ReportGenerator(), rep, outputFormat, outputFile, cmd.OutOrStdout(), logger)
	},
}

func init() {
	Cmd.Flags().StringVarP(&outputFormat, "format", "f", report.FormatText, "Output format: text or json")
	Cmd.Flags().StringVar(&outputFile, "output-file", "", "Write the report to this file instead of stdout")
}

func writeReport(gen *report.ReportGenerator, rep *models.ReviewReport, format, file string,
	stdout io.Writer, logger logging.Logger) error {
	reportBytes, err := gen.GenerateReport(rep, format)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if file != "" {
		if err := os.WriteFile(file, reportBytes, models.PermissionDataFile); err != nil {
			return fmt.Errorf("failed to write report to file %s: %w", file, err)
		}
		logger.Info("Review report written to file", logging.F(logging.FieldOutputFile, file))
		return nil
	}

	if _, err := stdout.Write(reportBytes); err != nil {
		return fmt.Errorf("failed to write report to stdout: %w", err)
	}
	return nil
}
