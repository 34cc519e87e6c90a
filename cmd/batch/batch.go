// Package batch handles the batch processing command
package batch

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/common"
	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/logging"
)

var (
	kind           string
	processingDate string
)

// Cmd represents the batch command
var Cmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch process receipts and passbook pages from the inbox",
	Long: `Batch process the documents waiting in the inbox directories.

New files are registered in the file list, sent to the extraction model,
reconciled, classified and appended to the results ledgers. Processed files are
moved to the archive. A run stops between files once the time limit is reached;
the remaining files are picked up by the next run.

Example:
  receipt-ledger batch --kind receipt
  receipt-ledger batch --processing-date 2025-06-15`,
	RunE: batchFunc,
}

func init() {
	Cmd.Flags().StringVarP(&kind, "kind", "k", common.KindAll, "Document kind: receipt, passbook or all")
	Cmd.Flags().StringVar(&processingDate, "processing-date", "", "Date used to repair incomplete dates (YYYY-MM-DD, default today)")
}

func batchFunc(cmd *cobra.Command, args []string) error {
	kinds, err := common.ParseKinds(kind)
	if err != nil {
		return err
	}
	date, err := common.ParseProcessingDate(processingDate, time.Now())
	if err != nil {
		return err
	}

	appContainer, err := root.Container()
	if err != nil {
		return err
	}
	processor, err := appContainer.BatchProcessor()
	if err != nil {
		return err
	}
	logger := appContainer.GetLogger().WithField(logging.FieldOperation, "batch")

	for _, k := range kinds {
		summary, err := processor.Run(cmd.Context(), k, date)
		if err != nil {
			return fmt.Errorf("%s batch failed: %w", k, err)
		}
		logger.Info("Batch summary",
			logging.F(logging.FieldKind, k),
			logging.F("registered", summary.Registered),
			logging.F("processed", summary.Processed),
			logging.F("failed", summary.Failed),
			logging.F("remaining", summary.Remaining))
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d processed, %d failed, %d rows, %d remaining\n",
			k, summary.Processed, summary.Failed, summary.Rows, summary.Remaining)
		if summary.TimedOut {
			break
		}
	}
	return nil
}
