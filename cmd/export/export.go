// Package export handles the Yayoi export command
package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/common"
	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/export"
	"fjacquet/receipt-ledger/internal/models"
)

var (
	kind string
	ids  []string
)

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger rows as a Yayoi import file",
	Long: `Write the rows of the results ledger as a Shift_JIS Yayoi import file in the
export directory and move them to the exported ledger.

Rows whose account title could not be resolved, and passbook rows whose bank
account is not configured, block the export until they are corrected.

Example:
  receipt-ledger export --kind receipt
  receipt-ledger export --kind passbook --ids 3f2a...,9c1b...`,
	RunE: exportFunc,
}

func init() {
	Cmd.Flags().StringVarP(&kind, "kind", "k", common.KindReceipt, "Document kind: receipt or passbook")
	Cmd.Flags().StringSliceVar(&ids, "ids", nil, "Transaction IDs to export (default: all rows)")
}

func exportFunc(cmd *cobra.Command, args []string) error {
	appContainer, err := root.Container()
	if err != nil {
		return err
	}
	exporter := appContainer.Exporter()
	selected := common.SplitIDs(ids)

	var res *export.Result
	switch models.DocumentKind(kind) {
	case models.KindReceipt:
		res, err = exporter.ExportReceipts(selected)
	case models.KindPassbook:
		res, err = exporter.ExportPassbook(selected)
	default:
		return fmt.Errorf("unknown kind %q (want receipt or passbook)", kind)
	}
	if err != nil {
		return err
	}

	if res == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to export.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rows to %s\n", res.Rows, res.Path)
	return nil
}
