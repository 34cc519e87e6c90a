// Package invoice handles editing the invoice registration numbers of receipts
package invoice

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/common"
	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/learning"
)

var clearNumber bool

// Cmd represents the invoice command
var Cmd = &cobra.Command{
	Use:   "invoice <id>...",
	Short: "Insert or clear invoice registration numbers",
	Long: `Write the placeholder registration number (export.dummy_invoice_number) into
receipts that have none, or clear it with --clear. The tax category code of
each changed row is recomputed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: invoiceFunc,
}

func init() {
	Cmd.Flags().BoolVar(&clearNumber, "clear", false, "Clear the registration number instead")
}

func invoiceFunc(cmd *cobra.Command, args []string) error {
	appContainer, err := root.Container()
	if err != nil {
		return err
	}
	svc := appContainer.Learning()
	ids := common.SplitIDs(args)

	var res *learning.Result
	if clearNumber {
		res, err = svc.ClearInvoice(ids)
	} else {
		res, err = svc.InsertDummyInvoice(ids)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Updated %d rows\n", res.Rows)
	return nil
}
