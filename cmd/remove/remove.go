// Package remove handles removing rows from the results ledgers
package remove

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/common"
	"fjacquet/receipt-ledger/cmd/root"
)

// Cmd represents the delete command
var Cmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete rows from the results ledgers",
	Long: `Delete receipt or passbook rows that have not been exported yet, together with
any learning rule created from them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appContainer, err := root.Container()
		if err != nil {
			return err
		}
		res, err := appContainer.Learning().Delete(common.SplitIDs(args))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d rows and %d rules\n", res.Rows, res.Rules)
		return nil
	},
}
