// Package categorize handles single-transaction classification commands
package categorize

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/assembler"
	"fjacquet/receipt-ledger/internal/categorizer"
	"fjacquet/receipt-ledger/internal/currencyutils"
	"fjacquet/receipt-ledger/internal/models"
)

var (
	storeName       string
	description     string
	amount          string
	passbookAccount string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Categorize one transaction through learning rules and the model",
	Long: `Categorize one transaction the way the batch would: learning rules first,
then the model restricted to the account master list.

Without --store the transaction is treated as a passbook row and --description
is matched against passbook rules.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&storeName, "store", "s", "", "Store name printed on the receipt")
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Line description or passbook text")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Amount including tax, e.g. 1100 or ¥1,100")
	Cmd.Flags().StringVarP(&passbookAccount, "passbook-account", "p", "", "Bank account name for passbook rows")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	if storeName == "" && description == "" {
		return fmt.Errorf("--store or --description is required")
	}

	tx := categorizer.Transaction{
		Date:                time.Now(),
		CounterpartyName:    storeName,
		Description:         description,
		PassbookAccountName: passbookAccount,
	}
	if amount != "" {
		d, err := currencyutils.ParseAmount(amount)
		if err != nil {
			return fmt.Errorf("invalid amount %q: %w", amount, err)
		}
		tx.Amount = models.Yen(d)
	}

	appContainer, err := root.Container()
	if err != nil {
		return err
	}
	engine, err := appContainer.Engine()
	if err != nil {
		return err
	}
	return classify(cmd.Context(), engine, tx, appContainer.GetConfig().Categorization.ErrorSentinel, cmd.OutOrStdout())
}

func classify(ctx context.Context, c assembler.Classifier, tx categorizer.Transaction, sentinel string, out io.Writer) error {
	var cls categorizer.Classification
	if tx.CounterpartyName == "" {
		cls = c.ClassifyPassbook(ctx, tx)
	} else {
		cls = c.ClassifyReceipt(ctx, tx)
	}

	fmt.Fprintf(out, "Account title: %s\n", cls.AccountTitle)
	if cls.SubAccount != "" {
		fmt.Fprintf(out, "Sub-account:   %s\n", cls.SubAccount)
	}
	if cls.TaxCategory != "" {
		fmt.Fprintf(out, "Tax category:  %s\n", cls.TaxCategory)
	}
	fmt.Fprintf(out, "Strategy:      %s\n", cls.Strategy)
	if cls.RuleID != "" {
		fmt.Fprintf(out, "Rule:          %s\n", cls.RuleID)
	}
	if models.IsSentinelTitle(cls.AccountTitle, sentinel) {
		return fmt.Errorf("transaction could not be classified")
	}
	return nil
}
