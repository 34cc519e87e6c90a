// Package learn handles turning corrected ledger rows into learning rules
package learn

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/cmd/common"
	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/learning"
)

var remove bool

// Cmd represents the learn command
var Cmd = &cobra.Command{
	Use:   "learn <id>...",
	Short: "Create learning rules from ledger rows",
	Long: `Create one learning rule per ledger row from its store name (receipts) or
description and bank account (passbooks), with the row's account title,
sub-account and tax category. Later batches classify matching lines with the
rule instead of the model.

With --remove, the rules created from the given rows are deleted instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: learnFunc,
}

func init() {
	Cmd.Flags().BoolVar(&remove, "remove", false, "Remove the rules learned from the given rows")
}

func learnFunc(cmd *cobra.Command, args []string) error {
	appContainer, err := root.Container()
	if err != nil {
		return err
	}
	svc := appContainer.Learning()
	ids := common.SplitIDs(args)

	var res *learning.Result
	if remove {
		res, err = svc.Unlearn(ids)
	} else {
		res, err = svc.Learn(ids)
	}
	if err != nil {
		return err
	}

	verb := "Learned"
	if remove {
		verb = "Removed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d rules (%d rows updated)\n", verb, res.Rules, res.Rows)
	for _, id := range res.Missing {
		fmt.Fprintf(cmd.OutOrStdout(), "not found: %s\n", id)
	}
	return nil
}
