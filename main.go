package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/receipt-ledger/cmd/batch"
	"fjacquet/receipt-ledger/cmd/categorize"
	"fjacquet/receipt-ledger/cmd/export"
	"fjacquet/receipt-ledger/cmd/invoice"
	"fjacquet/receipt-ledger/cmd/learn"
	"fjacquet/receipt-ledger/cmd/remove"
	"fjacquet/receipt-ledger/cmd/review"
	"fjacquet/receipt-ledger/cmd/root"
	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
)

func init() {
	// .env is optional; nothing is logged before the level is known
	_, _ = config.LoadEnv()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logging.SetGlobalLevel(level)

	root.Init()

	root.Cmd.AddCommand(batch.Cmd)
	root.Cmd.AddCommand(export.Cmd)
	root.Cmd.AddCommand(learn.Cmd)
	root.Cmd.AddCommand(remove.Cmd)
	root.Cmd.AddCommand(invoice.Cmd)
	root.Cmd.AddCommand(review.Cmd)
	root.Cmd.AddCommand(categorize.Cmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.Cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
