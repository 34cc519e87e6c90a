// Package root contains the root command for the application
package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/container"
	"fjacquet/receipt-ledger/internal/logging"
)

// CommonFlags represents the flags that are common to all commands
type CommonFlags struct {
	DataDir  string
	LogLevel string
}

var (
	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "receipt-ledger",
		Short: "Turn OCR'd receipts and passbooks into classified ledger rows for Yayoi import.",
		Long: `receipt-ledger reads receipt images and bank passbook pages from an inbox,
extracts their lines with a vision model, repairs dates and amounts, classifies
each line to an account title through learning rules and the model, and exports
the result as Yayoi accounting import files.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appContainer != nil {
				if err := appContainer.Close(); err != nil {
					appContainer.GetLogger().WithError(err).Warn("Failed to close container")
				}
			}
		},
	}

	// SharedFlags holds the persistent flags of the root command.
	SharedFlags = CommonFlags{}

	appContainer *container.Container
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.DataDir, "data-dir", "D", "", "Data directory (overrides data.directory)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level (overrides log.level)")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.InitializeConfig()
	if err != nil {
		return err
	}
	if SharedFlags.DataDir != "" {
		cfg.Data.Directory = SharedFlags.DataDir
	}
	if SharedFlags.LogLevel != "" {
		cfg.Log.Level = SharedFlags.LogLevel
	}
	logging.SetGlobalLevel(cfg.Log.Level)

	c, err := container.NewContainer(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	appContainer = c
	return nil
}

// GetContainer returns the container built for the running command.
func GetContainer() *container.Container {
	return appContainer
}

// GetLogger returns the application logger, or a default one before setup.
func GetLogger() logging.Logger {
	if appContainer == nil {
		return logging.NewLogrusAdapter("info", "text")
	}
	return appContainer.GetLogger()
}

// Container returns the container or an error when setup did not run.
func Container() (*container.Container, error) {
	if appContainer == nil {
		return nil, fmt.Errorf("container not initialized")
	}
	return appContainer, nil
}
