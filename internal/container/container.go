// Package container provides dependency injection for the receipt-ledger
// application. It centralizes the creation and wiring of all application
// dependencies, making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/receipt-ledger/internal/assembler"
	"fjacquet/receipt-ledger/internal/batch"
	"fjacquet/receipt-ledger/internal/categorizer"
	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/export"
	"fjacquet/receipt-ledger/internal/extraction"
	"fjacquet/receipt-ledger/internal/learning"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/reconciler"
	"fjacquet/receipt-ledger/internal/report"
	"fjacquet/receipt-ledger/internal/reviewer"
	"fjacquet/receipt-ledger/internal/store"
)

// ErrAIDisabled is returned when an operation needs the extraction model and
// AI is disabled in the configuration.
var ErrAIDisabled = errors.New("AI is disabled: set ai.enabled and GEMINI_API_KEY to process documents")

// gemini is what the container needs from the model client.
type gemini interface {
	categorizer.AIClient
	extraction.Extractor
	Close() error
}

// Container holds all application dependencies and provides methods to access them.
//
// Stores are created once. Components that snapshot rules or masters (the
// categorization engine and everything built on it) are created per call so
// that a long-lived container sees rules learned after it was built.
type Container struct {
	logger logging.Logger
	config *config.Config

	rules    *store.RuleStore
	masters  *store.MasterStore
	files    *store.FileList
	ledger   *store.LedgerStore
	tokenLog *store.TokenLog

	ai gemini
}

// NewContainer creates and wires all application dependencies.
// This is the main entry point for dependency injection in the application.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	c := &Container{
		logger:  logger,
		config:  cfg,
		rules:   store.NewRuleStore(cfg.DataPath(cfg.Data.RulesFile), logger),
		masters: store.NewMasterStore(cfg.DataPath(cfg.Data.AccountsFile), cfg.DataPath(cfg.Data.PassbooksFile), logger),
		files:   store.NewFileList(cfg.DataPath(cfg.Data.FileListFile), logger),
		ledger: store.NewLedgerStore(store.LedgerPaths{
			Receipts:         cfg.DataPath(cfg.Data.ResultsFile),
			ExportedReceipts: cfg.DataPath(cfg.Data.ExportedFile),
			Passbook:         cfg.DataPath(cfg.Data.PassbookResultsFile),
			ExportedPassbook: cfg.DataPath(cfg.Data.PassbookExportedFile),
		}, logger),
		tokenLog: store.NewTokenLog(cfg.DataPath(cfg.Data.TokenLogFile), logger),
	}

	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		client, err := categorizer.NewGeminiClient(ctx, cfg.AI, cfg.Batch.MaxRetries, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		c.ai = client
		logger.Info("AI extraction and classification enabled", logging.F(logging.FieldModel, cfg.AI.Model))
	} else {
		logger.Info("AI disabled, classification uses learning rules only")
	}

	return c, nil
}

// aiClient returns the model client as a categorizer.AIClient, keeping a nil
// interface when AI is disabled.
func (c *Container) aiClient() categorizer.AIClient {
	if c.ai == nil {
		return nil
	}
	return c.ai
}

// Engine builds a categorization engine over the current rules and masters.
func (c *Container) Engine() (*categorizer.Engine, error) {
	return categorizer.NewEngineFromSources(c.rules, c.masters, c.aiClient(), c.config.Categorization, c.logger)
}

// Assembler builds a record assembler over the current rules and masters.
func (c *Container) Assembler() (*assembler.Assembler, error) {
	engine, err := c.Engine()
	if err != nil {
		return nil, fmt.Errorf("failed to load classification rules: %w", err)
	}
	passbooks, err := c.masters.LoadPassbookMasters()
	if err != nil {
		return nil, fmt.Errorf("failed to load passbook masters: %w", err)
	}
	amounts := reconciler.NewAmountReconciler(c.config.Reconcile, c.config.Categorization.ErrorSentinel, c.logger)
	return assembler.NewAssembler(engine, amounts, passbooks, c.config.Export.TaxCodes, c.logger), nil
}

// BatchProcessor builds the batch processor. Extraction needs the model, so
// it fails with ErrAIDisabled when AI is off.
func (c *Container) BatchProcessor() (*batch.Processor, error) {
	if c.ai == nil {
		return nil, ErrAIDisabled
	}
	asm, err := c.Assembler()
	if err != nil {
		return nil, err
	}

	cfg := c.config
	opts := batch.Options{
		ReceiptSourceDir:   cfg.DataPath(cfg.Data.ReceiptSourceDir),
		PassbookSourceDir:  cfg.DataPath(cfg.Data.PassbookSourceDir),
		ReceiptArchiveDir:  cfg.DataPath(cfg.Data.ReceiptArchiveDir),
		PassbookArchiveDir: cfg.DataPath(cfg.Data.PassbookArchiveDir),
		LockFile:           cfg.DataPath(cfg.Batch.LockFile),
		TimeLimit:          cfg.Batch.TimeLimit(),
	}
	svc := extraction.NewService(c.ai, c.logger)
	return batch.NewProcessor(opts, c.files, c.ledger, c.tokenLog, svc, asm, c.logger), nil
}

// Exporter builds the Yayoi exporter.
func (c *Container) Exporter() *export.Exporter {
	return export.NewExporter(c.config.Export, c.config.Categorization.ErrorSentinel, c.config.DataPath(c.config.Data.ExportDir), c.ledger, c.logger)
}

// Learning builds the learning and correction service.
func (c *Container) Learning() *learning.Service {
	return learning.NewService(c.rules, c.ledger, c.config.Export, c.config.Categorization.ErrorSentinel, c.logger)
}

// Reviewer builds the review service over the results ledgers.
func (c *Container) Reviewer() *reviewer.Reviewer {
	return reviewer.NewReviewer(c.ledger, c.logger)
}

// ReportGenerator builds the review report renderer.
func (c *Container) ReportGenerator() *report.ReportGenerator {
	return report.NewReportGenerator(c.logger)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLedger returns the ledger store.
func (c *Container) GetLedger() *store.LedgerStore {
	return c.ledger
}

// GetFileList returns the file list store.
func (c *Container) GetFileList() *store.FileList {
	return c.files
}

// AIEnabled reports whether a model client was created.
func (c *Container) AIEnabled() bool {
	return c.ai != nil
}

// Close releases the model client.
func (c *Container) Close() error {
	if c.ai != nil {
		if err := c.ai.Close(); err != nil {
			return err
		}
	}
	c.logger.Debug("Container closed")
	return nil
}
