// Package categorizer assigns ledger accounts to receipt lines and passbook
// rows. User learning rules are tried first, in a fixed order; the model-based
// classifier is the fallback and may only answer with a title from the
// account master list. When both fail the record gets an explicit sentinel
// title instead of a blank.
package categorizer

import (
	"context"
	"errors"
	"strings"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// Engine runs the categorization strategies in order.
type Engine struct {
	strategies []CategorizationStrategy
	sentinel   string
	hasMasters bool
	logger     logging.Logger
}

// NewEngine builds an engine over a snapshot of rules and masters. The
// snapshot is read-only for the lifetime of the engine. aiClient may be nil.
func NewEngine(rules []models.LearningRule, masters []models.AccountMaster, aiClient AIClient,
	cfg config.CategorizationConfig, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	logger = logger.WithField(logging.FieldComponent, "categorizer")

	sentinel := strings.TrimSpace(cfg.ErrorSentinel)
	if sentinel == "" {
		sentinel = models.SentinelClassificationError
	}

	return &Engine{
		strategies: []CategorizationStrategy{
			NewRuleStrategy(rules, cfg.RuleOrder, logger),
			NewAIStrategy(aiClient, masters, logger),
		},
		sentinel:   sentinel,
		hasMasters: len(models.AccountTitles(masters)) > 0,
		logger:     logger,
	}
}

// NewEngineFromSources loads rules and masters and builds an engine.
func NewEngineFromSources(rules RuleSource, masters MasterSource, aiClient AIClient,
	cfg config.CategorizationConfig, logger logging.Logger) (*Engine, error) {
	r, err := rules.LoadRules()
	if err != nil {
		return nil, err
	}
	m, err := masters.LoadAccountMasters()
	if err != nil {
		return nil, err
	}
	return NewEngine(r, m, aiClient, cfg, logger), nil
}

// ClassifyReceipt classifies a receipt line.
func (e *Engine) ClassifyReceipt(ctx context.Context, tx Transaction) Classification {
	tx.Kind = models.KindReceipt
	return e.classify(ctx, tx)
}

// ClassifyPassbook classifies a passbook row.
func (e *Engine) ClassifyPassbook(ctx context.Context, tx Transaction) Classification {
	tx.Kind = models.KindPassbook
	c := e.classify(ctx, tx)
	if c.TaxCategory == "" {
		c.TaxCategory = models.TaxCodeOutOfScope
	}
	return c
}

func (e *Engine) classify(ctx context.Context, tx Transaction) Classification {
	var results StrategyResults
	for _, s := range e.strategies {
		c, found, err := s.Categorize(ctx, tx)
		results.Add(StrategyResult{Strategy: s.Name(), Classification: c, Found: found, Error: err})
		if found && err == nil {
			break
		}
	}

	if c, ok := results.First(); ok {
		return c
	}

	title := e.sentinel
	if !e.hasMasters {
		title = models.SentinelMasterNotConfigured
	}
	log := e.logger.WithFields(
		logging.F(logging.FieldKind, string(tx.Kind)),
		logging.F("counterparty", tx.CounterpartyName),
		logging.F("description", tx.Description),
		logging.F("attempts", results.Summary()),
	)
	if errs := results.GetErrors(); len(errs) > 0 {
		log = log.WithError(errors.Join(errs...))
	}
	log.Warn("Classification exhausted, using sentinel title")

	return Classification{AccountTitle: title, Strategy: "none"}
}
