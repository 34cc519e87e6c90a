package categorizer

import (
	"context"
	"time"

	"fjacquet/receipt-ledger/internal/models"
)

// Transaction is the view of a record the strategies classify. Receipt lines
// carry a counterparty; passbook rows carry the bank account they belong to.
type Transaction struct {
	Kind                models.DocumentKind
	Date                time.Time
	CounterpartyName    string
	Description         string
	Amount              int64
	PassbookAccountName string
}

// Classification is the outcome of a successful strategy.
type Classification struct {
	AccountTitle string
	SubAccount   string
	TaxCategory  string
	IsLearned    bool
	RuleID       string
	// Description is set when a rule template rebuilt the description.
	Description string
	Strategy    string
}

// CategorizationStrategy defines one way of classifying transactions.
// Strategies are tried in order and the first one reporting found wins.
type CategorizationStrategy interface {
	// Categorize returns the classification, whether this strategy produced
	// one, and any error encountered on the way.
	Categorize(ctx context.Context, tx Transaction) (Classification, bool, error)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
