package categorizer

import "fjacquet/receipt-ledger/internal/models"

// RuleSource loads learning rules in file order.
// This allows for dependency injection and easier testing.
type RuleSource interface {
	LoadRules() ([]models.LearningRule, error)
}

// MasterSource loads the chart of accounts offered to the classifier.
type MasterSource interface {
	LoadAccountMasters() ([]models.AccountMaster, error)
}
