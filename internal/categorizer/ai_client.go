package categorizer

import (
	"context"

	"fjacquet/receipt-ledger/internal/models"
)

// InferenceQuery is what the classifier sees of a transaction.
type InferenceQuery struct {
	CounterpartyName string
	Description      string
	Amount           int64
	Masters          []models.AccountMaster
}

// Inference is the raw answer of the classifier. Callers must check that
// AccountTitle is one of the master titles before using it.
type Inference struct {
	AccountTitle string `json:"accountTitle"`
	SubAccount   string `json:"subAccount"`
	TaxCategory  string `json:"taxCategory"`
}

// AIClient defines the interface for model-based account-title inference.
// Implementations talk to an external service; tests use fakes.
type AIClient interface {
	// InferAccountTitle picks the account title of a receipt line.
	InferAccountTitle(ctx context.Context, q InferenceQuery) (Inference, error)

	// InferPassbookAccount picks the counter account, sub-account and tax
	// category of a passbook row from its description.
	InferPassbookAccount(ctx context.Context, q InferenceQuery) (Inference, error)
}
