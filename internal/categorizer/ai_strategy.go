package categorizer

import (
	"context"
	"errors"
	"strings"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/parsererror"
)

// ErrNoCandidates is returned when the account master list is empty.
var ErrNoCandidates = errors.New("account master list is empty")

// AIStrategy implements categorization using AI services.
// The answer is only accepted when it is one of the master titles.
type AIStrategy struct {
	aiClient AIClient
	masters  []models.AccountMaster
	titles   map[string]bool
	logger   logging.Logger
}

// NewAIStrategy creates a new AIStrategy instance.
func NewAIStrategy(aiClient AIClient, masters []models.AccountMaster, logger logging.Logger) *AIStrategy {
	titles := make(map[string]bool, len(masters))
	for _, t := range models.AccountTitles(masters) {
		titles[t] = true
	}
	return &AIStrategy{
		aiClient: aiClient,
		masters:  masters,
		titles:   titles,
		logger:   logger,
	}
}

// Name returns the name of this strategy for logging and debugging.
func (s *AIStrategy) Name() string {
	return "AI"
}

// Categorize asks the AI client for an account title.
func (s *AIStrategy) Categorize(ctx context.Context, tx Transaction) (Classification, bool, error) {
	if s.aiClient == nil {
		s.logger.Debug("AI client not available, skipping AI categorization",
			logging.F(logging.FieldStrategy, s.Name()))
		return Classification{}, false, nil
	}
	if len(s.titles) == 0 {
		return Classification{}, false, ErrNoCandidates
	}

	q := InferenceQuery{
		CounterpartyName: tx.CounterpartyName,
		Description:      tx.Description,
		Amount:           tx.Amount,
		Masters:          s.masters,
	}

	var (
		inf Inference
		err error
	)
	if tx.Kind == models.KindPassbook {
		inf, err = s.aiClient.InferPassbookAccount(ctx, q)
	} else {
		inf, err = s.aiClient.InferAccountTitle(ctx, q)
	}
	if err != nil {
		return Classification{}, false, &parsererror.CategorizationError{
			Transaction: describe(tx),
			Strategy:    s.Name(),
			Err:         err,
		}
	}

	title := strings.TrimSpace(inf.AccountTitle)
	if !s.titles[title] {
		s.logger.Warn("AI returned a title outside the master list",
			logging.F(logging.FieldAccountTitle, inf.AccountTitle))
		return Classification{}, false, &parsererror.CategorizationError{
			Transaction: describe(tx),
			Strategy:    s.Name(),
			Err:         errors.New("title not in candidate set: " + inf.AccountTitle),
		}
	}

	c := Classification{
		AccountTitle: title,
		SubAccount:   strings.TrimSpace(inf.SubAccount),
		Strategy:     s.Name(),
	}
	if tx.Kind == models.KindPassbook {
		c.TaxCategory = strings.TrimSpace(inf.TaxCategory)
		if c.TaxCategory == "" {
			c.TaxCategory = models.TaxCodeOutOfScope
		}
	} else {
		// receipts take the sub-account from rules only
		c.SubAccount = ""
	}
	return c, true, nil
}

func describe(tx Transaction) string {
	if tx.CounterpartyName != "" {
		return tx.CounterpartyName + " " + tx.Description
	}
	return tx.Description
}
