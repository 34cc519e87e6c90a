// Package learning implements the user corrections applied to ledger rows:
// turning rows into classification rules, forgetting them, deleting rows and
// editing invoice numbers.
package learning

import (
	"fmt"
	"strings"

	"fjacquet/receipt-ledger/internal/categorizer"
	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// RuleWriter stores learning rules.
type RuleWriter interface {
	AddRules(rules ...models.LearningRule) ([]models.LearningRule, error)
	RemoveBySourceIDs(transactionIDs []string) (int, error)
}

// Ledger is the part of the ledger store the service edits.
type Ledger interface {
	LoadReceipts() ([]models.ClassifiedTransaction, error)
	LoadPassbook() ([]models.PassbookTransaction, error)
	UpdateReceipts(ids []string, fn func(*models.ClassifiedTransaction)) (int, error)
	UpdatePassbook(ids []string, fn func(*models.PassbookTransaction)) (int, error)
	RemoveReceipts(ids []string) (int, error)
	RemovePassbook(ids []string) (int, error)
}

// Result counts what an operation touched. Missing lists the requested IDs
// found in neither ledger.
type Result struct {
	Rules   int
	Rows    int
	Missing []string
}

// Service applies corrections to the ledgers and the rule store.
type Service struct {
	rules        RuleWriter
	ledger       Ledger
	dummyInvoice string
	taxCodes     config.TaxCodeConfig
	sentinel     string
	logger       logging.Logger
}

// NewService creates a learning service. cfg supplies the dummy invoice number
// and the tax codes recomputed by the invoice operations; sentinel is the
// configured title of unresolved rows.
func NewService(rules RuleWriter, ledger Ledger, cfg config.ExportConfig, sentinel string, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		rules:        rules,
		ledger:       ledger,
		dummyInvoice: cfg.DummyInvoiceNumber,
		taxCodes:     cfg.TaxCodes,
		sentinel:     sentinel,
		logger:       logger.WithField(logging.FieldComponent, "learning"),
	}
}

// Learn creates one rule per selected row and marks the row as learned.
// Rows still carrying a classification sentinel cannot be learned.
func (s *Service) Learn(ids []string) (*Result, error) {
	receipts, err := s.ledger.LoadReceipts()
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt ledger: %w", err)
	}
	passbook, err := s.ledger.LoadPassbook()
	if err != nil {
		return nil, fmt.Errorf("failed to load passbook ledger: %w", err)
	}

	want := toSet(ids)
	found := map[string]bool{}
	var newRules []models.LearningRule

	for _, tx := range receipts {
		if !want[tx.ID] {
			continue
		}
		found[tx.ID] = true
		if models.IsSentinelTitle(tx.AccountTitle, s.sentinel) {
			return nil, fmt.Errorf("row %s has no account title to learn (%s)", tx.ID, tx.AccountTitle)
		}
		// A rule without a store pattern would be read back as a passbook rule.
		if strings.TrimSpace(tx.CounterpartyName) == "" {
			return nil, fmt.Errorf("row %s has no store name to learn from", tx.ID)
		}
		newRules = append(newRules, models.LearningRule{
			RawStoreNamePattern: tx.CounterpartyName,
			AmountCondition:     models.AmountConditionNone,
			AccountTitle:        tx.AccountTitle,
			SubAccount:          tx.SubAccount,
			TaxCategory:         tx.TaxCategoryCode,
			SourceTransactionID: tx.ID,
		})
	}
	for _, tx := range passbook {
		if !want[tx.ID] {
			continue
		}
		found[tx.ID] = true
		if models.IsSentinelTitle(tx.CounterAccount, s.sentinel) {
			return nil, fmt.Errorf("row %s has no account title to learn (%s)", tx.ID, tx.CounterAccount)
		}
		if strings.TrimSpace(tx.Description) == "" {
			return nil, fmt.Errorf("row %s has no description to learn from", tx.ID)
		}
		tax := tx.DebitTaxCategory
		if tx.IsDeposit() {
			tax = tx.CreditTaxCategory
		}
		newRules = append(newRules, models.LearningRule{
			DescriptionKeyword:  tx.Description,
			PassbookAccountName: tx.PassbookAccountName,
			AmountCondition:     models.AmountConditionNone,
			AccountTitle:        tx.CounterAccount,
			SubAccount:          tx.CounterSubAccount,
			TaxCategory:         tax,
			SourceTransactionID: tx.ID,
		})
	}

	res := &Result{Missing: missing(ids, found)}
	if len(newRules) == 0 {
		return res, nil
	}

	added, err := s.rules.AddRules(newRules...)
	if err != nil {
		return nil, err
	}
	res.Rules = len(added)

	ruleIDs := make(map[string]string, len(added))
	rowIDs := make([]string, 0, len(added))
	for _, r := range added {
		ruleIDs[r.SourceTransactionID] = r.ID
		rowIDs = append(rowIDs, r.SourceTransactionID)
	}

	n, err := s.ledger.UpdateReceipts(rowIDs, func(tx *models.ClassifiedTransaction) {
		tx.IsLearned = true
		tx.Note = learnedNote(tx.Note, ruleIDs[tx.ID])
	})
	if err != nil {
		return nil, err
	}
	m, err := s.ledger.UpdatePassbook(rowIDs, func(tx *models.PassbookTransaction) {
		tx.IsLearned = true
		tx.Note = learnedNote(tx.Note, ruleIDs[tx.ID])
	})
	if err != nil {
		return nil, err
	}
	res.Rows = n + m

	s.logger.Info("Rows learned", logging.F(logging.FieldCount, res.Rules))
	return res, nil
}

// Unlearn removes the rules created from the given rows. The rows stay in
// the ledger with their learned flag cleared.
func (s *Service) Unlearn(ids []string) (*Result, error) {
	removed, err := s.rules.RemoveBySourceIDs(ids)
	if err != nil {
		return nil, err
	}
	n, err := s.ledger.UpdateReceipts(ids, func(tx *models.ClassifiedTransaction) { tx.IsLearned = false })
	if err != nil {
		return nil, err
	}
	m, err := s.ledger.UpdatePassbook(ids, func(tx *models.PassbookTransaction) { tx.IsLearned = false })
	if err != nil {
		return nil, err
	}
	return &Result{Rules: removed, Rows: n + m}, nil
}

// Delete removes rows from the results ledgers together with the rules
// learned from them.
func (s *Service) Delete(ids []string) (*Result, error) {
	removed, err := s.rules.RemoveBySourceIDs(ids)
	if err != nil {
		return nil, err
	}
	n, err := s.ledger.RemoveReceipts(ids)
	if err != nil {
		return nil, err
	}
	m, err := s.ledger.RemovePassbook(ids)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Rows deleted",
		logging.F(logging.FieldCount, n+m),
		logging.F("rules_removed", removed))
	return &Result{Rules: removed, Rows: n + m}, nil
}

// InsertDummyInvoice writes the placeholder registration number into the
// selected receipts that have none and recomputes their tax category.
func (s *Service) InsertDummyInvoice(ids []string) (*Result, error) {
	changed := 0
	_, err := s.ledger.UpdateReceipts(ids, func(tx *models.ClassifiedTransaction) {
		if strings.TrimSpace(tx.InvoiceNumber) != "" {
			return
		}
		tx.InvoiceNumber = s.dummyInvoice
		tx.TaxCategoryCode = categorizer.DeriveTaxCodeWith(s.taxCodes, tx.TaxRate, tx.InvoiceNumber)
		changed++
	})
	if err != nil {
		return nil, err
	}
	return &Result{Rows: changed}, nil
}

// ClearInvoice blanks the registration number of the selected receipts and
// recomputes their tax category.
func (s *Service) ClearInvoice(ids []string) (*Result, error) {
	n, err := s.ledger.UpdateReceipts(ids, func(tx *models.ClassifiedTransaction) {
		tx.InvoiceNumber = ""
		tx.TaxCategoryCode = categorizer.DeriveTaxCodeWith(s.taxCodes, tx.TaxRate, "")
	})
	if err != nil {
		return nil, err
	}
	return &Result{Rows: n}, nil
}

func learnedNote(note, ruleID string) string {
	token := fmt.Sprintf("%s (ID: %s)", models.NoteLearned, ruleID)
	if note = strings.TrimSpace(note); note == "" {
		return token
	}
	return note + " " + token
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[strings.TrimSpace(id)] = true
	}
	return set
}

func missing(ids []string, found map[string]bool) []string {
	var out []string
	for _, id := range ids {
		if !found[strings.TrimSpace(id)] {
			out = append(out, id)
		}
	}
	return out
}
