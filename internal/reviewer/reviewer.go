package reviewer

import (
	"fmt"
	"time"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// LedgerReader loads the rows waiting for export.
type LedgerReader interface {
	LoadReceipts() ([]models.ClassifiedTransaction, error)
	LoadPassbook() ([]models.PassbookTransaction, error)
}

// Reviewer builds review reports over the results ledgers.
type Reviewer struct {
	ledger LedgerReader
	now    func() time.Time
	logger logging.Logger
}

// NewReviewer creates a new instance of Reviewer.
func NewReviewer(ledger LedgerReader, logger logging.Logger) *Reviewer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Reviewer{
		ledger: ledger,
		now:    time.Now,
		logger: logger.WithField(logging.FieldComponent, "Reviewer"),
	}
}

// PerformReview loads both ledgers and collects duplicates and critical rows.
func (r *Reviewer) PerformReview() (*models.ReviewReport, error) {
	receipts, err := r.ledger.LoadReceipts()
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt ledger: %w", err)
	}
	passbook, err := r.ledger.LoadPassbook()
	if err != nil {
		return nil, fmt.Errorf("failed to load passbook ledger: %w", err)
	}

	report := &models.ReviewReport{
		GeneratedAt: r.now(),
		Receipts:    ReviewReceipts(receipts),
		Passbook:    ReviewPassbook(passbook),
	}

	r.logger.Info("Review completed",
		logging.F("receipt_duplicates", len(report.Receipts.Duplicates)),
		logging.F("receipt_critical", len(report.Receipts.Critical)),
		logging.F("passbook_duplicates", len(report.Passbook.Duplicates)),
		logging.F("passbook_critical", len(report.Passbook.Critical)))

	return report, nil
}

// ReviewReceipts summarizes one receipt ledger.
func ReviewReceipts(txs []models.ClassifiedTransaction) models.ReviewSection {
	section := models.ReviewSection{Total: len(txs)}
	for _, g := range FindDuplicates(txs) {
		dg := models.DuplicateGroup{Date: g.Key.Date, Amount: g.Key.Amount}
		for _, tx := range g.Items {
			dg.TransactionIDs = append(dg.TransactionIDs, tx.ID)
			dg.Labels = append(dg.Labels, receiptLabel(tx))
		}
		section.Duplicates = append(section.Duplicates, dg)
	}
	for _, tx := range FindCriticalRows(txs) {
		section.Critical = append(section.Critical, models.CriticalRow{
			TransactionID: tx.ID,
			Date:          tx.TransactionDate.Ledger(),
			Label:         receiptLabel(tx),
			Amount:        tx.AmountInclusiveTax,
			Note:          tx.Note,
		})
	}
	return section
}

// ReviewPassbook summarizes one passbook ledger.
func ReviewPassbook(txs []models.PassbookTransaction) models.ReviewSection {
	section := models.ReviewSection{Total: len(txs)}
	for _, g := range FindPassbookDuplicates(txs) {
		dg := models.DuplicateGroup{Date: g.Key.Date, Amount: g.Key.Amount}
		for _, tx := range g.Items {
			dg.TransactionIDs = append(dg.TransactionIDs, tx.ID)
			dg.Labels = append(dg.Labels, tx.Description)
		}
		section.Duplicates = append(section.Duplicates, dg)
	}
	for _, tx := range FindCriticalPassbookRows(txs) {
		section.Critical = append(section.Critical, models.CriticalRow{
			TransactionID: tx.ID,
			Date:          tx.TransactionDate.Ledger(),
			Label:         tx.Description,
			Amount:        tx.Deposit - tx.Withdrawal,
			Note:          tx.Note,
		})
	}
	return section
}

func receiptLabel(tx models.ClassifiedTransaction) string {
	if tx.Description == "" {
		return tx.CounterpartyName
	}
	return tx.CounterpartyName + " / " + tx.Description
}
