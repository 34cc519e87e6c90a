// Package assembler turns extracted receipt lines and passbook rows into the
// finalized ledger records. It runs the date, amount and balance repairs,
// classification and tax-code derivation in their required order and keeps
// the extracted payload next to every record.
package assembler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fjacquet/receipt-ledger/internal/categorizer"
	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/dateutils"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/reconciler"
	"fjacquet/receipt-ledger/internal/textutils"
)

// Classifier is the part of categorizer.Engine the assembler depends on.
type Classifier interface {
	ClassifyReceipt(ctx context.Context, tx categorizer.Transaction) categorizer.Classification
	ClassifyPassbook(ctx context.Context, tx categorizer.Transaction) categorizer.Classification
}

// Source identifies the document the lines were extracted from.
type Source struct {
	FileID   string
	FileName string
	FileLink string
}

// Assembler builds ledger records from extracted lines.
type Assembler struct {
	classifier      Classifier
	amounts         *reconciler.AmountReconciler
	passbookMasters []models.PassbookMaster
	taxCodes        config.TaxCodeConfig
	now             func() time.Time
	logger          logging.Logger
}

// NewAssembler creates an assembler. passbookMasters resolves the bank
// account of passbook files and may be empty.
func NewAssembler(classifier Classifier, amounts *reconciler.AmountReconciler,
	passbookMasters []models.PassbookMaster, taxCodes config.TaxCodeConfig, logger logging.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Assembler{
		classifier:      classifier,
		amounts:         amounts,
		passbookMasters: passbookMasters,
		taxCodes:        taxCodes,
		now:             time.Now,
		logger:          logger.WithField(logging.FieldComponent, "assembler"),
	}
}

// AssembleReceipt runs one receipt line through the pipeline:
// date repair, amount phase 1, classification, amount phase 2, tax code,
// text normalization.
func (a *Assembler) AssembleReceipt(ctx context.Context, line models.RawOcrLine, src Source,
	processingDate time.Time) (models.ClassifiedTransaction, error) {
	note := strings.TrimSpace(line.Note)

	date := a.reconcileDate(line.Date, processingDate, &note)

	store := textutils.Normalize(line.CounterpartyName)
	description := textutils.Normalize(line.Description)

	amounts := a.amounts.ReconcileAmounts(reconciler.AmountInput{
		Amount:    line.AmountInclusiveTax,
		TaxAmount: line.TaxAmount,
		TaxRate:   line.TaxRate,
		Note:      note,
	})

	cls := a.classifier.ClassifyReceipt(ctx, categorizer.Transaction{
		Date:             date,
		CounterpartyName: store,
		Description:      description,
		Amount:           amounts.Amount,
	})

	amounts = a.amounts.InferMissingTax(amounts, cls.AccountTitle)
	note = amounts.Note

	if cls.Description != "" && cls.Description != description {
		note = models.AppendNote(note, models.NoteTemplateApplied, description)
		description = textutils.Normalize(cls.Description)
	}
	if a.amounts.IsUnresolved(cls.AccountTitle) {
		note = models.AppendNote(note, models.NoteClassificationError, "")
	}

	invoice := textutils.CleanInvoiceNumber(line.InvoiceNumber)
	fileName := line.SourceFilename
	if fileName == "" {
		fileName = src.FileName
	}

	tx, err := models.NewTransactionBuilder().
		WithID(uuid.NewString()).
		WithProcessedAt(a.now()).
		WithDate(date).
		WithCounterparty(store).
		WithDescription(description).
		WithClassification(cls.AccountTitle, cls.SubAccount, cls.IsLearned).
		WithAmounts(amounts.Amount, amounts.TaxAmount, amounts.TaxRate).
		WithInvoiceNumber(invoice).
		WithTaxCategoryCode(categorizer.DeriveTaxCodeWith(a.taxCodes, amounts.TaxRate, invoice)).
		WithFileLink(fileLink(src, fileName)).
		WithNote(note).
		WithSource(src.FileID, models.Payload(line)).
		Build()
	if err != nil {
		return models.ClassifiedTransaction{}, fmt.Errorf("failed to assemble receipt line from %s: %w", src.FileName, err)
	}

	a.logger.Debug("Receipt line assembled",
		logging.F(logging.FieldTransactionID, tx.ID),
		logging.F(logging.FieldAccountTitle, tx.AccountTitle),
		logging.F(logging.FieldStrategy, cls.Strategy))
	return tx, nil
}

// AssembleReceipts assembles every line of one document. The first failure
// aborts the document so that no partial set of rows is committed.
func (a *Assembler) AssembleReceipts(ctx context.Context, lines []models.RawOcrLine, src Source,
	processingDate time.Time) ([]models.ClassifiedTransaction, error) {
	out := make([]models.ClassifiedTransaction, 0, len(lines))
	for i, line := range lines {
		tx, err := a.AssembleReceipt(ctx, line, src, processingDate)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, tx)
	}
	a.logger.Info("Receipt document assembled",
		logging.F(logging.FieldFile, src.FileName),
		logging.F(logging.FieldCount, len(out)))
	return out, nil
}

// AssemblePassbook filters, repairs and classifies the rows of one passbook
// page. The bank account is resolved from the file name.
func (a *Assembler) AssemblePassbook(ctx context.Context, lines []models.PassbookRawLine, src Source,
	processingDate time.Time) ([]models.PassbookTransaction, error) {
	account := models.ResolvePassbookAccount(src.FileName, a.passbookMasters)
	if account == models.UnsetPassbookAccount {
		a.logger.Warn("No passbook master matches file name",
			logging.F(logging.FieldFile, src.FileName))
	}

	// Keep the filtered rows as read so each record can carry its own payload.
	filtered := reconciler.FilterNonTransactions(lines)
	repaired := reconciler.ReconcileBalances(reconciler.ComplementMissingBalances(filtered))

	out := make([]models.PassbookTransaction, 0, len(repaired))
	for i, row := range repaired {
		note := strings.TrimSpace(row.Note)
		date := a.reconcileDate(row.TransactionDate, processingDate, &note)

		withdrawal, deposit := row.Withdrawal, row.Deposit
		if withdrawal < 0 || deposit < 0 {
			note = models.AppendNote(note, models.NoteAmountNegative,
				fmt.Sprintf("出金:%d 入金:%d", withdrawal, deposit))
			withdrawal, deposit = models.AbsYen(withdrawal), models.AbsYen(deposit)
		}

		description := textutils.Normalize(row.Description)
		tx := models.PassbookTransaction{
			ID:                  uuid.NewString(),
			ProcessedAt:         models.NewTimestamp(a.now()),
			TransactionDate:     models.NewDate(date),
			Description:         description,
			Withdrawal:          withdrawal,
			Deposit:             deposit,
			Balance:             models.OptionalYenFrom(row.Balance),
			PassbookAccountName: account,
			FileLink:            fileLink(src, src.FileName),
			SourceFileID:        src.FileID,
			RawOCR:              models.Payload(filtered[i]),
		}

		cls := a.classifier.ClassifyPassbook(ctx, categorizer.Transaction{
			Date:                date,
			Description:         description,
			Amount:              tx.Amount(),
			PassbookAccountName: account,
		})
		if a.amounts.IsUnresolved(cls.AccountTitle) {
			note = models.AppendNote(note, models.NoteClassificationError, "")
		}

		tx.CounterAccount = cls.AccountTitle
		tx.CounterSubAccount = cls.SubAccount
		tx.IsLearned = cls.IsLearned
		tx.DebitTaxCategory, tx.CreditTaxCategory = categorizer.PassbookTaxCategories(tx.IsDeposit(), cls.TaxCategory)
		tx.Note = note
		out = append(out, tx)
	}

	a.logger.Info("Passbook document assembled",
		logging.F(logging.FieldFile, src.FileName),
		logging.F(logging.FieldCount, len(out)),
		logging.F("filtered", len(lines)-len(filtered)),
		logging.F("passbook_account", account))
	return out, nil
}

// reconcileDate repairs raw and appends any date marker to note. An
// unreadable date falls back to the processing date; the raw value is kept in
// the marker.
func (a *Assembler) reconcileDate(raw string, processingDate time.Time, note *string) time.Time {
	res := dateutils.Reconcile(raw, processingDate)
	*note = joinNotes(*note, res.Note)
	if res.Date.IsZero() {
		return dateutils.StartOfDay(processingDate)
	}
	return res.Date
}

func joinNotes(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func fileLink(src Source, name string) string {
	if src.FileLink != "" {
		return src.FileLink
	}
	return name
}
