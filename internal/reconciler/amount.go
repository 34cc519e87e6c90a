// Package reconciler repairs the amount and balance figures read from
// receipts and passbooks. Corrections are deterministic and every one of them
// leaves a marker in the note together with the values it replaced.
package reconciler

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/currencyutils"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// AmountInput is the amount triple of one receipt line.
type AmountInput struct {
	Amount    decimal.Decimal
	TaxAmount decimal.Decimal
	TaxRate   int
	Note      string
}

// AmountResult carries whole-yen figures. It is the contract between
// ReconcileAmounts and InferMissingTax: classification runs in between on
// Amount, and InferMissingTax takes the result back with the account title.
type AmountResult struct {
	Amount    int64
	TaxAmount int64
	TaxRate   int
	Note      string
}

// AmountReconciler validates and repairs amount/tax/rate triples.
type AmountReconciler struct {
	highAmountThreshold int64
	tolerance           int64
	exempt              map[string]bool
	sentinel            string
	logger              logging.Logger
}

// NewAmountReconciler builds a reconciler from the reconcile section of the
// configuration. sentinel is the configured title of unresolved lines.
func NewAmountReconciler(cfg config.ReconcileConfig, sentinel string, logger logging.Logger) *AmountReconciler {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	exempt := make(map[string]bool, len(cfg.TaxExemptAccounts))
	for _, a := range cfg.TaxExemptAccounts {
		if a = strings.TrimSpace(a); a != "" {
			exempt[a] = true
		}
	}
	return &AmountReconciler{
		highAmountThreshold: cfg.HighAmountThreshold,
		tolerance:           cfg.TaxTolerance,
		exempt:              exempt,
		sentinel:            strings.TrimSpace(sentinel),
		logger:              logger.WithField(logging.FieldComponent, "amount_reconciler"),
	}
}

// ReconcileAmounts is the first phase: sign and range checks, detection of
// tax-exclusive totals and the high-amount flag. Values are truncated to
// whole yen before any comparison.
func (r *AmountReconciler) ReconcileAmounts(in AmountInput) AmountResult {
	amount := models.Yen(in.Amount)
	tax := models.Yen(in.TaxAmount)
	res := AmountResult{TaxRate: in.TaxRate, Note: strings.TrimSpace(in.Note)}

	if amount < 0 {
		res.Note = models.AppendNote(res.Note, models.NoteAmountNegative, fmt.Sprintf("元金額:%d", amount))
		amount = -amount
	}

	switch res.TaxRate {
	case models.TaxRateNone, models.TaxRateReduced, models.TaxRateStandard:
	default:
		res.Note = models.AppendNote(res.Note, models.NoteTaxInvalid, fmt.Sprintf("税率:%d", res.TaxRate))
		res.TaxRate = models.TaxRateNone
	}

	if tax < 0 {
		res.Note = models.AppendNote(res.Note, models.NoteTaxInvalid, fmt.Sprintf("元税額:%d", tax))
		tax = 0
	}

	if res.TaxRate > 0 && amount > 0 && tax > 0 {
		amountDec := decimal.NewFromInt(amount)
		taxDec := decimal.NewFromInt(tax)
		inclusive := currencyutils.TaxIncluded(amountDec, res.TaxRate)
		exclusive := currencyutils.TaxOnTop(amountDec, res.TaxRate)

		matchesInclusive := currencyutils.WithinTolerance(inclusive, taxDec, r.tolerance)
		matchesExclusive := currencyutils.WithinTolerance(exclusive, taxDec, r.tolerance)
		if matchesExclusive && !matchesInclusive {
			corrected := amount + tax
			res.Note = models.AppendNote(res.Note, models.NoteAmountCorrected,
				fmt.Sprintf("税抜%d+税%d→%d", amount, tax, corrected))
			r.logger.Debug("Tax-exclusive total detected",
				logging.F("amount", amount), logging.F("tax", tax), logging.F("corrected", corrected))
			amount = corrected
		}
	}

	if tax > amount {
		recomputed := int64(0)
		if res.TaxRate > 0 {
			recomputed = models.Yen(currencyutils.TaxIncluded(decimal.NewFromInt(amount), res.TaxRate))
		}
		res.Note = models.AppendNote(res.Note, models.NoteTaxInvalid, fmt.Sprintf("元税額:%d→%d", tax, recomputed))
		tax = recomputed
	}

	if r.highAmountThreshold > 0 && amount > r.highAmountThreshold {
		res.Note = models.AppendNote(res.Note, models.NoteHighAmount, fmt.Sprintf("%d", amount))
	}

	res.Amount = amount
	res.TaxAmount = tax
	return res
}

// InferMissingTax is the second phase, run once the account title is known.
// A line with no rate and no tax is assumed to be standard-rated unless the
// account is tax exempt or unresolved.
func (r *AmountReconciler) InferMissingTax(res AmountResult, accountTitle string) AmountResult {
	if res.TaxRate != models.TaxRateNone || res.TaxAmount != 0 || res.Amount <= 0 {
		return res
	}
	title := strings.TrimSpace(accountTitle)
	if title == "" || r.IsUnresolved(title) || r.IsTaxExempt(title) {
		return res
	}

	tax := models.Yen(currencyutils.TaxIncluded(decimal.NewFromInt(res.Amount), models.TaxRateStandard))
	res.TaxAmount = tax
	res.TaxRate = models.TaxRateStandard
	res.Note = models.AppendNote(res.Note, models.NoteTaxComputed, fmt.Sprintf("%d", tax))
	return res
}

// IsUnresolved reports whether the account title is a classification sentinel.
func (r *AmountReconciler) IsUnresolved(accountTitle string) bool {
	return models.IsSentinelTitle(accountTitle, r.sentinel)
}

// IsTaxExempt reports whether the account title is in the exemption list.
func (r *AmountReconciler) IsTaxExempt(accountTitle string) bool {
	return r.exempt[strings.TrimSpace(accountTitle)]
}
