package categorizer

import (
	"strings"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/textutils"
)

// DefaultTaxCodes are the purchase codes used when none are configured.
var DefaultTaxCodes = config.TaxCodeConfig{
	StandardQualified:    models.TaxCodeStandardQualified,
	StandardNonQualified: models.TaxCodeStandardNonQualified,
	ReducedQualified:     models.TaxCodeReducedQualified,
	ReducedNonQualified:  models.TaxCodeReducedNonQualified,
}

// DeriveTaxCode maps a tax rate and an invoice number to the tax category code
// of the accounting application. Only the T + 13 digits format counts as a
// qualified invoice.
func DeriveTaxCode(taxRate int, invoiceNumber string) string {
	return DeriveTaxCodeWith(DefaultTaxCodes, taxRate, invoiceNumber)
}

// DeriveTaxCodeWith is DeriveTaxCode over a configured code set. A blank
// entry falls back to its default.
func DeriveTaxCodeWith(codes config.TaxCodeConfig, taxRate int, invoiceNumber string) string {
	qualified := textutils.IsQualifiedInvoiceNumber(invoiceNumber)
	switch taxRate {
	case models.TaxRateStandard:
		if qualified {
			return pick(codes.StandardQualified, DefaultTaxCodes.StandardQualified)
		}
		return pick(codes.StandardNonQualified, DefaultTaxCodes.StandardNonQualified)
	case models.TaxRateReduced:
		if qualified {
			return pick(codes.ReducedQualified, DefaultTaxCodes.ReducedQualified)
		}
		return pick(codes.ReducedNonQualified, DefaultTaxCodes.ReducedNonQualified)
	default:
		return models.TaxCodeOutOfScope
	}
}

func pick(code, fallback string) string {
	if code = strings.TrimSpace(code); code != "" {
		return code
	}
	return fallback
}

// PassbookTaxCategories places the inferred tax category on the side of the
// entry that is not the bank account: credit for deposits, debit for
// withdrawals. The bank side is always out of scope.
func PassbookTaxCategories(isDeposit bool, taxCategory string) (debit, credit string) {
	if taxCategory == "" {
		taxCategory = models.TaxCodeOutOfScope
	}
	if isDeposit {
		return models.TaxCodeOutOfScope, taxCategory
	}
	return taxCategory, models.TaxCodeOutOfScope
}
