package categorizer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/models"
)

func TestDeriveTaxCode(t *testing.T) {
	tests := []struct {
		rate    int
		invoice string
		want    string
	}{
		{10, "T1234567890123", models.TaxCodeStandardQualified},
		{10, "", models.TaxCodeStandardNonQualified},
		{10, "T123", models.TaxCodeStandardNonQualified},
		{10, "t1234567890123", models.TaxCodeStandardNonQualified},
		{8, "T1234567890123", models.TaxCodeReducedQualified},
		{8, "", models.TaxCodeReducedNonQualified},
		{0, "T1234567890123", models.TaxCodeOutOfScope},
		{5, "", models.TaxCodeOutOfScope},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeriveTaxCode(tt.rate, tt.invoice), "rate=%d invoice=%q", tt.rate, tt.invoice)
	}
}

func TestDeriveTaxCodeWith(t *testing.T) {
	codes := config.TaxCodeConfig{
		StandardQualified:    "課対仕入内10%適格",
		StandardNonQualified: "課対仕入内10%区分80%",
		ReducedQualified:     "課対仕入内軽減8%適格",
	}
	assert.Equal(t, "課対仕入内10%適格", DeriveTaxCodeWith(codes, 10, "T1234567890123"))
	assert.Equal(t, "課対仕入内10%区分80%", DeriveTaxCodeWith(codes, 10, ""))
	assert.Equal(t, "課対仕入内軽減8%適格", DeriveTaxCodeWith(codes, 8, "T1234567890123"))
	assert.Equal(t, models.TaxCodeReducedNonQualified, DeriveTaxCodeWith(codes, 8, ""), "blank entry uses the default")
	assert.Equal(t, models.TaxCodeOutOfScope, DeriveTaxCodeWith(codes, 0, ""))

	assert.Equal(t, DefaultTaxCodes, config.Default().Export.TaxCodes)
}

func TestDeriveTaxCode_Deterministic(t *testing.T) {
	first := DeriveTaxCode(10, "T1234567890123")
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, DeriveTaxCode(10, "T1234567890123"))
	}
	assert.NotEqual(t, DeriveTaxCode(10, "T1234567890123"), DeriveTaxCode(10, ""))
}

func TestPassbookTaxCategories(t *testing.T) {
	debit, credit := PassbookTaxCategories(true, "課税売上10%")
	assert.Equal(t, models.TaxCodeOutOfScope, debit)
	assert.Equal(t, "課税売上10%", credit)

	debit, credit = PassbookTaxCategories(false, models.TaxCodeStandardQualified)
	assert.Equal(t, models.TaxCodeStandardQualified, debit)
	assert.Equal(t, models.TaxCodeOutOfScope, credit)

	debit, credit = PassbookTaxCategories(false, "")
	assert.Equal(t, models.TaxCodeOutOfScope, debit)
	assert.Equal(t, models.TaxCodeOutOfScope, credit)
}
