package reconciler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

func newTestAmountReconciler() *AmountReconciler {
	return NewAmountReconciler(config.ReconcileConfig{
		HighAmountThreshold: 50000,
		TaxTolerance:        1,
		TaxExemptAccounts:   []string{"租税公課", "諸会費", "保険料"},
	}, "UNCLASSIFIED", logging.NewMockLogger())
}

func input(amount, tax string, rate int) AmountInput {
	return AmountInput{
		Amount:    decimal.RequireFromString(amount),
		TaxAmount: decimal.RequireFromString(tax),
		TaxRate:   rate,
	}
}

func TestReconcileAmounts_ExclusiveTotalCorrected(t *testing.T) {
	r := newTestAmountReconciler()

	res := r.ReconcileAmounts(input("1000", "100", 10))

	assert.Equal(t, int64(1100), res.Amount)
	assert.Equal(t, int64(100), res.TaxAmount)
	assert.Equal(t, 10, res.TaxRate)
	assert.Contains(t, res.Note, models.NoteAmountCorrected)
	assert.Contains(t, res.Note, "1000", "original amount stays recoverable")
}

func TestReconcileAmounts(t *testing.T) {
	r := newTestAmountReconciler()

	tests := []struct {
		name       string
		in         AmountInput
		wantAmount int64
		wantTax    int64
		wantRate   int
		marker     string
		noMarker   string
	}{
		{"inclusive total untouched", input("1100", "100", 10), 1100, 100, 10, "", models.NoteAmountCorrected},
		{"reduced rate inclusive", input("1080", "80", 8), 1080, 80, 8, "", models.NoteAmountCorrected},
		{"reduced rate exclusive", input("1000", "80", 8), 1080, 80, 8, models.NoteAmountCorrected, ""},
		{"inclusive within tolerance", input("1099", "99", 10), 1099, 99, 10, "", models.NoteAmountCorrected},
		{"decimals truncated", input("1100.9", "100.7", 10), 1100, 100, 10, "", ""},
		{"negative amount", input("-500", "0", 0), 500, 0, 0, models.NoteAmountNegative, ""},
		{"negative tax", input("500", "-10", 10), 500, 0, 10, models.NoteTaxInvalid, ""},
		{"tax above amount", input("110", "1000", 10), 110, 10, 10, models.NoteTaxInvalid, ""},
		{"unknown rate", input("110", "0", 5), 110, 0, 0, models.NoteTaxInvalid, ""},
		{"high amount flagged", input("55000", "5000", 10), 55000, 5000, 10, models.NoteHighAmount, ""},
		{"threshold itself not flagged", input("50000", "4545", 10), 50000, 4545, 10, "", models.NoteHighAmount},
		{"no tax left alone", input("1000", "0", 0), 1000, 0, 0, "", models.NoteTaxComputed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := r.ReconcileAmounts(tc.in)
			assert.Equal(t, tc.wantAmount, res.Amount)
			assert.Equal(t, tc.wantTax, res.TaxAmount)
			assert.Equal(t, tc.wantRate, res.TaxRate)
			if tc.marker != "" {
				assert.Contains(t, res.Note, tc.marker)
			}
			if tc.noMarker != "" {
				assert.NotContains(t, res.Note, tc.noMarker)
			}
		})
	}
}

func TestReconcileAmounts_HighAmountKeepsValue(t *testing.T) {
	r := newTestAmountReconciler()
	res := r.ReconcileAmounts(input("98000", "0", 0))
	assert.Equal(t, int64(98000), res.Amount)
	assert.True(t, models.NeedsReview(res.Note))
}

func TestReconcileAmounts_PreservesExistingNote(t *testing.T) {
	r := newTestAmountReconciler()
	in := input("1000", "100", 10)
	in.Note = "手書き"
	res := r.ReconcileAmounts(in)
	assert.True(t, len(res.Note) > len("手書き"))
	assert.Equal(t, "手書き", res.Note[:len("手書き")])
}

func TestInferMissingTax(t *testing.T) {
	r := newTestAmountReconciler()
	base := AmountResult{Amount: 1100}

	res := r.InferMissingTax(base, "消耗品費")
	assert.Equal(t, int64(100), res.TaxAmount)
	assert.Equal(t, 10, res.TaxRate)
	assert.Contains(t, res.Note, models.NoteTaxComputed)

	// floor(1000 * 10 / 110) = 90
	res = r.InferMissingTax(AmountResult{Amount: 1000}, "消耗品費")
	assert.Equal(t, int64(90), res.TaxAmount)
}

func TestInferMissingTax_Skipped(t *testing.T) {
	r := newTestAmountReconciler()

	tests := []struct {
		name  string
		in    AmountResult
		title string
	}{
		{"exempt account", AmountResult{Amount: 1100}, "租税公課"},
		{"sentinel title", AmountResult{Amount: 1100}, models.SentinelClassificationError},
		{"configured sentinel title", AmountResult{Amount: 1100}, "UNCLASSIFIED"},
		{"blank title", AmountResult{Amount: 1100}, ""},
		{"rate already set", AmountResult{Amount: 1100, TaxRate: 8}, "会議費"},
		{"tax already set", AmountResult{Amount: 1100, TaxAmount: 1}, "会議費"},
		{"zero amount", AmountResult{}, "会議費"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := r.InferMissingTax(tc.in, tc.title)
			assert.Equal(t, tc.in, res)
		})
	}
}

func TestIsUnresolved(t *testing.T) {
	r := newTestAmountReconciler()
	assert.True(t, r.IsUnresolved("UNCLASSIFIED"))
	assert.True(t, r.IsUnresolved(" UNCLASSIFIED "))
	assert.True(t, r.IsUnresolved(models.SentinelMasterNotConfigured))
	assert.False(t, r.IsUnresolved("消耗品費"))

	plain := NewAmountReconciler(config.ReconcileConfig{}, "", logging.NewMockLogger())
	assert.True(t, plain.IsUnresolved(models.SentinelClassificationError))
	assert.False(t, plain.IsUnresolved("UNCLASSIFIED"))
}

func TestIsTaxExempt(t *testing.T) {
	r := newTestAmountReconciler()
	assert.True(t, r.IsTaxExempt("保険料"))
	assert.True(t, r.IsTaxExempt(" 保険料 "))
	assert.False(t, r.IsTaxExempt("旅費交通費"))
}
