package assembler

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/receipt-ledger/internal/categorizer"
	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/reconciler"
)

type stubClassifier struct {
	receipt  func(tx categorizer.Transaction) categorizer.Classification
	passbook func(tx categorizer.Transaction) categorizer.Classification
	seen     []categorizer.Transaction
}

func (s *stubClassifier) ClassifyReceipt(_ context.Context, tx categorizer.Transaction) categorizer.Classification {
	s.seen = append(s.seen, tx)
	if s.receipt == nil {
		return categorizer.Classification{AccountTitle: "消耗品費", Strategy: "AI"}
	}
	return s.receipt(tx)
}

func (s *stubClassifier) ClassifyPassbook(_ context.Context, tx categorizer.Transaction) categorizer.Classification {
	s.seen = append(s.seen, tx)
	if s.passbook == nil {
		return categorizer.Classification{AccountTitle: "雑費", TaxCategory: models.TaxCodeOutOfScope, Strategy: "AI"}
	}
	return s.passbook(tx)
}

var processingDate = time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

func newTestAssembler(c Classifier, masters ...models.PassbookMaster) *Assembler {
	amounts := reconciler.NewAmountReconciler(config.ReconcileConfig{
		HighAmountThreshold: 50000,
		TaxTolerance:        1,
		TaxExemptAccounts:   []string{"租税公課"},
	}, "未分類", logging.NewMockLogger())
	a := NewAssembler(c, amounts, masters, config.Default().Export.TaxCodes, logging.NewMockLogger())
	a.now = func() time.Time { return processingDate }
	return a
}

func receiptLine(date string, amount, tax int64, rate int) models.RawOcrLine {
	return models.RawOcrLine{
		Date:               date,
		CounterpartyName:   "ＡＣＭＥ文具店",
		Description:        "ボールペン",
		TaxRate:            rate,
		AmountInclusiveTax: decimal.NewFromInt(amount),
		TaxAmount:          decimal.NewFromInt(tax),
		SourceFilename:     "receipt.jpg",
	}
}

func TestAssembleReceipt_ExclusiveTotalCorrected(t *testing.T) {
	a := newTestAssembler(&stubClassifier{})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 1000, 100, 10),
		Source{FileID: "f1", FileName: "receipt.jpg"}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, int64(1100), tx.AmountInclusiveTax)
	assert.Equal(t, int64(100), tx.TaxAmount)
	assert.Equal(t, 10, tx.TaxRate)
	assert.Contains(t, tx.Note, models.NoteAmountCorrected)
	assert.Contains(t, tx.Note, "税抜1000+税100→1100")
	assert.Equal(t, "2025/06/01", tx.TransactionDate.Ledger())
	assert.Equal(t, models.TaxCodeStandardNonQualified, tx.TaxCategoryCode)
	assert.Equal(t, "ACME文具店", tx.CounterpartyName)
	assert.Equal(t, "f1", tx.SourceFileID)
	assert.Contains(t, tx.RawOCR, "1000")
	assert.NotEmpty(t, tx.ID)
	assert.Equal(t, processingDate, tx.ProcessedAt.Time)
}

func TestAssembleReceipt_ClassifiesCorrectedAmount(t *testing.T) {
	stub := &stubClassifier{}
	a := newTestAssembler(stub)

	_, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 1000, 100, 10), Source{}, processingDate)
	require.NoError(t, err)

	require.Len(t, stub.seen, 1)
	assert.Equal(t, int64(1100), stub.seen[0].Amount)
	assert.Equal(t, "ACME文具店", stub.seen[0].CounterpartyName)
}

func TestAssembleReceipt_UnreadableDateFallsBack(t *testing.T) {
	a := newTestAssembler(&stubClassifier{})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("かすれて読めない", 1100, 100, 10), Source{}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, "2025/06/15", tx.TransactionDate.Ledger())
	assert.Contains(t, tx.Note, models.NoteDateUnclear)
	assert.Contains(t, tx.Note, "かすれて読めない")
	assert.True(t, models.NeedsReview(tx.Note))
}

func TestAssembleReceipt_MissingTaxInferredAfterClassification(t *testing.T) {
	a := newTestAssembler(&stubClassifier{})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 1100, 0, 0), Source{}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, 10, tx.TaxRate)
	assert.Equal(t, int64(100), tx.TaxAmount)
	assert.Contains(t, tx.Note, models.NoteTaxComputed)
	assert.Equal(t, models.TaxCodeStandardNonQualified, tx.TaxCategoryCode)
}

func TestAssembleReceipt_ExemptAccountKeepsZeroTax(t *testing.T) {
	a := newTestAssembler(&stubClassifier{receipt: func(categorizer.Transaction) categorizer.Classification {
		return categorizer.Classification{AccountTitle: "租税公課"}
	}})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 5000, 0, 0), Source{}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, 0, tx.TaxRate)
	assert.Equal(t, int64(0), tx.TaxAmount)
	assert.Equal(t, models.TaxCodeOutOfScope, tx.TaxCategoryCode)
}

func TestAssembleReceipt_SentinelTitleFlagged(t *testing.T) {
	a := newTestAssembler(&stubClassifier{receipt: func(categorizer.Transaction) categorizer.Classification {
		return categorizer.Classification{AccountTitle: models.SentinelClassificationError, Strategy: "none"}
	}})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 1100, 0, 0), Source{}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, models.SentinelClassificationError, tx.AccountTitle)
	assert.Contains(t, tx.Note, models.NoteClassificationError)
	assert.Equal(t, int64(0), tx.TaxAmount, "no tax inference for an unresolved account")
}

func TestAssembleReceipt_ConfiguredSentinelFlagged(t *testing.T) {
	a := newTestAssembler(&stubClassifier{receipt: func(categorizer.Transaction) categorizer.Classification {
		return categorizer.Classification{AccountTitle: "未分類", Strategy: "none"}
	}})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 1100, 0, 0), Source{}, processingDate)
	require.NoError(t, err)

	assert.Contains(t, tx.Note, models.NoteClassificationError)
	assert.Equal(t, 0, tx.TaxRate)
	assert.Equal(t, int64(0), tx.TaxAmount)
	assert.NotContains(t, tx.Note, models.NoteTaxComputed)
}

func TestAssembleReceipt_QualifiedInvoice(t *testing.T) {
	a := newTestAssembler(&stubClassifier{})
	line := receiptLine("2025/06/01", 1080, 80, 8)
	line.InvoiceNumber = "Ｔ1234-5678-90123"

	tx, err := a.AssembleReceipt(context.Background(), line, Source{}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, "T1234567890123", tx.InvoiceNumber)
	assert.Equal(t, models.TaxCodeReducedQualified, tx.TaxCategoryCode)
}

func TestAssembleReceipt_TemplateKeepsOriginalDescription(t *testing.T) {
	a := newTestAssembler(&stubClassifier{receipt: func(tx categorizer.Transaction) categorizer.Classification {
		return categorizer.Classification{
			AccountTitle: "会議費",
			IsLearned:    true,
			Description:  "打合せ " + tx.CounterpartyName,
			Strategy:     "Rule",
		}
	}})

	tx, err := a.AssembleReceipt(context.Background(), receiptLine("2025/06/01", 1100, 100, 10), Source{}, processingDate)
	require.NoError(t, err)

	assert.Equal(t, "打合せ ACME文具店", tx.Description)
	assert.True(t, tx.IsLearned)
	assert.Contains(t, tx.Note, models.NoteTemplateApplied+"(ボールペン)")
}

func TestAssembleReceipt_NoSilentDataLoss(t *testing.T) {
	a := newTestAssembler(&stubClassifier{})
	line := receiptLine("2019/06/01", -1000, 100, 10)
	line.Note = "手書き"

	tx, err := a.AssembleReceipt(context.Background(), line, Source{}, processingDate)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(tx.Note, "手書き"))
	assert.Contains(t, tx.Note, "2019")
	assert.Contains(t, tx.Note, "元金額:-1000")
	assert.Contains(t, tx.RawOCR, "2019/06/01")
	assert.Contains(t, tx.RawOCR, "-1000")
}

func TestAssembleReceipts_EmptyAndMany(t *testing.T) {
	a := newTestAssembler(&stubClassifier{})

	out, err := a.AssembleReceipts(context.Background(), nil, Source{}, processingDate)
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = a.AssembleReceipts(context.Background(), []models.RawOcrLine{
		receiptLine("2025/06/01", 1100, 100, 10),
		receiptLine("2025/06/02", 540, 40, 8),
	}, Source{FileName: "r.jpg"}, processingDate)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotEqual(t, out[0].ID, out[1].ID)
	assert.Equal(t, "receipt.jpg", out[1].FileLink)
}

func TestAssemblePassbook(t *testing.T) {
	stub := &stubClassifier{passbook: func(tx categorizer.Transaction) categorizer.Classification {
		if strings.Contains(tx.Description, "振込") {
			return categorizer.Classification{AccountTitle: "売上高", TaxCategory: "課税売上10%"}
		}
		return categorizer.Classification{AccountTitle: "水道光熱費", TaxCategory: "課対仕入10%"}
	}}
	a := newTestAssembler(stub, models.PassbookMaster{Keyword: "ufj", AccountName: "普通預金(三菱UFJ)"})

	lines := []models.PassbookRawLine{
		{TransactionDate: "07-601", Description: "繰越", Balance: models.BalancePtr(10000)},
		{TransactionDate: "07-602", Description: "振込 カ）エーシー", Deposit: 5000, Balance: models.BalancePtr(15000)},
		{TransactionDate: "07-603", Description: "電気料", Deposit: 3000, Balance: models.BalancePtr(12000)},
	}

	out, err := a.AssemblePassbook(context.Background(), lines,
		Source{FileID: "p1", FileName: "UFJ_2025_06.jpg"}, processingDate)
	require.NoError(t, err)
	require.Len(t, out, 2)

	deposit := out[0]
	assert.Equal(t, "2025/06/02", deposit.TransactionDate.Ledger())
	assert.Equal(t, "普通預金(三菱UFJ)", deposit.PassbookAccountName)
	assert.Equal(t, "売上高", deposit.CounterAccount)
	assert.Equal(t, models.TaxCodeOutOfScope, deposit.DebitTaxCategory)
	assert.Equal(t, "課税売上10%", deposit.CreditTaxCategory)
	assert.Contains(t, deposit.Note, models.NoteDateEraConverted)

	swapped := out[1]
	assert.Equal(t, int64(3000), swapped.Withdrawal)
	assert.Equal(t, int64(0), swapped.Deposit)
	assert.Contains(t, swapped.Note, models.NoteBalanceSwapped)
	assert.Equal(t, "課対仕入10%", swapped.DebitTaxCategory)
	assert.Equal(t, models.TaxCodeOutOfScope, swapped.CreditTaxCategory)
	assert.Contains(t, swapped.RawOCR, `"入金額":3000`, "payload keeps the values as read")
	assert.Equal(t, "p1", swapped.SourceFileID)
}

func TestAssemblePassbook_UnsetAccountAndSentinel(t *testing.T) {
	a := newTestAssembler(&stubClassifier{passbook: func(categorizer.Transaction) categorizer.Classification {
		return categorizer.Classification{AccountTitle: models.SentinelMasterNotConfigured, TaxCategory: models.TaxCodeOutOfScope}
	}})

	out, err := a.AssemblePassbook(context.Background(), []models.PassbookRawLine{
		{TransactionDate: "2025/06/03", Description: "ATM", Withdrawal: 2000},
	}, Source{FileName: "scan.jpg"}, processingDate)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, models.UnsetPassbookAccount, out[0].PassbookAccountName)
	assert.Contains(t, out[0].Note, models.NoteClassificationError)
	assert.False(t, out[0].Balance.Valid)
}
