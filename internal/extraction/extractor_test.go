package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/parsererror"
)

type fakeExtractor struct {
	text       string
	usage      models.TokenUsage
	err        error
	lastPrompt string
	lastMIME   string
}

func (f *fakeExtractor) ExtractDocument(_ context.Context, prompt, mimeType string, _ []byte) (string, models.TokenUsage, error) {
	f.lastPrompt = prompt
	f.lastMIME = mimeType
	return f.text, f.usage, f.err
}

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[{"a":1}]`, `[{"a":1}]`},
		{"fenced", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n[]\n```", `[]`},
		{"chatter", "Here you go:\n[{\"a\":1}]\nThanks", `[{"a":1}]`},
		{"object", `{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanModelJSON(tt.in))
		})
	}
}

func TestParseReceipts(t *testing.T) {
	payload := "```json\n[\n" +
		`{"date":"2025/06/21","storeName":"株式会社サンプル","description":"品代","tax_rate":10,"amount":1100,"tax_amount":100,"tax_code":"T1234567890123","note":""},` +
		`{"date":null,"storeName":"ローソン","description":"弁当","tax_rate":"8%","amount":"¥1,080","tax_amount":"８０","filename":"scan2.jpg"}` +
		"\n]\n```"

	lines, err := ParseReceipts(payload, "scan.jpg")
	require.NoError(t, err)
	require.Len(t, lines, 2)

	first := lines[0]
	assert.Equal(t, "2025/06/21", first.Date)
	assert.Equal(t, "株式会社サンプル", first.CounterpartyName)
	assert.Equal(t, 10, first.TaxRate)
	assert.Equal(t, "1100", first.AmountInclusiveTax.String())
	assert.Equal(t, "100", first.TaxAmount.String())
	assert.Equal(t, "T1234567890123", first.InvoiceNumber)
	assert.Equal(t, "scan.jpg", first.SourceFilename)

	second := lines[1]
	assert.Equal(t, "", second.Date)
	assert.Equal(t, 8, second.TaxRate)
	assert.Equal(t, "1080", second.AmountInclusiveTax.String())
	assert.Equal(t, "80", second.TaxAmount.String())
	assert.Equal(t, "scan2.jpg", second.SourceFilename)
	assert.Empty(t, second.Note)
}

func TestParseReceipts_UnreadableAmountFlagged(t *testing.T) {
	lines, err := ParseReceipts(`[{"date":"2025/06/21","storeName":"A","amount":"読めない","tax_rate":10}]`, "scan.jpg")
	require.NoError(t, err)
	require.Len(t, lines, 1)

	assert.True(t, lines[0].AmountInclusiveTax.IsZero())
	assert.Contains(t, lines[0].Note, models.NoteAmountUnreadable)
	assert.Contains(t, lines[0].Note, "読めない")
}

func TestParseReceipts_InvoiceFromNote(t *testing.T) {
	lines, err := ParseReceipts(`[{"storeName":"A","amount":110,"note":"登録番号 Ｔ１２３４５６７８９０１２３"}]`, "scan.jpg")
	require.NoError(t, err)
	assert.Equal(t, "T1234567890123", lines[0].InvoiceNumber)
}

func TestParseReceipts_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "I could not read this receipt."},
		{"object", `{"date":"2025/06/21"}`},
		{"array of numbers", `[1, 2, 3]`},
		{"broken", `[{"date": "2025/06/21",}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReceipts(tt.payload, "scan.jpg")
			var formatErr *parsererror.InvalidFormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, "scan.jpg", formatErr.FilePath)
		})
	}
}

func TestParseReceipts_Empty(t *testing.T) {
	_, err := ParseReceipts("[]", "scan.jpg")
	var extractionErr *parsererror.DataExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Contains(t, err.Error(), "no line items detected")
}

func TestParsePassbook(t *testing.T) {
	payload := `[
		{"取引日":"2025-04-28","出金額":0,"入金額":50000,"残高":1050000,"取引内容":"振込 タナカ タロウ","備考":""},
		{"取引日":"2025-04-28","出金額":"3,000","入金額":null,"残高":null,"取引内容":"ATM"},
		{"取引日":"2025-04-29","出金額":1000,"入金額":0,"残高":"***","取引内容":"手数料"}
	]`

	rows, err := ParsePassbook(payload, "UFJ.jpg")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(50000), rows[0].Deposit)
	require.NotNil(t, rows[0].Balance)
	assert.Equal(t, int64(1050000), *rows[0].Balance)

	assert.Equal(t, int64(3000), rows[1].Withdrawal)
	assert.Equal(t, int64(0), rows[1].Deposit)
	assert.Nil(t, rows[1].Balance)
	assert.Empty(t, rows[1].Note)

	assert.Nil(t, rows[2].Balance)
	assert.Contains(t, rows[2].Note, models.NoteAmountUnreadable)
}

func TestService_ExtractReceipts(t *testing.T) {
	fake := &fakeExtractor{
		text:  `[{"date":"2025/06/21","storeName":"A","amount":1100,"tax_amount":100,"tax_rate":10}]`,
		usage: models.TokenUsage{Model: "gemini-2.5-flash", TotalTokens: 42},
	}
	svc := NewService(fake, logging.NewMockLogger())

	lines, usage, err := svc.ExtractReceipts(context.Background(),
		models.FileRecord{Name: "scan.jpg", MIMEType: "image/jpeg"}, []byte("img"))
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, "scan.jpg", usage.File)
	assert.Equal(t, int32(42), usage.TotalTokens)
	assert.Equal(t, "image/jpeg", fake.lastMIME)
	assert.Contains(t, fake.lastPrompt, `"filename": "scan.jpg"`)
}

func TestService_ExtractPassbook_BankPrompt(t *testing.T) {
	fake := &fakeExtractor{text: `[{"取引日":"07-428","入金額":1000,"取引内容":"振込"}]`}
	svc := NewService(fake, logging.NewMockLogger())

	rows, _, err := svc.ExtractPassbook(context.Background(),
		models.FileRecord{Name: "UFJ_01.jpg", MIMEType: "image/jpeg", BankType: models.BankMUFG}, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "07-428", rows[0].TransactionDate)
	assert.Contains(t, fake.lastPrompt, "07-428")
	assert.NotContains(t, fake.lastPrompt, "アスタリスク")
}

func TestService_ExtractorError(t *testing.T) {
	fake := &fakeExtractor{err: errors.New("quota exceeded"), usage: models.TokenUsage{TotalTokens: 7}}
	svc := NewService(fake, logging.NewMockLogger())

	_, usage, err := svc.ExtractReceipts(context.Background(), models.FileRecord{Name: "scan.jpg"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, "scan.jpg", usage.File)
}

func TestPassbookPrompt(t *testing.T) {
	assert.NotContains(t, PassbookPrompt(models.BankStandard), "特別ルール")
	assert.Contains(t, PassbookPrompt(models.BankOsakaShinkin), "***")
	assert.Contains(t, PassbookPrompt(models.BankMUFG), "三菱UFJ銀行")
}
