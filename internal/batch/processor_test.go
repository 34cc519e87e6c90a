package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/receipt-ledger/internal/assembler"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/store"
)

type fakeExtraction struct {
	receipts map[string][]models.RawOcrLine
	passbook map[string][]models.PassbookRawLine
	fail     map[string]error
	calls    []string
}

func (f *fakeExtraction) ExtractReceipts(_ context.Context, file models.FileRecord, _ []byte) ([]models.RawOcrLine, models.TokenUsage, error) {
	f.calls = append(f.calls, file.Name)
	usage := models.TokenUsage{File: file.Name, Model: "test", TotalTokens: 42}
	if err := f.fail[file.Name]; err != nil {
		return nil, usage, err
	}
	return f.receipts[file.Name], usage, nil
}

func (f *fakeExtraction) ExtractPassbook(_ context.Context, file models.FileRecord, _ []byte) ([]models.PassbookRawLine, models.TokenUsage, error) {
	f.calls = append(f.calls, file.Name)
	return f.passbook[file.Name], models.TokenUsage{File: file.Name, TotalTokens: 7}, nil
}

// fakeAssembly copies the raw values across without reconciliation.
type fakeAssembly struct{}

func (fakeAssembly) AssembleReceipts(_ context.Context, lines []models.RawOcrLine, src assembler.Source, _ time.Time) ([]models.ClassifiedTransaction, error) {
	out := make([]models.ClassifiedTransaction, 0, len(lines))
	for i, l := range lines {
		out = append(out, models.ClassifiedTransaction{
			ID:                 src.FileID + "-" + string(rune('a'+i)),
			TransactionDate:    models.NewDate(time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local)),
			CounterpartyName:   l.CounterpartyName,
			AccountTitle:       "消耗品費",
			AmountInclusiveTax: l.AmountInclusiveTax.IntPart(),
			SourceFileID:       src.FileID,
		})
	}
	return out, nil
}

func (fakeAssembly) AssemblePassbook(_ context.Context, lines []models.PassbookRawLine, src assembler.Source, _ time.Time) ([]models.PassbookTransaction, error) {
	var out []models.PassbookTransaction
	for _, l := range lines {
		if l.Withdrawal == 0 && l.Deposit == 0 {
			continue
		}
		out = append(out, models.PassbookTransaction{
			ID: src.FileID + l.Description, Description: l.Description,
			Withdrawal: l.Withdrawal, Deposit: l.Deposit, SourceFileID: src.FileID,
		})
	}
	return out, nil
}

type fixture struct {
	dir        string
	processor  *Processor
	files      *store.FileList
	ledger     *store.LedgerStore
	tokens     *store.TokenLog
	extraction *fakeExtraction
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	logger := logging.NewMockLogger()

	files := store.NewFileList(filepath.Join(dir, "files.yaml"), logger)
	ledger := store.NewLedgerStore(store.LedgerPaths{
		Receipts:         filepath.Join(dir, "results.csv"),
		ExportedReceipts: filepath.Join(dir, "exported.csv"),
		Passbook:         filepath.Join(dir, "passbook.csv"),
		ExportedPassbook: filepath.Join(dir, "passbook_exported.csv"),
	}, logger)
	tokens := store.NewTokenLog(filepath.Join(dir, "tokens.csv"), logger)
	extraction := &fakeExtraction{
		receipts: map[string][]models.RawOcrLine{},
		passbook: map[string][]models.PassbookRawLine{},
		fail:     map[string]error{},
	}

	opts := Options{
		ReceiptSourceDir:   filepath.Join(dir, "inbox", "receipts"),
		PassbookSourceDir:  filepath.Join(dir, "inbox", "passbooks"),
		ReceiptArchiveDir:  filepath.Join(dir, "archive", "receipts"),
		PassbookArchiveDir: filepath.Join(dir, "archive", "passbooks"),
		LockFile:           filepath.Join(dir, ".lock"),
		TimeLimit:          time.Minute,
	}
	require.NoError(t, os.MkdirAll(opts.ReceiptSourceDir, 0750))
	require.NoError(t, os.MkdirAll(opts.PassbookSourceDir, 0750))

	return &fixture{
		dir:        dir,
		processor:  NewProcessor(opts, files, ledger, tokens, extraction, fakeAssembly{}, logger),
		files:      files,
		ledger:     ledger,
		tokens:     tokens,
		extraction: extraction,
	}
}

func (f *fixture) drop(t *testing.T, kind models.DocumentKind, name string) {
	t.Helper()
	dir := f.processor.sourceDir(kind)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("image"), 0600))
}

func line(store string, amount int64) models.RawOcrLine {
	return models.RawOcrLine{CounterpartyName: store, AmountInclusiveTax: decimal.NewFromInt(amount)}
}

func TestRun_ProcessesAndArchivesReceipts(t *testing.T) {
	f := newFixture(t)
	f.drop(t, models.KindReceipt, "IMG_1.jpg")
	f.drop(t, models.KindReceipt, "notes.txt")
	f.extraction.receipts["IMG_1.jpg"] = []models.RawOcrLine{line("ローソン", 1100), line("ローソン", 220)}

	summary, err := f.processor.Run(context.Background(), models.KindReceipt, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Registered)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Rows)

	rows, err := f.ledger.LoadReceipts()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	archived := filepath.Join(f.dir, "archive", "receipts", "20250601_ローソン_1320円.jpg")
	assert.Equal(t, archived, rows[0].FileLink)
	assert.FileExists(t, archived)
	assert.NoFileExists(t, filepath.Join(f.dir, "inbox", "receipts", "IMG_1.jpg"))

	records, err := f.files.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.FileStatusProcessed, records[0].Status)
	assert.Equal(t, 2, records[0].Rows)
	assert.Equal(t, archived, records[0].ArchivedPath)

	usages, err := f.tokens.Load()
	require.NoError(t, err)
	require.Len(t, usages, 1)
	assert.Equal(t, int32(42), usages[0].TotalTokens)

	// A second run has nothing left to do
	summary, err = f.processor.Run(context.Background(), models.KindReceipt, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, summary.Processed)
	assert.Len(t, f.extraction.calls, 1)
}

func TestRun_FailureIsRecordedAndRunContinues(t *testing.T) {
	f := newFixture(t)
	f.drop(t, models.KindReceipt, "a.jpg")
	f.drop(t, models.KindReceipt, "b.jpg")
	f.drop(t, models.KindReceipt, "c.jpg")
	f.extraction.fail["a.jpg"] = errors.New("model unavailable")
	f.extraction.receipts["c.jpg"] = []models.RawOcrLine{line("セブン", 500)}

	summary, err := f.processor.Run(context.Background(), models.KindReceipt, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 2, summary.Failed)

	records, err := f.files.Load()
	require.NoError(t, err)
	status := map[string]models.FileRecord{}
	for _, r := range records {
		status[r.Name] = r
	}
	assert.Equal(t, models.FileStatusError, status["a.jpg"].Status)
	assert.Contains(t, status["a.jpg"].Message, "model unavailable")
	assert.Equal(t, models.FileStatusError, status["b.jpg"].Status)
	assert.Contains(t, status["b.jpg"].Message, "no line items detected")
	assert.Equal(t, models.FileStatusProcessed, status["c.jpg"].Status)

	usages, err := f.tokens.Load()
	require.NoError(t, err)
	assert.Len(t, usages, 3, "usage is recorded even when the file fails")
}

func TestRun_ReentryRemovesPreviousRows(t *testing.T) {
	f := newFixture(t)
	f.drop(t, models.KindReceipt, "a.jpg")
	added, err := f.processor.Discover(models.KindReceipt)
	require.NoError(t, err)
	require.Len(t, added, 1)

	// Simulate a run that committed rows and crashed while processing.
	rec := added[0]
	rec.Status = models.FileStatusProcessing
	require.NoError(t, f.files.Update(rec))
	require.NoError(t, f.ledger.AppendReceipts([]models.ClassifiedTransaction{
		{ID: "stale", SourceFileID: rec.ID, AccountTitle: "雑費"},
	}))
	f.extraction.receipts["a.jpg"] = []models.RawOcrLine{line("ローソン", 100)}

	summary, err := f.processor.Run(context.Background(), models.KindReceipt, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)

	rows, err := f.ledger.LoadReceipts()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.NotEqual(t, "stale", rows[0].ID)
}

func TestRun_TimeLimit(t *testing.T) {
	f := newFixture(t)
	f.drop(t, models.KindReceipt, "a.jpg")
	f.drop(t, models.KindReceipt, "b.jpg")
	f.extraction.receipts["a.jpg"] = []models.RawOcrLine{line("A", 1)}
	f.extraction.receipts["b.jpg"] = []models.RawOcrLine{line("B", 1)}

	start := time.Date(2025, 6, 15, 10, 0, 0, 0, time.Local)
	calls := 0
	f.processor.now = func() time.Time {
		calls++
		// Every clock read after the first file jumps past the budget.
		if calls > 2 {
			return start.Add(2 * time.Minute)
		}
		return start
	}

	summary, err := f.processor.Run(context.Background(), models.KindReceipt, start)
	require.NoError(t, err)
	assert.True(t, summary.TimedOut)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Remaining)

	runnable, err := f.files.Runnable(models.KindReceipt)
	require.NoError(t, err)
	assert.Len(t, runnable, 1)
}

func TestRun_Locked(t *testing.T) {
	f := newFixture(t)
	lock, err := store.AcquireLock(f.processor.opts.LockFile, time.Hour)
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	_, err = f.processor.Run(context.Background(), models.KindReceipt, time.Time{})
	assert.True(t, IsLocked(err))
}

func TestRun_Passbook(t *testing.T) {
	f := newFixture(t)
	f.drop(t, models.KindPassbook, "UFJ_2025_04.pdf")
	f.extraction.passbook["UFJ_2025_04.pdf"] = []models.PassbookRawLine{
		{Description: "繰越", Balance: models.BalancePtr(10000)},
		{Description: "振込", Deposit: 3000},
	}

	summary, err := f.processor.Run(context.Background(), models.KindPassbook, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Rows)

	records, err := f.files.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.BankMUFG, records[0].BankType)
	assert.Equal(t, filepath.Join(f.dir, "archive", "passbooks", "UFJ_2025_04.pdf"), records[0].ArchivedPath)

	rows, err := f.ledger.LoadPassbook()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(3000), rows[0].Deposit)
}
