// Package batch drives source documents from the inbox to the ledgers:
// registration, extraction, assembly, persistence and archiving.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"fjacquet/receipt-ledger/internal/assembler"
	"fjacquet/receipt-ledger/internal/fileutils"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/parsererror"
	"fjacquet/receipt-ledger/internal/store"
)

// Extraction turns a document into raw lines.
type Extraction interface {
	ExtractReceipts(ctx context.Context, file models.FileRecord, data []byte) ([]models.RawOcrLine, models.TokenUsage, error)
	ExtractPassbook(ctx context.Context, file models.FileRecord, data []byte) ([]models.PassbookRawLine, models.TokenUsage, error)
}

// Assembly turns raw lines into ledger records.
type Assembly interface {
	AssembleReceipts(ctx context.Context, lines []models.RawOcrLine, src assembler.Source, processingDate time.Time) ([]models.ClassifiedTransaction, error)
	AssemblePassbook(ctx context.Context, lines []models.PassbookRawLine, src assembler.Source, processingDate time.Time) ([]models.PassbookTransaction, error)
}

// Files is the file list.
type Files interface {
	Register(candidates []models.FileRecord) ([]models.FileRecord, error)
	Update(rec models.FileRecord) error
	Runnable(kind models.DocumentKind) ([]models.FileRecord, error)
}

// Ledger receives the assembled rows.
type Ledger interface {
	AppendReceipts(rows []models.ClassifiedTransaction) error
	AppendPassbook(rows []models.PassbookTransaction) error
	RemoveByFileID(kind models.DocumentKind, fileID string) (int, error)
}

// UsageLog records model token consumption.
type UsageLog interface {
	Append(usages ...models.TokenUsage) error
}

// Options locates the inbox and archive directories and bounds a run.
type Options struct {
	ReceiptSourceDir   string
	PassbookSourceDir  string
	ReceiptArchiveDir  string
	PassbookArchiveDir string
	LockFile           string
	TimeLimit          time.Duration
}

// Summary reports the outcome of one run.
type Summary struct {
	Kind       models.DocumentKind
	Registered int
	Processed  int
	Failed     int
	Rows       int
	Remaining  int
	TimedOut   bool
}

// Processor runs the batch for one document kind at a time.
type Processor struct {
	opts       Options
	files      Files
	ledger     Ledger
	usage      UsageLog
	extraction Extraction
	assembly   Assembly
	now        func() time.Time
	logger     logging.Logger
}

// NewProcessor creates a batch processor.
func NewProcessor(opts Options, files Files, ledger Ledger, usage UsageLog,
	extraction Extraction, assembly Assembly, logger logging.Logger) *Processor {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Processor{
		opts:       opts,
		files:      files,
		ledger:     ledger,
		usage:      usage,
		extraction: extraction,
		assembly:   assembly,
		now:        time.Now,
		logger:     logger.WithField(logging.FieldComponent, "batch"),
	}
}

func (p *Processor) sourceDir(kind models.DocumentKind) string {
	if kind == models.KindPassbook {
		return p.opts.PassbookSourceDir
	}
	return p.opts.ReceiptSourceDir
}

// Discover registers the supported files of the kind's inbox that are not in
// the file list yet.
func (p *Processor) Discover(kind models.DocumentKind) ([]models.FileRecord, error) {
	dir := p.sourceDir(kind)
	names, err := fileutils.ListSupportedFiles(dir)
	if err != nil {
		return nil, err
	}

	candidates := make([]models.FileRecord, 0, len(names))
	for _, name := range names {
		rec := models.FileRecord{
			Name:     name,
			Path:     filepath.Join(dir, name),
			MIMEType: fileutils.MIMEType(name),
			Kind:     kind,
		}
		if kind == models.KindPassbook {
			rec.BankType = models.DetectBankType(name)
		}
		candidates = append(candidates, rec)
	}
	return p.files.Register(candidates)
}

// Run discovers new files and processes every runnable file of kind, oldest
// first, until the time limit is reached. The limit is checked between files.
// A failing file is marked as an error and the run continues.
func (p *Processor) Run(ctx context.Context, kind models.DocumentKind, processingDate time.Time) (*Summary, error) {
	lock, err := store.AcquireLock(p.opts.LockFile, 2*p.opts.TimeLimit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := lock.Release(); rerr != nil {
			p.logger.WithError(rerr).Warn("Failed to release lock")
		}
	}()

	start := p.now()
	deadline := start.Add(p.opts.TimeLimit)
	if processingDate.IsZero() {
		processingDate = start
	}

	summary := &Summary{Kind: kind}
	registered, err := p.Discover(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to register new files: %w", err)
	}
	summary.Registered = len(registered)

	queue, err := p.files.Runnable(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to load file list: %w", err)
	}

	for i, rec := range queue {
		if p.opts.TimeLimit > 0 && !p.now().Before(deadline) {
			summary.TimedOut = true
			summary.Remaining = len(queue) - i
			p.logger.Warn("Time limit reached, remaining files left for the next run",
				logging.F(logging.FieldCount, summary.Remaining))
			break
		}
		if ctx.Err() != nil {
			summary.Remaining = len(queue) - i
			break
		}

		rows, err := p.processFile(ctx, rec, processingDate)
		if err != nil {
			summary.Failed++
			continue
		}
		summary.Processed++
		summary.Rows += rows
	}

	p.logger.Info("Batch run finished",
		logging.F(logging.FieldKind, kind),
		logging.F("processed", summary.Processed),
		logging.F("failed", summary.Failed),
		logging.F(logging.FieldCount, summary.Rows),
		logging.F("elapsed", p.now().Sub(start).String()))
	return summary, ctx.Err()
}

// processFile handles one file and records its final status in the file list.
func (p *Processor) processFile(ctx context.Context, rec models.FileRecord, processingDate time.Time) (int, error) {
	log := p.logger.WithFields(
		logging.F(logging.FieldFile, rec.Name),
		logging.F(logging.FieldFileID, rec.ID))

	rec.Status = models.FileStatusProcessing
	rec.Message = ""
	if err := p.files.Update(rec); err != nil {
		log.WithError(err).Error("Failed to mark file as processing")
		return 0, err
	}

	// Rows committed by an interrupted run are dropped before reprocessing.
	if removed, err := p.ledger.RemoveByFileID(rec.Kind, rec.ID); err != nil {
		return 0, p.fail(log, rec, err)
	} else if removed > 0 {
		log.Info("Removed rows of a previous attempt", logging.F(logging.FieldCount, removed))
	}

	var (
		rows     int
		archived string
		err      error
	)
	switch rec.Kind {
	case models.KindReceipt:
		rows, archived, err = p.processReceipt(ctx, rec, processingDate)
	case models.KindPassbook:
		rows, archived, err = p.processPassbook(ctx, rec, processingDate)
	default:
		err = fmt.Errorf("unknown document kind %q", rec.Kind)
	}
	if archived != "" {
		rec.ArchivedPath = archived
	}
	if err != nil {
		return 0, p.fail(log, rec, err)
	}

	rec.Status = models.FileStatusProcessed
	rec.Rows = rows
	if err := p.files.Update(rec); err != nil {
		log.WithError(err).Error("Failed to mark file as processed")
		return 0, err
	}
	log.Info("File processed",
		logging.F(logging.FieldStatus, string(rec.Status)),
		logging.F(logging.FieldCount, rows))
	return rows, nil
}

func (p *Processor) fail(log logging.Logger, rec models.FileRecord, cause error) error {
	rec.Status = models.FileStatusError
	log.WithError(cause).Error("File processing failed", logging.F(logging.FieldStatus, string(rec.Status)))
	rec.Message = cause.Error()
	if err := p.files.Update(rec); err != nil {
		log.WithError(err).Error("Failed to mark file as failed")
	}
	return cause
}

func (p *Processor) processReceipt(ctx context.Context, rec models.FileRecord, processingDate time.Time) (int, string, error) {
	data, err := fileutils.ReadFile(sourcePath(rec))
	if err != nil {
		return 0, "", err
	}

	lines, usage, err := p.extraction.ExtractReceipts(ctx, rec, data)
	p.recordUsage(usage)
	if err != nil {
		return 0, "", err
	}

	txs, err := p.assembly.AssembleReceipts(ctx, lines, assembler.Source{FileID: rec.ID, FileName: rec.Name}, processingDate)
	if err != nil {
		return 0, "", err
	}
	if len(txs) == 0 {
		return 0, "", noLineItems(rec)
	}

	var total int64
	for _, tx := range txs {
		total += tx.AmountInclusiveTax
	}
	name := fileutils.ReceiptArchiveName(txs[0].TransactionDate.Time, txs[0].CounterpartyName, total, rec.Name)
	archived, err := p.archive(rec, p.opts.ReceiptArchiveDir, name)
	if err != nil {
		return 0, "", err
	}
	for i := range txs {
		txs[i].FileLink = archived
	}

	if err := p.ledger.AppendReceipts(txs); err != nil {
		return 0, archived, err
	}
	return len(txs), archived, nil
}

func (p *Processor) processPassbook(ctx context.Context, rec models.FileRecord, processingDate time.Time) (int, string, error) {
	data, err := fileutils.ReadFile(sourcePath(rec))
	if err != nil {
		return 0, "", err
	}

	lines, usage, err := p.extraction.ExtractPassbook(ctx, rec, data)
	p.recordUsage(usage)
	if err != nil {
		return 0, "", err
	}

	txs, err := p.assembly.AssemblePassbook(ctx, lines, assembler.Source{FileID: rec.ID, FileName: rec.Name}, processingDate)
	if err != nil {
		return 0, "", err
	}
	if len(txs) == 0 {
		return 0, "", noLineItems(rec)
	}

	archived, err := p.archive(rec, p.opts.PassbookArchiveDir, rec.Name)
	if err != nil {
		return 0, "", err
	}
	for i := range txs {
		txs[i].FileLink = archived
	}

	if err := p.ledger.AppendPassbook(txs); err != nil {
		return 0, archived, err
	}
	return len(txs), archived, nil
}

// sourcePath is where the document currently lives: an earlier attempt may
// have archived it before failing.
func sourcePath(rec models.FileRecord) string {
	if rec.ArchivedPath != "" && !fileutils.FileExists(rec.Path) && fileutils.FileExists(rec.ArchivedPath) {
		return rec.ArchivedPath
	}
	return rec.Path
}

// archive moves the source file unless an earlier attempt already did.
func (p *Processor) archive(rec models.FileRecord, dir, name string) (string, error) {
	if src := sourcePath(rec); src != rec.Path {
		return src, nil
	}
	if dir == "" {
		return rec.Path, nil
	}
	return fileutils.MoveFile(rec.Path, dir, name)
}

func (p *Processor) recordUsage(usage models.TokenUsage) {
	if p.usage == nil || usage.TotalTokens == 0 {
		return
	}
	if err := p.usage.Append(usage); err != nil {
		p.logger.WithError(err).Warn("Failed to record token usage")
		return
	}
	p.logger.Debug("Token usage recorded",
		logging.F(logging.FieldModel, usage.Model),
		logging.F(logging.FieldTokens, usage.TotalTokens))
}

func noLineItems(rec models.FileRecord) error {
	return &parsererror.DataExtractionError{
		FilePath:  rec.Name,
		FieldName: "line items",
		Msg:       "assembled document is empty",
		Reason:    "no line items detected",
	}
}

// IsLocked reports whether err means another run holds the batch lock.
func IsLocked(err error) bool {
	return errors.Is(err, store.ErrLocked)
}
