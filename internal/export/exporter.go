package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/parsererror"
)

const fileTimestampLayout = "20060102_150405"

// Ledger is the part of the ledger store the exporter needs.
type Ledger interface {
	LoadReceipts() ([]models.ClassifiedTransaction, error)
	LoadPassbook() ([]models.PassbookTransaction, error)
	MoveReceiptsToExported(ids []string, at time.Time) (int, error)
	MovePassbookToExported(ids []string, at time.Time) (int, error)
}

// Result describes a written import file.
type Result struct {
	Path string
	Rows int
}

// Exporter writes import files into a directory and moves the exported rows
// to the exported ledgers.
type Exporter struct {
	cfg      config.ExportConfig
	sentinel string
	dir      string
	ledger   Ledger
	now      func() time.Time
	logger   logging.Logger
}

// NewExporter creates an exporter writing into dir. sentinel is the configured
// title of unresolved rows, refused in addition to the built-in ones.
func NewExporter(cfg config.ExportConfig, sentinel, dir string, ledger Ledger, logger logging.Logger) *Exporter {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Exporter{
		cfg:      cfg,
		sentinel: sentinel,
		dir:      dir,
		ledger:   ledger,
		now:      time.Now,
		logger:   logger.WithField(logging.FieldComponent, "exporter"),
	}
}

// ExportReceipts exports the receipt rows whose ID is in ids, or every row
// when ids is empty. Nothing is written or moved if any selected row still
// carries a classification sentinel. A nil result means there was nothing
// to export.
func (e *Exporter) ExportReceipts(ids []string) (*Result, error) {
	rows, err := e.ledger.LoadReceipts()
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt ledger: %w", err)
	}
	selected := selectRows(rows, ids, func(r models.ClassifiedTransaction) string { return r.ID })
	if len(selected) == 0 {
		e.logger.Info("No receipt rows to export")
		return nil, nil
	}

	out := make([]YayoiRow, 0, len(selected))
	exportedIDs := make([]string, 0, len(selected))
	for _, tx := range selected {
		if models.IsSentinelTitle(tx.AccountTitle, e.sentinel) {
			return nil, &parsererror.ExportError{TransactionID: tx.ID, Reason: "account title is " + tx.AccountTitle}
		}
		out = append(out, ReceiptRow(e.cfg, tx))
		exportedIDs = append(exportedIDs, tx.ID)
	}

	return e.finish("import_", out, exportedIDs, e.ledger.MoveReceiptsToExported)
}

// ExportPassbook is ExportReceipts for passbook rows. Rows whose bank account
// was never resolved are refused as well.
func (e *Exporter) ExportPassbook(ids []string) (*Result, error) {
	rows, err := e.ledger.LoadPassbook()
	if err != nil {
		return nil, fmt.Errorf("failed to load passbook ledger: %w", err)
	}
	selected := selectRows(rows, ids, func(r models.PassbookTransaction) string { return r.ID })
	if len(selected) == 0 {
		e.logger.Info("No passbook rows to export")
		return nil, nil
	}

	out := make([]YayoiRow, 0, len(selected))
	exportedIDs := make([]string, 0, len(selected))
	for _, tx := range selected {
		switch {
		case models.IsSentinelTitle(tx.CounterAccount, e.sentinel):
			return nil, &parsererror.ExportError{TransactionID: tx.ID, Reason: "counter account is " + tx.CounterAccount}
		case tx.PassbookAccountName == "" || tx.PassbookAccountName == models.UnsetPassbookAccount:
			return nil, &parsererror.ExportError{TransactionID: tx.ID, Reason: "passbook account is not configured"}
		}
		out = append(out, PassbookRow(e.cfg, tx))
		exportedIDs = append(exportedIDs, tx.ID)
	}

	return e.finish("passbook_import_", out, exportedIDs, e.ledger.MovePassbookToExported)
}

func (e *Exporter) finish(prefix string, rows []YayoiRow, ids []string,
	move func([]string, time.Time) (int, error)) (*Result, error) {
	data, err := Encode(rows, e.cfg.UseCRLF)
	if err != nil {
		return nil, err
	}

	at := e.now()
	path := filepath.Join(e.dir, prefix+at.Format(fileTimestampLayout)+".csv")
	if err := os.MkdirAll(e.dir, models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, models.PermissionDataFile); err != nil {
		return nil, fmt.Errorf("error writing export file: %w", err)
	}

	moved, err := move(ids, at)
	if err != nil {
		return nil, fmt.Errorf("export file %s written but ledger not updated: %w", path, err)
	}

	e.logger.Info("Export file written",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, moved))
	return &Result{Path: path, Rows: len(rows)}, nil
}

// Encode renders rows as header-less CSV in Shift_JIS. A character that has
// no Shift_JIS representation is an error.
func Encode(rows []YayoiRow, useCRLF bool) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = useCRLF
	if err := gocsv.MarshalCSVWithoutHeaders(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
		return nil, fmt.Errorf("error marshaling export rows: %w", err)
	}

	encoded, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("export contains characters not representable in Shift_JIS: %w", err)
	}
	return encoded, nil
}

func selectRows[T any](rows []T, ids []string, id func(T) string) []T {
	if len(ids) == 0 {
		return rows
	}
	want := make(map[string]bool, len(ids))
	for _, i := range ids {
		want[i] = true
	}
	var out []T
	for _, r := range rows {
		if want[id(r)] {
			out = append(out, r)
		}
	}
	return out
}
