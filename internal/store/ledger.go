package store

import (
	"fmt"
	"sync"
	"time"

	"fjacquet/receipt-ledger/internal/common"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// LedgerPaths locates the four ledger files.
type LedgerPaths struct {
	Receipts         string
	ExportedReceipts string
	Passbook         string
	ExportedPassbook string
}

// LedgerStore reads and rewrites the results and exported ledgers.
// Exported ledgers are append-only.
type LedgerStore struct {
	paths  LedgerPaths
	mu     sync.Mutex
	logger logging.Logger
}

// NewLedgerStore creates a store over paths.
func NewLedgerStore(paths LedgerPaths, logger logging.Logger) *LedgerStore {
	return &LedgerStore{paths: paths, logger: withComponent(logger, "ledger_store")}
}

// LoadReceipts returns the receipt rows not exported yet.
func (s *LedgerStore) LoadReceipts() ([]models.ClassifiedTransaction, error) {
	return common.ReadCSVFile[models.ClassifiedTransaction](s.paths.Receipts, s.logger)
}

// LoadPassbook returns the passbook rows not exported yet.
func (s *LedgerStore) LoadPassbook() ([]models.PassbookTransaction, error) {
	return common.ReadCSVFile[models.PassbookTransaction](s.paths.Passbook, s.logger)
}

// LoadExportedReceipts returns the receipt rows already handed to the
// accounting package.
func (s *LedgerStore) LoadExportedReceipts() ([]models.ExportedTransaction, error) {
	return common.ReadCSVFile[models.ExportedTransaction](s.paths.ExportedReceipts, s.logger)
}

// LoadExportedPassbook returns the exported passbook rows.
func (s *LedgerStore) LoadExportedPassbook() ([]models.ExportedPassbookTransaction, error) {
	return common.ReadCSVFile[models.ExportedPassbookTransaction](s.paths.ExportedPassbook, s.logger)
}

// AppendReceipts adds rows to the receipt results ledger.
func (s *LedgerStore) AppendReceipts(rows []models.ClassifiedTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.AppendCSVFile(s.paths.Receipts, rows, s.logger)
}

// AppendPassbook adds rows to the passbook results ledger.
func (s *LedgerStore) AppendPassbook(rows []models.PassbookTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.AppendCSVFile(s.paths.Passbook, rows, s.logger)
}

// RemoveByFileID drops the rows a previous run wrote for one source file so
// that reprocessing it does not duplicate them.
func (s *LedgerStore) RemoveByFileID(kind models.DocumentKind, fileID string) (int, error) {
	if fileID == "" {
		return 0, nil
	}
	switch kind {
	case models.KindReceipt:
		return rewrite(s, s.paths.Receipts, func(r models.ClassifiedTransaction) bool {
			return r.SourceFileID == fileID
		})
	case models.KindPassbook:
		return rewrite(s, s.paths.Passbook, func(r models.PassbookTransaction) bool {
			return r.SourceFileID == fileID
		})
	default:
		return 0, fmt.Errorf("unknown document kind %q", kind)
	}
}

// RemoveReceipts deletes receipt rows by ID.
func (s *LedgerStore) RemoveReceipts(ids []string) (int, error) {
	set := idSet(ids)
	return rewrite(s, s.paths.Receipts, func(r models.ClassifiedTransaction) bool { return set[r.ID] })
}

// RemovePassbook deletes passbook rows by ID.
func (s *LedgerStore) RemovePassbook(ids []string) (int, error) {
	set := idSet(ids)
	return rewrite(s, s.paths.Passbook, func(r models.PassbookTransaction) bool { return set[r.ID] })
}

// UpdateReceipts applies fn to the receipt rows whose ID is in ids and
// returns the number of rows changed.
func (s *LedgerStore) UpdateReceipts(ids []string, fn func(*models.ClassifiedTransaction)) (int, error) {
	set := idSet(ids)
	return update(s, s.paths.Receipts, func(r *models.ClassifiedTransaction) bool {
		if !set[r.ID] {
			return false
		}
		fn(r)
		return true
	})
}

// UpdatePassbook applies fn to the passbook rows whose ID is in ids.
func (s *LedgerStore) UpdatePassbook(ids []string, fn func(*models.PassbookTransaction)) (int, error) {
	set := idSet(ids)
	return update(s, s.paths.Passbook, func(r *models.PassbookTransaction) bool {
		if !set[r.ID] {
			return false
		}
		fn(r)
		return true
	})
}

// MoveReceiptsToExported appends the selected rows to the exported ledger,
// stamped with at, then removes them from the results ledger.
func (s *LedgerStore) MoveReceiptsToExported(ids []string, at time.Time) (int, error) {
	set := idSet(ids)
	return move(s, s.paths.Receipts, s.paths.ExportedReceipts,
		func(r models.ClassifiedTransaction) bool { return set[r.ID] },
		func(r models.ClassifiedTransaction) models.ExportedTransaction {
			return models.ExportedTransaction{ClassifiedTransaction: r, ExportedAt: models.NewTimestamp(at)}
		})
}

// MovePassbookToExported is MoveReceiptsToExported for passbook rows.
func (s *LedgerStore) MovePassbookToExported(ids []string, at time.Time) (int, error) {
	set := idSet(ids)
	return move(s, s.paths.Passbook, s.paths.ExportedPassbook,
		func(r models.PassbookTransaction) bool { return set[r.ID] },
		func(r models.PassbookTransaction) models.ExportedPassbookTransaction {
			return models.ExportedPassbookTransaction{PassbookTransaction: r, ExportedAt: models.NewTimestamp(at)}
		})
}

func rewrite[T any](s *LedgerStore, path string, drop func(T) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := common.ReadCSVFile[T](path, s.logger)
	if err != nil {
		return 0, err
	}
	kept := make([]T, 0, len(rows))
	for _, r := range rows {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	removed := len(rows) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := common.WriteCSVFile(path, kept, s.logger); err != nil {
		return 0, err
	}
	s.logger.Info("Removed ledger rows",
		logging.F(logging.FieldFile, path),
		logging.F(logging.FieldCount, removed))
	return removed, nil
}

func update[T any](s *LedgerStore, path string, apply func(*T) bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := common.ReadCSVFile[T](path, s.logger)
	if err != nil {
		return 0, err
	}
	changed := 0
	for i := range rows {
		if apply(&rows[i]) {
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}
	return changed, common.WriteCSVFile(path, rows, s.logger)
}

// move writes the exported rows before shrinking the results ledger. A crash
// in between leaves duplicates in the exported ledger, never lost rows.
func move[T, E any](s *LedgerStore, from, to string, pick func(T) bool, stamp func(T) E) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := common.ReadCSVFile[T](from, s.logger)
	if err != nil {
		return 0, err
	}
	var kept []T
	var exported []E
	for _, r := range rows {
		if pick(r) {
			exported = append(exported, stamp(r))
		} else {
			kept = append(kept, r)
		}
	}
	if len(exported) == 0 {
		return 0, nil
	}
	if err := common.AppendCSVFile(to, exported, s.logger); err != nil {
		return 0, err
	}
	if err := common.WriteCSVFile(from, kept, s.logger); err != nil {
		return 0, err
	}
	s.logger.Info("Moved rows to exported ledger",
		logging.F(logging.FieldFile, to),
		logging.F(logging.FieldCount, len(exported)))
	return len(exported), nil
}
