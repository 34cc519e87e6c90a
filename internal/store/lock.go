package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"fjacquet/receipt-ledger/internal/models"
)

// ErrLocked is returned when another batch run holds the lock.
var ErrLocked = errors.New("another batch run is in progress")

// Lock is an exclusive lock file held by one batch run.
type Lock struct {
	path string
}

// AcquireLock creates path exclusively. A lock file older than staleAfter is
// considered abandoned by a crashed run and taken over. staleAfter <= 0
// disables takeover.
func AcquireLock(path string, staleAfter time.Duration) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("error creating lock directory: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, models.PermissionDataFile) // #nosec G304
		if err == nil {
			_, _ = f.WriteString(strconv.Itoa(os.Getpid()))
			if cerr := f.Close(); cerr != nil {
				return nil, fmt.Errorf("error writing lock file: %w", cerr)
			}
			return &Lock{path: path}, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("error creating lock file: %w", err)
		}

		info, statErr := os.Stat(path)
		if statErr != nil || staleAfter <= 0 || time.Since(info.ModTime()) < staleAfter {
			return nil, ErrLocked
		}
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return nil, fmt.Errorf("error removing stale lock: %w", rmErr)
		}
	}
	return nil, ErrLocked
}

// Release removes the lock file. Releasing twice is harmless.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := os.Remove(l.path)
	l.path = ""
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
