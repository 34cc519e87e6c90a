// Package common provides the gocsv file helpers shared by the ledger stores.
package common

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// ReadCSVFile reads a CSV file with a header row into a slice of structs.
// A missing or empty file yields an empty slice.
func ReadCSVFile[TCSVRow any](filePath string, logger logging.Logger) ([]TCSVRow, error) {
	logger = orDefault(logger)

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
		return []TCSVRow{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error checking CSV file: %w", err)
	}

	file, err := os.Open(filePath) // #nosec G304 -- path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("error opening CSV file: %w", err)
	}
	defer closeFile(file, logger)

	var rows []TCSVRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		logger.WithError(err).Error("Failed to parse CSV file", logging.F(logging.FieldFile, filePath))
		return nil, fmt.Errorf("error parsing CSV file %s: %w", filePath, err)
	}

	logger.Debug("Read CSV file",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(rows)))
	return rows, nil
}

// WriteCSVFile replaces the content of filePath with rows and a header. The
// file is written next to the target and renamed over it.
func WriteCSVFile[TCSVRow any](filePath string, rows []TCSVRow, logger logging.Logger) error {
	logger = orDefault(logger)
	if rows == nil {
		rows = []TCSVRow{}
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := writeRows(tmp, rows, true); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, models.PermissionDataFile); err != nil {
		return fmt.Errorf("error setting file permissions: %w", err)
	}
	if err := os.Rename(tmpName, filePath); err != nil {
		return fmt.Errorf("error replacing CSV file: %w", err)
	}

	logger.Debug("Wrote CSV file",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}

// AppendCSVFile appends rows to filePath, writing the header first when the
// file does not exist yet.
func AppendCSVFile[TCSVRow any](filePath string, rows []TCSVRow, logger logging.Logger) error {
	logger = orDefault(logger)
	if len(rows) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	withHeader := true
	if info, err := os.Stat(filePath); err == nil && info.Size() > 0 {
		withHeader = false
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, models.PermissionDataFile) // #nosec G304
	if err != nil {
		return fmt.Errorf("error opening CSV file: %w", err)
	}
	defer closeFile(file, logger)

	if err := writeRows(file, rows, withHeader); err != nil {
		return fmt.Errorf("error appending CSV data: %w", err)
	}

	logger.Debug("Appended to CSV file",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(rows)))
	return nil
}

func writeRows[TCSVRow any](w io.Writer, rows []TCSVRow, withHeader bool) error {
	csvWriter := gocsv.NewSafeCSVWriter(csv.NewWriter(w))
	if withHeader {
		return gocsv.MarshalCSV(rows, csvWriter)
	}
	return gocsv.MarshalCSVWithoutHeaders(rows, csvWriter)
}

func closeFile(f *os.File, logger logging.Logger) {
	if err := f.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close file")
	}
}

func orDefault(logger logging.Logger) logging.Logger {
	if logger == nil {
		return logging.NewLogrusAdapter("info", "text")
	}
	return logger
}
