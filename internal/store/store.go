// Package store persists everything the pipeline reads and writes between
// runs: learning rules, account and passbook masters and the file list as
// YAML; the ledgers and the token log as CSV.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// readYAML decodes path into out. It reports false when the file does not
// exist or is empty.
func readYAML(path string, out interface{}) (bool, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading %s: %w", path, err)
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return true, nil
}

// writeYAML encodes v to a temporary file and renames it over path.
func writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("error creating temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error closing temporary file: %w", err)
	}
	if err := os.Chmod(tmpName, models.PermissionDataFile); err != nil {
		return fmt.Errorf("error setting file permissions: %w", err)
	}
	return os.Rename(tmpName, path)
}

func withComponent(logger logging.Logger, name string) logging.Logger {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return logger.WithField(logging.FieldComponent, name)
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = true
		}
	}
	return set
}
