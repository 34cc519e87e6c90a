// Package fileutils provides the file operations of the batch: listing source
// documents, reading them and moving them to the archive.
package fileutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/textutils"
)

// supportedTypes maps the accepted source extensions to the MIME type sent to
// the extraction model.
var supportedTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".heic": "image/heic",
	".pdf":  "application/pdf",
}

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if !DirectoryExists(dirPath) {
		if err := os.MkdirAll(dirPath, models.PermissionDirectory); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return nil
}

// ReadFile reads the entire contents of a file and returns it as a byte slice
func ReadFile(filePath string) ([]byte, error) {
	if !FileExists(filePath) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath) // #nosec G304 -- path comes from the file list
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return data, nil
}

// MIMEType returns the MIME type of a supported source file, or "" when the
// extension is not supported.
func MIMEType(name string) string {
	return supportedTypes[strings.ToLower(filepath.Ext(name))]
}

// ListSupportedFiles returns the names of the supported files directly inside
// dirPath, sorted. A missing directory yields nothing.
func ListSupportedFiles(dirPath string) ([]string, error) {
	if !DirectoryExists(dirPath) {
		return nil, nil
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || MIMEType(e.Name()) == "" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ReceiptArchiveName builds the archive name of a receipt image:
// yyyyMMdd_<store>_<amount>円.<ext>. Characters not allowed in file names are
// replaced.
func ReceiptArchiveName(date time.Time, store string, amount int64, originalName string) string {
	store = textutils.SanitizeFileName(store)
	if store == "" {
		store = "不明"
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	return fmt.Sprintf("%s_%s_%d円%s", date.Format("20060102"), store, amount, ext)
}

// MoveFile moves src into dir under name. If the name is taken, a numeric
// suffix is added before the extension. It returns the final path.
func MoveFile(src, dir, name string) (string, error) {
	if err := EnsureDirectoryExists(dir); err != nil {
		return "", err
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	target := filepath.Join(dir, name)
	for i := 1; FileExists(target); i++ {
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}

	if err := os.Rename(src, target); err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}
	return target, nil
}
