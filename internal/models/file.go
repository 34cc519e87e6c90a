package models

import (
	"strings"
	"time"
)

// FileStatus is the processing state of one source document.
type FileStatus string

const (
	FileStatusPending    FileStatus = "未処理"
	FileStatusProcessing FileStatus = "処理中"
	FileStatusProcessed  FileStatus = "処理済み"
	FileStatusError      FileStatus = "エラー"
)

// IsRunnable reports whether a batch run should pick the file up.
// Files left processing by an interrupted run are re-picked.
func (s FileStatus) IsRunnable() bool {
	return s == FileStatusPending || s == FileStatusProcessing
}

// DocumentKind distinguishes receipts from passbook pages.
type DocumentKind string

const (
	KindReceipt  DocumentKind = "receipt"
	KindPassbook DocumentKind = "passbook"
)

// BankType selects bank-specific extraction instructions for passbooks.
type BankType string

const (
	BankStandard     BankType = "STANDARD"
	BankMUFG         BankType = "MUFG"
	BankOsakaShinkin BankType = "OSAKA_SHINKIN"
)

// DetectBankType infers the bank from a passbook file name.
func DetectBankType(fileName string) BankType {
	upper := strings.ToUpper(fileName)
	switch {
	case strings.Contains(upper, "UFJ"):
		return BankMUFG
	case strings.Contains(upper, "OSAKA_SHINKIN"):
		return BankOsakaShinkin
	default:
		return BankStandard
	}
}

// FileRecord tracks one source document through the batch.
type FileRecord struct {
	ID           string       `yaml:"id"`
	Name         string       `yaml:"name"`
	Path         string       `yaml:"path"`
	MIMEType     string       `yaml:"mime_type"`
	Kind         DocumentKind `yaml:"kind"`
	BankType     BankType     `yaml:"bank_type,omitempty"`
	Status       FileStatus   `yaml:"status"`
	Message      string       `yaml:"message,omitempty"`
	Rows         int          `yaml:"rows,omitempty"`
	ArchivedPath string       `yaml:"archived_path,omitempty"`
	RegisteredAt time.Time    `yaml:"registered_at"`
	UpdatedAt    time.Time    `yaml:"updated_at"`
}

// TokenUsage records the token counts of one model call.
type TokenUsage struct {
	Timestamp        Timestamp `csv:"日時"`
	File             string    `csv:"ファイル名"`
	Model            string    `csv:"モデル"`
	PromptTokens     int32     `csv:"入力トークン"`
	CandidatesTokens int32     `csv:"出力トークン"`
	TotalTokens      int32     `csv:"合計トークン"`
}
