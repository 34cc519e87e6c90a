package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RawOcrLine is one receipt line item as extracted by the vision model, before
// any correction. It is never persisted directly.
type RawOcrLine struct {
	Date               string          `json:"date"`
	CounterpartyName   string          `json:"storeName"`
	Description        string          `json:"description"`
	TaxRate            int             `json:"tax_rate"`
	AmountInclusiveTax decimal.Decimal `json:"amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	InvoiceNumber      string          `json:"invoice_number,omitempty"`
	SourceFilename     string          `json:"filename"`
	Note               string          `json:"note,omitempty"`
}

// PassbookRawLine is one bank-statement row. Amounts are whole yen; a nil
// Balance means no balance was printed.
type PassbookRawLine struct {
	TransactionDate string `json:"取引日"`
	Description     string `json:"取引内容"`
	Withdrawal      int64  `json:"出金額"`
	Deposit         int64  `json:"入金額"`
	Balance         *int64 `json:"残高"`
	Note            string `json:"備考,omitempty"`
}

// BalancePtr is a helper for building PassbookRawLine literals.
func BalancePtr(v int64) *int64 {
	return &v
}

// HasBalance reports whether a balance was printed for the row.
func (l PassbookRawLine) HasBalance() bool {
	return l.Balance != nil
}

// Payload serializes v for the audit column kept next to each ledger row.
func Payload(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
