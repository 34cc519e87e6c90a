package models

import (
	"strings"
	"time"
)

// Date is a calendar date rendered as yyyy/MM/dd in ledger files.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.Local)}
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d Date) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(DateLayoutLedger), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *Date) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.ParseInLocation(DateLayoutLedger, s, time.Local)
	if err != nil {
		t, err = time.ParseInLocation(DateLayoutISO, s, time.Local)
		if err != nil {
			return err
		}
	}
	d.Time = t
	return nil
}

// ISO renders the date as yyyy-MM-dd.
func (d Date) ISO() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayoutISO)
}

// Ledger renders the date as yyyy/MM/dd.
func (d Date) Ledger() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayoutLedger)
}

// ClassifiedTransaction is a finalized receipt line, one row of the results ledger.
// Invariant: AmountInclusiveTax >= TaxAmount >= 0.
type ClassifiedTransaction struct {
	ID                 string    `csv:"取引ID" json:"id"`
	ProcessedAt        Timestamp `csv:"処理日時" json:"processedAt"`
	TransactionDate    Date      `csv:"日付" json:"transactionDate"`
	CounterpartyName   string    `csv:"店名" json:"counterpartyName"`
	Description        string    `csv:"摘要" json:"description"`
	AccountTitle       string    `csv:"勘定科目" json:"accountTitle"`
	SubAccount         string    `csv:"補助科目" json:"subAccount"`
	TaxRate            int       `csv:"税率" json:"taxRate"`
	AmountInclusiveTax int64     `csv:"金額(税込)" json:"amountInclusiveTax"`
	TaxAmount          int64     `csv:"うち消費税" json:"taxAmount"`
	InvoiceNumber      string    `csv:"登録番号" json:"invoiceNumber"`
	TaxCategoryCode    string    `csv:"税区分" json:"taxCategoryCode"`
	FileLink           string    `csv:"ファイル" json:"fileLink"`
	Note               string    `csv:"備考" json:"note"`
	IsLearned          bool      `csv:"学習" json:"isLearned"`
	SourceFileID       string    `csv:"ファイルID" json:"sourceFileId"`
	RawOCR             string    `csv:"OCR原文" json:"-"`
}

// ExportedTransaction is a receipt row moved to the append-only exported ledger.
type ExportedTransaction struct {
	ClassifiedTransaction
	ExportedAt Timestamp `csv:"エクスポート日時"`
}

// PassbookTransaction is a finalized bank-statement row.
type PassbookTransaction struct {
	ID                  string    `csv:"取引ID" json:"id"`
	ProcessedAt         Timestamp `csv:"処理日時" json:"processedAt"`
	TransactionDate     Date      `csv:"取引日" json:"transactionDate"`
	Description         string    `csv:"取引内容" json:"description"`
	Withdrawal          int64     `csv:"出金額" json:"withdrawal"`
	Deposit             int64     `csv:"入金額" json:"deposit"`
	Balance             OptionalYen `csv:"残高" json:"balance"`
	PassbookAccountName string    `csv:"通帳勘定科目" json:"passbookAccountName"`
	CounterAccount      string    `csv:"相手勘定科目" json:"counterAccount"`
	CounterSubAccount   string    `csv:"相手補助科目" json:"counterSubAccount"`
	DebitTaxCategory    string    `csv:"借方税区分" json:"debitTaxCategory"`
	CreditTaxCategory   string    `csv:"貸方税区分" json:"creditTaxCategory"`
	FileLink            string    `csv:"ファイル" json:"fileLink"`
	Note                string    `csv:"備考" json:"note"`
	IsLearned           bool      `csv:"学習" json:"isLearned"`
	SourceFileID        string    `csv:"ファイルID" json:"sourceFileId"`
	RawOCR              string    `csv:"OCR原文" json:"-"`
}

// IsDeposit reports whether the row records money coming in.
func (p PassbookTransaction) IsDeposit() bool {
	return p.Deposit > 0
}

// Amount is the non-zero side of the row.
func (p PassbookTransaction) Amount() int64 {
	if p.Deposit > 0 {
		return p.Deposit
	}
	return p.Withdrawal
}

// ExportedPassbookTransaction is a passbook row moved to the exported ledger.
type ExportedPassbookTransaction struct {
	PassbookTransaction
	ExportedAt Timestamp `csv:"エクスポート日時"`
}
