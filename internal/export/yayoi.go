// Package export writes ledger rows as Yayoi accounting import files.
//
// The import layout is a 25-column, header-less, Shift_JIS CSV. Column
// positions are a contract with the accounting package and must not move.
package export

import (
	"strconv"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/models"
)

// YayoiRow is one line of the import file. Fields are declared in column order.
type YayoiRow struct {
	IdentifierFlag    string `csv:"識別フラグ"`
	SlipNumber        string `csv:"伝票No"`
	Settlement        string `csv:"決算"`
	Date              string `csv:"取引日付"`
	DebitAccount      string `csv:"借方勘定科目"`
	DebitSubAccount   string `csv:"借方補助科目"`
	DebitDepartment   string `csv:"借方部門"`
	DebitTaxCategory  string `csv:"借方税区分"`
	DebitAmount       string `csv:"借方金額"`
	DebitTaxAmount    string `csv:"借方税金額"`
	CreditAccount     string `csv:"貸方勘定科目"`
	CreditSubAccount  string `csv:"貸方補助科目"`
	CreditDepartment  string `csv:"貸方部門"`
	CreditTaxCategory string `csv:"貸方税区分"`
	CreditAmount      string `csv:"貸方金額"`
	CreditTaxAmount   string `csv:"貸方税金額"`
	Summary           string `csv:"摘要"`
	CheckNumber       string `csv:"番号"`
	DueDate           string `csv:"期日"`
	TransactionType   string `csv:"タイプ"`
	Origin            string `csv:"生成元"`
	Memo              string `csv:"仕訳メモ"`
	Tag1              string `csv:"付箋1"`
	Tag2              string `csv:"付箋2"`
	Adjustment        string `csv:"調整"`
}

// ColumnCount is the number of cells in a YayoiRow.
const ColumnCount = 25

// Cells returns the row as a slice in column order.
func (r YayoiRow) Cells() []string {
	return []string{
		r.IdentifierFlag, r.SlipNumber, r.Settlement, r.Date,
		r.DebitAccount, r.DebitSubAccount, r.DebitDepartment, r.DebitTaxCategory,
		r.DebitAmount, r.DebitTaxAmount,
		r.CreditAccount, r.CreditSubAccount, r.CreditDepartment, r.CreditTaxCategory,
		r.CreditAmount, r.CreditTaxAmount,
		r.Summary, r.CheckNumber, r.DueDate, r.TransactionType, r.Origin, r.Memo,
		r.Tag1, r.Tag2, r.Adjustment,
	}
}

func baseRow(cfg config.ExportConfig, date models.Date) YayoiRow {
	return YayoiRow{
		IdentifierFlag:  cfg.IdentifierFlag,
		Date:            date.Ledger(),
		CreditTaxAmount: "0",
		TransactionType: cfg.TransactionType,
		Adjustment:      cfg.Adjustment,
	}
}

// ReceiptRow maps a receipt to a purchase entry: the expense on the debit
// side, the configured credit account on the other.
func ReceiptRow(cfg config.ExportConfig, tx models.ClassifiedTransaction) YayoiRow {
	row := baseRow(cfg, tx.TransactionDate)
	amount := strconv.FormatInt(tx.AmountInclusiveTax, 10)

	row.DebitAccount = tx.AccountTitle
	row.DebitSubAccount = tx.SubAccount
	row.DebitTaxCategory = tx.TaxCategoryCode
	row.DebitAmount = amount
	row.DebitTaxAmount = strconv.FormatInt(tx.TaxAmount, 10)
	row.CreditAccount = cfg.CreditAccount
	row.CreditTaxCategory = cfg.OutOfScopeTax
	row.CreditAmount = amount
	// "store / description", separator kept when either side is blank
	row.Summary = tx.CounterpartyName + " / " + tx.Description
	return row
}

// PassbookRow maps a bank statement line. Deposits debit the bank account;
// withdrawals credit it.
func PassbookRow(cfg config.ExportConfig, tx models.PassbookTransaction) YayoiRow {
	row := baseRow(cfg, tx.TransactionDate)
	amount := strconv.FormatInt(tx.Amount(), 10)

	if tx.IsDeposit() {
		row.DebitAccount = tx.PassbookAccountName
		row.CreditAccount = tx.CounterAccount
		row.CreditSubAccount = tx.CounterSubAccount
	} else {
		row.DebitAccount = tx.CounterAccount
		row.DebitSubAccount = tx.CounterSubAccount
		row.CreditAccount = tx.PassbookAccountName
	}
	row.DebitTaxCategory = tx.DebitTaxCategory
	row.DebitAmount = amount
	row.DebitTaxAmount = "0"
	row.CreditTaxCategory = tx.CreditTaxCategory
	row.CreditAmount = amount
	row.Summary = tx.Description
	return row
}
