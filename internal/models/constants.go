package models

// MarkerNeedsReview is the token that flags a row for human review. Every
// "needs review" note below contains it.
const MarkerNeedsReview = "要確認"

// Note markers appended to the note field. Auto-corrections are always additive.
const (
	NoteDateUnclear         = "[要確認：日付不明]"
	NoteDateFallback        = "[日付補完：処理日]"
	NoteDateYearCompleted   = "[日付補完：年]"
	NoteDateYearForced      = "[日付自動補正：年]"
	NoteDateFutureRolled    = "[日付自動補正：未来日付]"
	NoteDateEraConverted    = "[和暦変換]"
	NoteAmountCorrected     = "[金額自動補正]"
	NoteAmountNegative      = "[要確認：負の金額]"
	NoteAmountUnreadable    = "[要確認：金額不明]"
	NoteTaxInvalid          = "[要確認：税額不正]"
	NoteHighAmount          = "[要確認：高額]"
	NoteTaxComputed         = "[消費税自動計算]"
	NoteBalanceSwapped      = "[入出金自動補正]"
	NoteBalanceMismatch     = "[要確認：残高不整合]"
	NoteBalanceComplemented = "[残高印字なし：補完]"
	NoteClassificationError = "[要確認：勘定科目推測失敗]"
	NoteTemplateApplied     = "[摘要テンプレート適用]"
	NoteLearned             = "学習済み"
)

// Tax category codes understood by the accounting application.
const (
	TaxCodeStandardQualified    = "共対仕入内10%適格"
	TaxCodeStandardNonQualified = "共対仕入内10%区分80%"
	TaxCodeReducedQualified     = "共対仕入内軽減8%適格"
	TaxCodeReducedNonQualified  = "共対仕入内軽減8%区分80%"
	TaxCodeOutOfScope           = "対象外"
)

// Consumption tax rates in percent.
const (
	TaxRateNone     = 0
	TaxRateReduced  = 8
	TaxRateStandard = 10
)

// Sentinels written in place of an account title that could not be resolved.
const (
	SentinelClassificationError = "【推測エラー】"
	SentinelMasterNotConfigured = "【マスター未設定】"
)

// UnsetPassbookAccount is used when no passbook master keyword matches a file name.
const UnsetPassbookAccount = "（未設定）"

// File permissions
const (
	PermissionDataFile  = 0600
	PermissionDirectory = 0750
)

// Ledger date layouts
const (
	DateLayoutLedger = "2006/01/02"
	DateLayoutISO    = "2006-01-02"
)
