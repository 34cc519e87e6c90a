package extraction

import (
	"fmt"

	"fjacquet/receipt-ledger/internal/models"
)

const receiptPromptFormat = "# 指示\n" +
	"この画像から領収書情報を抽出し、指定されたJSON形式で出力してください。\n" +
	"- 1枚の画像に複数の税率が混在する場合、税率ごとに別のオブジェクトを生成してください。\n" +
	"- 日付は西暦 (yyyy/mm/dd) に変換してください。\n" +
	"- 金額は数値のみで出力してください。\n" +
	"- 読み取れない項目は null または 0 としてください。\n" +
	"- 特記事項があれば note に記載してください。\n" +
	"# JSON形式\n" +
	"[\n" +
	"  {\n" +
	"    \"date\": \"2025/06/21\",\n" +
	"    \"storeName\": \"株式会社サンプル\",\n" +
	"    \"description\": \"品代として\",\n" +
	"    \"tax_rate\": 10,\n" +
	"    \"amount\": 1100,\n" +
	"    \"tax_amount\": 100,\n" +
	"    \"invoice_number\": \"T1234567890123\",\n" +
	"    \"filename\": %q,\n" +
	"    \"note\": \"\"\n" +
	"  }\n" +
	"]"

const passbookPromptBase = "# 指示\n" +
	"提供された通帳の画像から取引履歴を正確に抽出し、以下のJSON形式の配列として結果を返してください。\n" +
	"- 金額は必ず数値(Number)型で出力してください。\n" +
	"- 日付は必ず'yyyy-mm-dd'形式の西暦文字列に統一してください。\n" +
	"- 残高が印字されていない行の残高は null としてください。\n" +
	"# JSON出力形式\n" +
	"[\n" +
	"  {\n" +
	"    \"取引日\": \"yyyy-mm-dd\",\n" +
	"    \"出金額\": 0,\n" +
	"    \"入金額\": 50000,\n" +
	"    \"残高\": 1050000,\n" +
	"    \"取引内容\": \"振込 タナカ タロウ\",\n" +
	"    \"備考\": \"\"\n" +
	"  }\n" +
	"]"

var bankInstructions = map[models.BankType]string{
	models.BankMUFG: "\n# 三菱UFJ銀行の特別ルール\n" +
		"- 日付は `年-月日` の形式です。例: `07-428` は令和7年4月28日です。\n" +
		"- 「お支払金額」列は必ず『出金額』、「お預り金額」列は必ず『入金額』としてください。",
	models.BankOsakaShinkin: "\n# 大阪信用金庫の特別ルール\n" +
		"- 「差引残高」がアスタリスク(***)の行は、その直前の行の「摘要」の続きです。" +
		"その行の摘要を直前の行の取引内容に連結し、アスタリスクの行自体は出力しないでください。",
}

// ReceiptPrompt returns the extraction instructions for a receipt image.
func ReceiptPrompt(fileName string) string {
	return fmt.Sprintf(receiptPromptFormat, fileName)
}

// PassbookPrompt returns the extraction instructions for a passbook page,
// with the bank-specific rules appended.
func PassbookPrompt(bank models.BankType) string {
	return passbookPromptBase + bankInstructions[bank]
}
