package reconciler

import (
	"fmt"
	"strings"

	"fjacquet/receipt-ledger/internal/dateutils"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/textutils"
)

// ReconcilePassbook runs the passbook passes in their required order:
// FilterNonTransactions, ComplementMissingBalances, ReconcileBalances.
func ReconcilePassbook(lines []models.PassbookRawLine) []models.PassbookRawLine {
	return ReconcileBalances(ComplementMissingBalances(FilterNonTransactions(lines)))
}

// FilterNonTransactions drops carried-forward balance lines and blank rows
// that move no money.
func FilterNonTransactions(lines []models.PassbookRawLine) []models.PassbookRawLine {
	out := make([]models.PassbookRawLine, 0, len(lines))
	for _, l := range lines {
		moved := l.Withdrawal != 0 || l.Deposit != 0
		desc := strings.TrimSpace(l.Description)
		if !moved && (desc == "" || textutils.IsCarriedForward(desc)) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ComplementMissingBalances fills the balance of a row that shares its date
// with the previous row and has no printed balance. Some banks print the
// balance only on the last transaction of a day.
func ComplementMissingBalances(lines []models.PassbookRawLine) []models.PassbookRawLine {
	out := copyLines(lines)
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], &out[i]
		if prev.Balance == nil || (cur.Balance != nil && *cur.Balance != 0) {
			continue
		}
		if !sameDay(prev.TransactionDate, cur.TransactionDate) {
			continue
		}
		balance := *prev.Balance - cur.Withdrawal + cur.Deposit
		cur.Balance = models.BalancePtr(balance)
		cur.Note = models.AppendNote(cur.Note, models.NoteBalanceComplemented, fmt.Sprintf("%d", balance))
	}
	return out
}

// ReconcileBalances checks balance[i] == balance[i-1] - withdrawal[i] + deposit[i]
// for every row against the previous one. When swapping the deposit and
// withdrawal columns satisfies the equation the columns are swapped; any
// other mismatch is only flagged. Rows without a balance on either side are
// not checked.
func ReconcileBalances(lines []models.PassbookRawLine) []models.PassbookRawLine {
	out := copyLines(lines)
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], &out[i]
		if prev.Balance == nil || cur.Balance == nil {
			continue
		}

		expected := *prev.Balance - cur.Withdrawal + cur.Deposit
		if *cur.Balance == expected {
			continue
		}

		swapped := *prev.Balance - cur.Deposit + cur.Withdrawal
		if swapped == *cur.Balance && (cur.Deposit != 0 || cur.Withdrawal != 0) {
			cur.Note = models.AppendNote(cur.Note, models.NoteBalanceSwapped,
				fmt.Sprintf("元 出金:%d 入金:%d", cur.Withdrawal, cur.Deposit))
			cur.Withdrawal, cur.Deposit = cur.Deposit, cur.Withdrawal
			continue
		}

		cur.Note = models.AppendNote(cur.Note, models.NoteBalanceMismatch,
			fmt.Sprintf("計算残高:%d 印字残高:%d", expected, *cur.Balance))
	}
	return out
}

// copyLines returns a deep copy so the passes never alias their input.
func copyLines(lines []models.PassbookRawLine) []models.PassbookRawLine {
	out := make([]models.PassbookRawLine, len(lines))
	for i, l := range lines {
		if l.Balance != nil {
			l.Balance = models.BalancePtr(*l.Balance)
		}
		out[i] = l
	}
	return out
}

func sameDay(a, b string) bool {
	ca, cb := dateutils.CleanDateString(a), dateutils.CleanDateString(b)
	return ca != "" && ca == cb
}
