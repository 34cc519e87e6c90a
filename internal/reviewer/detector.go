package reviewer

import (
	"fjacquet/receipt-ledger/internal/models"
)

// DuplicateKey is the grouping key of duplicate candidates.
type DuplicateKey struct {
	Date   string
	Amount int64
}

// Group holds items sharing a key, in input order.
type Group[T any] struct {
	Key   DuplicateKey
	Items []T
}

// GroupByKey returns the groups of more than one item, ordered by the first
// appearance of their key.
func GroupByKey[T any](items []T, key func(T) DuplicateKey) []Group[T] {
	index := make(map[DuplicateKey]int)
	var groups []Group[T]
	for _, it := range items {
		k := key(it)
		if i, ok := index[k]; ok {
			groups[i].Items = append(groups[i].Items, it)
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Group[T]{Key: k, Items: []T{it}})
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Items) > 1 {
			out = append(out, g)
		}
	}
	return out
}

// FindDuplicates groups receipt rows by (transaction date, tax-inclusive amount).
// Descriptions and stores are ignored.
func FindDuplicates(txs []models.ClassifiedTransaction) []Group[models.ClassifiedTransaction] {
	return GroupByKey(txs, func(tx models.ClassifiedTransaction) DuplicateKey {
		return DuplicateKey{Date: tx.TransactionDate.Ledger(), Amount: tx.AmountInclusiveTax}
	})
}

// FindPassbookDuplicates groups passbook rows by (date, signed amount), so a
// deposit and a withdrawal of the same value never collide.
func FindPassbookDuplicates(txs []models.PassbookTransaction) []Group[models.PassbookTransaction] {
	return GroupByKey(txs, func(tx models.PassbookTransaction) DuplicateKey {
		return DuplicateKey{Date: tx.TransactionDate.Ledger(), Amount: tx.Deposit - tx.Withdrawal}
	})
}

// FindCriticalRows returns the receipt rows whose note carries the review marker.
func FindCriticalRows(txs []models.ClassifiedTransaction) []models.ClassifiedTransaction {
	var out []models.ClassifiedTransaction
	for _, tx := range txs {
		if models.NeedsReview(tx.Note) {
			out = append(out, tx)
		}
	}
	return out
}

// FindCriticalPassbookRows is FindCriticalRows for passbook rows.
func FindCriticalPassbookRows(txs []models.PassbookTransaction) []models.PassbookTransaction {
	var out []models.PassbookTransaction
	for _, tx := range txs {
		if models.NeedsReview(tx.Note) {
			out = append(out, tx)
		}
	}
	return out
}
