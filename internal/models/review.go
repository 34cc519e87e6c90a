package models

import "time"

// DuplicateGroup lists the rows sharing one (date, amount) key.
type DuplicateGroup struct {
	Date           string   `json:"date"`
	Amount         int64    `json:"amount"`
	TransactionIDs []string `json:"transactionIds"`
	Labels         []string `json:"labels"`
}

// CriticalRow is a row whose note carries the review marker.
type CriticalRow struct {
	TransactionID string `json:"transactionId"`
	Date          string `json:"date"`
	Label         string `json:"label"`
	Amount        int64  `json:"amount"`
	Note          string `json:"note"`
}

// ReviewSection is the review outcome for one ledger.
type ReviewSection struct {
	Total      int              `json:"total"`
	Duplicates []DuplicateGroup `json:"duplicates"`
	Critical   []CriticalRow    `json:"critical"`
}

// ReviewReport summarizes what a human should look at before exporting.
// It is advisory: nothing is merged or deleted automatically.
type ReviewReport struct {
	GeneratedAt time.Time     `json:"generatedAt"`
	Receipts    ReviewSection `json:"receipts"`
	Passbook    ReviewSection `json:"passbook"`
}

// NeedsAttention reports whether any section has findings.
func (r ReviewReport) NeedsAttention() bool {
	return len(r.Receipts.Duplicates)+len(r.Receipts.Critical)+
		len(r.Passbook.Duplicates)+len(r.Passbook.Critical) > 0
}
