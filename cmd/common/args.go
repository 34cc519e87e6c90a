// Package common contains shared functionality for command handlers
package common

import (
	"fmt"
	"strings"
	"time"

	"fjacquet/receipt-ledger/internal/models"
)

// Kind flag values.
const (
	KindAll      = "all"
	KindReceipt  = string(models.KindReceipt)
	KindPassbook = string(models.KindPassbook)
)

// ParseKinds expands a --kind flag value into document kinds, receipts first.
func ParseKinds(value string) ([]models.DocumentKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", KindAll:
		return []models.DocumentKind{models.KindReceipt, models.KindPassbook}, nil
	case KindReceipt:
		return []models.DocumentKind{models.KindReceipt}, nil
	case KindPassbook:
		return []models.DocumentKind{models.KindPassbook}, nil
	default:
		return nil, fmt.Errorf("unknown kind %q (want receipt, passbook or all)", value)
	}
}

// ParseProcessingDate parses a YYYY-MM-DD flag value in local time. Empty
// means today.
func ParseProcessingDate(value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return now, nil
	}
	t, err := time.ParseInLocation(models.DateLayoutISO, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid processing date %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// SplitIDs flattens ID arguments that may be comma separated and drops blanks
// and repeats.
func SplitIDs(args []string) []string {
	seen := map[string]bool{}
	var ids []string
	for _, arg := range args {
		for _, id := range strings.Split(arg, ",") {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
