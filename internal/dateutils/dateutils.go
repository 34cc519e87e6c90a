// Package dateutils parses the date notations found on Japanese receipts and
// passbooks and reconciles them against a processing date.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fjacquet/receipt-ledger/internal/textutils"
)

// Date layouts used across the application.
const (
	DateLayoutISO    = "2006-01-02"
	DateLayoutLedger = "2006/01/02"
	DateLayoutFile   = "20060102"
	DateLayoutStamp  = "20060102_150405"
)

// CommonFormats are the Gregorian layouts tried by ParseDate, in order.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutLedger,
	"2006.01.02",
	"2006-1-2",
	"2006/1/2",
	"2006.1.2",
	"2006年1月2日",
	DateLayoutFile,
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	time.RFC3339,
}

var (
	weekdaySuffix = regexp.MustCompile(`[(（][月火水木金土日][曜]?[日]?[)）]$`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// CleanDateString folds full-width digits and separators, removes whitespace
// and drops a trailing weekday such as "(月)".
func CleanDateString(dateStr string) string {
	s := textutils.FoldWidth(dateStr)
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "")
	s = weekdaySuffix.ReplaceAllString(s, "")
	return s
}

// ParseDate parses a Gregorian date string in loc using CommonFormats and
// returns the layout that matched.
func ParseDate(dateStr string, loc *time.Location) (time.Time, string, error) {
	if loc == nil {
		loc = time.Local
	}
	cleaned := CleanDateString(dateStr)
	for _, layout := range CommonFormats {
		if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysIn returns the number of days of a month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// buildDate validates the parts and returns the date, clamping nothing.
func buildDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > DaysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// withYear moves t to another year, clamping February 29 to the 28th.
func withYear(t time.Time, year int) time.Time {
	day := t.Day()
	if max := DaysIn(year, t.Month()); day > max {
		day = max
	}
	return time.Date(year, t.Month(), day, 0, 0, 0, 0, t.Location())
}
