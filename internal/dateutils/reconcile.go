package dateutils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"fjacquet/receipt-ledger/internal/models"
)

// DateResult is the outcome of Reconcile. Date is zero when the input could
// not be read; Text then holds the original string.
type DateResult struct {
	Date      time.Time
	Text      string
	Corrected bool
	Note      string
}

var sentinelDate = regexp.MustCompile(`^(0+[-/.]0+[-/.]0+|1970[-/.]0?1[-/.]0?1|0001[-/.]0?1[-/.]0?1)$`)

var sentinelWords = map[string]bool{
	"": true, "null": true, "none": true, "n/a": true, "-": true, "不明": true, "なし": true,
}

// Reconcile turns a free-form date read from a document into the most
// plausible calendar date relative to processingDate:
//
//  1. era notations (令和/平成/昭和, R7.4.28, 7年4月28日, 07-428) become Gregorian;
//  2. a year outside [processing year - 1, processing year] is forced to the
//     processing year;
//  3. a date more than one day after processingDate moves back one year.
//
// Empty or epoch-like values fall back to processingDate. Unreadable values are
// returned as-is with a review note.
func Reconcile(raw string, processingDate time.Time) DateResult {
	anchor := StartOfDay(processingDate)
	loc := anchor.Location()
	cleaned := CleanDateString(raw)

	if sentinelWords[strings.ToLower(cleaned)] || sentinelDate.MatchString(cleaned) {
		detail := strings.TrimSpace(raw)
		if detail == "" {
			detail = "空欄"
		}
		return DateResult{
			Date:      anchor,
			Text:      anchor.Format(DateLayoutISO),
			Corrected: true,
			Note:      models.AppendNote("", models.NoteDateFallback, detail),
		}
	}

	date, form, ok := parseDocumentDate(cleaned, anchor.Year(), loc)
	if !ok {
		return DateResult{
			Text: raw,
			Note: models.AppendNote("", models.NoteDateUnclear, strings.TrimSpace(raw)),
		}
	}

	result := DateResult{}
	switch form {
	case formEra:
		result.Note = models.AppendNote(result.Note, models.NoteDateEraConverted, strings.TrimSpace(raw))
	case formNoYear:
		result.Note = models.AppendNote(result.Note, models.NoteDateYearCompleted, strings.TrimSpace(raw))
	}

	current := anchor.Year()
	if y := date.Year(); y < current-1 || y > current {
		forced := withYear(date, current)
		result.Note = models.AppendNote(result.Note, models.NoteDateYearForced,
			fmt.Sprintf("%s→%s", date.Format(DateLayoutISO), forced.Format(DateLayoutISO)))
		result.Corrected = true
		date = forced
	}

	if date.After(anchor.AddDate(0, 0, 1)) {
		rolled := withYear(date, date.Year()-1)
		result.Note = models.AppendNote(result.Note, models.NoteDateFutureRolled,
			fmt.Sprintf("%s→%s", date.Format(DateLayoutISO), rolled.Format(DateLayoutISO)))
		result.Corrected = true
		date = rolled
	}

	result.Date = date
	result.Text = date.Format(DateLayoutISO)
	return result
}

type dateForm int

const (
	formGregorian dateForm = iota
	formEra
	formNoYear
)

// parseDocumentDate recognizes era, compact passbook, short-year, month-day and
// Gregorian notations and reports which one matched.
func parseDocumentDate(s string, anchorYear int, loc *time.Location) (time.Time, dateForm, bool) {
	atoi := func(v string) int {
		n, _ := strconv.Atoi(v)
		return n
	}

	if m := namedEraPattern.FindStringSubmatch(s); m != nil {
		era, _ := eraByToken(m[1])
		t, ok := buildDate(era.Offset+eraYear(m[2]), atoi(m[3]), atoi(m[4]), loc)
		return t, formEra, ok
	}
	if m := bareEraPattern.FindStringSubmatch(s); m != nil {
		t, ok := buildDate(EraToGregorian(atoi(m[1]), anchorYear), atoi(m[2]), atoi(m[3]), loc)
		return t, formEra, ok
	}
	if m := compactEraPattern.FindStringSubmatch(s); m != nil {
		t, ok := buildDate(EraToGregorian(atoi(m[1]), anchorYear), atoi(m[2]), atoi(m[3]), loc)
		return t, formEra, ok
	}
	if m := shortYearPattern.FindStringSubmatch(s); m != nil {
		t, ok := buildDate(ShortYearToGregorian(atoi(m[1]), anchorYear), atoi(m[2]), atoi(m[3]), loc)
		return t, formGregorian, ok
	}
	if m := monthDayPattern.FindStringSubmatch(s); m != nil {
		t, ok := buildDate(anchorYear, atoi(m[1]), atoi(m[2]), loc)
		return t, formNoYear, ok
	}

	t, _, err := ParseDate(s, loc)
	if err != nil {
		return time.Time{}, formGregorian, false
	}
	return StartOfDay(t.In(loc)), formGregorian, true
}
