package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fjacquet/receipt-ledger/internal/models"
)

var processing = time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		corrected bool
		marker    string
	}{
		{"mufg compact era", "07-428", "2025-04-28", false, models.NoteDateEraConverted},
		{"named era", "令和7年4月28日", "2025-04-28", false, models.NoteDateEraConverted},
		{"era letter", "R7.4.28", "2025-04-28", false, models.NoteDateEraConverted},
		{"gannen", "令和元年5月1日", "2025-05-01", true, models.NoteDateYearForced},
		{"bare era year", "7年4月28日", "2025-04-28", false, models.NoteDateEraConverted},
		{"gregorian", "2025/04/28", "2025-04-28", false, ""},
		{"previous year kept", "2024-11-30", "2024-11-30", false, ""},
		{"short year", "25.04.28", "2025-04-28", false, ""},
		{"old year forced", "2022-04-28", "2025-04-28", true, models.NoteDateYearForced},
		{"heisei forced", "平成31年4月30日", "2025-04-30", true, models.NoteDateYearForced},
		{"future rolled back", "2025-12-01", "2024-12-01", true, models.NoteDateFutureRolled},
		{"tomorrow kept", "2025-06-16", "2025-06-16", false, ""},
		{"month day only", "4/28", "2025-04-28", false, models.NoteDateYearCompleted},
		{"month day in future", "12月1日", "2024-12-01", true, models.NoteDateFutureRolled},
		{"leap day clamped", "2020-02-29", "2025-02-28", true, models.NoteDateYearForced},
		{"empty uses processing date", "", "2025-06-15", true, models.NoteDateFallback},
		{"epoch uses processing date", "1970/01/01", "2025-06-15", true, models.NoteDateFallback},
		{"zero date uses processing date", "0000-00-00", "2025-06-15", true, models.NoteDateFallback},
		{"null uses processing date", "null", "2025-06-15", true, models.NoteDateFallback},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Reconcile(tc.raw, processing)
			assert.Equal(t, tc.want, got.Text)
			assert.Equal(t, tc.want, got.Date.Format(DateLayoutISO))
			assert.Equal(t, tc.corrected, got.Corrected)
			if tc.marker != "" {
				assert.Contains(t, got.Note, tc.marker)
			}
		})
	}
}

func TestReconcile_Unparseable(t *testing.T) {
	got := Reconcile("ヨメナイ", processing)

	assert.True(t, got.Date.IsZero())
	assert.Equal(t, "ヨメナイ", got.Text)
	assert.False(t, got.Corrected)
	assert.Contains(t, got.Note, models.NoteDateUnclear)
	assert.True(t, models.NeedsReview(got.Note))
}

func TestReconcile_KeepsOriginalInNote(t *testing.T) {
	got := Reconcile("2022-04-28", processing)
	assert.Contains(t, got.Note, "2022-04-28→2025-04-28")

	got = Reconcile("2025-12-01", processing)
	assert.Contains(t, got.Note, "2025-12-01→2024-12-01")
}

func TestReconcile_InvalidCalendarDate(t *testing.T) {
	got := Reconcile("令和7年2月30日", processing)
	assert.True(t, got.Date.IsZero())
	assert.Contains(t, got.Note, models.NoteDateUnclear)
}
