package report

import (
	"encoding/json"
	"testing"
	"time"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *models.ReviewReport {
	return &models.ReviewReport{
		GeneratedAt: time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC),
		Receipts: models.ReviewSection{
			Total: 3,
			Duplicates: []models.DuplicateGroup{{
				Date:           "2025/06/01",
				Amount:         3000,
				TransactionIDs: []string{"a", "b"},
				Labels:         []string{"Acme / 文具", "Acme / 文具"},
			}},
			Critical: []models.CriticalRow{{
				TransactionID: "c",
				Date:          "2025/06/02",
				Label:         "ローソン / 弁当",
				Amount:        60000,
				Note:          models.NoteHighAmount,
			}},
		},
		Passbook: models.ReviewSection{Total: 0},
	}
}

func TestReportGenerator_GenerateReport_JSON(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())
	report := sampleReport()

	out, err := generator.GenerateReport(report, FormatJSON)
	require.NoError(t, err)

	var decoded models.ReviewReport
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 3, decoded.Receipts.Total)
	require.Len(t, decoded.Receipts.Duplicates, 1)
	assert.Equal(t, []string{"a", "b"}, decoded.Receipts.Duplicates[0].TransactionIDs)
	require.Len(t, decoded.Receipts.Critical, 1)
	assert.Equal(t, int64(60000), decoded.Receipts.Critical[0].Amount)
}

func TestReportGenerator_GenerateReport_Text(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())

	out, err := generator.GenerateReport(sampleReport(), FormatText)
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "== Receipts (3 rows) ==")
	assert.Contains(t, text, "Possible duplicates: 1")
	assert.Contains(t, text, "¥3,000")
	assert.Contains(t, text, "ローソン / 弁当")
	assert.Contains(t, text, models.NoteHighAmount)
	assert.NotContains(t, text, "Nothing to review.")
}

func TestReportGenerator_GenerateReport_EmptyReport(t *testing.T) {
	generator := NewReportGenerator(nil)

	out, err := generator.GenerateReport(&models.ReviewReport{}, FormatText)
	require.NoError(t, err)
	assert.Contains(t, string(out), "Nothing to review.")
}

func TestReportGenerator_GenerateReport_UnsupportedFormat(t *testing.T) {
	generator := NewReportGenerator(logging.NewMockLogger())

	_, err := generator.GenerateReport(sampleReport(), "xml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format: xml")

	_, err = generator.GenerateReport(nil, FormatJSON)
	assert.Error(t, err)
}
