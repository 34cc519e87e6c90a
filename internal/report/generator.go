// Package report renders review reports for the terminal or for other tools.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"fjacquet/receipt-ledger/internal/currencyutils"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ReportGenerator renders a ReviewReport in one of the supported formats.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldComponent, "ReportGenerator"),
	}
}

// GenerateReport renders report as "text" or "json".
func (g *ReportGenerator) GenerateReport(report *models.ReviewReport, format string) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("report is nil")
	}
	switch format {
	case FormatJSON:
		return g.generateJSONReport(report)
	case FormatText, "":
		return g.generateTextReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(report *models.ReviewReport) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return out, nil
}

func (g *ReportGenerator) generateTextReport(report *models.ReviewReport) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Review generated at %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05"))

	writeSection(&buf, "Receipts", report.Receipts)
	writeSection(&buf, "Passbook", report.Passbook)

	if !report.NeedsAttention() {
		buf.WriteString("\nNothing to review.\n")
	}
	return buf.Bytes(), nil
}

func writeSection(buf *bytes.Buffer, title string, s models.ReviewSection) {
	fmt.Fprintf(buf, "\n== %s (%d rows) ==\n", title, s.Total)

	fmt.Fprintf(buf, "Possible duplicates: %d\n", len(s.Duplicates))
	if len(s.Duplicates) > 0 {
		w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tAMOUNT\tROWS")
		for _, d := range s.Duplicates {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Date, currencyutils.FormatYen(d.Amount), strings.Join(d.Labels, " | "))
		}
		_ = w.Flush()
	}

	fmt.Fprintf(buf, "Rows needing review: %d\n", len(s.Critical))
	if len(s.Critical) > 0 {
		w := tabwriter.NewWriter(buf, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tROW\tAMOUNT\tNOTE")
		for _, c := range s.Critical {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Date, c.Label, currencyutils.FormatYen(c.Amount), c.Note)
		}
		_ = w.Flush()
	}
}
