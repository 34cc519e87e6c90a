// Package currencyutils parses and formats yen amounts and computes
// consumption tax with shopspring/decimal.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/receipt-ledger/internal/textutils"
)

var (
	hundred       = decimal.NewFromInt(100)
	currencyNoise = regexp.MustCompile(`[¥￥$円\s,'、]|JPY|税込|税抜|内税|外税`)
)

// ParseAmount parses an amount as printed on a Japanese document: "¥1,100",
// "１，１００円", "△500" (negative). Empty strings and a lone dash are zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	standardized := StandardizeAmount(amountStr)
	if standardized == "" || standardized == "-" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}
	return amount, nil
}

// StandardizeAmount folds full-width characters and strips currency symbols
// and thousand separators so that decimal.NewFromString accepts the result.
// The triangle markers used in bank books for negative values become a minus.
func StandardizeAmount(amountStr string) string {
	s := textutils.FoldWidth(strings.TrimSpace(amountStr))
	s = currencyNoise.ReplaceAllString(s, "")

	negative := false
	for _, prefix := range []string{"△", "▲", "-", "−", "ー"} {
		if strings.HasPrefix(s, prefix) {
			negative = true
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if negative && s != "" {
		return "-" + s
	}
	if negative {
		return "-"
	}
	return s
}

// FormatYen renders a whole-yen amount with thousand separators, e.g. "¥1,100".
func FormatYen(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := fmt.Sprintf("%d", amount)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "¥" + b.String()
}

// TaxIncluded returns the tax contained in a tax-inclusive amount,
// amount * rate / (100 + rate), without rounding.
// e.g. TaxIncluded(1100, 10) returns 100
func TaxIncluded(amount decimal.Decimal, ratePercent int) decimal.Decimal {
	rate := decimal.NewFromInt(int64(ratePercent))
	return amount.Mul(rate).Div(hundred.Add(rate))
}

// TaxOnTop returns the tax due on a tax-exclusive amount, amount * rate / 100.
// e.g. TaxOnTop(1000, 10) returns 100
func TaxOnTop(amount decimal.Decimal, ratePercent int) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(ratePercent))).Div(hundred)
}

// WithinTolerance reports whether |a - b| <= tolerance.
func WithinTolerance(a, b decimal.Decimal, tolerance int64) bool {
	return a.Sub(b).Abs().LessThanOrEqual(decimal.NewFromInt(tolerance))
}
