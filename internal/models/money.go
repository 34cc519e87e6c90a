package models

import "github.com/shopspring/decimal"

// Yen truncates a decimal amount toward zero. Monetary values are never rounded.
func Yen(d decimal.Decimal) int64 {
	return d.Truncate(0).IntPart()
}

// AbsYen returns the absolute value of a yen amount.
func AbsYen(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
