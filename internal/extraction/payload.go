package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fjacquet/receipt-ledger/internal/currencyutils"
)

// flexNumber accepts a JSON number, a numeric string such as "¥1,100" or
// "１１００", or null. An unreadable value decodes to zero and keeps the raw
// text so the caller can flag it.
type flexNumber struct {
	Value   decimal.Decimal
	Present bool
	Raw     string
	Invalid bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = flexNumber{}
		return nil
	}

	var s string
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))

	*n = flexNumber{Raw: s}
	if s == "" {
		return nil
	}
	n.Present = true
	d, err := currencyutils.ParseAmount(s)
	if err != nil {
		n.Invalid = true
		return nil
	}
	n.Value = d
	return nil
}

// Int truncates the value to an int.
func (n flexNumber) Int() int {
	return int(n.Value.Truncate(0).IntPart())
}

// flexString accepts a JSON string, number, boolean or null.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil && string(b) != "true" && string(b) != "false" {
			return fmt.Errorf("unexpected JSON value %s for a text field", b)
		}
		*s = flexString(b)
	}
	return nil
}

func (s flexString) String() string {
	return string(s)
}

// receiptItem is one element of the receipt extraction array.
type receiptItem struct {
	Date          flexString `json:"date"`
	StoreName     flexString `json:"storeName"`
	Description   flexString `json:"description"`
	TaxRate       flexNumber `json:"tax_rate"`
	Amount        flexNumber `json:"amount"`
	TaxAmount     flexNumber `json:"tax_amount"`
	InvoiceNumber flexString `json:"invoice_number"`
	TaxCode       flexString `json:"tax_code"`
	Filename      flexString `json:"filename"`
	Note          flexString `json:"note"`
}

// passbookItem is one element of the passbook extraction array.
type passbookItem struct {
	Date        flexString `json:"取引日"`
	Withdrawal  flexNumber `json:"出金額"`
	Deposit     flexNumber `json:"入金額"`
	Balance     flexNumber `json:"残高"`
	Description flexString `json:"取引内容"`
	Note        flexString `json:"備考"`
}

// CleanModelJSON strips Markdown code fences and any text around the
// outermost JSON array.
func CleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
