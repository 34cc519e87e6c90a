package textutils

import (
	"regexp"
	"strings"
)

var (
	invoicePattern      = regexp.MustCompile(`^T\d{13}$`)
	invoiceSearch       = regexp.MustCompile(`T\d{13}`)
	unsafeFileNameChars = regexp.MustCompile(`[\\/:*?"<>|]`)
)

// IsQualifiedInvoiceNumber reports whether s is a registered invoice issuer
// number: "T" followed by exactly 13 digits.
func IsQualifiedInvoiceNumber(s string) bool {
	return invoicePattern.MatchString(s)
}

// CleanInvoiceNumber folds width, upper-cases the prefix and drops separators
// OCR tends to insert ("Ｔ1234-5678-90123" → "T1234567890123"). A value that
// does not reduce to a valid number is returned trimmed but otherwise as read.
func CleanInvoiceNumber(s string) string {
	raw := strings.TrimSpace(s)
	folded := strings.ToUpper(FoldWidth(raw))
	folded = strings.Map(func(r rune) rune {
		if r == ' ' || isHyphenVariant(r) {
			return -1
		}
		return r
	}, folded)
	if IsQualifiedInvoiceNumber(folded) {
		return folded
	}
	return raw
}

// ExtractInvoiceNumber finds the first invoice number embedded in free text.
func ExtractInvoiceNumber(text string) string {
	return invoiceSearch.FindString(strings.ToUpper(FoldWidth(text)))
}

// SanitizeFileName replaces characters that are not allowed in file names.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(unsafeFileNameChars.ReplaceAllString(name, "-"))
}

// IsCarriedForward reports whether a passbook description denotes a carried
// forward balance line (繰越).
func IsCarriedForward(description string) bool {
	return strings.Contains(description, "繰越")
}
