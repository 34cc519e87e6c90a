// Package textutils provides text normalization and extraction utilities for
// Japanese receipt and passbook text.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

const (
	combiningVoiced     = '\u3099'
	combiningSemiVoiced = '\u309A'
	spacingVoiced       = '\u309B' // ゛
	spacingSemiVoiced   = '\u309C' // ゜
	halfwidthVoiced     = '\uFF9E' // ﾞ
	halfwidthSemiVoiced = '\uFF9F' // ﾟ
	fullwidthOffset     = 0xFEE0
)

// Normalize canonicalizes text for comparison and storage:
//   - full-width Latin letters and digits become half-width;
//   - half-width katakana become full-width, with a following ﾞ/ﾟ composed
//     into the voiced kana when one exists (ｶﾞ → ガ) and kept as a standalone
//     ゛/゜ otherwise;
//   - half-width ASCII symbols become their full-width forms.
//
// Normalize is idempotent.
func Normalize(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case isFullwidthAlnum(r):
			b.WriteRune(r - fullwidthOffset)
		case r == halfwidthVoiced:
			b.WriteRune(combiningVoiced)
		case r == halfwidthSemiVoiced:
			b.WriteRune(combiningSemiVoiced)
		case r >= '\uFF61' && r <= '\uFF9D':
			b.WriteString(width.Widen.String(string(r)))
		case isASCIISymbol(r):
			b.WriteRune(r + fullwidthOffset)
		default:
			b.WriteRune(r)
		}
	}

	composed := norm.NFC.String(b.String())
	return strings.Map(func(r rune) rune {
		switch r {
		case combiningVoiced:
			return spacingVoiced
		case combiningSemiVoiced:
			return spacingSemiVoiced
		}
		return r
	}, composed)
}

func isFullwidthAlnum(r rune) bool {
	return (r >= 'Ａ' && r <= 'Ｚ') || (r >= 'ａ' && r <= 'ｚ') || (r >= '０' && r <= '９')
}

func isASCIISymbol(r rune) bool {
	return r > ' ' && r < 0x7F && !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// FoldWidth converts every full-width ASCII variant (U+FF01–U+FF5E) and the
// ideographic space to its ASCII form. Kana are left untouched.
func FoldWidth(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '！' && r <= '～':
			return r - fullwidthOffset
		case r == '　':
			return ' '
		}
		return r
	}, s)
}
