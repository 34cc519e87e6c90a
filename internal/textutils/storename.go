package textutils

import (
	"strings"
	"unicode"
)

var legalEntityMarkers = []string{
	"株式会社", "有限会社", "合同会社", "合資会社", "合名会社",
	"カブシキガイシヤ", "カブシキガイシャ", "ユウゲンガイシヤ", "ユウゲンガイシャ",
	"(株)", "(有)", "(同)", "㈱", "㈲",
}

// Bank passbooks abbreviate the entity kind in half-width kana: "ｶ)ﾛｰｿﾝ" when it
// precedes the name, "ﾛｰｿﾝ(ｶ" when it follows. Keys are matched after widening.
var (
	kanaEntityPrefixes = []string{"カ)", "ユ)", "ド)"}
	kanaEntitySuffixes = []string{"(カ", "(ユ", "(ド"}
)

func isHyphenVariant(r rune) bool {
	switch r {
	case '-', '‐', '‑', '‒', '–', '—', '―', '−', 'ｰ':
		return true
	}
	return false
}

// CanonicalStoreName returns the matching key of a merchant name: half-width
// kana widened, Latin letters and symbols folded to ASCII and lower-cased,
// without whitespace, hyphen variants or legal-entity markers.
func CanonicalStoreName(name string) string {
	key := strings.ToLower(FoldWidth(Normalize(name)))
	key = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || isHyphenVariant(r) {
			return -1
		}
		return r
	}, key)
	for _, marker := range legalEntityMarkers {
		key = strings.ReplaceAll(key, marker, "")
	}
	for _, p := range kanaEntityPrefixes {
		key = strings.TrimPrefix(key, p)
	}
	for _, s := range kanaEntitySuffixes {
		key = strings.TrimSuffix(key, s)
	}
	return key
}

// StoreNamesMatch reports whether two merchant names refer to the same store:
// either canonical key contains the other. Empty keys never match.
func StoreNamesMatch(a, b string) bool {
	return KeysMatch(CanonicalStoreName(a), CanonicalStoreName(b))
}

// KeysMatch is StoreNamesMatch for keys that are already canonical.
func KeysMatch(ka, kb string) bool {
	if ka == "" || kb == "" {
		return false
	}
	return strings.Contains(ka, kb) || strings.Contains(kb, ka)
}
