package models

import (
	"fmt"
	"strings"
)

// AppendNote appends a marker to note, with an optional detail recording the
// values involved ("marker(detail)"). Markers are separated by a single space.
func AppendNote(note, marker, detail string) string {
	token := marker
	if detail != "" {
		token = fmt.Sprintf("%s(%s)", marker, detail)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return token
	}
	return note + " " + token
}

// NeedsReview reports whether note carries the review marker.
func NeedsReview(note string) bool {
	return strings.Contains(note, MarkerNeedsReview)
}

// IsSentinel reports whether an account title is one of the unresolved sentinels.
func IsSentinel(title string) bool {
	return title == SentinelClassificationError || title == SentinelMasterNotConfigured ||
		(strings.HasPrefix(title, "【") && strings.HasSuffix(title, "】"))
}

// IsSentinelTitle is IsSentinel extended with the sentinel configured for
// exhausted classification, which may use any spelling.
func IsSentinelTitle(title, configured string) bool {
	title = strings.TrimSpace(title)
	if IsSentinel(title) {
		return true
	}
	configured = strings.TrimSpace(configured)
	return configured != "" && title == configured
}
