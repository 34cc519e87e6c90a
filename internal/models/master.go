package models

import "strings"

// AccountMaster is one entry of the chart of accounts offered to the classifier.
type AccountMaster struct {
	Title    string `yaml:"title"`
	Keywords string `yaml:"keywords,omitempty"`
}

// PassbookMaster maps a file-name keyword to the bank account it belongs to.
type PassbookMaster struct {
	Keyword     string `yaml:"keyword"`
	AccountName string `yaml:"account_name"`
}

// AccountTitles lists the titles of masters in order, skipping blanks.
func AccountTitles(masters []AccountMaster) []string {
	titles := make([]string, 0, len(masters))
	for _, m := range masters {
		if t := strings.TrimSpace(m.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// ResolvePassbookAccount returns the account name of the first master whose
// keyword appears in fileName (case-insensitive), or UnsetPassbookAccount.
func ResolvePassbookAccount(fileName string, masters []PassbookMaster) string {
	lower := strings.ToLower(fileName)
	for _, m := range masters {
		kw := strings.ToLower(strings.TrimSpace(m.Keyword))
		if kw != "" && strings.Contains(lower, kw) {
			return m.AccountName
		}
	}
	return UnsetPassbookAccount
}
