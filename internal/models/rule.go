package models

import (
	"fmt"
	"strings"
	"time"
)

// AmountCondition restricts a learning rule to an amount range.
type AmountCondition string

const (
	AmountConditionNone AmountCondition = "NONE"
	AmountConditionGTE  AmountCondition = "GTE"
	AmountConditionLT   AmountCondition = "LT"
)

// ParseAmountCondition accepts the enum names and the labels used in the
// rule sheet (以上, 未満). Empty means no condition.
func ParseAmountCondition(s string) (AmountCondition, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE", "なし":
		return AmountConditionNone, nil
	case "GTE", ">=", "以上":
		return AmountConditionGTE, nil
	case "LT", "<", "未満":
		return AmountConditionLT, nil
	default:
		return AmountConditionNone, fmt.Errorf("unknown amount condition %q", s)
	}
}

// Holds reports whether amount satisfies the condition. A condition with no
// threshold always holds.
func (c AmountCondition) Holds(amount int64, threshold *int64) bool {
	if threshold == nil {
		return true
	}
	switch c {
	case AmountConditionGTE:
		return amount >= *threshold
	case AmountConditionLT:
		return amount < *threshold
	default:
		return true
	}
}

// LearningRule is a user-authored classification override.
// An empty RawStoreNamePattern makes it a passbook-only rule.
type LearningRule struct {
	ID                         string          `yaml:"id"`
	RawStoreNamePattern        string          `yaml:"store_name"`
	NormalizedStoreNamePattern string          `yaml:"normalized_store_name,omitempty"`
	DescriptionKeyword         string          `yaml:"description_keyword,omitempty"`
	PassbookAccountName        string          `yaml:"passbook_account_name,omitempty"`
	AmountCondition            AmountCondition `yaml:"amount_condition,omitempty"`
	AmountThreshold            *int64          `yaml:"amount_threshold,omitempty"`
	AccountTitle               string          `yaml:"account_title"`
	SubAccount                 string          `yaml:"sub_account,omitempty"`
	TaxCategory                string          `yaml:"tax_category,omitempty"`
	DescriptionTemplate        string          `yaml:"description_template,omitempty"`
	SourceTransactionID        string          `yaml:"transaction_id,omitempty"`
	CreatedAt                  time.Time       `yaml:"created_at"`
}

// IsPassbookRule reports whether the rule applies to passbook rows only.
func (r LearningRule) IsPassbookRule() bool {
	return strings.TrimSpace(r.RawStoreNamePattern) == ""
}
