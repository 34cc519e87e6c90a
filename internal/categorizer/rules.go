package categorizer

import (
	"context"
	"strconv"
	"strings"

	"fjacquet/receipt-ledger/internal/config"
	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/textutils"
)

// Placeholders understood in rule description templates.
const (
	PlaceholderDate   = "【日付】"
	PlaceholderStore  = "【店名】"
	PlaceholderAmount = "【金額】"
)

type compiledRule struct {
	rule     models.LearningRule
	storeKey string
	keyword  string
}

// RuleStrategy applies user learning rules. Rules are evaluated in a fixed
// order and the first one that matches wins; there is no scoring.
type RuleStrategy struct {
	rules  []compiledRule
	logger logging.Logger
}

// NewRuleStrategy compiles rules for matching. order is one of
// config.RuleOrderNewestFirst (the last rule in the file is tried first) or
// config.RuleOrderOldestFirst.
func NewRuleStrategy(rules []models.LearningRule, order string, logger logging.Logger) *RuleStrategy {
	ordered := OrderRules(rules, order)
	compiled := make([]compiledRule, 0, len(ordered))
	for _, r := range ordered {
		if strings.TrimSpace(r.AccountTitle) == "" {
			continue
		}
		compiled = append(compiled, compiledRule{
			rule:     r,
			storeKey: textutils.CanonicalStoreName(r.RawStoreNamePattern),
			keyword:  textutils.Normalize(strings.TrimSpace(r.DescriptionKeyword)),
		})
	}
	return &RuleStrategy{rules: compiled, logger: logger}
}

// OrderRules returns a copy of rules in evaluation order.
func OrderRules(rules []models.LearningRule, order string) []models.LearningRule {
	out := make([]models.LearningRule, len(rules))
	copy(out, rules)
	if order == config.RuleOrderOldestFirst {
		return out
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Name returns the name of this strategy for logging and debugging.
func (s *RuleStrategy) Name() string {
	return "Rule"
}

// Categorize returns the classification of the first matching rule.
func (s *RuleStrategy) Categorize(ctx context.Context, tx Transaction) (Classification, bool, error) {
	var match func(compiledRule, Transaction) bool
	switch tx.Kind {
	case models.KindPassbook:
		match = matchPassbook
	default:
		match = s.matchReceiptFunc(tx)
	}

	for _, cr := range s.rules {
		if !match(cr, tx) {
			continue
		}
		c := Classification{
			AccountTitle: cr.rule.AccountTitle,
			SubAccount:   cr.rule.SubAccount,
			TaxCategory:  cr.rule.TaxCategory,
			IsLearned:    true,
			RuleID:       cr.rule.ID,
			Strategy:     s.Name(),
		}
		if tx.Kind != models.KindPassbook && strings.TrimSpace(cr.rule.DescriptionTemplate) != "" {
			c.Description = ApplyTemplate(cr.rule.DescriptionTemplate, tx)
		}
		s.logger.Debug("Transaction matched learning rule",
			logging.F(logging.FieldRuleID, cr.rule.ID),
			logging.F(logging.FieldAccountTitle, c.AccountTitle))
		return c, true, nil
	}
	return Classification{}, false, nil
}

func (s *RuleStrategy) matchReceiptFunc(tx Transaction) func(compiledRule, Transaction) bool {
	storeKey := textutils.CanonicalStoreName(tx.CounterpartyName)
	description := textutils.Normalize(tx.Description)
	return func(cr compiledRule, tx Transaction) bool {
		if cr.rule.IsPassbookRule() {
			return false
		}
		if !textutils.KeysMatch(storeKey, cr.storeKey) {
			return false
		}
		if cr.keyword != "" && !strings.Contains(description, cr.keyword) {
			return false
		}
		return cr.rule.AmountCondition.Holds(tx.Amount, cr.rule.AmountThreshold)
	}
}

func matchPassbook(cr compiledRule, tx Transaction) bool {
	if !cr.rule.IsPassbookRule() {
		return false
	}
	account := strings.TrimSpace(cr.rule.PassbookAccountName)
	if cr.keyword == "" && account == "" {
		return false
	}
	if cr.keyword != "" && !strings.Contains(textutils.Normalize(tx.Description), cr.keyword) {
		return false
	}
	if account != "" && account != strings.TrimSpace(tx.PassbookAccountName) {
		return false
	}
	return cr.rule.AmountCondition.Holds(tx.Amount, cr.rule.AmountThreshold)
}

// ApplyTemplate substitutes the date, store and amount placeholders of a rule
// template. The original description is not part of the result.
func ApplyTemplate(template string, tx Transaction) string {
	date := ""
	if !tx.Date.IsZero() {
		date = tx.Date.Format(models.DateLayoutLedger)
	}
	r := strings.NewReplacer(
		PlaceholderDate, date,
		PlaceholderStore, tx.CounterpartyName,
		PlaceholderAmount, strconv.FormatInt(tx.Amount, 10),
	)
	return strings.TrimSpace(r.Replace(template))
}
