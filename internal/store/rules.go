package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fjacquet/receipt-ledger/internal/logging"
	"fjacquet/receipt-ledger/internal/models"
	"fjacquet/receipt-ledger/internal/textutils"
)

type rulesDocument struct {
	Rules []models.LearningRule `yaml:"rules"`
}

// RuleStore keeps learning rules in insertion order in a YAML file.
type RuleStore struct {
	path   string
	now    func() time.Time
	logger logging.Logger
}

// NewRuleStore creates a store backed by path.
func NewRuleStore(path string, logger logging.Logger) *RuleStore {
	return &RuleStore{path: path, now: time.Now, logger: withComponent(logger, "rule_store")}
}

// Path returns the backing file.
func (s *RuleStore) Path() string {
	return s.path
}

// LoadRules reads all rules. Both a "rules:" document and a bare list are
// accepted. Amount conditions written with the sheet labels (以上, 未満) are
// converted.
func (s *RuleStore) LoadRules() ([]models.LearningRule, error) {
	var doc rulesDocument
	found, err := readYAML(s.path, &doc)
	if err != nil {
		var list []models.LearningRule
		if _, listErr := readYAML(s.path, &list); listErr != nil {
			return nil, err
		}
		doc.Rules = list
		found = true
	}
	if !found {
		s.logger.Warn("Learning rules file not found", logging.F(logging.FieldFile, s.path))
		return []models.LearningRule{}, nil
	}

	rules := make([]models.LearningRule, 0, len(doc.Rules))
	for i, r := range doc.Rules {
		cond, err := models.ParseAmountCondition(string(r.AmountCondition))
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, r.ID, err)
		}
		r.AmountCondition = cond
		rules = append(rules, r)
	}

	s.logger.Debug("Loaded learning rules",
		logging.F(logging.FieldFile, s.path),
		logging.F(logging.FieldCount, len(rules)))
	return rules, nil
}

// SaveRules replaces the stored rules.
func (s *RuleStore) SaveRules(rules []models.LearningRule) error {
	if rules == nil {
		rules = []models.LearningRule{}
	}
	return writeYAML(s.path, rulesDocument{Rules: rules})
}

// AddRules appends rules after assigning missing IDs, creation times and the
// canonical store key. It returns the rules as stored.
func (s *RuleStore) AddRules(newRules ...models.LearningRule) ([]models.LearningRule, error) {
	rules, err := s.LoadRules()
	if err != nil {
		return nil, err
	}

	added := make([]models.LearningRule, 0, len(newRules))
	for _, r := range newRules {
		if strings.TrimSpace(r.AccountTitle) == "" {
			return nil, fmt.Errorf("rule for %q has no account title", r.RawStoreNamePattern)
		}
		if r.ID == "" {
			r.ID = uuid.NewString()
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = s.now()
		}
		if r.AmountCondition == "" {
			r.AmountCondition = models.AmountConditionNone
		}
		r.NormalizedStoreNamePattern = textutils.CanonicalStoreName(r.RawStoreNamePattern)
		added = append(added, r)
	}

	if err := s.SaveRules(append(rules, added...)); err != nil {
		return nil, err
	}
	s.logger.Info("Learning rules added", logging.F(logging.FieldCount, len(added)))
	return added, nil
}

// RemoveBySourceIDs deletes the rules learned from the given transactions
// and returns how many were removed.
func (s *RuleStore) RemoveBySourceIDs(transactionIDs []string) (int, error) {
	rules, err := s.LoadRules()
	if err != nil {
		return 0, err
	}

	ids := idSet(transactionIDs)
	kept := rules[:0]
	for _, r := range rules {
		if r.SourceTransactionID != "" && ids[r.SourceTransactionID] {
			continue
		}
		kept = append(kept, r)
	}
	removed := len(rules) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := s.SaveRules(kept); err != nil {
		return 0, err
	}
	s.logger.Info("Learning rules removed", logging.F(logging.FieldCount, removed))
	return removed, nil
}
