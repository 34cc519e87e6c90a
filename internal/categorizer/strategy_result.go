package categorizer

import (
	"fmt"
	"strings"
)

// StrategyResult represents the result of a categorization strategy attempt
type StrategyResult struct {
	Strategy       string
	Classification Classification
	Found          bool
	Error          error
}

// StrategyResults aggregates the attempts made for one transaction, in order.
type StrategyResults struct {
	Results []StrategyResult
}

// Add records one attempt.
func (sr *StrategyResults) Add(r StrategyResult) {
	sr.Results = append(sr.Results, r)
}

// First returns the first successful classification.
func (sr StrategyResults) First() (Classification, bool) {
	for _, r := range sr.Results {
		if r.Found && r.Error == nil {
			return r.Classification, true
		}
	}
	return Classification{}, false
}

// GetErrors returns all errors encountered during strategy execution
func (sr StrategyResults) GetErrors() []error {
	var errs []error
	for _, result := range sr.Results {
		if result.Error != nil {
			errs = append(errs, fmt.Errorf("%s strategy: %w", result.Strategy, result.Error))
		}
	}
	return errs
}

// Summary returns a human-readable summary of all strategy attempts
func (sr StrategyResults) Summary() string {
	parts := make([]string, 0, len(sr.Results))
	for _, result := range sr.Results {
		status := "failed"
		if result.Found {
			status = "success"
		} else if result.Error == nil {
			status = "no_match"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", result.Strategy, status))
	}
	return strings.Join(parts, ", ")
}
