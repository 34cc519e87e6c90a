package categorizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrategyResults(t *testing.T) {
	var results StrategyResults
	results.Add(StrategyResult{Strategy: "Rule"})
	results.Add(StrategyResult{Strategy: "AI", Error: errors.New("boom")})

	_, ok := results.First()
	assert.False(t, ok)
	assert.Equal(t, "Rule:no_match, AI:failed", results.Summary())
	assert.Len(t, results.GetErrors(), 1)
	assert.Contains(t, results.GetErrors()[0].Error(), "AI strategy: boom")

	results.Add(StrategyResult{Strategy: "Late", Found: true, Classification: Classification{AccountTitle: "雑費"}})
	c, ok := results.First()
	assert.True(t, ok)
	assert.Equal(t, "雑費", c.AccountTitle)
}
