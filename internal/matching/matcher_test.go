package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scout/internal/rules"
	"github.com/jonathan/prospect-scout/internal/types"
)

func testTable() []types.KeywordRule {
	return []types.KeywordRule{
		{Phrase: "ticket scalping", Category: types.CategorySignal, Weight: 5, Tags: []string{"bot-mitigation", "ticketing"}},
		{Phrase: "bot attack", Category: types.CategorySignal, Weight: 5, Tags: []string{"bot-mitigation"}},
		{Phrase: "chargeback", Category: types.CategoryCost, Weight: 3, Tags: []string{"fraud-prevention"}},
		{Phrase: "recaptcha", Category: types.CategoryCompetitor, Weight: 2},
	}
}

func TestMatch_ScenarioTicketScalping(t *testing.T) {
	// Two weight-5 matches: min(100, 20 + 5*8 + 5*8) = 100.
	text := "Company X suffered a major ticket scalping bot attack"
	result := Match(text, testTable())

	require.True(t, result.HasSignal())
	assert.Equal(t, []string{"ticket scalping", "bot attack"}, result.MatchedPhrases)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, []string{"bot-mitigation", "ticketing"}, result.Tags)
}

func TestMatch_SingleHitScore(t *testing.T) {
	result := Match("another chargeback dispute hit the retailer", testTable())
	require.Len(t, result.MatchedPhrases, 1)
	// 20 + 3*8 = 44
	assert.Equal(t, 44, result.Score)
	assert.Equal(t, []string{"fraud-prevention"}, result.Tags)
}

func TestMatch_CaseInsensitive(t *testing.T) {
	result := Match("TICKET SCALPING is rampant", testTable())
	assert.Equal(t, []string{"ticket scalping"}, result.MatchedPhrases)
}

func TestMatch_RepeatedPhraseCountsOnce(t *testing.T) {
	once := Match("bot attack reported", testTable())
	thrice := Match("bot attack after bot attack after bot attack", testTable())
	assert.Equal(t, once.Score, thrice.Score)
	assert.Equal(t, once.MatchedPhrases, thrice.MatchedPhrases)
}

func TestMatch_EmptyTextOrTable(t *testing.T) {
	assert.False(t, Match("", testTable()).HasSignal())
	assert.False(t, Match("   \n\t ", testTable()).HasSignal())
	assert.False(t, Match("bot attack", nil).HasSignal())
	assert.Equal(t, 0, Match("nothing relevant here", testTable()).Score)
}

func TestMatch_Monotonicity(t *testing.T) {
	table := rules.Default()
	base := "the retailer reported a fake account wave"
	baseResult := Match(base, table)

	// Appending one more matching keyword never decreases the score, and both
	// stay within [0,100].
	grown := Match(base+" alongside heavy scraper traffic", table)
	assert.GreaterOrEqual(t, grown.Score, baseResult.Score)
	assert.LessOrEqual(t, grown.Score, 100)
	assert.GreaterOrEqual(t, baseResult.Score, 0)
}

func TestMatch_Saturates(t *testing.T) {
	table := rules.Default()
	var sb string
	for _, r := range table {
		sb += r.Phrase + " "
	}
	result := Match(sb, table)
	assert.Equal(t, 100, result.Score)
	assert.Len(t, result.MatchedPhrases, len(table))
}
