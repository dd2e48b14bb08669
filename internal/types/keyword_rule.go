// Package types provides type definitions for structured data used throughout the prospect-scout system.
package types

// RuleCategory classifies why a keyword phrase is interesting.
type RuleCategory string

const (
	// CategorySignal marks phrases that indicate a buying signal (e.g. an attack, an outage).
	CategorySignal RuleCategory = "signal"
	// CategoryRegulatory marks phrases tied to compliance or regulatory pressure.
	CategoryRegulatory RuleCategory = "regulatory"
	// CategoryCost marks phrases about cost or loss events.
	CategoryCost RuleCategory = "cost"
	// CategoryCompetitor marks mentions of competing vendors.
	CategoryCompetitor RuleCategory = "competitor"
)

// KeywordRule is one row of the shared keyword table. Rules are immutable
// reference data: loaded once per scoring run and matched case-insensitively
// as substring containment.
type KeywordRule struct {
	Phrase   string       `json:"phrase"`
	Category RuleCategory `json:"category"`
	Weight   int          `json:"weight"` // 1..5
	Tags     []string     `json:"tags,omitempty"`
}

// MatchResult is the output of scanning one text blob against a rule table.
type MatchResult struct {
	// MatchedPhrases preserves rule-table order and contains each phrase at most once.
	MatchedPhrases []string `json:"matched_phrases"`
	// Tags is the union of tags across matched rules.
	Tags []string `json:"tags"`
	// Score is the saturating raw signal score in [0,100]. Zero means no signal.
	Score int `json:"score"`
}

// HasSignal reports whether the text matched anything at all. Callers must
// not create a Discovery for a result without signal.
func (m MatchResult) HasSignal() bool {
	return len(m.MatchedPhrases) > 0 && m.Score > 0
}
