// Package matching implements the signal matcher: it scans free text against
// the shared keyword rule table and produces a raw signal score and tag set.
package matching

import (
	"strings"

	"github.com/jonathan/prospect-scout/internal/types"
)

// Scoring constants. These are configuration of the engine, not per-call
// parameters: the base offset plus a saturating weighted sum keeps the score
// monotonically increasing in the number of distinct matched rules while
// never exceeding the scale ceiling.
const (
	baseScore        = 20
	weightMultiplier = 8
	maxScore         = 100
)

// Match scans text against the rule table and returns the ordered set of
// matched phrases, the union of their tags, and the raw score.
//
// Matching is case-insensitive substring containment. Multiple occurrences of
// the same phrase count once: deduplication is by phrase identity, not by
// position. An empty match set yields score 0, which callers must treat as
// "no signal" and skip discovery creation.
func Match(text string, table []types.KeywordRule) types.MatchResult {
	result := types.MatchResult{}
	if strings.TrimSpace(text) == "" || len(table) == 0 {
		return result
	}

	lower := strings.ToLower(text)

	matchedPhrases := make(map[string]bool, len(table))
	seenTags := make(map[string]bool)
	weightSum := 0

	for _, rule := range table {
		phrase := strings.ToLower(rule.Phrase)
		if phrase == "" || matchedPhrases[phrase] {
			continue
		}
		if !strings.Contains(lower, phrase) {
			continue
		}
		matchedPhrases[phrase] = true
		result.MatchedPhrases = append(result.MatchedPhrases, rule.Phrase)
		weightSum += rule.Weight
		for _, tag := range rule.Tags {
			if !seenTags[tag] {
				seenTags[tag] = true
				result.Tags = append(result.Tags, tag)
			}
		}
	}

	if len(result.MatchedPhrases) == 0 {
		return result
	}

	score := baseScore + weightSum*weightMultiplier
	if score > maxScore {
		score = maxScore
	}
	result.Score = score
	return result
}
