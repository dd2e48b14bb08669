package scoring

import (
	"sort"
	"time"

	"github.com/jonathan/prospect-scout/internal/types"
)

// Weights for the priority fusion. Both inputs are brought to the 0-100
// scale before weighting: fitScore is already 0-100, connectionScore is
// stored in [0,1] and converted here, at exactly one boundary.
const (
	fitWeight        = 0.4
	connectionWeight = 0.6
)

// Priority fuses keyword-fit confidence and relationship strength into one
// ordering value on the 0-100 scale. It is a pure function of its inputs.
func Priority(fitScore int, connectionScore float64) float64 {
	if fitScore < 0 {
		fitScore = 0
	}
	if fitScore > 100 {
		fitScore = 100
	}
	if connectionScore < 0 {
		connectionScore = 0
	}
	if connectionScore > 1 {
		connectionScore = 1
	}
	return float64(fitScore)*fitWeight + connectionScore*100*connectionWeight
}

// Rank sorts prospects by priority score descending, in place. Ties are
// broken by the most recent review or creation time, so the ordering is
// stable and deterministic for fixed inputs.
func Rank(prospects []types.Prospect) {
	sort.SliceStable(prospects, func(i, j int) bool {
		if prospects[i].PriorityScore != prospects[j].PriorityScore {
			return prospects[i].PriorityScore > prospects[j].PriorityScore
		}
		return recency(&prospects[i]).After(recency(&prospects[j]))
	})
}

func recency(p *types.Prospect) time.Time {
	if p.ReviewedAt != nil {
		return *p.ReviewedAt
	}
	return p.CreatedAt
}
