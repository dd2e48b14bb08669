package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/prospect-scout/internal/types"
)

func TestPolicy_ShouldAutoPromote(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name    string
		result  types.MatchResult
		promote bool
	}{
		{"above threshold", types.MatchResult{MatchedPhrases: []string{"bot attack"}, Score: 100}, true},
		{"exactly at threshold", types.MatchResult{MatchedPhrases: []string{"bot attack"}, Score: 70}, true},
		{"below threshold", types.MatchResult{MatchedPhrases: []string{"chargeback"}, Score: 55}, false},
		{"no signal never promotes", types.MatchResult{Score: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.promote, p.ShouldAutoPromote(tt.result))
		})
	}
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.NoError(t, Policy{AutoPromoteThreshold: 0}.Validate())
	assert.NoError(t, Policy{AutoPromoteThreshold: 100}.Validate())
	assert.Error(t, Policy{AutoPromoteThreshold: -1}.Validate())
	assert.Error(t, Policy{AutoPromoteThreshold: 101}.Validate())
}

func TestPriority(t *testing.T) {
	// fit 100, connection 0.485: 100*0.4 + 48.5*0.6 = 69.1
	assert.InDelta(t, 69.1, Priority(100, 0.485), 1e-9)

	// Pure fit and pure connection extremes.
	assert.InDelta(t, 40.0, Priority(100, 0), 1e-9)
	assert.InDelta(t, 60.0, Priority(0, 1.0), 1e-9)
	assert.InDelta(t, 0.0, Priority(0, 0), 1e-9)
	assert.InDelta(t, 100.0, Priority(100, 1.0), 1e-9)
}

func TestPriority_Deterministic(t *testing.T) {
	first := Priority(73, 0.62)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Priority(73, 0.62))
	}
}

func TestPriority_ClampsOutOfRangeInputs(t *testing.T) {
	assert.InDelta(t, Priority(100, 1.0), Priority(250, 3.5), 1e-9)
	assert.InDelta(t, Priority(0, 0), Priority(-5, -0.3), 1e-9)
}

func TestRank(t *testing.T) {
	now := time.Now()
	older := now.Add(-48 * time.Hour)

	prospects := []types.Prospect{
		{CompanyDomain: "low.com", PriorityScore: 20, CreatedAt: now},
		{CompanyDomain: "high.com", PriorityScore: 90, CreatedAt: older},
		{CompanyDomain: "mid.com", PriorityScore: 55, CreatedAt: now},
	}

	Rank(prospects)

	assert.Equal(t, "high.com", prospects[0].CompanyDomain)
	assert.Equal(t, "mid.com", prospects[1].CompanyDomain)
	assert.Equal(t, "low.com", prospects[2].CompanyDomain)
}

func TestRank_TieBrokenByRecency(t *testing.T) {
	now := time.Now()
	older := now.Add(-48 * time.Hour)

	prospects := []types.Prospect{
		{CompanyDomain: "older.com", PriorityScore: 50, CreatedAt: older},
		{CompanyDomain: "newer.com", PriorityScore: 50, CreatedAt: now},
	}

	Rank(prospects)
	assert.Equal(t, "newer.com", prospects[0].CompanyDomain)

	// A reviewed_at timestamp wins over created_at for recency.
	reviewed := now.Add(time.Hour)
	prospects[1].ReviewedAt = &reviewed // older.com
	Rank(prospects)
	assert.Equal(t, "older.com", prospects[0].CompanyDomain)
}
