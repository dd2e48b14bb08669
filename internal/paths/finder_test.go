package paths

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scout/internal/types"
)

func TestBuildPaths_TwoConnectorsTwoPeople(t *testing.T) {
	// Scenario: target.com with a 0.8 co-employment edge and a 0.3
	// correspondence edge through two different connectors.
	records := []types.ConnectionRecord{
		{ConnectorName: "Dana", TargetPerson: "Pat Lee", TargetTitle: "VP Engineering", Strength: 0.8, Origin: types.OriginCoEmployment, Detail: "Acme Corp (2019-2021)"},
		{ConnectorName: "Sam", TargetPerson: "Jo Marsh", Strength: 0.3, Origin: types.OriginCorrespondence},
	}

	built := BuildPaths(records)
	require.Len(t, built, 2)

	assert.Equal(t, 0.8, built[0].Strength)
	assert.Equal(t, "Pat Lee", built[0].TargetPerson)
	assert.Equal(t, "Dana", built[0].Connector)
	assert.Equal(t, "worked together at Acme Corp (2019-2021)", built[0].SharedContext)

	assert.Equal(t, 0.3, built[1].Strength)
	assert.Equal(t, "direct correspondence", built[1].SharedContext)
}

func TestBuildPaths_BestConnectorWinsAndContextsConcatenate(t *testing.T) {
	records := []types.ConnectionRecord{
		// Dana has two records for the same person: max wins, contexts join.
		{ConnectorName: "Dana", TargetPerson: "Pat Lee", Strength: 0.6, Origin: types.OriginCoEmployment, Detail: "Acme Corp (2018-2020)"},
		{ConnectorName: "Dana", TargetPerson: "Pat Lee", Strength: 0.4, Origin: types.OriginCoEducation, Detail: "Stanford"},
		// Weaker connector for the same person loses.
		{ConnectorName: "Sam", TargetPerson: "Pat Lee", Strength: 0.5, Origin: types.OriginCalendar, Detail: "the fraud summit"},
	}

	built := BuildPaths(records)
	require.Len(t, built, 1)

	p := built[0]
	assert.Equal(t, "Dana", p.Connector)
	assert.Equal(t, 0.6, p.Strength) // max of 0.6 and 0.4, not the average
	assert.Contains(t, p.SharedContext, "worked together at Acme Corp (2018-2020)")
	assert.Contains(t, p.SharedContext, "attended Stanford together")
	assert.NotContains(t, p.SharedContext, "fraud summit")
}

func TestBuildPaths_SkipsMalformedRecords(t *testing.T) {
	records := []types.ConnectionRecord{
		{ConnectorName: "", TargetPerson: "Pat Lee", Strength: 0.9, Origin: types.OriginCoEmployment},
		{ConnectorName: "Dana", TargetPerson: "", Strength: 0.9, Origin: types.OriginCoEmployment},
		{ConnectorName: "Dana", TargetPerson: "Pat Lee", Strength: 1.5, Origin: types.OriginCoEmployment},
		{ConnectorName: "Dana", TargetPerson: "Pat Lee", Strength: -0.2, Origin: types.OriginCoEmployment},
	}
	assert.Empty(t, BuildPaths(records))
	assert.Empty(t, BuildPaths(nil))
}

func TestAggregate_Scenario(t *testing.T) {
	// Paths of strength 0.8 and 0.3: avg 0.55 ->
	// round(0.55*100*0.7 + min(2*5, 30)) = round(38.5 + 10) = 49 -> 0.49.
	built := []types.ConnectionPath{
		{TargetPerson: "Pat Lee", Connector: "Dana", Strength: 0.8},
		{TargetPerson: "Jo Marsh", Connector: "Sam", Strength: 0.3},
	}

	agg := Aggregate("target.com", built)
	assert.Equal(t, "target.com", agg.CompanyDomain)
	assert.InDelta(t, 0.49, agg.ConnectionScore, 1e-9)
	assert.True(t, agg.HasWarmIntro) // 0.8 >= 0.7
}

func TestAggregate_WarmIntroUsesMaxNotAverage(t *testing.T) {
	// One 0.9 path plus nine 0.05 paths: average is low but the warm-intro
	// predicate must still fire off the single strongest path.
	built := []types.ConnectionPath{{TargetPerson: "p0", Connector: "c", Strength: 0.9}}
	for i := 1; i < 10; i++ {
		built = append(built, types.ConnectionPath{TargetPerson: "p" + string(rune('0'+i)), Connector: "c", Strength: 0.05})
	}

	agg := Aggregate("target.com", built)
	assert.True(t, agg.HasWarmIntro)
	assert.Less(t, agg.ConnectionScore, 0.6)
}

func TestAggregate_BreadthIsCapped(t *testing.T) {
	var built []types.ConnectionPath
	for i := 0; i < 20; i++ {
		built = append(built, types.ConnectionPath{TargetPerson: "p", Connector: "c", Strength: 0.1})
	}

	// avg 0.1 -> 7 points of depth, breadth capped at 30: 0.37 total.
	agg := Aggregate("target.com", built)
	assert.InDelta(t, 0.37, agg.ConnectionScore, 1e-9)
	assert.False(t, agg.HasWarmIntro)
}

func TestAggregate_NoPaths(t *testing.T) {
	agg := Aggregate("target.com", nil)
	assert.Equal(t, 0.0, agg.ConnectionScore)
	assert.False(t, agg.HasWarmIntro)
	assert.Empty(t, agg.Paths)
}

func TestSharedContext(t *testing.T) {
	tests := []struct {
		name     string
		rec      types.ConnectionRecord
		expected string
	}{
		{"co-employment with detail", types.ConnectionRecord{Origin: types.OriginCoEmployment, Detail: "Acme (2018-2020)"}, "worked together at Acme (2018-2020)"},
		{"co-employment without detail", types.ConnectionRecord{Origin: types.OriginCoEmployment}, "worked together"},
		{"co-education", types.ConnectionRecord{Origin: types.OriginCoEducation, Detail: "MIT"}, "attended MIT together"},
		{"correspondence", types.ConnectionRecord{Origin: types.OriginCorrespondence}, "direct correspondence"},
		{"calendar with detail", types.ConnectionRecord{Origin: types.OriginCalendar, Detail: "RSA Conference"}, "attended RSA Conference together"},
		{"calendar without detail", types.ConnectionRecord{Origin: types.OriginCalendar}, "met through shared meetings"},
		{"unknown origin falls back to detail", types.ConnectionRecord{Origin: "psychic", Detail: "vibes"}, "vibes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SharedContext(tt.rec))
		})
	}
}

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		name     string
		domain   string
		company  string
		expected string
	}{
		{"strips inc", "companyx.com", "CompanyX, Inc.", "companyx"},
		{"strips stacked suffixes", "acme.com", "Acme Holdings LLC", "acme"},
		{"compound override", "livenation.com", "Live Nation", "livenation"},
		{"falls back to domain stem", "retailco.shop", "", "retailco"},
		{"plain name passes through", "zephyr.io", "Zephyr", "zephyr"},
		{"empty everything", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SearchTerm(tt.domain, tt.company))
		})
	}
}
