package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/scoring"
	"github.com/jonathan/prospect-scout/internal/sources"
	"github.com/jonathan/prospect-scout/internal/types"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu          sync.Mutex
	discoveries map[string]*types.Discovery // keyed by domain|sourceRef
	prospects   map[string]*types.Prospect  // keyed by teamID|domain
	runs        map[uuid.UUID]*types.RunSummary

	// failProspectCreates makes the next N CreateProspect calls fail.
	failProspectCreates int
}

func newMemStore() *memStore {
	return &memStore{
		discoveries: make(map[string]*types.Discovery),
		prospects:   make(map[string]*types.Prospect),
		runs:        make(map[uuid.UUID]*types.RunSummary),
	}
}

func (s *memStore) InsertDiscovery(_ context.Context, d *types.Discovery) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := d.CompanyDomain + "|" + d.SourceRef
	if _, ok := s.discoveries[key]; ok {
		return false, nil
	}
	d.ID = uuid.New()
	cp := *d
	s.discoveries[key] = &cp
	return true, nil
}

func (s *memStore) HasDiscoveryForDomain(_ context.Context, domain string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.discoveries {
		if d.CompanyDomain == domain {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpdateDiscoveryStatus(_ context.Context, id uuid.UUID, status types.DiscoveryStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.discoveries {
		if d.ID == id {
			d.Status = status
			return nil
		}
	}
	return errors.New("discovery not found")
}

func (s *memStore) CreateProspect(_ context.Context, p *types.Prospect) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failProspectCreates > 0 {
		s.failProspectCreates--
		return false, errors.New("connection reset")
	}
	key := p.TeamID + "|" + p.CompanyDomain
	if existing, ok := s.prospects[key]; ok {
		*p = *existing
		return false, nil
	}
	p.ID = uuid.New()
	cp := *p
	s.prospects[key] = &cp
	return true, nil
}

func (s *memStore) ListProspects(_ context.Context, filters db.ProspectFilters) ([]types.Prospect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Prospect
	for _, p := range s.prospects {
		if filters.TeamID != "" && p.TeamID != filters.TeamID {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *memStore) UpdateProspectConnection(_ context.Context, id uuid.UUID, conns types.CompanyConnections, priority float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.prospects {
		if p.ID == id {
			p.ConnectionScore = conns.ConnectionScore
			p.HasWarmIntro = conns.HasWarmIntro
			p.PriorityScore = priority
			return nil
		}
	}
	return errors.New("prospect not found")
}

func (s *memStore) CreateRun(_ context.Context, source string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.runs[id] = &types.RunSummary{RunID: id, Source: source}
	return id, nil
}

func (s *memStore) CompleteRun(_ context.Context, summary *types.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[summary.RunID] = summary
	return nil
}

func (s *memStore) discoveryByDomain(domain string) *types.Discovery {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.discoveries {
		if d.CompanyDomain == domain {
			return d
		}
	}
	return nil
}

// fakeGraph serves canned records for any search term.
type fakeGraph struct {
	records []types.ConnectionRecord
	err     error
	calls   int
}

func (g *fakeGraph) QueryConnections(_ context.Context, _ string, _ int) ([]types.ConnectionRecord, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.records, nil
}

func testRules() []types.KeywordRule {
	return []types.KeywordRule{
		{Phrase: "ticket scalping", Category: types.CategorySignal, Weight: 5, Tags: []string{"ticketing"}},
		{Phrase: "bot attack", Category: types.CategorySignal, Weight: 5, Tags: []string{"bot-mitigation"}},
		{Phrase: "chargeback", Category: types.CategoryCost, Weight: 3},
	}
}

func newTestEngine(store Store, g *fakeGraph) *Engine {
	opts := Options{Rules: testRules(), TeamID: "team-1"}
	if g != nil {
		opts.Graph = g
	}
	return New(store, opts)
}

func TestScan_AutoPromotesHighConfidenceHit(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, nil)

	src := &sources.ListSource{SourceName: "news-batch", SourceKind: types.SourceKindNews, Items: []types.CandidateText{
		{SourceRef: "https://news.example/a", RawText: "companyx.com hit by ticket scalping and a bot attack last week"},
	}}

	summary, err := e.Scan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemsScanned)
	assert.Equal(t, 1, summary.DiscoveriesCreated)
	assert.Equal(t, 1, summary.AutoPromoted)
	assert.Equal(t, 0, summary.DuplicatesSkipped)
	assert.Equal(t, 0, summary.Errors)
	require.NotNil(t, summary.CompletedAt)

	d := store.discoveryByDomain("companyx.com")
	require.NotNil(t, d)
	assert.Equal(t, types.DiscoveryStatusPromoted, d.Status)
	assert.Equal(t, 100, d.ConfidenceScore)

	p := store.prospects["team-1|companyx.com"]
	require.NotNil(t, p)
	assert.Equal(t, 100, p.FitScore)
	assert.Equal(t, types.ProspectStatusActive, p.Status)
	// fit-only priority: 100*0.4 + 0*60
	assert.InDelta(t, 40.0, p.PriorityScore, 1e-9)
}

func TestScan_RescanIsIdempotent(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, nil)

	src := &sources.ListSource{SourceName: "news-batch", Items: []types.CandidateText{
		{SourceRef: "https://news.example/a", RawText: "companyx.com hit by ticket scalping and a bot attack"},
	}}

	_, err := e.Scan(context.Background(), src)
	require.NoError(t, err)

	summary, err := e.Scan(context.Background(), src)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ItemsScanned)
	assert.Equal(t, 0, summary.DiscoveriesCreated)
	assert.Equal(t, 1, summary.DuplicatesSkipped)
	assert.Equal(t, 0, summary.AutoPromoted)
	assert.Len(t, store.discoveries, 1)
	assert.Len(t, store.prospects, 1)
}

func TestScan_BelowThresholdStaysNew(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, nil)

	// One weight-3 hit: 20 + 3*8 = 44, below the promotion threshold.
	src := &sources.ListSource{Items: []types.CandidateText{
		{SourceRef: "https://forum.example/t/1", RawText: "retailco.com is drowning in chargeback volume"},
	}}

	summary, err := e.Scan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.DiscoveriesCreated)
	assert.Equal(t, 0, summary.AutoPromoted)

	d := store.discoveryByDomain("retailco.com")
	require.NotNil(t, d)
	assert.Equal(t, types.DiscoveryStatusNew, d.Status)
	assert.Equal(t, 44, d.ConfidenceScore)
	assert.Empty(t, store.prospects)
}

func TestScan_ProspectFailureLeavesDiscoveryUnpromoted(t *testing.T) {
	store := newMemStore()
	store.failProspectCreates = 1
	e := newTestEngine(store, nil)

	src := &sources.ListSource{Items: []types.CandidateText{
		{SourceRef: "https://news.example/a", RawText: "companyx.com hit by ticket scalping and a bot attack"},
	}}

	summary, err := e.Scan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.AutoPromoted)

	// The discovery stays out of the terminal promoted state when no
	// prospect was written, so manual promotion remains possible.
	d := store.discoveryByDomain("companyx.com")
	require.NotNil(t, d)
	assert.NotEqual(t, types.DiscoveryStatusPromoted, d.Status)
	assert.Empty(t, store.prospects)
}

func TestScan_ZeroThresholdPromotesEverySignal(t *testing.T) {
	store := newMemStore()
	e := New(store, Options{
		Rules:  testRules(),
		TeamID: "team-1",
		Policy: &scoring.Policy{AutoPromoteThreshold: 0},
	})

	// One weight-3 hit scores 44; an explicit zero threshold must not be
	// silently replaced by the default.
	src := &sources.ListSource{Items: []types.CandidateText{
		{SourceRef: "https://forum.example/t/1", RawText: "retailco.com is drowning in chargeback volume"},
	}}

	summary, err := e.Scan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.AutoPromoted)
	require.NotNil(t, store.prospects["team-1|retailco.com"])
}

func TestScan_KnownDomainFromNewSourceIsDuplicate(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, nil)

	first := &sources.ListSource{Items: []types.CandidateText{
		{SourceRef: "https://news.example/a", RawText: "companyx.com hit by ticket scalping and a bot attack"},
	}}
	_, err := e.Scan(context.Background(), first)
	require.NoError(t, err)

	second := &sources.ListSource{Items: []types.CandidateText{
		{SourceRef: "https://forum.example/t/2", RawText: "more ticket scalping and bot attack talk about companyx.com"},
	}}
	summary, err := e.Scan(context.Background(), second)
	require.NoError(t, err)

	// A new row is recorded for audit, but flagged duplicate and never
	// promoted a second time.
	assert.Equal(t, 1, summary.DiscoveriesCreated)
	assert.Equal(t, 1, summary.DuplicatesSkipped)
	assert.Equal(t, 0, summary.AutoPromoted)

	d := store.discoveries["companyx.com|https://forum.example/t/2"]
	require.NotNil(t, d)
	assert.Equal(t, types.DiscoveryStatusDuplicate, d.Status)
	assert.Len(t, store.prospects, 1)
}

func TestScan_NoSignalOrNoDomainIsDropped(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, nil)

	src := &sources.ListSource{Items: []types.CandidateText{
		{SourceRef: "https://news.example/b", RawText: "companyx.com shipped a new feature"},   // no signal
		{SourceRef: "https://news.example/c", RawText: "someone complained about bot attack"}, // no domain
	}}

	summary, err := e.Scan(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsScanned)
	assert.Equal(t, 0, summary.DiscoveriesCreated)
	assert.Equal(t, 0, summary.Errors)
	assert.Empty(t, store.discoveries)
}

func TestScan_SourceFailureRecordsErroredRun(t *testing.T) {
	store := newMemStore()
	e := newTestEngine(store, nil)

	src := &failingSource{}
	summary, err := e.Scan(context.Background(), src)
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 0, summary.ItemsScanned)
}

type failingSource struct{}

func (s *failingSource) Name() string           { return "broken" }
func (s *failingSource) Kind() types.SourceKind { return types.SourceKindNews }
func (s *failingSource) Fetch(context.Context) ([]types.CandidateText, error) {
	return nil, errors.New("upstream down")
}

func TestScoreConnections_UpdatesPriority(t *testing.T) {
	store := newMemStore()
	g := &fakeGraph{records: []types.ConnectionRecord{
		{ConnectorName: "Dana", TargetPerson: "Pat Lee", Strength: 0.8, Origin: types.OriginCoEmployment, Detail: "Acme Corp"},
		{ConnectorName: "Sam", TargetPerson: "Jo Marsh", Strength: 0.3, Origin: types.OriginCorrespondence},
	}}
	e := newTestEngine(store, g)

	p := &types.Prospect{TeamID: "team-1", CompanyDomain: "companyx.com", FitScore: 100, Status: types.ProspectStatusActive}
	_, err := store.CreateProspect(context.Background(), p)
	require.NoError(t, err)

	scored, failed, err := e.ScoreConnections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, scored)
	assert.Equal(t, 0, failed)
	assert.Equal(t, 1, g.calls)

	updated := store.prospects["team-1|companyx.com"]
	assert.InDelta(t, 0.49, updated.ConnectionScore, 1e-9)
	assert.True(t, updated.HasWarmIntro)
	// 100*0.4 + 0.49*100*0.6 = 69.4
	assert.InDelta(t, 69.4, updated.PriorityScore, 1e-9)
}

func TestScoreConnections_GraphFailureIsCountedAndSkipped(t *testing.T) {
	store := newMemStore()
	g := &fakeGraph{err: errors.New("backend unavailable")}
	e := newTestEngine(store, g)

	p := &types.Prospect{TeamID: "team-1", CompanyDomain: "companyx.com", FitScore: 80, Status: types.ProspectStatusActive}
	_, err := store.CreateProspect(context.Background(), p)
	require.NoError(t, err)

	scored, failed, err := e.ScoreConnections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, scored)
	assert.Equal(t, 1, failed)
}

func TestScoreConnections_NoBackendIsNoOp(t *testing.T) {
	e := newTestEngine(newMemStore(), nil)
	scored, failed, err := e.ScoreConnections(context.Background())
	require.NoError(t, err)
	assert.Zero(t, scored)
	assert.Zero(t, failed)
}

func TestExcerpt_NeverSplitsRune(t *testing.T) {
	// A two-byte rune straddling the byte limit must be dropped whole, not
	// cut in half into invalid UTF-8 that the database would reject.
	text := strings.Repeat("a", triggerExcerptLen-1) + "é and more"
	got := excerpt(text)

	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), triggerExcerptLen)
	assert.Equal(t, strings.Repeat("a", triggerExcerptLen-1), got)

	// Short and exact-length inputs pass through untouched.
	assert.Equal(t, "short", excerpt("short"))
	exact := strings.Repeat("b", triggerExcerptLen)
	assert.Equal(t, exact, excerpt(exact))
}
