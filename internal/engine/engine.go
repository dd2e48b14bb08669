// Package engine orchestrates scoring runs: it pulls candidate texts from
// signal sources, matches them against the keyword table, resolves company
// domains, records discoveries, and auto-promotes high-confidence hits.
package engine

import (
	"context"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/prospect-scout/internal/db"
	"github.com/jonathan/prospect-scout/internal/graph"
	"github.com/jonathan/prospect-scout/internal/matching"
	"github.com/jonathan/prospect-scout/internal/paths"
	"github.com/jonathan/prospect-scout/internal/resolve"
	"github.com/jonathan/prospect-scout/internal/scoring"
	"github.com/jonathan/prospect-scout/internal/sources"
	"github.com/jonathan/prospect-scout/internal/types"
)

// Store is the persistence capability the engine depends on. *db.DB
// implements it; tests substitute an in-memory fake.
type Store interface {
	InsertDiscovery(ctx context.Context, d *types.Discovery) (created bool, err error)
	HasDiscoveryForDomain(ctx context.Context, companyDomain string) (bool, error)
	UpdateDiscoveryStatus(ctx context.Context, id uuid.UUID, status types.DiscoveryStatus) error
	CreateProspect(ctx context.Context, p *types.Prospect) (created bool, err error)
	ListProspects(ctx context.Context, filters db.ProspectFilters) ([]types.Prospect, error)
	UpdateProspectConnection(ctx context.Context, id uuid.UUID, conns types.CompanyConnections, priorityScore float64) error
	CreateRun(ctx context.Context, source string) (uuid.UUID, error)
	CompleteRun(ctx context.Context, summary *types.RunSummary) error
}

// DefaultFanOut bounds how many candidate texts are processed concurrently.
const DefaultFanOut = 4

// triggerExcerptLen bounds how much raw text is kept on a discovery record.
const triggerExcerptLen = 500

// Options configures an Engine.
type Options struct {
	Rules    []types.KeywordRule
	Resolver *resolve.Resolver
	Graph    graph.Backend
	// Policy is the auto-promotion policy. Nil means scoring.DefaultPolicy();
	// a pointer keeps an explicit threshold of 0 distinguishable from unset.
	Policy *scoring.Policy
	TeamID string
	// FanOut is the concurrent worker count for a scan. Zero means DefaultFanOut.
	FanOut  int
	Verbose bool
}

// Engine runs scans and connection-scoring passes.
type Engine struct {
	store    Store
	rules    []types.KeywordRule
	resolver *resolve.Resolver
	graph    graph.Backend
	policy   scoring.Policy
	teamID   string
	fanOut   int
	verbose  bool
}

// New builds an Engine. The resolver defaults to resolve.New(nil) and the
// policy to scoring.DefaultPolicy() when unset.
func New(store Store, opts Options) *Engine {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = resolve.New(nil)
	}
	policy := scoring.DefaultPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}
	fanOut := opts.FanOut
	if fanOut <= 0 {
		fanOut = DefaultFanOut
	}
	return &Engine{
		store:    store,
		rules:    opts.Rules,
		resolver: resolver,
		graph:    opts.Graph,
		policy:   policy,
		teamID:   opts.TeamID,
		fanOut:   fanOut,
		verbose:  opts.Verbose,
	}
}

// Scan processes every candidate text from one source and returns the run
// summary. Per-item failures are counted and never abort the run; the
// summary always reflects whatever work completed.
func (e *Engine) Scan(ctx context.Context, source sources.TextSource) (*types.RunSummary, error) {
	runID, err := e.store.CreateRun(ctx, source.Name())
	if err != nil {
		return nil, err
	}

	summary := &types.RunSummary{
		RunID:     runID,
		Source:    source.Name(),
		StartedAt: time.Now().UTC(),
	}

	items, err := source.Fetch(ctx)
	if err != nil {
		// The source itself failed; record an empty errored run.
		summary.Errors = 1
		e.completeRun(ctx, summary)
		return summary, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.fanOut)

	for _, item := range items {
		item := item
		g.Go(func() error {
			outcome, err := e.processItem(gctx, source.Kind(), item)
			mu.Lock()
			defer mu.Unlock()
			summary.ItemsScanned++
			if err != nil {
				summary.Errors++
				if e.verbose {
					log.Printf("[SCAN] item %s failed: %v", item.SourceRef, err)
				}
				return nil
			}
			summary.DiscoveriesCreated += outcome.created
			summary.DuplicatesSkipped += outcome.duplicates
			summary.AutoPromoted += outcome.autoPromoted
			return nil
		})
	}
	_ = g.Wait()

	e.completeRun(ctx, summary)
	return summary, nil
}

type itemOutcome struct {
	created      int
	duplicates   int
	autoPromoted int
}

// processItem scores one candidate text end to end.
func (e *Engine) processItem(ctx context.Context, kind types.SourceKind, item types.CandidateText) (itemOutcome, error) {
	var out itemOutcome

	match := matching.Match(item.RawText, e.rules)
	if !match.HasSignal() {
		return out, nil
	}

	domain := e.resolver.Primary(item.RawText)
	if domain == "" {
		// A signal with no attributable company is dropped, not an error.
		return out, nil
	}

	seen, err := e.store.HasDiscoveryForDomain(ctx, domain)
	if err != nil {
		return out, err
	}

	status := types.DiscoveryStatusNew
	if seen {
		// Repeat sighting of a known company through a different source.
		status = types.DiscoveryStatusDuplicate
	}

	d := &types.Discovery{
		SourceKind:      kind,
		SourceRef:       item.SourceRef,
		CompanyDomain:   domain,
		TriggerText:     excerpt(item.RawText),
		MatchedKeywords: match.MatchedPhrases,
		Tags:            match.Tags,
		ConfidenceScore: match.Score,
		Status:          status,
	}

	created, err := e.store.InsertDiscovery(ctx, d)
	if err != nil {
		return out, err
	}
	if !created {
		// Exact (domain, source_ref) repeat: no new row.
		out.duplicates++
		return out, nil
	}
	out.created++
	if status == types.DiscoveryStatusDuplicate {
		out.duplicates++
		return out, nil
	}

	if e.policy.ShouldAutoPromote(match) {
		if err := e.promote(ctx, d); err != nil {
			return out, err
		}
		out.autoPromoted++
	}
	return out, nil
}

// promote materializes the prospect and then flips the discovery status.
// The prospect is created first: a failed insert leaves the discovery in a
// non-terminal state instead of stranding a promoted discovery with no
// prospect behind it.
func (e *Engine) promote(ctx context.Context, d *types.Discovery) error {
	p := &types.Prospect{
		TeamID:        e.teamID,
		CompanyDomain: d.CompanyDomain,
		FitScore:      d.ConfidenceScore,
		FitTags:       d.Tags,
		PriorityScore: scoring.Priority(d.ConfidenceScore, 0),
		Status:        types.ProspectStatusActive,
	}
	if _, err := e.store.CreateProspect(ctx, p); err != nil {
		return err
	}
	return e.store.UpdateDiscoveryStatus(ctx, d.ID, types.DiscoveryStatusPromoted)
}

// ScoreConnections runs the relationship pass over a team's active
// prospects: one graph lookup per company, aggregated into paths, a
// connection score, and a recomputed priority. Lookups run sequentially so
// the graph client's pacing is respected; per-company failures are counted
// and skipped.
func (e *Engine) ScoreConnections(ctx context.Context) (scored, failed int, err error) {
	if e.graph == nil {
		return 0, 0, nil
	}

	prospects, err := e.store.ListProspects(ctx, db.ProspectFilters{TeamID: e.teamID, Status: types.ProspectStatusActive, Limit: 500})
	if err != nil {
		return 0, 0, err
	}

	for _, p := range prospects {
		if ctx.Err() != nil {
			return scored, failed, ctx.Err()
		}

		term := paths.SearchTerm(p.CompanyDomain, "")
		records, qerr := e.graph.QueryConnections(ctx, term, graph.DefaultQuerySize)
		if qerr != nil {
			failed++
			if e.verbose {
				log.Printf("[GRAPH] lookup for %s failed: %v", p.CompanyDomain, qerr)
			}
			continue
		}

		built := paths.BuildPaths(records)
		agg := paths.Aggregate(p.CompanyDomain, built)
		priority := scoring.Priority(p.FitScore, agg.ConnectionScore)

		if uerr := e.store.UpdateProspectConnection(ctx, p.ID, agg, priority); uerr != nil {
			failed++
			continue
		}
		scored++
	}
	return scored, failed, nil
}

func (e *Engine) completeRun(ctx context.Context, summary *types.RunSummary) {
	now := time.Now().UTC()
	summary.CompletedAt = &now
	if err := e.store.CompleteRun(ctx, summary); err != nil && e.verbose {
		log.Printf("[SCAN] failed to persist run summary: %v", err)
	}
}

// excerpt truncates trigger text to the storage bound, backing off to a rune
// boundary so a multi-byte character is never split into invalid UTF-8.
func excerpt(text string) string {
	if len(text) <= triggerExcerptLen {
		return text
	}
	cut := triggerExcerptLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
