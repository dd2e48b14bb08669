// Package sources defines signal source adapters: each adapter turns one
// monitored source (a news page, a forum thread, an imported list) into a
// batch of candidate texts for the scan pipeline.
package sources

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/prospect-scout/internal/fetch"
	"github.com/jonathan/prospect-scout/internal/types"
)

// TextSource is the capability the scan engine depends on.
type TextSource interface {
	// Name identifies the source in run summaries and logs.
	Name() string
	// Kind classifies the source for discovery records.
	Kind() types.SourceKind
	// Fetch returns the current batch of candidate texts. An empty batch is
	// a normal outcome, not an error.
	Fetch(ctx context.Context) ([]types.CandidateText, error)
}

// PageSource fetches a single web page and extracts its main text as one
// candidate. For client-rendered pages it can fall back to a headless browser.
type PageSource struct {
	URL        string
	SourceKind types.SourceKind
	// Selectors picks the content extraction strategy. Nil means the
	// defaults for the source kind.
	Selectors []string
	// UseBrowser enables the headless-browser fallback when the plain HTTP
	// fetch yields too little text.
	UseBrowser bool
	Verbose    bool
}

// NewArticleSource builds a PageSource tuned for news article pages.
func NewArticleSource(url string) *PageSource {
	return &PageSource{URL: url, SourceKind: types.SourceKindNews, Selectors: fetch.ArticleSelectors()}
}

// NewForumSource builds a PageSource tuned for forum thread pages.
func NewForumSource(url string) *PageSource {
	return &PageSource{URL: url, SourceKind: types.SourceKindForum, Selectors: fetch.ForumThreadSelectors()}
}

func (s *PageSource) Name() string { return s.URL }

func (s *PageSource) Kind() types.SourceKind {
	if s.SourceKind == "" {
		return types.SourceKindNews
	}
	return s.SourceKind
}

func (s *PageSource) selectors() []string {
	if len(s.Selectors) > 0 {
		return s.Selectors
	}
	switch s.Kind() {
	case types.SourceKindForum:
		return fetch.ForumThreadSelectors()
	default:
		return fetch.ArticleSelectors()
	}
}

// Fetch retrieves the page and extracts its main text. The page URL doubles
// as the candidate's source reference.
func (s *PageSource) Fetch(ctx context.Context) ([]types.CandidateText, error) {
	result, err := fetch.URL(ctx, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", s.URL, err)
	}

	text, err := fetch.ExtractMainText(result.HTML, s.selectors())
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", s.URL, err)
	}

	if s.UseBrowser && fetch.ShouldUseBrowser(text) {
		html, berr := fetch.BrowserSimple(ctx, s.URL, s.Verbose)
		if berr == nil {
			if rendered, eerr := fetch.ExtractMainText(html, s.selectors()); eerr == nil && len(rendered) > len(text) {
				text = rendered
			}
		}
	}

	if text == "" {
		return nil, nil
	}

	now := time.Now().UTC()
	return []types.CandidateText{{
		SourceRef:   s.URL,
		RawText:     text,
		PublishedAt: &now,
	}}, nil
}

// ListSource serves a fixed batch of candidate texts. It backs bulk imports
// and tests.
type ListSource struct {
	SourceName string
	SourceKind types.SourceKind
	Items      []types.CandidateText
}

func (s *ListSource) Name() string {
	if s.SourceName == "" {
		return "list"
	}
	return s.SourceName
}

func (s *ListSource) Kind() types.SourceKind {
	if s.SourceKind == "" {
		return types.SourceKindImport
	}
	return s.SourceKind
}

func (s *ListSource) Fetch(_ context.Context) ([]types.CandidateText, error) {
	return s.Items, nil
}
