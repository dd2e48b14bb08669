package types

import (
	"time"

	"github.com/google/uuid"
)

// CandidateText is one unit of raw text pulled from a signal source.
type CandidateText struct {
	SourceRef   string     `json:"source_ref"`
	RawText     string     `json:"raw_text"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// RunSummary reports the outcome of one scoring run over a named source.
// Partial completion is a normal, reportable outcome: per-item failures are
// counted in Errors and never abort the run.
type RunSummary struct {
	RunID              uuid.UUID  `json:"run_id"`
	Source             string     `json:"source"`
	ItemsScanned       int        `json:"items_scanned"`
	DiscoveriesCreated int        `json:"discoveries_created"`
	DuplicatesSkipped  int        `json:"duplicates_skipped"`
	AutoPromoted       int        `json:"auto_promoted"`
	Errors             int        `json:"errors"`
	StartedAt          time.Time  `json:"started_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
}
