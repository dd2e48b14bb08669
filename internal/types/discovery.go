package types

import (
	"time"

	"github.com/google/uuid"
)

// DiscoveryStatus is the lifecycle state of a Discovery.
type DiscoveryStatus string

const (
	// DiscoveryStatusNew is the initial state awaiting review or auto-promotion.
	DiscoveryStatusNew DiscoveryStatus = "new"
	// DiscoveryStatusReviewing means a human has picked the record up.
	DiscoveryStatusReviewing DiscoveryStatus = "reviewing"
	// DiscoveryStatusPromoted means a Prospect was created from this record.
	DiscoveryStatusPromoted DiscoveryStatus = "promoted"
	// DiscoveryStatusDismissed is terminal; reversible only via feedback undo.
	DiscoveryStatusDismissed DiscoveryStatus = "dismissed"
	// DiscoveryStatusDuplicate is assigned automatically on a repeat sighting,
	// never by a human action.
	DiscoveryStatusDuplicate DiscoveryStatus = "duplicate"
)

// SourceKind identifies the class of signal stream a Discovery came from.
type SourceKind string

const (
	// SourceKindForum covers forum and community posts.
	SourceKindForum SourceKind = "forum"
	// SourceKindNews covers news articles and press coverage.
	SourceKindNews SourceKind = "news"
	// SourceKindImport covers rows from an imported list.
	SourceKindImport SourceKind = "import"
)

// Discovery is an unconfirmed sighting of a candidate company.
// The pair (CompanyDomain, SourceRef) is unique: a repeat scan of the same
// source must not create a second row. Discoveries are never deleted, only
// status-transitioned.
type Discovery struct {
	ID              uuid.UUID       `json:"id"`
	SourceKind      SourceKind      `json:"source_kind"`
	SourceRef       string          `json:"source_ref"`
	CompanyDomain   string          `json:"company_domain"`
	TriggerText     string          `json:"trigger_text"`
	MatchedKeywords []string        `json:"matched_keywords"`
	Tags            []string        `json:"tags,omitempty"`
	ConfidenceScore int             `json:"confidence_score"` // 0..100
	Status          DiscoveryStatus `json:"status"`
	DiscoveredAt    time.Time       `json:"discovered_at"`
}

// CanTransitionTo reports whether the state machine allows moving from the
// current status to target. new -> {reviewing, promoted, dismissed, duplicate};
// reviewing -> {promoted, dismissed}; everything else is terminal.
func (d *Discovery) CanTransitionTo(target DiscoveryStatus) bool {
	switch d.Status {
	case DiscoveryStatusNew:
		switch target {
		case DiscoveryStatusReviewing, DiscoveryStatusPromoted, DiscoveryStatusDismissed, DiscoveryStatusDuplicate:
			return true
		}
	case DiscoveryStatusReviewing:
		switch target {
		case DiscoveryStatusPromoted, DiscoveryStatusDismissed:
			return true
		}
	}
	return false
}
