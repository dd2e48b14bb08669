package types

import (
	"time"

	"github.com/google/uuid"
)

// ProspectStatus is the review state of a confirmed candidate company.
type ProspectStatus string

const (
	// ProspectStatusActive means the prospect awaits manual review.
	ProspectStatusActive ProspectStatus = "active"
	// ProspectStatusReviewed means a human submitted feedback on the prospect.
	ProspectStatusReviewed ProspectStatus = "reviewed"
)

// Prospect is a confirmed candidate company under active consideration.
// At most one Prospect exists per (TeamID, CompanyDomain); a second creation
// attempt is an idempotent no-op resolved by the store's unique constraint.
type Prospect struct {
	ID            uuid.UUID      `json:"id"`
	TeamID        string         `json:"team_id"`
	CompanyDomain string         `json:"company_domain"`
	FitScore      int            `json:"fit_score"` // 0..100, from the keyword-fit path
	FitTags       []string       `json:"fit_tags,omitempty"`
	// ConnectionScore is stored normalized to [0,1]. It is converted to the
	// 0-100 scale only inside the priority calculation.
	ConnectionScore float64        `json:"connection_score"`
	HasWarmIntro    bool           `json:"has_warm_intro"`
	PriorityScore   float64        `json:"priority_score"` // derived, 0..100
	Status          ProspectStatus `json:"status"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	UserOverride    *bool          `json:"user_override,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}
