// Package review implements the human review workflow: discovery triage,
// manual promotion and dismissal, feedback capture, and feedback undo.
package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/prospect-scout/internal/scoring"
	"github.com/jonathan/prospect-scout/internal/types"
)

// Store is the persistence capability the review service depends on.
// *db.DB implements it.
type Store interface {
	GetDiscovery(ctx context.Context, id uuid.UUID) (*types.Discovery, error)
	UpdateDiscoveryStatus(ctx context.Context, id uuid.UUID, status types.DiscoveryStatus) error
	CreateProspect(ctx context.Context, p *types.Prospect) (created bool, err error)
	GetProspect(ctx context.Context, id uuid.UUID) (*types.Prospect, error)
	UpdateProspectReview(ctx context.Context, id uuid.UUID, status types.ProspectStatus, reviewedAt *time.Time, userOverride *bool) error
	UpsertFeedback(ctx context.Context, f *types.ReviewFeedback) error
	GetFeedback(ctx context.Context, prospectID uuid.UUID, reviewer string) (*types.ReviewFeedback, error)
	DeleteFeedback(ctx context.Context, prospectID uuid.UUID, reviewer string) error
	IncrementTeamReviewStats(ctx context.Context, teamID string, submitted, undone int) error
}

// Service coordinates review actions for one team.
type Service struct {
	store  Store
	teamID string
}

// NewService builds a review Service.
func NewService(store Store, teamID string) *Service {
	return &Service{store: store, teamID: teamID}
}

// BeginReview moves a discovery from new to reviewing.
func (s *Service) BeginReview(ctx context.Context, discoveryID uuid.UUID) (*types.Discovery, error) {
	return s.transition(ctx, discoveryID, types.DiscoveryStatusReviewing)
}

// Dismiss marks a discovery as not interesting. Allowed from new or reviewing.
func (s *Service) Dismiss(ctx context.Context, discoveryID uuid.UUID) (*types.Discovery, error) {
	return s.transition(ctx, discoveryID, types.DiscoveryStatusDismissed)
}

// Promote confirms a discovery and materializes the prospect. Allowed from
// new or reviewing. Promoting a domain the team already tracks is an
// idempotent no-op on the prospect side. The prospect is created before the
// status flip: a failed insert leaves the discovery in a non-terminal state,
// so the call can be retried instead of stranding a promoted discovery with
// no prospect behind it.
func (s *Service) Promote(ctx context.Context, discoveryID uuid.UUID) (*types.Prospect, error) {
	d, err := s.store.GetDiscovery(ctx, discoveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if !d.CanTransitionTo(types.DiscoveryStatusPromoted) {
		return nil, &InvalidTransitionError{From: d.Status, To: types.DiscoveryStatusPromoted}
	}

	p := &types.Prospect{
		TeamID:        s.teamID,
		CompanyDomain: d.CompanyDomain,
		FitScore:      d.ConfidenceScore,
		FitTags:       d.Tags,
		PriorityScore: scoring.Priority(d.ConfidenceScore, 0),
		Status:        types.ProspectStatusActive,
	}
	if _, err := s.store.CreateProspect(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create prospect for %s: %w", d.CompanyDomain, err)
	}
	if err := s.store.UpdateDiscoveryStatus(ctx, discoveryID, types.DiscoveryStatusPromoted); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) transition(ctx context.Context, discoveryID uuid.UUID, target types.DiscoveryStatus) (*types.Discovery, error) {
	d, err := s.store.GetDiscovery(ctx, discoveryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if !d.CanTransitionTo(target) {
		return nil, &InvalidTransitionError{From: d.Status, To: target}
	}
	if err := s.store.UpdateDiscoveryStatus(ctx, discoveryID, target); err != nil {
		return nil, err
	}
	d.Status = target
	return d, nil
}

// SubmitFeedback records a reviewer's judgment on a prospect. The prospect's
// pre-feedback state is snapshotted on the feedback row so an undo can
// restore it; a repeat submission by the same reviewer overwrites the
// judgment but keeps the original snapshot.
func (s *Service) SubmitFeedback(ctx context.Context, prospectID uuid.UUID, req *types.FeedbackRequest) (*types.ReviewFeedback, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetProspect(ctx, prospectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrNotFound
	}

	f := &types.ReviewFeedback{
		ProspectID:        prospectID,
		Reviewer:          req.Reviewer,
		IsGoodFit:         req.IsGoodFit,
		Confidence:        req.Confidence,
		Reason:            req.Reason,
		UserRating:        req.UserRating,
		ReviewTimeMs:      req.ReviewTimeMs,
		PriorStatus:       p.Status,
		PriorReviewedAt:   p.ReviewedAt,
		PriorUserOverride: p.UserOverride,
	}
	if err := s.store.UpsertFeedback(ctx, f); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	override := req.IsGoodFit
	if err := s.store.UpdateProspectReview(ctx, prospectID, types.ProspectStatusReviewed, &now, &override); err != nil {
		return nil, err
	}
	if err := s.store.IncrementTeamReviewStats(ctx, s.teamID, 1, 0); err != nil {
		return nil, err
	}
	return f, nil
}

// UndoFeedback reverses a reviewer's feedback: the prospect is restored to
// the snapshotted pre-feedback state and the feedback row is removed.
// Undoing when no feedback exists is a no-op and reports undone=false.
func (s *Service) UndoFeedback(ctx context.Context, prospectID uuid.UUID, reviewer string) (undone bool, err error) {
	p, err := s.store.GetProspect(ctx, prospectID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, ErrNotFound
	}

	f, err := s.store.GetFeedback(ctx, prospectID, reviewer)
	if err != nil {
		return false, err
	}
	if f == nil {
		return false, nil
	}

	if err := s.store.UpdateProspectReview(ctx, prospectID, f.PriorStatus, f.PriorReviewedAt, f.PriorUserOverride); err != nil {
		return false, err
	}
	if err := s.store.DeleteFeedback(ctx, prospectID, reviewer); err != nil {
		return false, err
	}
	if err := s.store.IncrementTeamReviewStats(ctx, s.teamID, 0, 1); err != nil {
		return false, err
	}
	return true, nil
}
