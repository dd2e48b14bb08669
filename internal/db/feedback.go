package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prospect-scout/internal/types"
)

// UpsertFeedback stores a reviewer's judgment on a prospect. At most one row
// exists per (prospect_id, reviewer); a repeat submission overwrites the
// judgment fields but keeps the original prior_* snapshot, so an undo always
// restores the prospect's true pre-feedback state.
func (db *DB) UpsertFeedback(ctx context.Context, f *types.ReviewFeedback) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO review_feedback (prospect_id, reviewer, is_good_fit, confidence, reason, user_rating, review_time_ms, prior_status, prior_reviewed_at, prior_user_override)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (prospect_id, reviewer) DO UPDATE
		 SET is_good_fit = $3, confidence = $4, reason = $5, user_rating = $6, review_time_ms = $7, updated_at = NOW()
		 RETURNING id, created_at`,
		f.ProspectID, f.Reviewer, f.IsGoodFit, f.Confidence, f.Reason,
		f.UserRating, f.ReviewTimeMs, f.PriorStatus, f.PriorReviewedAt, f.PriorUserOverride,
	).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}
	return nil
}

// GetFeedback retrieves one reviewer's feedback on a prospect.
// Returns (nil, nil) when absent.
func (db *DB) GetFeedback(ctx context.Context, prospectID uuid.UUID, reviewer string) (*types.ReviewFeedback, error) {
	var f types.ReviewFeedback
	err := db.pool.QueryRow(ctx,
		`SELECT id, prospect_id, reviewer, is_good_fit, confidence, reason, user_rating, review_time_ms, prior_status, prior_reviewed_at, prior_user_override, created_at
		 FROM review_feedback WHERE prospect_id = $1 AND reviewer = $2`,
		prospectID, reviewer,
	).Scan(&f.ID, &f.ProspectID, &f.Reviewer, &f.IsGoodFit, &f.Confidence, &f.Reason,
		&f.UserRating, &f.ReviewTimeMs, &f.PriorStatus, &f.PriorReviewedAt, &f.PriorUserOverride, &f.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}
	return &f, nil
}

// ListFeedback retrieves all feedback rows for a prospect, newest first.
func (db *DB) ListFeedback(ctx context.Context, prospectID uuid.UUID) ([]types.ReviewFeedback, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, prospect_id, reviewer, is_good_fit, confidence, reason, user_rating, review_time_ms, prior_status, prior_reviewed_at, prior_user_override, created_at
		 FROM review_feedback WHERE prospect_id = $1 ORDER BY created_at DESC`,
		prospectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var feedback []types.ReviewFeedback
	for rows.Next() {
		var f types.ReviewFeedback
		if err := rows.Scan(&f.ID, &f.ProspectID, &f.Reviewer, &f.IsGoodFit, &f.Confidence, &f.Reason,
			&f.UserRating, &f.ReviewTimeMs, &f.PriorStatus, &f.PriorReviewedAt, &f.PriorUserOverride, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, f)
	}
	return feedback, nil
}

// DeleteFeedback removes a reviewer's feedback row after an undo.
// Deleting an absent row is not an error.
func (db *DB) DeleteFeedback(ctx context.Context, prospectID uuid.UUID, reviewer string) error {
	_, err := db.pool.Exec(ctx,
		`DELETE FROM review_feedback WHERE prospect_id = $1 AND reviewer = $2`,
		prospectID, reviewer,
	)
	if err != nil {
		return fmt.Errorf("failed to delete feedback: %w", err)
	}
	return nil
}

// IncrementTeamReviewStats bumps a team's running review counters.
// Either delta may be zero.
func (db *DB) IncrementTeamReviewStats(ctx context.Context, teamID string, submitted, undone int) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO team_stats (team_id, reviews_submitted, reviews_undone)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (team_id) DO UPDATE
		 SET reviews_submitted = team_stats.reviews_submitted + $2,
		     reviews_undone = team_stats.reviews_undone + $3,
		     updated_at = NOW()`,
		teamID, submitted, undone,
	)
	if err != nil {
		return fmt.Errorf("failed to update team stats: %w", err)
	}
	return nil
}
