package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ReviewFeedback is a human judgment on a Prospect. At most one row exists
// per (ProspectID, Reviewer); a second submission overwrites the first.
// The Prior* fields snapshot the prospect's state before the submission so
// that an undo can restore it from the most recent feedback record.
type ReviewFeedback struct {
	ID           uuid.UUID `json:"id"`
	ProspectID   uuid.UUID `json:"prospect_id"`
	Reviewer     string    `json:"reviewer"`
	IsGoodFit    bool      `json:"is_good_fit"`
	Confidence   int       `json:"confidence"` // 1..5
	Reason       string    `json:"reason,omitempty"`
	UserRating   *int      `json:"user_rating,omitempty"` // 1..10
	ReviewTimeMs int       `json:"review_time_ms,omitempty"`

	PriorStatus       ProspectStatus `json:"prior_status"`
	PriorReviewedAt   *time.Time     `json:"prior_reviewed_at,omitempty"`
	PriorUserOverride *bool          `json:"prior_user_override,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// FeedbackRequest is the API payload for submitting feedback on a prospect.
type FeedbackRequest struct {
	Reviewer     string `json:"reviewer" validate:"required,min=1"`
	IsGoodFit    bool   `json:"is_good_fit"`
	Confidence   int    `json:"confidence" validate:"required,min=1,max=5"`
	Reason       string `json:"reason,omitempty" validate:"max=2000"`
	UserRating   *int   `json:"user_rating,omitempty" validate:"omitempty,min=1,max=10"`
	ReviewTimeMs int    `json:"review_time_ms,omitempty" validate:"min=0"`
}

// Validate validates the FeedbackRequest using the validator.
func (r *FeedbackRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
