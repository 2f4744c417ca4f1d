package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// SubmitReviewInput holds the parameters for rating one flashcard.
// SubmittedAt is the idempotency key together with learner and flashcard;
// the zero value means "now".
type SubmitReviewInput struct {
	FlashcardID uuid.UUID
	Rating      domain.Rating
	SubmittedAt time.Time
}

// Validate checks all fields and collects all errors.
func (i *SubmitReviewInput) Validate(now time.Time, replayWindow, futureSkew time.Duration) error {
	var verr domain.ValidationError

	if i.FlashcardID == uuid.Nil {
		verr.Add("flashcard_id", "required")
	}
	if !i.Rating.IsValid() {
		verr.Add("difficulty_rating", "must be one of again, hard, good, easy")
	}
	if !i.SubmittedAt.IsZero() {
		if i.SubmittedAt.After(now.Add(futureSkew)) {
			verr.Add("submitted_at", "is in the future")
		}
		if i.SubmittedAt.Before(now.Add(-replayWindow)) {
			verr.Add("submitted_at", "is older than the replay window")
		}
	}

	return verr.Err()
}

// QueueInput holds the parameters for building a review queue.
type QueueInput struct {
	DeckID   *uuid.UUID
	PageSize int
}

// Validate checks all fields and collects all errors.
func (i *QueueInput) Validate() error {
	var verr domain.ValidationError

	if i.DeckID != nil && *i.DeckID == uuid.Nil {
		verr.Add("deck_id", "must be a valid id")
	}
	if i.PageSize < 0 || i.PageSize > 500 {
		verr.Add("page_size", "must be between 0 and 500")
	}

	return verr.Err()
}
