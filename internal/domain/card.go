package domain

import (
	"time"

	"github.com/google/uuid"
)

// CardReview is the scheduling state of one flashcard for one learner.
// There is exactly one per (LearnerID, FlashcardID) pair.
type CardReview struct {
	ID               uuid.UUID
	LearnerID        uuid.UUID
	FlashcardID      uuid.UUID
	DifficultyRating Rating
	IntervalDays     int
	EaseFactor       float64
	ReviewCount      int
	NextReviewAt     time.Time
	LastReviewedAt   time.Time
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsDue returns true once now has reached NextReviewAt.
func (c *CardReview) IsDue(now time.Time) bool {
	return !c.NextReviewAt.After(now)
}

// IsNew reports whether the record has never been persisted.
func (c *CardReview) IsNew() bool {
	return c.Version == 0
}

// ReviewSubmission is the ledger entry written for every applied rating.
// (LearnerID, FlashcardID, SubmittedAt) is the idempotency key; the stored
// resulting state is returned verbatim on replay.
type ReviewSubmission struct {
	ID           uuid.UUID
	LearnerID    uuid.UUID
	FlashcardID  uuid.UUID
	SubmittedAt  time.Time
	Rating       Rating
	IntervalDays int
	EaseFactor   float64
	ReviewCount  int
	NextReviewAt time.Time
	CreatedAt    time.Time
}
