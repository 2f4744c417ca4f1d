package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueueItem is one entry of a review queue. Review is nil for a flashcard
// the learner has never reviewed.
type QueueItem struct {
	Flashcard Flashcard
	Review    *CardReview
}

// IsNew reports whether the item is a never-reviewed flashcard.
func (q QueueItem) IsNew() bool { return q.Review == nil }

// QueueSummary holds the counts shown before a session starts.
type QueueSummary struct {
	DueCount int
	NewCount int
}

// DueCursor is the keyset position after the last due item of a page.
type DueCursor struct {
	NextReviewAt time.Time
	FlashcardID  uuid.UUID
}

// NewCursor is the keyset position after the last never-reviewed item of a page.
type NewCursor struct {
	Position    int
	FlashcardID uuid.UUID
}
