package domain

import (
	"time"

	"github.com/google/uuid"
)

// Learner is a child profile. Owned by the content catalog.
type Learner struct {
	ID          uuid.UUID
	DisplayName string
	CreatedAt   time.Time
}

// Deck groups flashcards for one learner.
type Deck struct {
	ID        uuid.UUID
	LearnerID uuid.UUID
	Title     string
	CreatedAt time.Time
}

// Flashcard is a catalog card. Position orders cards within their deck.
type Flashcard struct {
	ID        uuid.UUID
	DeckID    uuid.UUID
	Position  int
	Front     string
	Back      string
	CreatedAt time.Time
}
