package reviewsession

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Source supplies the cards of one session in presentation order.
type Source interface {
	Load(ctx context.Context) ([]domain.Flashcard, error)
}

type deckLister interface {
	DeckFlashcards(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error)
}

type queueFetcher interface {
	ReviewQueue(ctx context.Context, deckID *uuid.UUID, limit int) ([]domain.QueueItem, error)
}

// DeckSource presents every flashcard of a deck in catalog order,
// regardless of whether it is due.
type DeckSource struct {
	Lister deckLister
	DeckID uuid.UUID
}

func (s DeckSource) Load(ctx context.Context) ([]domain.Flashcard, error) {
	cards, err := s.Lister.DeckFlashcards(ctx, s.DeckID)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", s.DeckID, err)
	}
	return cards, nil
}

// DueSource presents only the due queue: overdue records first, then
// never-reviewed cards of the deck if one is set.
type DueSource struct {
	Fetcher queueFetcher
	DeckID  *uuid.UUID
	Limit   int
}

func (s DueSource) Load(ctx context.Context) ([]domain.Flashcard, error) {
	items, err := s.Fetcher.ReviewQueue(ctx, s.DeckID, s.Limit)
	if err != nil {
		return nil, fmt.Errorf("load review queue: %w", err)
	}
	cards := make([]domain.Flashcard, len(items))
	for i, it := range items {
		cards[i] = it.Flashcard
	}
	return cards, nil
}
