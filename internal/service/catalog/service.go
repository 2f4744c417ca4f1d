// Package catalog serves read-only deck and flashcard listings to the
// learner who owns them.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/pkg/ctxutil"
)

type deckRepo interface {
	GetByID(ctx context.Context, learnerID, deckID uuid.UUID) (*domain.Deck, error)
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Deck, error)
}

type flashcardRepo interface {
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error)
}

// Service provides catalog reads.
type Service struct {
	decks      deckRepo
	flashcards flashcardRepo
	log        *slog.Logger
}

// NewService creates a new catalog service.
func NewService(log *slog.Logger, decks deckRepo, flashcards flashcardRepo) *Service {
	return &Service{
		decks:      decks,
		flashcards: flashcards,
		log:        log.With("service", "catalog"),
	}
}

// ListDecks returns the learner's decks.
func (s *Service) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	decks, err := s.decks.ListByLearner(ctx, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// DeckFlashcards returns the flashcards of a deck ordered by position.
// A deck owned by someone else is reported as not found.
func (s *Service) DeckFlashcards(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if deckID == uuid.Nil {
		return nil, domain.NewValidationError("deck_id", "required")
	}

	if _, err := s.decks.GetByID(ctx, learnerID, deckID); err != nil {
		return nil, fmt.Errorf("get deck: %w", err)
	}

	cards, err := s.flashcards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("list flashcards: %w", err)
	}

	s.log.DebugContext(ctx, "deck flashcards listed",
		slog.String("learner_id", learnerID.String()),
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(cards)),
	)
	return cards, nil
}
