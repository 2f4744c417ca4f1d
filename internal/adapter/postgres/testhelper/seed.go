package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// SeedLearner creates a learner profile.
func SeedLearner(t *testing.T, pool *pgxpool.Pool) domain.Learner {
	t.Helper()

	l := domain.Learner{
		ID:          uuid.New(),
		DisplayName: "Learner " + uuid.New().String()[:8],
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO learners (id, display_name, created_at) VALUES ($1, $2, $3)`,
		l.ID, l.DisplayName, l.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLearner: %v", err)
	}
	return l
}

// SeedDeck creates a deck owned by learnerID.
func SeedDeck(t *testing.T, pool *pgxpool.Pool, learnerID uuid.UUID) domain.Deck {
	t.Helper()

	d := domain.Deck{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Title:     "Animals",
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	_, err := pool.Exec(context.Background(),
		`INSERT INTO decks (id, learner_id, title, created_at) VALUES ($1, $2, $3, $4)`,
		d.ID, d.LearnerID, d.Title, d.CreatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedDeck: %v", err)
	}
	return d
}

// SeedFlashcards creates n flashcards in deckID with positions 1..n.
func SeedFlashcards(t *testing.T, pool *pgxpool.Pool, deckID uuid.UUID, n int) []domain.Flashcard {
	t.Helper()

	cards := make([]domain.Flashcard, n)
	for i := range cards {
		cards[i] = domain.Flashcard{
			ID:        uuid.New(),
			DeckID:    deckID,
			Position:  i + 1,
			Front:     "front " + uuid.New().String()[:4],
			Back:      "back",
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		_, err := pool.Exec(context.Background(),
			`INSERT INTO flashcards (id, deck_id, position, front, back, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			cards[i].ID, cards[i].DeckID, cards[i].Position, cards[i].Front, cards[i].Back, cards[i].CreatedAt,
		)
		if err != nil {
			t.Fatalf("testhelper: SeedFlashcards: %v", err)
		}
	}
	return cards
}
