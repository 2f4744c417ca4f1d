package flashcard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

var flashcardCols = []string{"id", "deck_id", "position", "front", "back", "created_at"}

func newMockRepo(t *testing.T) (*Repo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return New(mock), mock
}

func sampleCard(deckID uuid.UUID, pos int) domain.Flashcard {
	return domain.Flashcard{
		ID:        uuid.New(),
		DeckID:    deckID,
		Position:  pos,
		Front:     "cat",
		Back:      "кот",
		CreatedAt: time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

func cardRows(cards ...domain.Flashcard) *pgxmock.Rows {
	rows := pgxmock.NewRows(flashcardCols)
	for _, c := range cards {
		rows.AddRow(c.ID, c.DeckID, c.Position, c.Front, c.Back, c.CreatedAt)
	}
	return rows
}

func TestRepo_GetByID(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()
	card := sampleCard(uuid.New(), 1)

	t.Run("owned", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`JOIN decks d ON d.id = f.deck_id`).
			WithArgs(card.ID, learnerID).
			WillReturnRows(cardRows(card))

		got, err := repo.GetByID(context.Background(), learnerID, card.ID)
		require.NoError(t, err)
		assert.Equal(t, card, *got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other learner's card is not found", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`JOIN decks d ON d.id = f.deck_id`).
			WithArgs(card.ID, learnerID).
			WillReturnRows(pgxmock.NewRows(flashcardCols))

		_, err := repo.GetByID(context.Background(), learnerID, card.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestRepo_ListByDeck(t *testing.T) {
	t.Parallel()

	deckID := uuid.New()
	cards := []domain.Flashcard{sampleCard(deckID, 1), sampleCard(deckID, 2)}

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`ORDER BY f.position ASC, f.id ASC`).
		WithArgs(deckID).
		WillReturnRows(cardRows(cards...))

	got, err := repo.ListByDeck(context.Background(), deckID)
	require.NoError(t, err)
	assert.Equal(t, cards, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_ListUnreviewed(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()
	deckID := uuid.New()
	cards := []domain.Flashcard{sampleCard(deckID, 3), sampleCard(deckID, 4)}

	t.Run("first page", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`NOT EXISTS \(SELECT 1 FROM card_reviews cr .*ORDER BY f.position ASC, f.id ASC LIMIT 10`).
			WithArgs(learnerID.String(), deckID.String(), learnerID).
			WillReturnRows(cardRows(cards...))

		got, err := repo.ListUnreviewed(context.Background(), learnerID, deckID, nil, 10)
		require.NoError(t, err)
		assert.Equal(t, cards, got)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("after cursor", func(t *testing.T) {
		t.Parallel()
		repo, mock := newMockRepo(t)
		cursor := &domain.NewCursor{Position: 3, FlashcardID: cards[0].ID}
		mock.ExpectQuery(`\(f.position, f.id\) > \(\$4, \$5\)`).
			WithArgs(learnerID.String(), deckID.String(), learnerID, 3, cards[0].ID).
			WillReturnRows(cardRows(cards[1]))

		got, err := repo.ListUnreviewed(context.Background(), learnerID, deckID, cursor, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, cards[1].ID, got[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepo_CountUnreviewed(t *testing.T) {
	t.Parallel()

	learnerID := uuid.New()
	deckID := uuid.New()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(`SELECT count\(\*\) FROM flashcards f`).
		WithArgs(learnerID.String(), deckID.String(), learnerID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.CountUnreviewed(context.Background(), learnerID, deckID)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
