// Package flashcard implements read access to catalog flashcards.
package flashcard

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Repo reads flashcards. Ownership is always checked through the deck.
type Repo struct {
	db postgres.Querier
}

// New creates a new flashcard repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getByIDSQL = `
SELECT f.id, f.deck_id, f.position, f.front, f.back, f.created_at
FROM flashcards f
JOIN decks d ON d.id = f.deck_id
WHERE f.id = $1 AND d.learner_id = $2`

const listByDeckSQL = `
SELECT f.id, f.deck_id, f.position, f.front, f.back, f.created_at
FROM flashcards f
WHERE f.deck_id = $1
ORDER BY f.position ASC, f.id ASC`

type flashcardRow struct {
	ID        uuid.UUID `db:"id"`
	DeckID    uuid.UUID `db:"deck_id"`
	Position  int       `db:"position"`
	Front     string    `db:"front"`
	Back      string    `db:"back"`
	CreatedAt time.Time `db:"created_at"`
}

func (r flashcardRow) toDomain() domain.Flashcard {
	return domain.Flashcard{
		ID:        r.ID,
		DeckID:    r.DeckID,
		Position:  r.Position,
		Front:     r.Front,
		Back:      r.Back,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func toDomain(rows []flashcardRow) []domain.Flashcard {
	out := make([]domain.Flashcard, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}

// GetByID returns a flashcard if it belongs to one of the learner's decks.
func (r *Repo) GetByID(ctx context.Context, learnerID, flashcardID uuid.UUID) (*domain.Flashcard, error) {
	var row flashcardRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getByIDSQL, flashcardID, learnerID); err != nil {
		return nil, postgres.MapError(err, "flashcard", flashcardID)
	}
	fc := row.toDomain()
	return &fc, nil
}

// ListByDeck returns all flashcards of a deck in catalog order. The caller
// checks deck ownership.
func (r *Repo) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error) {
	var rows []flashcardRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, listByDeckSQL, deckID); err != nil {
		return nil, postgres.MapError(err, "flashcards of deck", deckID)
	}
	return toDomain(rows), nil
}

func unreviewedQuery(learnerID, deckID uuid.UUID) squirrel.SelectBuilder {
	return postgres.Builder.
		Select().
		From("flashcards f").
		Join("decks d ON d.id = f.deck_id").
		Where(squirrel.Eq{"f.deck_id": deckID, "d.learner_id": learnerID}).
		Where("NOT EXISTS (SELECT 1 FROM card_reviews cr WHERE cr.flashcard_id = f.id AND cr.learner_id = ?)", learnerID)
}

// ListUnreviewed returns one page of the deck's flashcards the learner has
// never reviewed, ordered by position then id.
func (r *Repo) ListUnreviewed(ctx context.Context, learnerID, deckID uuid.UUID, after *domain.NewCursor, limit int) ([]domain.Flashcard, error) {
	q := unreviewedQuery(learnerID, deckID).
		Columns("f.id", "f.deck_id", "f.position", "f.front", "f.back", "f.created_at").
		OrderBy("f.position ASC", "f.id ASC").
		Limit(uint64(limit))
	if after != nil {
		q = q.Where("(f.position, f.id) > (?, ?)", after.Position, after.FlashcardID)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build unreviewed query: %w", err)
	}

	var rows []flashcardRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "unreviewed flashcards of deck", deckID)
	}
	return toDomain(rows), nil
}

// CountUnreviewed counts the deck's flashcards the learner has never reviewed.
func (r *Repo) CountUnreviewed(ctx context.Context, learnerID, deckID uuid.UUID) (int, error) {
	sql, args, err := unreviewedQuery(learnerID, deckID).Columns("count(*)").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "unreviewed flashcards of deck", deckID)
	}
	return n, nil
}
