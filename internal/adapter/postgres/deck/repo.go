// Package deck implements read access to catalog decks.
package deck

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Repo reads decks.
type Repo struct {
	db postgres.Querier
}

// New creates a new deck repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getByIDSQL = `
SELECT id, learner_id, title, created_at
FROM decks
WHERE id = $1 AND learner_id = $2`

const listByLearnerSQL = `
SELECT id, learner_id, title, created_at
FROM decks
WHERE learner_id = $1
ORDER BY created_at ASC, id ASC`

type deckRow struct {
	ID        uuid.UUID `db:"id"`
	LearnerID uuid.UUID `db:"learner_id"`
	Title     string    `db:"title"`
	CreatedAt time.Time `db:"created_at"`
}

func (r deckRow) toDomain() domain.Deck {
	return domain.Deck{ID: r.ID, LearnerID: r.LearnerID, Title: r.Title, CreatedAt: r.CreatedAt.UTC()}
}

// GetByID returns the deck if the learner owns it; otherwise ErrNotFound.
func (r *Repo) GetByID(ctx context.Context, learnerID, deckID uuid.UUID) (*domain.Deck, error) {
	var row deckRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getByIDSQL, deckID, learnerID); err != nil {
		return nil, postgres.MapError(err, "deck", deckID)
	}
	d := row.toDomain()
	return &d, nil
}

// ListByLearner returns the learner's decks, oldest first.
func (r *Repo) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]domain.Deck, error) {
	var rows []deckRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, listByLearnerSQL, learnerID); err != nil {
		return nil, postgres.MapError(err, "decks of learner", learnerID)
	}
	out := make([]domain.Deck, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}
