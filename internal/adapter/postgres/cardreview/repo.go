// Package cardreview implements the CardReview repository using PostgreSQL.
// Single-row statements are raw SQL; the paged queue query is built with squirrel.
package cardreview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	postgres "github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Repo provides card review persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new card review repository. db is usually *pgxpool.Pool.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const reviewColumns = `id, learner_id, flashcard_id, difficulty_rating, interval_days, ease_factor,
       review_count, next_review_at, last_reviewed_at, version, created_at, updated_at`

const getSQL = `
SELECT ` + reviewColumns + `
FROM card_reviews
WHERE learner_id = $1 AND flashcard_id = $2`

// ON CONFLICT DO NOTHING yields no row when a concurrent writer created the
// record first; that is reported as a conflict so the caller re-reads.
const createSQL = `
INSERT INTO card_reviews (id, learner_id, flashcard_id, difficulty_rating, interval_days, ease_factor,
                          review_count, next_review_at, last_reviewed_at, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, now(), now())
ON CONFLICT (learner_id, flashcard_id) DO NOTHING
RETURNING ` + reviewColumns

const updateSQL = `
UPDATE card_reviews
SET difficulty_rating = $3, interval_days = $4, ease_factor = $5, review_count = $6,
    next_review_at = $7, last_reviewed_at = $8, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $2
RETURNING ` + reviewColumns

// reviewRow mirrors card_reviews.
type reviewRow struct {
	ID               uuid.UUID `db:"id"`
	LearnerID        uuid.UUID `db:"learner_id"`
	FlashcardID      uuid.UUID `db:"flashcard_id"`
	DifficultyRating string    `db:"difficulty_rating"`
	IntervalDays     int       `db:"interval_days"`
	EaseFactor       float64   `db:"ease_factor"`
	ReviewCount      int       `db:"review_count"`
	NextReviewAt     time.Time `db:"next_review_at"`
	LastReviewedAt   time.Time `db:"last_reviewed_at"`
	Version          int       `db:"version"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

func (r reviewRow) toDomain() *domain.CardReview {
	return &domain.CardReview{
		ID:               r.ID,
		LearnerID:        r.LearnerID,
		FlashcardID:      r.FlashcardID,
		DifficultyRating: domain.Rating(r.DifficultyRating),
		IntervalDays:     r.IntervalDays,
		EaseFactor:       r.EaseFactor,
		ReviewCount:      r.ReviewCount,
		NextReviewAt:     r.NextReviewAt.UTC(),
		LastReviewedAt:   r.LastReviewedAt.UTC(),
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}
}

// ---------------------------------------------------------------------------
// Single record
// ---------------------------------------------------------------------------

// Get returns the learner's record for a flashcard.
func (r *Repo) Get(ctx context.Context, learnerID, flashcardID uuid.UUID) (*domain.CardReview, error) {
	var row reviewRow
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getSQL, learnerID, flashcardID)
	if err != nil {
		return nil, postgres.MapError(err, "card_review", flashcardID)
	}
	return row.toDomain(), nil
}

// Create inserts the first record for a (learner, flashcard) pair.
// Returns domain.ErrConflict if the pair already has a record.
func (r *Repo) Create(ctx context.Context, cr *domain.CardReview) (*domain.CardReview, error) {
	var row reviewRow
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, createSQL,
		cr.ID, cr.LearnerID, cr.FlashcardID, string(cr.DifficultyRating), cr.IntervalDays,
		cr.EaseFactor, cr.ReviewCount, cr.NextReviewAt, cr.LastReviewedAt,
	)
	if err != nil {
		mapped := postgres.MapError(err, "card_review", cr.FlashcardID)
		if errors.Is(mapped, domain.ErrNotFound) && !isForeignKey(err) {
			return nil, fmt.Errorf("card_review %s: %w", cr.FlashcardID, domain.ErrConflict)
		}
		return nil, mapped
	}
	return row.toDomain(), nil
}

// Update writes new scheduling state if cr.Version still matches the stored
// row. Returns domain.ErrConflict when another writer got there first.
func (r *Repo) Update(ctx context.Context, cr *domain.CardReview) (*domain.CardReview, error) {
	var row reviewRow
	err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, updateSQL,
		cr.ID, cr.Version, string(cr.DifficultyRating), cr.IntervalDays, cr.EaseFactor,
		cr.ReviewCount, cr.NextReviewAt, cr.LastReviewedAt,
	)
	if err != nil {
		mapped := postgres.MapError(err, "card_review", cr.ID)
		if errors.Is(mapped, domain.ErrNotFound) {
			return nil, fmt.Errorf("card_review %s version %d: %w", cr.ID, cr.Version, domain.ErrConflict)
		}
		return nil, mapped
	}
	return row.toDomain(), nil
}

// ---------------------------------------------------------------------------
// Queue
// ---------------------------------------------------------------------------

// dueRow is a card review joined with its flashcard.
type dueRow struct {
	reviewRow
	FlashcardDeckID    uuid.UUID `db:"fc_deck_id"`
	FlashcardPosition  int       `db:"fc_position"`
	FlashcardFront     string    `db:"fc_front"`
	FlashcardBack      string    `db:"fc_back"`
	FlashcardCreatedAt time.Time `db:"fc_created_at"`
}

func dueQuery(learnerID uuid.UUID, deckID *uuid.UUID, now time.Time) squirrel.SelectBuilder {
	q := postgres.Builder.
		Select().
		From("card_reviews cr").
		Join("flashcards f ON f.id = cr.flashcard_id").
		Where(squirrel.Eq{"cr.learner_id": learnerID}).
		Where(squirrel.LtOrEq{"cr.next_review_at": now})
	if deckID != nil {
		q = q.Where(squirrel.Eq{"f.deck_id": *deckID})
	}
	return q
}

// ListDue returns one page of due records, most overdue first, with ties
// broken by flashcard id. after is the keyset cursor of the previous page.
func (r *Repo) ListDue(
	ctx context.Context,
	learnerID uuid.UUID,
	deckID *uuid.UUID,
	now time.Time,
	after *domain.DueCursor,
	limit int,
) ([]domain.QueueItem, error) {
	q := dueQuery(learnerID, deckID, now).
		Columns(
			"cr.id", "cr.learner_id", "cr.flashcard_id", "cr.difficulty_rating", "cr.interval_days",
			"cr.ease_factor", "cr.review_count", "cr.next_review_at", "cr.last_reviewed_at",
			"cr.version", "cr.created_at", "cr.updated_at",
			"f.deck_id AS fc_deck_id", "f.position AS fc_position", "f.front AS fc_front",
			"f.back AS fc_back", "f.created_at AS fc_created_at",
		).
		OrderBy("cr.next_review_at ASC", "cr.flashcard_id ASC").
		Limit(uint64(limit))
	if after != nil {
		q = q.Where("(cr.next_review_at, cr.flashcard_id) > (?, ?)", after.NextReviewAt, after.FlashcardID)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build due query: %w", err)
	}

	var rows []dueRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, "due card_reviews of learner", learnerID)
	}

	items := make([]domain.QueueItem, len(rows))
	for i, row := range rows {
		items[i] = domain.QueueItem{
			Flashcard: domain.Flashcard{
				ID:        row.FlashcardID,
				DeckID:    row.FlashcardDeckID,
				Position:  row.FlashcardPosition,
				Front:     row.FlashcardFront,
				Back:      row.FlashcardBack,
				CreatedAt: row.FlashcardCreatedAt.UTC(),
			},
			Review: row.toDomain(),
		}
	}
	return items, nil
}

// CountDue counts due records, optionally within one deck.
func (r *Repo) CountDue(ctx context.Context, learnerID uuid.UUID, deckID *uuid.UUID, now time.Time) (int, error) {
	sql, args, err := dueQuery(learnerID, deckID, now).Columns("count(*)").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, postgres.MapError(err, "due card_reviews of learner", learnerID)
	}
	return n, nil
}

func isForeignKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
