// Package submission implements the review submission ledger. Each row is
// the idempotency record of one applied rating.
package submission

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Repo provides submission persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new submission repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const getSQL = `
SELECT id, learner_id, flashcard_id, submitted_at, rating, interval_days, ease_factor,
       review_count, next_review_at, created_at
FROM review_submissions
WHERE learner_id = $1 AND flashcard_id = $2 AND submitted_at = $3`

const createSQL = `
INSERT INTO review_submissions (id, learner_id, flashcard_id, submitted_at, rating, interval_days,
                                ease_factor, review_count, next_review_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())`

const deleteOlderThanSQL = `DELETE FROM review_submissions WHERE created_at < $1`

type submissionRow struct {
	ID           uuid.UUID `db:"id"`
	LearnerID    uuid.UUID `db:"learner_id"`
	FlashcardID  uuid.UUID `db:"flashcard_id"`
	SubmittedAt  time.Time `db:"submitted_at"`
	Rating       string    `db:"rating"`
	IntervalDays int       `db:"interval_days"`
	EaseFactor   float64   `db:"ease_factor"`
	ReviewCount  int       `db:"review_count"`
	NextReviewAt time.Time `db:"next_review_at"`
	CreatedAt    time.Time `db:"created_at"`
}

// Get looks up a submission by its idempotency key.
func (r *Repo) Get(ctx context.Context, learnerID, flashcardID uuid.UUID, submittedAt time.Time) (*domain.ReviewSubmission, error) {
	var row submissionRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, getSQL, learnerID, flashcardID, submittedAt); err != nil {
		return nil, postgres.MapError(err, "review_submission for flashcard", flashcardID)
	}
	return &domain.ReviewSubmission{
		ID:           row.ID,
		LearnerID:    row.LearnerID,
		FlashcardID:  row.FlashcardID,
		SubmittedAt:  row.SubmittedAt.UTC(),
		Rating:       domain.Rating(row.Rating),
		IntervalDays: row.IntervalDays,
		EaseFactor:   row.EaseFactor,
		ReviewCount:  row.ReviewCount,
		NextReviewAt: row.NextReviewAt.UTC(),
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

// Create records a submission. A duplicate key yields domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, s *domain.ReviewSubmission) error {
	_, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, createSQL,
		s.ID, s.LearnerID, s.FlashcardID, s.SubmittedAt, string(s.Rating),
		s.IntervalDays, s.EaseFactor, s.ReviewCount, s.NextReviewAt,
	)
	if err != nil {
		return postgres.MapError(err, "review_submission for flashcard", s.FlashcardID)
	}
	return nil
}

// DeleteOlderThan prunes ledger rows created before cutoff and returns how
// many were removed. Replays older than the retention window are then
// applied as new ratings, so the window must exceed the client replay window.
func (r *Repo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, deleteOlderThanSQL, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete review submissions: %w", postgres.MapError(err, "review_submissions", uuid.Nil))
	}
	return tag.RowsAffected(), nil
}
