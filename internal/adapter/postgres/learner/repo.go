// Package learner implements read access to learner profiles.
package learner

import (
	"context"

	"github.com/google/uuid"

	postgres "github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
)

// Repo reads learners.
type Repo struct {
	db postgres.Querier
}

// New creates a new learner repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

const existsSQL = `SELECT EXISTS(SELECT 1 FROM learners WHERE id = $1)`

// Exists reports whether the learner profile exists.
func (r *Repo) Exists(ctx context.Context, learnerID uuid.UUID) (bool, error) {
	var exists bool
	if err := postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, existsSQL, learnerID).Scan(&exists); err != nil {
		return false, postgres.MapError(err, "learner", learnerID)
	}
	return exists, nil
}
