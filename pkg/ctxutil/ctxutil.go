// Package ctxutil carries per-request identity through context.Context.
package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type (
	learnerKey struct{}
	requestKey struct{}
)

// WithLearnerID attaches the authenticated learner.
func WithLearnerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, learnerKey{}, id)
}

// LearnerIDFromCtx reports the learner set by WithLearnerID. uuid.Nil counts
// as absent.
func LearnerIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, _ := ctx.Value(learnerKey{}).(uuid.UUID)
	return id, id != uuid.Nil
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestKey{}, id)
}

// RequestIDFromCtx returns "" when no id was set.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestKey{}).(string)
	return id
}
