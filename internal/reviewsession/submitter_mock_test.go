package reviewsession

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

var _ Submitter = &SubmitterMock{}

type SubmitterMock struct {
	SubmitReviewFunc func(ctx context.Context, flashcardID uuid.UUID, rating domain.Rating, submittedAt time.Time) (*domain.CardReview, error)

	calls struct {
		SubmitReview []struct {
			Ctx         context.Context
			FlashcardID uuid.UUID
			Rating      domain.Rating
			SubmittedAt time.Time
		}
	}
	lockSubmitReview sync.RWMutex
}

func (mock *SubmitterMock) SubmitReview(ctx context.Context, flashcardID uuid.UUID, rating domain.Rating, submittedAt time.Time) (*domain.CardReview, error) {
	if mock.SubmitReviewFunc == nil {
		panic("SubmitterMock.SubmitReviewFunc: method is nil but Submitter.SubmitReview was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		FlashcardID uuid.UUID
		Rating      domain.Rating
		SubmittedAt time.Time
	}{
		Ctx:         ctx,
		FlashcardID: flashcardID,
		Rating:      rating,
		SubmittedAt: submittedAt,
	}
	mock.lockSubmitReview.Lock()
	mock.calls.SubmitReview = append(mock.calls.SubmitReview, callInfo)
	mock.lockSubmitReview.Unlock()
	return mock.SubmitReviewFunc(ctx, flashcardID, rating, submittedAt)
}

func (mock *SubmitterMock) SubmitReviewCalls() []struct {
	Ctx         context.Context
	FlashcardID uuid.UUID
	Rating      domain.Rating
	SubmittedAt time.Time
} {
	mock.lockSubmitReview.RLock()
	calls := mock.calls.SubmitReview
	mock.lockSubmitReview.RUnlock()
	return calls
}
