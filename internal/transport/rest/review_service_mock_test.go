package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/internal/service/review"
)

var _ reviewService = &reviewServiceMock{}

type reviewServiceMock struct {
	SubmitReviewFunc  func(ctx context.Context, input review.SubmitReviewInput) (*domain.CardReview, error)
	GetCardReviewFunc func(ctx context.Context, flashcardID uuid.UUID) (*domain.CardReview, error)
	QueueItemsFunc    func(ctx context.Context, input review.QueueInput, limit int) ([]domain.QueueItem, error)
	QueueSummaryFunc  func(ctx context.Context, deckID *uuid.UUID) (domain.QueueSummary, error)

	calls struct {
		SubmitReview []struct {
			Ctx   context.Context
			Input review.SubmitReviewInput
		}
		QueueItems []struct {
			Ctx   context.Context
			Input review.QueueInput
			Limit int
		}
	}
	lockSubmitReview sync.RWMutex
	lockQueueItems   sync.RWMutex
}

func (mock *reviewServiceMock) SubmitReview(ctx context.Context, input review.SubmitReviewInput) (*domain.CardReview, error) {
	if mock.SubmitReviewFunc == nil {
		panic("reviewServiceMock.SubmitReviewFunc: method is nil but reviewService.SubmitReview was just called")
	}
	mock.lockSubmitReview.Lock()
	mock.calls.SubmitReview = append(mock.calls.SubmitReview, struct {
		Ctx   context.Context
		Input review.SubmitReviewInput
	}{ctx, input})
	mock.lockSubmitReview.Unlock()
	return mock.SubmitReviewFunc(ctx, input)
}

func (mock *reviewServiceMock) SubmitReviewCalls() []struct {
	Ctx   context.Context
	Input review.SubmitReviewInput
} {
	mock.lockSubmitReview.RLock()
	defer mock.lockSubmitReview.RUnlock()
	return mock.calls.SubmitReview
}

func (mock *reviewServiceMock) GetCardReview(ctx context.Context, flashcardID uuid.UUID) (*domain.CardReview, error) {
	if mock.GetCardReviewFunc == nil {
		panic("reviewServiceMock.GetCardReviewFunc: method is nil but reviewService.GetCardReview was just called")
	}
	return mock.GetCardReviewFunc(ctx, flashcardID)
}

func (mock *reviewServiceMock) QueueItems(ctx context.Context, input review.QueueInput, limit int) ([]domain.QueueItem, error) {
	if mock.QueueItemsFunc == nil {
		panic("reviewServiceMock.QueueItemsFunc: method is nil but reviewService.QueueItems was just called")
	}
	mock.lockQueueItems.Lock()
	mock.calls.QueueItems = append(mock.calls.QueueItems, struct {
		Ctx   context.Context
		Input review.QueueInput
		Limit int
	}{ctx, input, limit})
	mock.lockQueueItems.Unlock()
	return mock.QueueItemsFunc(ctx, input, limit)
}

func (mock *reviewServiceMock) QueueItemsCalls() []struct {
	Ctx   context.Context
	Input review.QueueInput
	Limit int
} {
	mock.lockQueueItems.RLock()
	defer mock.lockQueueItems.RUnlock()
	return mock.calls.QueueItems
}

func (mock *reviewServiceMock) QueueSummary(ctx context.Context, deckID *uuid.UUID) (domain.QueueSummary, error) {
	if mock.QueueSummaryFunc == nil {
		panic("reviewServiceMock.QueueSummaryFunc: method is nil but reviewService.QueueSummary was just called")
	}
	return mock.QueueSummaryFunc(ctx, deckID)
}

var _ catalogService = &catalogServiceMock{}

type catalogServiceMock struct {
	ListDecksFunc      func(ctx context.Context) ([]domain.Deck, error)
	DeckFlashcardsFunc func(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error)
}

func (mock *catalogServiceMock) ListDecks(ctx context.Context) ([]domain.Deck, error) {
	if mock.ListDecksFunc == nil {
		panic("catalogServiceMock.ListDecksFunc: method is nil but catalogService.ListDecks was just called")
	}
	return mock.ListDecksFunc(ctx)
}

func (mock *catalogServiceMock) DeckFlashcards(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error) {
	if mock.DeckFlashcardsFunc == nil {
		panic("catalogServiceMock.DeckFlashcardsFunc: method is nil but catalogService.DeckFlashcards was just called")
	}
	return mock.DeckFlashcardsFunc(ctx, deckID)
}
