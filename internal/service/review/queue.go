package review

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/pkg/ctxutil"
)

// Queue is a lazily paged review queue. It holds no items; every call to
// All reads current state from storage.
type Queue struct {
	svc       *Service
	learnerID uuid.UUID
	deckID    *uuid.UUID
	pageSize  int
}

// Queue builds the learner's review queue. Due records come first, most
// overdue first; when a deck is given its never-reviewed flashcards follow
// in catalog order.
func (s *Service) Queue(ctx context.Context, input QueueInput) (*Queue, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	pageSize := input.PageSize
	if pageSize == 0 {
		pageSize = max(1, s.opts.QueuePageSize)
	}

	return &Queue{
		svc:       s,
		learnerID: learnerID,
		deckID:    input.DeckID,
		pageSize:  pageSize,
	}, nil
}

// All yields queue items one page at a time. Iteration stops at the first
// error, which is yielded with a zero item.
func (q *Queue) All(ctx context.Context) iter.Seq2[domain.QueueItem, error] {
	return func(yield func(domain.QueueItem, error) bool) {
		now := q.svc.clock()

		var dueAfter *domain.DueCursor
		for {
			page, err := q.svc.reviews.ListDue(ctx, q.learnerID, q.deckID, now, dueAfter, q.pageSize)
			if err != nil {
				yield(domain.QueueItem{}, fmt.Errorf("list due reviews: %w", err))
				return
			}
			for _, item := range page {
				if !yield(item, nil) {
					return
				}
			}
			if len(page) < q.pageSize {
				break
			}
			last := page[len(page)-1]
			dueAfter = &domain.DueCursor{NextReviewAt: last.Review.NextReviewAt, FlashcardID: last.Flashcard.ID}
		}

		if q.deckID == nil {
			return
		}

		var newAfter *domain.NewCursor
		for {
			page, err := q.svc.flashcards.ListUnreviewed(ctx, q.learnerID, *q.deckID, newAfter, q.pageSize)
			if err != nil {
				yield(domain.QueueItem{}, fmt.Errorf("list new flashcards: %w", err))
				return
			}
			for _, fc := range page {
				if !yield(domain.QueueItem{Flashcard: fc}, nil) {
					return
				}
			}
			if len(page) < q.pageSize {
				return
			}
			last := page[len(page)-1]
			newAfter = &domain.NewCursor{Position: last.Position, FlashcardID: last.ID}
		}
	}
}

// Take materializes up to n items. n <= 0 means no limit.
func (q *Queue) Take(ctx context.Context, n int) ([]domain.QueueItem, error) {
	items := make([]domain.QueueItem, 0, max(0, min(n, q.pageSize)))
	for item, err := range q.All(ctx) {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if n > 0 && len(items) >= n {
			break
		}
	}
	return items, nil
}

// QueueItems builds a queue and materializes up to limit items.
func (s *Service) QueueItems(ctx context.Context, input QueueInput, limit int) ([]domain.QueueItem, error) {
	q, err := s.Queue(ctx, input)
	if err != nil {
		return nil, err
	}
	return q.Take(ctx, limit)
}

// QueueSummary counts due and never-reviewed cards. New cards are only
// counted when a deck is given.
func (s *Service) QueueSummary(ctx context.Context, deckID *uuid.UUID) (domain.QueueSummary, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return domain.QueueSummary{}, domain.ErrUnauthorized
	}
	if deckID != nil && *deckID == uuid.Nil {
		return domain.QueueSummary{}, domain.NewValidationError("deck_id", "must be a valid id")
	}

	now := s.clock()
	var summary domain.QueueSummary

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.reviews.CountDue(gctx, learnerID, deckID, now)
		if err != nil {
			return fmt.Errorf("count due: %w", err)
		}
		summary.DueCount = n
		return nil
	})
	if deckID != nil {
		g.Go(func() error {
			n, err := s.flashcards.CountUnreviewed(gctx, learnerID, *deckID)
			if err != nil {
				return fmt.Errorf("count new: %w", err)
			}
			summary.NewCount = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.QueueSummary{}, err
	}
	return summary, nil
}
