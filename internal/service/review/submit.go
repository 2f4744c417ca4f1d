package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/pkg/ctxutil"
)

// SubmitReview applies one rating to the learner's record for a flashcard.
// A repeated submission with the same SubmittedAt is a no-op that returns
// the state produced the first time.
func (s *Service) SubmitReview(ctx context.Context, input SubmitReviewInput) (*domain.CardReview, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}

	now := s.clock()
	if err := input.Validate(now, s.opts.ReplayWindow, s.opts.FutureSkew); err != nil {
		return nil, err
	}

	submittedAt := input.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = now
	}
	// Postgres keeps microseconds; the key must survive a round trip.
	submittedAt = submittedAt.UTC().Truncate(time.Microsecond)

	unlock, err := s.locks.Lock(ctx, pairKey{learnerID: learnerID, flashcardID: input.FlashcardID})
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		result   *domain.CardReview
		replayed bool
		attempts int
	)

	err = retry.Do(ctx, s.opts.conflictBackoff(), func(ctx context.Context) error {
		attempts++
		r, rep, applyErr := s.applyReview(ctx, learnerID, input.FlashcardID, input.Rating, submittedAt)
		if errors.Is(applyErr, domain.ErrConflict) {
			s.log.DebugContext(ctx, "review write conflict, retrying",
				slog.String("flashcard_id", input.FlashcardID.String()),
				slog.Int("attempt", attempts),
			)
			return retry.RetryableError(applyErr)
		}
		if applyErr != nil {
			return applyErr
		}
		result, replayed = r, rep
		return nil
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		s.log.InfoContext(ctx, "review replayed",
			slog.String("learner_id", learnerID.String()),
			slog.String("flashcard_id", input.FlashcardID.String()),
			slog.Time("submitted_at", submittedAt),
		)
		return result, nil
	}

	s.log.InfoContext(ctx, "card reviewed",
		slog.String("learner_id", learnerID.String()),
		slog.String("flashcard_id", input.FlashcardID.String()),
		slog.String("rating", string(input.Rating)),
		slog.Int("interval_days", result.IntervalDays),
		slog.Float64("ease_factor", result.EaseFactor),
		slog.Int("review_count", result.ReviewCount),
		slog.Int("attempts", attempts),
	)

	return result, nil
}

// applyReview runs one read-modify-write attempt inside a transaction.
func (s *Service) applyReview(
	ctx context.Context,
	learnerID, flashcardID uuid.UUID,
	rating domain.Rating,
	submittedAt time.Time,
) (*domain.CardReview, bool, error) {
	var (
		result   *domain.CardReview
		replayed bool
	)

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		prior, err := s.submissions.Get(txCtx, learnerID, flashcardID, submittedAt)
		switch {
		case err == nil:
			current, getErr := s.reviews.Get(txCtx, learnerID, flashcardID)
			if getErr != nil && !errors.Is(getErr, domain.ErrNotFound) {
				return fmt.Errorf("get card review: %w", getErr)
			}
			result, replayed = replayState(prior, current), true
			return nil
		case !errors.Is(err, domain.ErrNotFound):
			return fmt.Errorf("get submission: %w", err)
		}

		exists, err := s.learners.Exists(txCtx, learnerID)
		if err != nil {
			return fmt.Errorf("check learner: %w", err)
		}
		if !exists {
			return fmt.Errorf("learner %s: %w", learnerID, domain.ErrNotFound)
		}

		if _, err := s.flashcards.GetByID(txCtx, learnerID, flashcardID); err != nil {
			return fmt.Errorf("get flashcard: %w", err)
		}

		current, err := s.reviews.Get(txCtx, learnerID, flashcardID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			current = &domain.CardReview{
				LearnerID:   learnerID,
				FlashcardID: flashcardID,
				EaseFactor:  s.srsConfig.DefaultEaseFactor,
			}
		case err != nil:
			return fmt.Errorf("get card review: %w", err)
		}

		reviewedAt := effectiveReviewTime(current, submittedAt)
		out, err := CalculateSRS(SRSInput{
			CurrentInterval: current.IntervalDays,
			CurrentEase:     current.EaseFactor,
			ReviewCount:     current.ReviewCount,
			Rating:          rating,
			Now:             reviewedAt,
			Config:          s.srsConfig,
		})
		if err != nil {
			return err
		}

		next := *current
		next.DifficultyRating = rating
		next.IntervalDays = out.NewInterval
		next.EaseFactor = out.NewEase
		next.ReviewCount = out.NewReviewCount
		next.NextReviewAt = out.NextReviewAt
		next.LastReviewedAt = reviewedAt

		if current.IsNew() {
			next.ID = uuid.New()
			result, err = s.reviews.Create(txCtx, &next)
		} else {
			result, err = s.reviews.Update(txCtx, &next)
		}
		if err != nil {
			return fmt.Errorf("save card review: %w", err)
		}

		err = s.submissions.Create(txCtx, &domain.ReviewSubmission{
			ID:           uuid.New(),
			LearnerID:    learnerID,
			FlashcardID:  flashcardID,
			SubmittedAt:  submittedAt,
			Rating:       rating,
			IntervalDays: result.IntervalDays,
			EaseFactor:   result.EaseFactor,
			ReviewCount:  result.ReviewCount,
			NextReviewAt: result.NextReviewAt,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			// Another process recorded this key first; the retry replays it.
			return fmt.Errorf("record submission: %w", domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("record submission: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, replayed, nil
}

// effectiveReviewTime schedules from submittedAt unless it precedes the
// stored last review (a delayed retry landing after a newer rating). The
// schedule never moves backwards; submittedAt stays the idempotency key.
func effectiveReviewTime(current *domain.CardReview, submittedAt time.Time) time.Time {
	if submittedAt.Before(current.LastReviewedAt) {
		return current.LastReviewedAt
	}
	return submittedAt
}

// replayState rebuilds the record as it was right after the prior submission.
func replayState(sub *domain.ReviewSubmission, current *domain.CardReview) *domain.CardReview {
	r := &domain.CardReview{
		LearnerID:   sub.LearnerID,
		FlashcardID: sub.FlashcardID,
	}
	if current != nil {
		*r = *current
	}
	r.DifficultyRating = sub.Rating
	r.IntervalDays = sub.IntervalDays
	r.EaseFactor = sub.EaseFactor
	r.ReviewCount = sub.ReviewCount
	r.NextReviewAt = sub.NextReviewAt
	r.LastReviewedAt = sub.NextReviewAt.Add(-time.Duration(sub.IntervalDays) * 24 * time.Hour)
	return r
}

// GetCardReview returns the learner's record for a flashcard.
func (s *Service) GetCardReview(ctx context.Context, flashcardID uuid.UUID) (*domain.CardReview, error) {
	learnerID, ok := ctxutil.LearnerIDFromCtx(ctx)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	if flashcardID == uuid.Nil {
		return nil, domain.NewValidationError("flashcard_id", "required")
	}

	r, err := s.reviews.Get(ctx, learnerID, flashcardID)
	if err != nil {
		return nil, fmt.Errorf("get card review: %w", err)
	}
	return r, nil
}
