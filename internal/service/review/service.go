package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type cardReviewRepo interface {
	Get(ctx context.Context, learnerID, flashcardID uuid.UUID) (*domain.CardReview, error)
	Create(ctx context.Context, r *domain.CardReview) (*domain.CardReview, error)
	Update(ctx context.Context, r *domain.CardReview) (*domain.CardReview, error)
	ListDue(ctx context.Context, learnerID uuid.UUID, deckID *uuid.UUID, now time.Time, after *domain.DueCursor, limit int) ([]domain.QueueItem, error)
	CountDue(ctx context.Context, learnerID uuid.UUID, deckID *uuid.UUID, now time.Time) (int, error)
}

type flashcardRepo interface {
	GetByID(ctx context.Context, learnerID, flashcardID uuid.UUID) (*domain.Flashcard, error)
	ListUnreviewed(ctx context.Context, learnerID, deckID uuid.UUID, after *domain.NewCursor, limit int) ([]domain.Flashcard, error)
	CountUnreviewed(ctx context.Context, learnerID, deckID uuid.UUID) (int, error)
}

type submissionRepo interface {
	Get(ctx context.Context, learnerID, flashcardID uuid.UUID, submittedAt time.Time) (*domain.ReviewSubmission, error)
	Create(ctx context.Context, s *domain.ReviewSubmission) error
}

type learnerRepo interface {
	Exists(ctx context.Context, learnerID uuid.UUID) (bool, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Options tune submission handling and queue paging.
type Options struct {
	ConflictRetries int           // extra attempts after a lost version race
	ConflictBackoff time.Duration // base delay, doubled per attempt
	ReplayWindow    time.Duration // oldest accepted submitted_at relative to now
	FutureSkew      time.Duration // newest accepted submitted_at relative to now
	QueuePageSize   int           // default page size for Queue
}

// conflictBackoff is the retry policy for lost version races. A
// non-positive base falls back to the default instead of panicking in
// retry.NewExponential.
func (o Options) conflictBackoff() retry.Backoff {
	base := o.ConflictBackoff
	if base <= 0 {
		base = DefaultOptions().ConflictBackoff
	}
	return retry.WithMaxRetries(uint64(max(0, o.ConflictRetries)), retry.NewExponential(base))
}

// DefaultOptions returns the values used when config leaves them unset.
func DefaultOptions() Options {
	return Options{
		ConflictRetries: 3,
		ConflictBackoff: 20 * time.Millisecond,
		ReplayWindow:    7 * 24 * time.Hour,
		FutureSkew:      5 * time.Minute,
		QueuePageSize:   50,
	}
}

// Service implements review submission and queue building.
type Service struct {
	reviews     cardReviewRepo
	flashcards  flashcardRepo
	submissions submissionRepo
	learners    learnerRepo
	tx          txManager
	locks       *keyLock[pairKey]
	log         *slog.Logger
	srsConfig   domain.SRSConfig
	opts        Options
	clock       func() time.Time
}

// NewService creates a new review service.
func NewService(
	log *slog.Logger,
	reviews cardReviewRepo,
	flashcards flashcardRepo,
	submissions submissionRepo,
	learners learnerRepo,
	tx txManager,
	srsConfig domain.SRSConfig,
	opts Options,
) *Service {
	return &Service{
		reviews:     reviews,
		flashcards:  flashcards,
		submissions: submissions,
		learners:    learners,
		tx:          tx,
		locks:       newKeyLock[pairKey](),
		log:         log.With("service", "review"),
		srsConfig:   srsConfig,
		opts:        opts,
		clock:       time.Now,
	}
}

// pairKey identifies the single CardReview a submission mutates.
type pairKey struct {
	learnerID   uuid.UUID
	flashcardID uuid.UUID
}
