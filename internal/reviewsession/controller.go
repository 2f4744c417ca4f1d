package reviewsession

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Submitter persists one rating. submittedAt identifies the submission;
// repeating a call with the same value must not apply the rating twice.
type Submitter interface {
	SubmitReview(ctx context.Context, flashcardID uuid.UUID, rating domain.Rating, submittedAt time.Time) (*domain.CardReview, error)
}

// Config tunes submission retries.
type Config struct {
	MaxRetries int           // automatic retries per Rate call
	Backoff    time.Duration // base delay, doubled per retry
}

func (c Config) backoff() retry.Backoff {
	base := c.Backoff
	if base <= 0 {
		base = DefaultConfig().Backoff
	}
	return retry.WithMaxRetries(uint64(max(0, c.MaxRetries)), retry.NewExponential(base))
}

// DefaultConfig returns the retry policy used by the study client.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, Backoff: 200 * time.Millisecond}
}

// Stats are the session-local counters shown to the learner.
type Stats struct {
	Reviewed   int
	Streak     int // consecutive ratings other than again
	BestStreak int
	PerRating  map[domain.Rating]int
}

// Controller drives one review session:
//
//	Idle → Presenting → AwaitingRating → Advancing → Presenting | Complete
//
// Failed and Abandoned are terminal. Methods are safe for concurrent use,
// but a session is meant to be driven by a single UI loop.
type Controller struct {
	source    Source
	submitter Submitter
	cfg       Config
	log       *slog.Logger
	clock     func() time.Time

	mu        sync.Mutex
	state     State
	cards     []domain.Flashcard
	pos       int
	submitted map[uuid.UUID]struct{}
	pendingAt map[uuid.UUID]time.Time
	stats     Stats
	err       error
}

// New creates a controller in the Idle state.
func New(source Source, submitter Submitter, cfg Config, log *slog.Logger) *Controller {
	return &Controller{
		source:    source,
		submitter: submitter,
		cfg:       cfg,
		log:       log.With("component", "reviewsession"),
		clock:     time.Now,
		state:     StateIdle,
		submitted: make(map[uuid.UUID]struct{}),
		pendingAt: make(map[uuid.UUID]time.Time),
		stats:     Stats{PerRating: make(map[domain.Rating]int)},
	}
}

// Load fetches the session cards. An empty queue completes the session
// immediately. A retryable failure leaves the controller Idle so Load can
// be called again.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		defer c.mu.Unlock()
		return c.invalid("load")
	}
	c.mu.Unlock()

	cards, err := c.source.Load(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateIdle {
		return c.invalid("load")
	}
	if err != nil {
		if !domain.IsRetryable(err) && ctx.Err() == nil {
			c.fail(err)
		}
		return err
	}

	seen := make(map[uuid.UUID]struct{}, len(cards))
	c.cards = c.cards[:0]
	for _, fc := range cards {
		if _, dup := seen[fc.ID]; dup {
			continue
		}
		seen[fc.ID] = struct{}{}
		c.cards = append(c.cards, fc)
	}

	if len(c.cards) == 0 {
		c.state = StateComplete
		return nil
	}
	c.pos = 0
	c.state = StatePresenting
	c.log.DebugContext(ctx, "session loaded", slog.Int("cards", len(c.cards)))
	return nil
}

// Reveal shows the answer of the current card.
func (c *Controller) Reveal() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePresenting {
		return c.invalid("reveal")
	}
	c.state = StateAwaitingRating
	return nil
}

// Rate submits the rating for the current card and advances. Retryable
// failures are retried with a fixed submitted_at; if they persist the
// error is returned and the same card stays awaiting a rating.
func (c *Controller) Rate(ctx context.Context, rating domain.Rating) error {
	if !rating.IsValid() {
		return domain.NewValidationError("difficulty_rating", "must be one of again, hard, good, easy")
	}

	c.mu.Lock()
	if c.state != StateAwaitingRating {
		defer c.mu.Unlock()
		return c.invalid("rate")
	}
	card := c.cards[c.pos]
	submittedAt, ok := c.pendingAt[card.ID]
	if !ok {
		submittedAt = c.clock().UTC()
		c.pendingAt[card.ID] = submittedAt
	}
	c.submitted[card.ID] = struct{}{}
	c.state = StateAdvancing
	c.mu.Unlock()

	rec, err := c.submit(ctx, card.ID, rating, submittedAt)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateAbandoned {
		return err
	}

	if err != nil {
		if domain.IsRetryable(err) || ctx.Err() != nil {
			c.state = StateAwaitingRating
			c.log.WarnContext(ctx, "rating not saved",
				slog.String("flashcard_id", card.ID.String()),
				slog.String("error", err.Error()),
			)
			return err
		}
		c.fail(err)
		return err
	}

	delete(c.pendingAt, card.ID)
	// A reused submitted_at may replay an earlier attempt that did land;
	// count the rating the server stored.
	if rec != nil && rec.DifficultyRating.IsValid() {
		rating = rec.DifficultyRating
	}
	c.record(rating)
	c.advance()
	return nil
}

func (c *Controller) submit(ctx context.Context, flashcardID uuid.UUID, rating domain.Rating, submittedAt time.Time) (*domain.CardReview, error) {
	var rec *domain.CardReview
	err := retry.Do(ctx, c.cfg.backoff(), func(ctx context.Context) error {
		r, err := c.submitter.SubmitReview(ctx, flashcardID, rating, submittedAt)
		if domain.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		rec = r
		return err
	})
	return rec, err
}

func (c *Controller) record(rating domain.Rating) {
	c.stats.Reviewed++
	c.stats.PerRating[rating]++
	if rating == domain.RatingAgain {
		c.stats.Streak = 0
		return
	}
	c.stats.Streak++
	c.stats.BestStreak = max(c.stats.BestStreak, c.stats.Streak)
}

// advance moves to the next card whose submission was never started.
func (c *Controller) advance() {
	for i := c.pos + 1; i < len(c.cards); i++ {
		if _, done := c.submitted[c.cards[i].ID]; !done {
			c.pos = i
			c.state = StatePresenting
			return
		}
	}
	c.pos = len(c.cards)
	c.state = StateComplete
}

// Abandon ends the session. Ratings already submitted are kept; nothing is
// sent for the current card.
func (c *Controller) Abandon() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.IsTerminal() {
		return c.invalid("abandon")
	}
	c.state = StateAbandoned
	return nil
}

func (c *Controller) fail(err error) {
	c.state = StateFailed
	c.err = err
}

// invalid must be called with c.mu held.
func (c *Controller) invalid(action string) error {
	return fmt.Errorf("%s in state %s: %w", action, c.state, ErrInvalidTransition)
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Current returns the card being presented or awaiting a rating.
func (c *Controller) Current() (domain.Flashcard, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StatePresenting, StateAwaitingRating, StateAdvancing:
		return c.cards[c.pos], true
	}
	return domain.Flashcard{}, false
}

// Remaining counts cards not yet submitted, including the current one.
func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	inFlight := c.state == StateAwaitingRating || c.state == StateAdvancing
	n := 0
	for i, fc := range c.cards {
		_, done := c.submitted[fc.ID]
		if !done || (inFlight && i == c.pos) {
			n++
		}
	}
	return n
}

// Stats returns a copy of the session counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.PerRating = make(map[domain.Rating]int, len(c.stats.PerRating))
	for k, v := range c.stats.PerRating {
		s.PerRating[k] = v
	}
	return s
}

// Err returns the error that moved the session to Failed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
