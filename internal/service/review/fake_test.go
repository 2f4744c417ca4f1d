package review

import (
	"bytes"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// memStore is an in-memory stand-in for the Postgres repositories. Version
// checks mirror the SQL so conflict handling can be exercised.
type memStore struct {
	mu          sync.Mutex
	learners    map[uuid.UUID]bool
	decks       map[uuid.UUID]uuid.UUID // deck → learner
	flashcards  map[uuid.UUID]domain.Flashcard
	reviews     map[pairKey]domain.CardReview
	submissions map[submissionKey]domain.ReviewSubmission

	// beforeUpdate runs before the version check; a non-nil error aborts the write.
	beforeUpdate func(r *domain.CardReview) error
}

type submissionKey struct {
	pair        pairKey
	submittedAt time.Time
}

func newMemStore() *memStore {
	return &memStore{
		learners:    make(map[uuid.UUID]bool),
		decks:       make(map[uuid.UUID]uuid.UUID),
		flashcards:  make(map[uuid.UUID]domain.Flashcard),
		reviews:     make(map[pairKey]domain.CardReview),
		submissions: make(map[submissionKey]domain.ReviewSubmission),
	}
}

func (m *memStore) addLearner() uuid.UUID {
	id := uuid.New()
	m.learners[id] = true
	return id
}

func (m *memStore) addDeck(learnerID uuid.UUID) uuid.UUID {
	id := uuid.New()
	m.decks[id] = learnerID
	return id
}

func (m *memStore) addFlashcard(deckID uuid.UUID, position int) domain.Flashcard {
	fc := domain.Flashcard{ID: uuid.New(), DeckID: deckID, Position: position, Front: "cat", Back: "кот"}
	m.flashcards[fc.ID] = fc
	return fc
}

func (m *memStore) seedReview(r domain.CardReview) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	m.reviews[pairKey{learnerID: r.LearnerID, flashcardID: r.FlashcardID}] = r
}

func (m *memStore) review(learnerID, flashcardID uuid.UUID) (domain.CardReview, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reviews[pairKey{learnerID: learnerID, flashcardID: flashcardID}]
	return r, ok
}

func (m *memStore) ownsFlashcard(learnerID uuid.UUID, fc domain.Flashcard) bool {
	return m.decks[fc.DeckID] == learnerID
}

func (m *memStore) service(now time.Time) *Service {
	opts := DefaultOptions()
	opts.ConflictBackoff = time.Millisecond
	svc := NewService(
		discardLogger(),
		reviewRepoFake{m},
		flashcardRepoFake{m},
		submissionRepoFake{m},
		learnerRepoFake{m},
		passthroughTx{},
		domain.DefaultSRSConfig(),
		opts,
	)
	svc.clock = func() time.Time { return now }
	return svc
}

type passthroughTx struct{}

func (passthroughTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ---------------------------------------------------------------------------
// cardReviewRepo
// ---------------------------------------------------------------------------

type reviewRepoFake struct{ m *memStore }

func (f reviewRepoFake) Get(_ context.Context, learnerID, flashcardID uuid.UUID) (*domain.CardReview, error) {
	r, ok := f.m.review(learnerID, flashcardID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (f reviewRepoFake) Create(_ context.Context, r *domain.CardReview) (*domain.CardReview, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := pairKey{learnerID: r.LearnerID, flashcardID: r.FlashcardID}
	if _, exists := f.m.reviews[key]; exists {
		return nil, domain.ErrConflict
	}
	out := *r
	out.Version = 1
	f.m.reviews[key] = out
	return &out, nil
}

func (f reviewRepoFake) Update(_ context.Context, r *domain.CardReview) (*domain.CardReview, error) {
	if f.m.beforeUpdate != nil {
		if err := f.m.beforeUpdate(r); err != nil {
			return nil, err
		}
	}
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := pairKey{learnerID: r.LearnerID, flashcardID: r.FlashcardID}
	stored, ok := f.m.reviews[key]
	if !ok || stored.Version != r.Version {
		return nil, domain.ErrConflict
	}
	out := *r
	out.Version++
	f.m.reviews[key] = out
	return &out, nil
}

func (f reviewRepoFake) due(learnerID uuid.UUID, deckID *uuid.UUID, now time.Time) []domain.QueueItem {
	var items []domain.QueueItem
	for key, r := range f.m.reviews {
		if key.learnerID != learnerID || r.NextReviewAt.After(now) {
			continue
		}
		fc := f.m.flashcards[key.flashcardID]
		if deckID != nil && fc.DeckID != *deckID {
			continue
		}
		r := r
		items = append(items, domain.QueueItem{Flashcard: fc, Review: &r})
	}
	slices.SortFunc(items, func(a, b domain.QueueItem) int {
		if c := a.Review.NextReviewAt.Compare(b.Review.NextReviewAt); c != 0 {
			return c
		}
		return bytes.Compare(a.Flashcard.ID[:], b.Flashcard.ID[:])
	})
	return items
}

func (f reviewRepoFake) ListDue(_ context.Context, learnerID uuid.UUID, deckID *uuid.UUID, now time.Time, after *domain.DueCursor, limit int) ([]domain.QueueItem, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var page []domain.QueueItem
	for _, item := range f.due(learnerID, deckID, now) {
		if after != nil {
			c := item.Review.NextReviewAt.Compare(after.NextReviewAt)
			if c < 0 || (c == 0 && bytes.Compare(item.Flashcard.ID[:], after.FlashcardID[:]) <= 0) {
				continue
			}
		}
		page = append(page, item)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (f reviewRepoFake) CountDue(_ context.Context, learnerID uuid.UUID, deckID *uuid.UUID, now time.Time) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return len(f.due(learnerID, deckID, now)), nil
}

// ---------------------------------------------------------------------------
// flashcardRepo
// ---------------------------------------------------------------------------

type flashcardRepoFake struct{ m *memStore }

func (f flashcardRepoFake) GetByID(_ context.Context, learnerID, flashcardID uuid.UUID) (*domain.Flashcard, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	fc, ok := f.m.flashcards[flashcardID]
	if !ok || !f.m.ownsFlashcard(learnerID, fc) {
		return nil, domain.ErrNotFound
	}
	return &fc, nil
}

func (f flashcardRepoFake) unreviewed(learnerID, deckID uuid.UUID) []domain.Flashcard {
	var out []domain.Flashcard
	if f.m.decks[deckID] != learnerID {
		return nil
	}
	for _, fc := range f.m.flashcards {
		if fc.DeckID != deckID {
			continue
		}
		if _, reviewed := f.m.reviews[pairKey{learnerID: learnerID, flashcardID: fc.ID}]; reviewed {
			continue
		}
		out = append(out, fc)
	}
	slices.SortFunc(out, func(a, b domain.Flashcard) int {
		if a.Position != b.Position {
			return a.Position - b.Position
		}
		return bytes.Compare(a.ID[:], b.ID[:])
	})
	return out
}

func (f flashcardRepoFake) ListUnreviewed(_ context.Context, learnerID, deckID uuid.UUID, after *domain.NewCursor, limit int) ([]domain.Flashcard, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()

	var page []domain.Flashcard
	for _, fc := range f.unreviewed(learnerID, deckID) {
		if after != nil {
			if fc.Position < after.Position ||
				(fc.Position == after.Position && bytes.Compare(fc.ID[:], after.FlashcardID[:]) <= 0) {
				continue
			}
		}
		page = append(page, fc)
		if len(page) == limit {
			break
		}
	}
	return page, nil
}

func (f flashcardRepoFake) CountUnreviewed(_ context.Context, learnerID, deckID uuid.UUID) (int, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return len(f.unreviewed(learnerID, deckID)), nil
}

// ---------------------------------------------------------------------------
// submissionRepo / learnerRepo
// ---------------------------------------------------------------------------

type submissionRepoFake struct{ m *memStore }

func (f submissionRepoFake) Get(_ context.Context, learnerID, flashcardID uuid.UUID, submittedAt time.Time) (*domain.ReviewSubmission, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	s, ok := f.m.submissions[submissionKey{pair: pairKey{learnerID: learnerID, flashcardID: flashcardID}, submittedAt: submittedAt}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (f submissionRepoFake) Create(_ context.Context, s *domain.ReviewSubmission) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	key := submissionKey{pair: pairKey{learnerID: s.LearnerID, flashcardID: s.FlashcardID}, submittedAt: s.SubmittedAt}
	if _, exists := f.m.submissions[key]; exists {
		return domain.ErrAlreadyExists
	}
	f.m.submissions[key] = *s
	return nil
}

type learnerRepoFake struct{ m *memStore }

func (f learnerRepoFake) Exists(_ context.Context, learnerID uuid.UUID) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.m.learners[learnerID], nil
}
