package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
	"github.com/heartmarshall/flashquest-backend/internal/service/review"
)

type reviewService interface {
	SubmitReview(ctx context.Context, input review.SubmitReviewInput) (*domain.CardReview, error)
	GetCardReview(ctx context.Context, flashcardID uuid.UUID) (*domain.CardReview, error)
	QueueItems(ctx context.Context, input review.QueueInput, limit int) ([]domain.QueueItem, error)
	QueueSummary(ctx context.Context, deckID *uuid.UUID) (domain.QueueSummary, error)
}

const defaultQueueLimit = 20

// ReviewHandler serves card review and review queue endpoints.
type ReviewHandler struct {
	svc reviewService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc reviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, log: logger.With("handler", "review")}
}

type submitReviewRequest struct {
	FlashcardID      string     `json:"flashcard_id"      validate:"required,uuid"`
	DifficultyRating string     `json:"difficulty_rating" validate:"required"`
	SubmittedAt      *time.Time `json:"submitted_at"`
}

type queueRequest struct {
	DeckID string `query:"deck_id" validate:"omitempty,uuid"`
	Limit  int    `query:"limit"   validate:"min=0,max=500"`
}

// CardReviewResponse is the JSON form of a card review record.
type CardReviewResponse struct {
	ID               string    `json:"id"`
	LearnerID        string    `json:"learner_id"`
	FlashcardID      string    `json:"flashcard_id"`
	DifficultyRating string    `json:"difficulty_rating"`
	IntervalDays     int       `json:"interval_days"`
	EaseFactor       float64   `json:"ease_factor"`
	ReviewCount      int       `json:"review_count"`
	NextReviewAt     time.Time `json:"next_review_at"`
	LastReviewedAt   time.Time `json:"last_reviewed_at"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// QueueItemResponse is one entry of the review queue.
type QueueItemResponse struct {
	Flashcard FlashcardResponse   `json:"flashcard"`
	Review    *CardReviewResponse `json:"review"`
	IsNew     bool                `json:"is_new"`
}

// QueueSummaryResponse holds queue counts.
type QueueSummaryResponse struct {
	DueCount int `json:"due_count"`
	NewCount int `json:"new_count"`
}

// SubmitReview handles POST /card_reviews.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req submitReviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	rating, err := domain.ParseRating(req.DifficultyRating)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	input := review.SubmitReviewInput{
		FlashcardID: uuid.MustParse(req.FlashcardID),
		Rating:      rating,
	}
	if req.SubmittedAt != nil {
		input.SubmittedAt = *req.SubmittedAt
	}

	rec, err := h.svc.SubmitReview(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCardReviewResponse(rec))
}

// GetCardReview handles GET /card_reviews/{flashcardId}.
func (h *ReviewHandler) GetCardReview(w http.ResponseWriter, r *http.Request) {
	flashcardID, err := pathUUID(r, "flashcardId")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	rec, err := h.svc.GetCardReview(r.Context(), flashcardID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toCardReviewResponse(rec))
}

// Queue handles GET /review_queue?deck_id=&limit=.
func (h *ReviewHandler) Queue(w http.ResponseWriter, r *http.Request) {
	req, err := parseQueueRequest(r)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultQueueLimit
	}

	items, err := h.svc.QueueItems(r.Context(), review.QueueInput{DeckID: optionalUUID(req.DeckID), PageSize: limit}, limit)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := make([]QueueItemResponse, len(items))
	for i, it := range items {
		resp[i] = QueueItemResponse{Flashcard: toFlashcardResponse(it.Flashcard), IsNew: it.IsNew()}
		if it.Review != nil {
			rr := toCardReviewResponse(it.Review)
			resp[i].Review = &rr
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// QueueSummary handles GET /review_queue/summary?deck_id=.
func (h *ReviewHandler) QueueSummary(w http.ResponseWriter, r *http.Request) {
	req, err := parseQueueRequest(r)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	summary, err := h.svc.QueueSummary(r.Context(), optionalUUID(req.DeckID))
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, QueueSummaryResponse{DueCount: summary.DueCount, NewCount: summary.NewCount})
}

func parseQueueRequest(r *http.Request) (queueRequest, error) {
	q := r.URL.Query()
	req := queueRequest{DeckID: q.Get("deck_id")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, domain.NewValidationError("limit", "must be an integer")
		}
		req.Limit = n
	}
	if err := validateStruct(&req); err != nil {
		return req, err
	}
	return req, nil
}

// optionalUUID parses an already validated id; empty means absent.
func optionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id := uuid.MustParse(s)
	return &id
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a valid id")
	}
	return id, nil
}

func toCardReviewResponse(c *domain.CardReview) CardReviewResponse {
	return CardReviewResponse{
		ID:               c.ID.String(),
		LearnerID:        c.LearnerID.String(),
		FlashcardID:      c.FlashcardID.String(),
		DifficultyRating: c.DifficultyRating.String(),
		IntervalDays:     c.IntervalDays,
		EaseFactor:       c.EaseFactor,
		ReviewCount:      c.ReviewCount,
		NextReviewAt:     c.NextReviewAt,
		LastReviewedAt:   c.LastReviewedAt,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}
