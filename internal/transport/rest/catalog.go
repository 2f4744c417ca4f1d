package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

type catalogService interface {
	ListDecks(ctx context.Context) ([]domain.Deck, error)
	DeckFlashcards(ctx context.Context, deckID uuid.UUID) ([]domain.Flashcard, error)
}

// CatalogHandler serves read-only deck and flashcard listings.
type CatalogHandler struct {
	svc catalogService
	log *slog.Logger
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(svc catalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: logger.With("handler", "catalog")}
}

// DeckResponse is the JSON form of a deck.
type DeckResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// FlashcardResponse is the JSON form of a flashcard.
type FlashcardResponse struct {
	ID       string `json:"id"`
	DeckID   string `json:"deck_id"`
	Position int    `json:"position"`
	Front    string `json:"front"`
	Back     string `json:"back"`
}

// ListDecks handles GET /decks.
func (h *CatalogHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := h.svc.ListDecks(r.Context())
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := make([]DeckResponse, len(decks))
	for i, d := range decks {
		resp[i] = DeckResponse{ID: d.ID.String(), Title: d.Title, CreatedAt: d.CreatedAt}
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeckFlashcards handles GET /decks/{deckId}/flashcards.
func (h *CatalogHandler) DeckFlashcards(w http.ResponseWriter, r *http.Request) {
	deckID, err := pathUUID(r, "deckId")
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	cards, err := h.svc.DeckFlashcards(r.Context(), deckID)
	if err != nil {
		writeDomainError(w, r, h.log, err)
		return
	}

	resp := make([]FlashcardResponse, len(cards))
	for i, c := range cards {
		resp[i] = toFlashcardResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

func toFlashcardResponse(c domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:       c.ID.String(),
		DeckID:   c.DeckID.String(),
		Position: c.Position,
		Front:    c.Front,
		Back:     c.Back,
	}
}
