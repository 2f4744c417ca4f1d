package rest

import (
	"net/http"

	"github.com/heartmarshall/flashquest-backend/internal/transport/middleware"
)

// Handlers groups the route handlers served by the router.
type Handlers struct {
	Review  *ReviewHandler
	Catalog *CatalogHandler
	Health  *HealthHandler
}

// NewRouter registers all routes. api wraps the learner-facing routes
// (authentication, rate limiting); health endpoints are served without it.
func NewRouter(h Handlers, api middleware.Middleware) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /live", h.Health.Live)
	mux.HandleFunc("GET /ready", h.Health.Ready)
	mux.HandleFunc("GET /health", h.Health.Health)

	route := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, api(fn))
	}

	route("POST /card_reviews", h.Review.SubmitReview)
	route("GET /card_reviews/{flashcardId}", h.Review.GetCardReview)
	route("GET /review_queue", h.Review.Queue)
	route("GET /review_queue/summary", h.Review.QueueSummary)

	route("GET /decks", h.Catalog.ListDecks)
	route("GET /decks/{deckId}/flashcards", h.Catalog.DeckFlashcards)

	return mux
}
