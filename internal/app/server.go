package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/flashquest-backend/internal/auth"
	"github.com/heartmarshall/flashquest-backend/internal/config"
	"github.com/heartmarshall/flashquest-backend/internal/service/catalog"
	"github.com/heartmarshall/flashquest-backend/internal/service/review"
	"github.com/heartmarshall/flashquest-backend/internal/transport/middleware"
	"github.com/heartmarshall/flashquest-backend/internal/transport/rest"
)

type services struct {
	review  *review.Service
	catalog *catalog.Service
}

// newHTTPHandler assembles the router and middleware stack:
//
//	Recovery -> RequestID -> Logger -> CORS -> mux
//	                                           `-> Auth -> RateLimit -> API route
//
// Probes skip Auth and RateLimit. limiter may be nil.
func newHTTPHandler(
	cfg config.Config,
	logger *slog.Logger,
	svc services,
	tokens *auth.JWTManager,
	limiter *middleware.RateLimiter,
	checks ...rest.Check,
) http.Handler {
	api := []middleware.Middleware{middleware.Auth(tokens, logger)}
	if limiter != nil {
		api = append(api, limiter.Limit())
	}

	mux := rest.NewRouter(rest.Handlers{
		Review:  rest.NewReviewHandler(svc.review, logger),
		Catalog: rest.NewCatalogHandler(svc.catalog, logger),
		Health:  rest.NewHealthHandler(Version, checks...),
	}, middleware.Chain(api...))

	return middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(mux)
}
