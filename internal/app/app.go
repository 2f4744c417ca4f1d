package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres/cardreview"
	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres/deck"
	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres/flashcard"
	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres/learner"
	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres/submission"
	"github.com/heartmarshall/flashquest-backend/internal/auth"
	"github.com/heartmarshall/flashquest-backend/internal/config"
	"github.com/heartmarshall/flashquest-backend/internal/service/catalog"
	"github.com/heartmarshall/flashquest-backend/internal/service/review"
	"github.com/heartmarshall/flashquest-backend/internal/transport/middleware"
	"github.com/heartmarshall/flashquest-backend/internal/transport/rest"
)

// Run is the server entry point. It returns when ctx is cancelled and the
// HTTP server has drained, or when startup fails.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(ctx, cfg.Database.DSN, logger); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool)
	decks := deck.New(pool)
	flashcards := flashcard.New(pool)

	svc := services{
		review: review.NewService(
			logger,
			cardreview.New(pool),
			flashcards,
			submission.New(pool),
			learner.New(pool),
			txm,
			cfg.SRS.Domain(),
			reviewOptions(cfg.Review),
		),
		catalog: catalog.NewService(logger, decks, flashcards),
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
		defer limiter.Stop()
	}

	handler := newHTTPHandler(*cfg, logger, svc, tokens, limiter,
		rest.Check{Name: "database", Fn: pool.Ping},
	)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return serve(ctx, srv, cfg.Server.ShutdownTimeout, logger)
}

// serve runs srv until ctx is done, then shuts it down within timeout.
func serve(ctx context.Context, srv *http.Server, timeout time.Duration, logger *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func reviewOptions(cfg config.ReviewConfig) review.Options {
	return review.Options{
		ConflictRetries: cfg.ConflictRetries,
		ConflictBackoff: cfg.ConflictBackoff,
		ReplayWindow:    cfg.ReplayWindow,
		FutureSkew:      cfg.FutureSkew,
		QueuePageSize:   cfg.QueuePageSize,
	}
}
