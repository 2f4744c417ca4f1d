// Command cleanup prunes review_submissions rows past the retention window.
// Run it from cron; a non-zero exit means nothing was deleted.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres"
	"github.com/heartmarshall/flashquest-backend/internal/adapter/postgres/submission"
	"github.com/heartmarshall/flashquest-backend/internal/app"
	"github.com/heartmarshall/flashquest-backend/internal/config"
)

const timeout = 5 * time.Minute

type pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cleanup: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := prune(ctx, logger, submission.New(pool), time.Now(), cfg.Review.SubmissionRetention()); err != nil {
		pool.Close()
		os.Exit(1)
	}
}

// prune deletes ledger rows older than now-retention. Config validation keeps
// retention at or above the replay window.
func prune(ctx context.Context, logger *slog.Logger, p pruner, now time.Time, retention time.Duration) error {
	cutoff := now.Add(-retention)

	deleted, err := p.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("prune submissions failed",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff),
		)
		return err
	}

	logger.Info("prune submissions completed",
		slog.Int64("deleted", deleted),
		slog.Time("cutoff", cutoff),
	)
	return nil
}
