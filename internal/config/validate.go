package config

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if err := c.SRS.validate(); err != nil {
		return fmt.Errorf("srs: %w", err)
	}

	if err := c.Review.validate(); err != nil {
		return fmt.Errorf("review: %w", err)
	}

	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate_limit: rps and burst must be > 0 when enabled")
	}

	return nil
}

func (s *SRSConfig) validate() error {
	if s.MinEaseFactor < domain.EaseFloor {
		return fmt.Errorf("min_ease_factor must be >= %v (got %v)", domain.EaseFloor, s.MinEaseFactor)
	}
	if s.DefaultEaseFactor < s.MinEaseFactor {
		return fmt.Errorf("default_ease_factor must be >= min_ease_factor (got %v < %v)", s.DefaultEaseFactor, s.MinEaseFactor)
	}
	if s.MaxIntervalDays <= 0 {
		return fmt.Errorf("max_interval_days must be > 0 (got %d)", s.MaxIntervalDays)
	}
	if s.HardMultiplier < 1 {
		return fmt.Errorf("hard_multiplier must be >= 1 (got %v)", s.HardMultiplier)
	}
	if s.EasyBonus < 1 {
		return fmt.Errorf("easy_bonus must be >= 1 (got %v)", s.EasyBonus)
	}
	if s.AgainEasePenalty < 0 || s.HardEasePenalty < 0 || s.EasyEaseBonus < 0 {
		return fmt.Errorf("ease adjustments must be >= 0")
	}
	if s.FirstGoodInterval < 1 || s.FirstEasyInterval < 1 {
		return fmt.Errorf("first review intervals must be >= 1 day")
	}
	return nil
}

func (r *ReviewConfig) validate() error {
	if r.ConflictRetries < 0 {
		return fmt.Errorf("conflict_retries must be >= 0 (got %d)", r.ConflictRetries)
	}
	// go-retry's exponential backoff rejects a non-positive base.
	if r.ConflictBackoff <= 0 {
		return fmt.Errorf("conflict_backoff must be > 0 (got %v)", r.ConflictBackoff)
	}
	if r.FutureSkew < 0 {
		return fmt.Errorf("future_skew must be >= 0 (got %v)", r.FutureSkew)
	}
	if r.ReplayWindow <= 0 {
		return fmt.Errorf("replay_window must be > 0 (got %v)", r.ReplayWindow)
	}
	if r.QueuePageSize < 1 || r.QueuePageSize > 500 {
		return fmt.Errorf("queue_page_size must be in [1, 500] (got %d)", r.QueuePageSize)
	}
	// Pruning a submission inside the replay window would let a retried
	// rating apply twice.
	if r.SubmissionRetention() < r.ReplayWindow {
		return fmt.Errorf("submission_retention_days (%d) must cover replay_window (%v)", r.SubmissionRetentionDays, r.ReplayWindow)
	}
	return nil
}
