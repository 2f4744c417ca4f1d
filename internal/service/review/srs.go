package review

import (
	"math"
	"time"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// SRSInput holds all data needed for SRS calculation. Pure value, no side effects.
type SRSInput struct {
	CurrentInterval int
	CurrentEase     float64
	ReviewCount     int
	Rating          domain.Rating
	Now             time.Time
	Config          domain.SRSConfig
}

// SRSOutput is the result of SRS calculation.
type SRSOutput struct {
	NewInterval    int
	NewEase        float64
	NewReviewCount int
	NextReviewAt   time.Time
}

// FreshInput returns the input for a card that has never been reviewed.
func FreshInput(cfg domain.SRSConfig, rating domain.Rating, now time.Time) SRSInput {
	return SRSInput{
		CurrentEase: cfg.DefaultEaseFactor,
		Rating:      rating,
		Now:         now,
		Config:      cfg,
	}
}

// CalculateSRS is a pure function. No DB, no context, no logger.
// Interval growth always uses the ease from before this review.
func CalculateSRS(input SRSInput) (SRSOutput, error) {
	if !input.Rating.IsValid() {
		return SRSOutput{}, domain.NewValidationError("difficulty_rating", "must be one of again, hard, good, easy")
	}
	if input.CurrentInterval < 0 {
		return SRSOutput{}, domain.NewValidationError("interval_days", "must be non-negative")
	}

	cfg := input.Config
	cur := input.CurrentInterval
	ease := math.Max(cfg.MinEaseFactor, input.CurrentEase)

	var interval int
	newEase := ease

	switch input.Rating {
	case domain.RatingAgain:
		interval = 0
		newEase = ease - cfg.AgainEasePenalty

	case domain.RatingHard:
		if cur == 0 {
			interval = cfg.FirstGoodInterval
		} else {
			interval = ceilDays(float64(cur) * cfg.HardMultiplier)
		}
		newEase = ease - cfg.HardEasePenalty

	case domain.RatingGood:
		if cur == 0 {
			interval = cfg.FirstGoodInterval
		} else {
			interval = max(cur+1, roundDays(float64(cur)*ease))
		}

	case domain.RatingEasy:
		grown := roundDays(float64(cur) * ease * cfg.EasyBonus)
		if cur == 0 {
			interval = max(cfg.FirstEasyInterval, grown)
		} else {
			interval = max(cur+1, grown)
		}
		newEase = ease + cfg.EasyEaseBonus
	}

	if input.Rating != domain.RatingAgain {
		interval = max(1, interval)
	}
	// Lowering MaxIntervalDays stops growth but never shrinks an interval.
	interval = min(interval, max(cur, cfg.MaxIntervalDays))
	newEase = roundEase(math.Max(cfg.MinEaseFactor, newEase))

	return SRSOutput{
		NewInterval:    interval,
		NewEase:        newEase,
		NewReviewCount: input.ReviewCount + 1,
		NextReviewAt:   input.Now.Add(time.Duration(interval) * 24 * time.Hour),
	}, nil
}

// float noise: 5 × 1.2 must stay 6, not 7.
const intervalEpsilon = 1e-9

func ceilDays(v float64) int {
	return int(math.Ceil(v - intervalEpsilon))
}

func roundDays(v float64) int {
	return int(math.Round(v))
}

// roundEase keeps two decimals so repeated ±0.15 steps do not drift.
func roundEase(v float64) float64 {
	return math.Round(v*100) / 100
}
