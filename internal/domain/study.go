package domain

// EaseFloor is the lowest ease SM-2 allows; card_reviews enforces it with a
// CHECK constraint.
const EaseFloor = 1.3

// SRSConfig holds the scheduler constants. Values come from config.SRSConfig.
type SRSConfig struct {
	DefaultEaseFactor float64 // ease of a fresh card
	MinEaseFactor     float64 // ease never drops below this; >= EaseFloor
	MaxIntervalDays   int
	HardMultiplier    float64 // interval × HardMultiplier on hard
	EasyBonus         float64 // interval × ease × EasyBonus on easy
	AgainEasePenalty  float64
	HardEasePenalty   float64
	EasyEaseBonus     float64
	FirstGoodInterval int // days after the first good/hard rating
	FirstEasyInterval int // minimum days after the first easy rating
}

// DefaultSRSConfig returns the classic SM-2 constants.
func DefaultSRSConfig() SRSConfig {
	return SRSConfig{
		DefaultEaseFactor: 2.5,
		MinEaseFactor:     EaseFloor,
		MaxIntervalDays:   365,
		HardMultiplier:    1.2,
		EasyBonus:         1.3,
		AgainEasePenalty:  0.20,
		HardEasePenalty:   0.15,
		EasyEaseBonus:     0.15,
		FirstGoodInterval: 1,
		FirstEasyInterval: 4,
	}
}
