package config

import (
	"time"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	SRS       SRSConfig       `yaml:"srs"`
	Review    ReviewConfig    `yaml:"review"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN               string        `yaml:"dsn"                 env:"DATABASE_DSN"                 env-required:"true"`
	MaxConns          int32         `yaml:"max_conns"           env:"DATABASE_MAX_CONNS"           env-default:"25"`
	MinConns          int32         `yaml:"min_conns"           env:"DATABASE_MIN_CONNS"           env-default:"5"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime"   env:"DATABASE_MAX_CONN_LIFETIME"   env-default:"1h"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time"  env:"DATABASE_MAX_CONN_IDLE_TIME"  env-default:"30m"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" env:"DATABASE_HEALTH_CHECK_PERIOD" env-default:"30s"`
	ApplicationName   string        `yaml:"application_name"    env:"DATABASE_APPLICATION_NAME"    env-default:"flashquest"`
	AutoMigrate       bool          `yaml:"auto_migrate"        env:"DATABASE_AUTO_MIGRATE"        env-default:"false"`
}

// AuthConfig holds token validation settings. Tokens are issued elsewhere;
// the subject claim is the learner id.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"flashquest"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"15m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds spaced-repetition scheduler parameters.
type SRSConfig struct {
	DefaultEaseFactor float64 `yaml:"default_ease_factor" env:"SRS_DEFAULT_EASE"          env-default:"2.5"`
	MinEaseFactor     float64 `yaml:"min_ease_factor"     env:"SRS_MIN_EASE"              env-default:"1.3"`
	MaxIntervalDays   int     `yaml:"max_interval_days"   env:"SRS_MAX_INTERVAL"          env-default:"365"`
	HardMultiplier    float64 `yaml:"hard_multiplier"     env:"SRS_HARD_MULTIPLIER"       env-default:"1.2"`
	EasyBonus         float64 `yaml:"easy_bonus"          env:"SRS_EASY_BONUS"            env-default:"1.3"`
	AgainEasePenalty  float64 `yaml:"again_ease_penalty"  env:"SRS_AGAIN_EASE_PENALTY"    env-default:"0.2"`
	HardEasePenalty   float64 `yaml:"hard_ease_penalty"   env:"SRS_HARD_EASE_PENALTY"     env-default:"0.15"`
	EasyEaseBonus     float64 `yaml:"easy_ease_bonus"     env:"SRS_EASY_EASE_BONUS"       env-default:"0.15"`
	FirstGoodInterval int     `yaml:"first_good_interval" env:"SRS_FIRST_GOOD_INTERVAL"   env-default:"1"`
	FirstEasyInterval int     `yaml:"first_easy_interval" env:"SRS_FIRST_EASY_INTERVAL"   env-default:"4"`
}

// Domain converts the section to the scheduler's parameters.
func (s SRSConfig) Domain() domain.SRSConfig {
	return domain.SRSConfig{
		DefaultEaseFactor: s.DefaultEaseFactor,
		MinEaseFactor:     s.MinEaseFactor,
		MaxIntervalDays:   s.MaxIntervalDays,
		HardMultiplier:    s.HardMultiplier,
		EasyBonus:         s.EasyBonus,
		AgainEasePenalty:  s.AgainEasePenalty,
		HardEasePenalty:   s.HardEasePenalty,
		EasyEaseBonus:     s.EasyEaseBonus,
		FirstGoodInterval: s.FirstGoodInterval,
		FirstEasyInterval: s.FirstEasyInterval,
	}
}

// ReviewConfig holds submission handling and queue settings.
type ReviewConfig struct {
	ConflictRetries         int           `yaml:"conflict_retries"          env:"REVIEW_CONFLICT_RETRIES"          env-default:"3"`
	ConflictBackoff         time.Duration `yaml:"conflict_backoff"          env:"REVIEW_CONFLICT_BACKOFF"          env-default:"20ms"`
	ReplayWindow            time.Duration `yaml:"replay_window"             env:"REVIEW_REPLAY_WINDOW"             env-default:"168h"`
	FutureSkew              time.Duration `yaml:"future_skew"               env:"REVIEW_FUTURE_SKEW"               env-default:"5m"`
	QueuePageSize           int           `yaml:"queue_page_size"           env:"REVIEW_QUEUE_PAGE_SIZE"           env-default:"50"`
	SubmissionRetentionDays int           `yaml:"submission_retention_days" env:"REVIEW_SUBMISSION_RETENTION_DAYS" env-default:"30"`
}

// SubmissionRetention returns the retention window as a duration.
func (r ReviewConfig) SubmissionRetention() time.Duration {
	return time.Duration(r.SubmissionRetentionDays) * 24 * time.Hour
}

// RateLimitConfig holds per-client request throttling settings.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RPS     float64 `yaml:"rps"     env:"RATE_LIMIT_RPS"     env-default:"10"`
	Burst   int     `yaml:"burst"   env:"RATE_LIMIT_BURST"   env-default:"20"`
}
