// Package auth validates learner access tokens: HS256 JWTs whose subject is
// the learner (child profile) id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken wraps every validation failure.
var ErrInvalidToken = errors.New("invalid access token")

// JWTManager mints and validates learner access tokens. Production tokens
// are minted by the account service; GenerateAccessToken serves srsctl and
// tests.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewJWTManager expects a secret of at least 32 bytes (enforced by config).
func NewJWTManager(secret, issuer string, ttl time.Duration) *JWTManager {
	m := &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	return m
}

func (m *JWTManager) GenerateAccessToken(learnerID uuid.UUID) (string, error) {
	now := m.now()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   learnerID.String(),
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken returns the learner a token was issued for.
func (m *JWTManager) ValidateAccessToken(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	var claims jwt.RegisteredClaims
	if _, err := m.parser.ParseWithClaims(raw, &claims, m.key); err != nil {
		return uuid.Nil, fmt.Errorf("%w: parse token: %w", ErrInvalidToken, err)
	}

	learnerID, err := uuid.Parse(claims.Subject)
	switch {
	case err != nil:
		return uuid.Nil, fmt.Errorf("%w: invalid subject: %w", ErrInvalidToken, err)
	case learnerID == uuid.Nil:
		return uuid.Nil, fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	return learnerID, nil
}

func (m *JWTManager) key(*jwt.Token) (any, error) { return m.secret, nil }
