package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

// codeErrors maps SQLSTATEs with a domain meaning. The cause is dropped:
// callers only branch on the sentinel.
var codeErrors = map[string]error{
	pgerrcode.UniqueViolation:      domain.ErrAlreadyExists,
	pgerrcode.ForeignKeyViolation:  domain.ErrNotFound,
	pgerrcode.CheckViolation:       domain.ErrValidation,
	pgerrcode.SerializationFailure: domain.ErrConflict,
	pgerrcode.DeadlockDetected:     domain.ErrConflict,
}

// MapError translates driver errors into domain sentinels, prefixed with the
// entity and id. Context cancellation is wrapped but never mapped.
// Transient failures keep the driver error in the chain for logging.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}
	wrap := func(target error) error { return fmt.Errorf("%s %s: %w", entity, id, target) }

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrap(err)
	case errors.Is(err, pgx.ErrNoRows), pgxscan.NotFound(err):
		return wrap(domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if sentinel, ok := codeErrors[pgErr.Code]; ok {
			return wrap(sentinel)
		}
		if !transientCode(pgErr.Code) {
			return wrap(err)
		}
	} else if !isTransient(err) {
		return wrap(err)
	}

	return fmt.Errorf("%s %s: %w: %w", entity, id, domain.ErrTransient, err)
}

// transientCode covers lost connections, admin shutdown and connection
// exhaustion.
func transientCode(code string) bool {
	return pgerrcode.IsConnectionException(code) ||
		code == pgerrcode.AdminShutdown ||
		code == pgerrcode.TooManyConnections
}

// isTransient reports network-level failures outside a server response.
func isTransient(err error) bool {
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
