package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/flashquest-backend/internal/domain"
)

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func newMockTxManager(t *testing.T) (*TxManager, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return NewTxManager(mock), mock
}

func TestTxManager_CommitsAndExposesTx(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBeginTx(readCommitted)
	mock.ExpectExec("UPDATE card_reviews").WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(ctx context.Context) error {
		_, ok := txFromCtx(ctx)
		assert.True(t, ok, "tx must be in context")
		_, err := QuerierFromCtx(ctx, nil).Exec(ctx, "UPDATE card_reviews SET version = version + 1")
		return err
	})
	require.NoError(t, err)
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)
	sentinel := errors.New("scheduler failed")

	mock.ExpectBeginTx(readCommitted)
	mock.ExpectRollback()

	err := tm.RunInTx(context.Background(), func(context.Context) error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}

func TestTxManager_NestedCallJoinsOuterTx(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBeginTx(readCommitted)
	mock.ExpectCommit()

	err := tm.RunInTx(context.Background(), func(outer context.Context) error {
		outerTx, _ := txFromCtx(outer)
		return tm.RunInTx(outer, func(inner context.Context) error {
			innerTx, _ := txFromCtx(inner)
			assert.Equal(t, outerTx, innerTx)
			return nil
		})
	})
	require.NoError(t, err)
}

func TestTxManager_BeginFailureIsTransient(t *testing.T) {
	t.Parallel()
	tm, mock := newMockTxManager(t)

	mock.ExpectBeginTx(readCommitted).WillReturnError(&pgconn.PgError{Code: "08006"})

	called := false
	err := tm.RunInTx(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.ErrorIs(t, err, domain.ErrTransient)
}

func TestQuerierFromCtx_FallsBackOutsideTx(t *testing.T) {
	t.Parallel()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	assert.Equal(t, Querier(mock), QuerierFromCtx(context.Background(), mock))
}
