package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// txBeginner is satisfied by *pgxpool.Pool and pgxmock pools.
type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// TxManager runs callbacks in a transaction carried by the context, so
// repositories pick it up through QuerierFromCtx.
type TxManager struct {
	db   txBeginner
	opts pgx.TxOptions
}

// NewTxManager creates a TxManager using READ COMMITTED transactions.
// Lost updates on card_reviews are prevented by the version column, not by
// isolation level.
func NewTxManager(db txBeginner) *TxManager {
	return &TxManager{db: db, opts: pgx.TxOptions{IsoLevel: pgx.ReadCommitted}}
}

// RunInTx executes fn in a transaction: commit on nil, rollback on error or
// panic (the panic is re-raised). A call made while ctx already carries a
// transaction joins it instead of opening a second one.
// Begin and commit failures are mapped like repository errors, so a lost
// connection surfaces as domain.ErrTransient.
func (m *TxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := txFromCtx(ctx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, m.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", MapError(err, "tx", uuid.Nil))
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(r)
		}
	}()

	if err := fn(withTx(ctx, tx)); err != nil {
		// Rollback must run even when ctx was cancelled mid-transaction.
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil {
			return fmt.Errorf("rollback failed: %w (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", MapError(err, "tx", uuid.Nil))
	}

	return nil
}
