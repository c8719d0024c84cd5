package pg

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is implemented by *pgxpool.Pool, *pgx.Conn and pgxmock pools.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise. The error returned by fn is passed
// through unchanged so callers can still match their own sentinels.
func WithTx(ctx context.Context, db TxBeginner, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrTxFailed, err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrTxFailed, err)
	}
	return nil
}
