package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imobflow/billing/pkg/pg"
)

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	ser := &pgconn.PgError{Code: "40001"}

	assert.True(t, pg.IsDuplicateKeyError(dup))
	assert.False(t, pg.IsDuplicateKeyError(fk))
	assert.False(t, pg.IsDuplicateKeyError(nil))

	assert.True(t, pg.IsForeignKeyViolationError(fk))
	assert.True(t, pg.IsSerializationError(ser))

	assert.True(t, pg.IsNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(errors.New("boom")))
	assert.False(t, pg.IsNotFoundError(nil))
}

func TestWithTx(t *testing.T) {
	t.Parallel()

	t.Run("commits on success", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE billing_customers").
			WithArgs("acc-1", "cus_1").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err = pg.WithTx(context.Background(), mock, func(tx pgx.Tx) error {
			_, err := tx.Exec(context.Background(), "UPDATE billing_customers SET gateway_customer_id = $2 WHERE account_id = $1", "acc-1", "cus_1")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and passes error through", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		sentinel := errors.New("conflict")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err = pg.WithTx(context.Background(), mock, func(pgx.Tx) error {
			return sentinel
		})
		require.ErrorIs(t, err, sentinel)
		assert.NotErrorIs(t, err, pg.ErrTxFailed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		t.Parallel()
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectBegin().WillReturnError(errors.New("no connection"))

		err = pg.WithTx(context.Background(), mock, func(pgx.Tx) error {
			t.Fatal("callback must not run")
			return nil
		})
		assert.ErrorIs(t, err, pg.ErrTxFailed)
	})
}
