// Package pgstore is the PostgreSQL implementation of subscription.Store.
//
// The gateway customer anchor lives in billing_customers, one row per
// account. Subscriptions are versioned: every UPDATE matches on the
// version read by the caller and increments it, so a stale write affects
// no rows and is reported as subscription.ErrVersionConflict. The UPDATE
// never touches trial_ends_at and fills gateway_customer_id only when it is
// NULL.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/imobflow/billing/pkg/pg"
	"github.com/imobflow/billing/pkg/subscription"
)

// DB is satisfied by *pgxpool.Pool and by pgxmock pools.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db DB
}

var _ subscription.Store = (*Store)(nil)

func New(db DB) *Store {
	if db == nil {
		panic("pgstore: db is required")
	}
	return &Store{db: db}
}

const columns = `id, account_id, plan_id, status, started_at, trial_ends_at, next_due_at, canceled_at,
	charge_amount, cycle, failed_attempts, gateway_customer_id, gateway_subscription_id, invoice_url,
	payer, payment_confirmed_at, version, created_at, updated_at, deleted_at`

const (
	selectByID = `SELECT ` + columns + ` FROM subscriptions WHERE id = $1`

	selectLiveByAccount = `SELECT ` + columns + ` FROM subscriptions
	WHERE account_id = $1 AND deleted_at IS NULL`

	selectByGatewayID = `SELECT ` + columns + ` FROM subscriptions
	WHERE gateway_subscription_id = $1
	ORDER BY deleted_at IS NULL DESC, created_at DESC
	LIMIT 1`

	insertSubscription = `INSERT INTO subscriptions (` + columns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, 1, now(), now(), NULL)
	RETURNING created_at, updated_at`

	updateSubscription = `UPDATE subscriptions SET
		plan_id = $3,
		status = $4,
		next_due_at = $5,
		canceled_at = $6,
		charge_amount = $7,
		cycle = $8,
		failed_attempts = $9,
		gateway_customer_id = COALESCE(gateway_customer_id, $10),
		gateway_subscription_id = $11,
		invoice_url = $12,
		payer = $13,
		payment_confirmed_at = $14,
		version = version + 1,
		updated_at = now()
	WHERE id = $1 AND version = $2
	RETURNING version, updated_at, trial_ends_at, gateway_customer_id`

	softDelete = `UPDATE subscriptions SET
		deleted_at = now(),
		updated_at = now(),
		version = version + 1
	WHERE id = $1 AND version = $2 AND deleted_at IS NULL
	RETURNING version, deleted_at`

	subscriptionExists = `SELECT EXISTS (SELECT 1 FROM subscriptions WHERE id = $1)`

	selectCustomer = `SELECT gateway_customer_id FROM billing_customers WHERE account_id = $1`

	// The no-op DO UPDATE makes RETURNING yield the already linked id.
	upsertCustomer = `INSERT INTO billing_customers (account_id, gateway_customer_id)
	VALUES ($1, $2)
	ON CONFLICT (account_id) DO UPDATE SET gateway_customer_id = billing_customers.gateway_customer_id
	RETURNING gateway_customer_id`

	fillLiveCustomer = `UPDATE subscriptions SET gateway_customer_id = $2
	WHERE account_id = $1 AND deleted_at IS NULL AND gateway_customer_id IS NULL`
)

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	return scanOne(s.db.QueryRow(ctx, selectByID, id))
}

func (s *Store) GetByAccount(ctx context.Context, accountID uuid.UUID) (*subscription.Subscription, error) {
	return scanOne(s.db.QueryRow(ctx, selectLiveByAccount, accountID))
}

func (s *Store) GetByGatewaySubscriptionID(ctx context.Context, gatewayID string) (*subscription.Subscription, error) {
	if gatewayID == "" {
		return nil, subscription.ErrSubscriptionNotFound
	}
	return scanOne(s.db.QueryRow(ctx, selectByGatewayID, gatewayID))
}

func (s *Store) Create(ctx context.Context, sub *subscription.Subscription) error {
	return insert(ctx, s.db, sub)
}

func (s *Store) Save(ctx context.Context, sub *subscription.Subscription) error {
	var (
		version    int64
		updatedAt  time.Time
		trialEnds  time.Time
		customerID *string
	)
	err := s.db.QueryRow(ctx, updateSubscription,
		sub.ID,
		sub.Version,
		sub.PlanID,
		string(sub.Status),
		sub.NextDueAt,
		sub.CanceledAt,
		sub.ChargeAmount.Cents(),
		string(sub.Cycle),
		sub.FailedAttempts,
		nullString(sub.GatewayCustomerID),
		nullString(sub.GatewaySubscriptionID),
		nullString(sub.InvoiceURL),
		string(sub.Payer),
		sub.PaymentConfirmedAt,
	).Scan(&version, &updatedAt, &trialEnds, &customerID)
	if pg.IsNotFoundError(err) {
		return s.missOrConflict(ctx, sub.ID)
	}
	if err != nil {
		return err
	}

	sub.Version = version
	sub.UpdatedAt = updatedAt
	sub.TrialEndsAt = trialEnds
	sub.GatewayCustomerID = deref(customerID)
	return nil
}

// Replace soft-deletes prev and inserts next in one transaction.
func (s *Store) Replace(ctx context.Context, prev, next *subscription.Subscription) error {
	var (
		version   int64
		deletedAt time.Time
	)
	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, softDelete, prev.ID, prev.Version).Scan(&version, &deletedAt)
		if pg.IsNotFoundError(err) {
			return subscription.ErrVersionConflict
		}
		if err != nil {
			return err
		}
		return insert(ctx, tx, next)
	})
	if err != nil {
		return err
	}

	prev.Version = version
	prev.DeletedAt = &deletedAt
	prev.UpdatedAt = deletedAt
	return nil
}

func (s *Store) CustomerID(ctx context.Context, accountID uuid.UUID) (string, error) {
	var id string
	err := s.db.QueryRow(ctx, selectCustomer, accountID).Scan(&id)
	if pg.IsNotFoundError(err) {
		return "", nil
	}
	return id, err
}

func (s *Store) SetCustomerID(ctx context.Context, accountID uuid.UUID, customerID string) (string, error) {
	var stored string
	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, upsertCustomer, accountID, customerID).Scan(&stored); err != nil {
			if pg.IsDuplicateKeyError(err) {
				return errors.Join(subscription.ErrCustomerConflict, err)
			}
			return err
		}
		_, err := tx.Exec(ctx, fillLiveCustomer, accountID, stored)
		return err
	})
	if err != nil {
		return "", err
	}
	return stored, nil
}

func (s *Store) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := s.db.QueryRow(ctx, subscriptionExists, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return subscription.ErrSubscriptionNotFound
	}
	return subscription.ErrVersionConflict
}

func insert(ctx context.Context, q querier, sub *subscription.Subscription) error {
	var createdAt, updatedAt time.Time
	err := q.QueryRow(ctx, insertSubscription,
		sub.ID,
		sub.AccountID,
		sub.PlanID,
		string(sub.Status),
		sub.StartedAt,
		sub.TrialEndsAt,
		sub.NextDueAt,
		sub.CanceledAt,
		sub.ChargeAmount.Cents(),
		string(sub.Cycle),
		sub.FailedAttempts,
		nullString(sub.GatewayCustomerID),
		nullString(sub.GatewaySubscriptionID),
		nullString(sub.InvoiceURL),
		string(sub.Payer),
		sub.PaymentConfirmedAt,
	).Scan(&createdAt, &updatedAt)
	if pg.IsDuplicateKeyError(err) {
		return errors.Join(subscription.ErrSubscriptionAlreadyExists, err)
	}
	if err != nil {
		return err
	}

	sub.Version = 1
	sub.CreatedAt = createdAt
	sub.UpdatedAt = updatedAt
	return nil
}

func scanOne(row pgx.Row) (*subscription.Subscription, error) {
	var (
		sub                                  subscription.Subscription
		status, cycle, payer                 string
		amount                               int64
		customerID, gatewaySubID, invoiceURL *string
	)
	err := row.Scan(
		&sub.ID,
		&sub.AccountID,
		&sub.PlanID,
		&status,
		&sub.StartedAt,
		&sub.TrialEndsAt,
		&sub.NextDueAt,
		&sub.CanceledAt,
		&amount,
		&cycle,
		&sub.FailedAttempts,
		&customerID,
		&gatewaySubID,
		&invoiceURL,
		&payer,
		&sub.PaymentConfirmedAt,
		&sub.Version,
		&sub.CreatedAt,
		&sub.UpdatedAt,
		&sub.DeletedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, subscription.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	sub.Status = subscription.Status(status)
	sub.Cycle = subscription.Cycle(cycle)
	sub.Payer = subscription.Payer(payer)
	sub.ChargeAmount = subscription.Money(amount)
	sub.GatewayCustomerID = deref(customerID)
	sub.GatewaySubscriptionID = deref(gatewaySubID)
	sub.InvoiceURL = deref(invoiceURL)
	return &sub, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
