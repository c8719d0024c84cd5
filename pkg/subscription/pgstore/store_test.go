package pgstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"

	"github.com/imobflow/billing/pkg/subscription"
	"github.com/imobflow/billing/pkg/subscription/pgstore"
)

var columns = []string{
	"id", "account_id", "plan_id", "status", "started_at", "trial_ends_at", "next_due_at", "canceled_at",
	"charge_amount", "cycle", "failed_attempts", "gateway_customer_id", "gateway_subscription_id", "invoice_url",
	"payer", "payment_confirmed_at", "version", "created_at", "updated_at", "deleted_at",
}

type StoreTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	store     *pgstore.Store
	ctx       context.Context
	accountID uuid.UUID
	subID     uuid.UUID
	now       time.Time
}

func (s *StoreTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.store = pgstore.New(mock)
	s.ctx = context.Background()
	s.accountID = uuid.New()
	s.subID = uuid.New()
	s.now = time.Date(2025, time.January, 12, 12, 0, 0, 0, time.UTC)
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) activeRow() *pgxmock.Rows {
	due := s.now.AddDate(0, 1, 0)
	customer := "cus_1"
	gatewayID := "sub_1"
	invoice := "https://sandbox.asaas.com/i/1"
	return pgxmock.NewRows(columns).AddRow(
		s.subID, s.accountID, "agency", "ACTIVE", s.now, s.now.AddDate(0, 0, 7), &due, nil,
		int64(29990), "MONTHLY", 1, &customer, &gatewayID, &invoice,
		"ACCOUNT", nil, int64(4), s.now, s.now, nil,
	)
}

func (s *StoreTestSuite) trial() *subscription.Subscription {
	return &subscription.Subscription{
		ID:          s.subID,
		AccountID:   s.accountID,
		PlanID:      "solo",
		Status:      subscription.StatusTrial,
		StartedAt:   s.now,
		TrialEndsAt: s.now.AddDate(0, 0, 7),
		Cycle:       subscription.CycleMonthly,
		Payer:       subscription.PayerAccount,
	}
}

func (s *StoreTestSuite) TestNewPanicsWithoutDB() {
	s.Panics(func() { pgstore.New(nil) })
}

func (s *StoreTestSuite) TestGet() {
	s.mock.ExpectQuery(`SELECT .+ FROM subscriptions WHERE id = \$1`).
		WithArgs(s.subID).
		WillReturnRows(s.activeRow())

	sub, err := s.store.Get(s.ctx, s.subID)
	s.Require().NoError(err)
	s.Equal(s.subID, sub.ID)
	s.Equal(subscription.StatusActive, sub.Status)
	s.Equal(subscription.CycleMonthly, sub.Cycle)
	s.Equal(subscription.PayerAccount, sub.Payer)
	s.Equal(subscription.Reais(299, 90), sub.ChargeAmount)
	s.Equal(1, sub.FailedAttempts)
	s.Equal("cus_1", sub.GatewayCustomerID)
	s.Equal("sub_1", sub.GatewaySubscriptionID)
	s.Equal("https://sandbox.asaas.com/i/1", sub.InvoiceURL)
	s.Require().NotNil(sub.NextDueAt)
	s.Equal(s.now.AddDate(0, 1, 0), *sub.NextDueAt)
	s.Nil(sub.CanceledAt)
	s.Nil(sub.PaymentConfirmedAt)
	s.Nil(sub.DeletedAt)
	s.Equal(int64(4), sub.Version)
}

func (s *StoreTestSuite) TestGetNotFound() {
	s.mock.ExpectQuery(`SELECT .+ FROM subscriptions WHERE id = \$1`).
		WithArgs(s.subID).
		WillReturnRows(pgxmock.NewRows(columns))

	_, err := s.store.Get(s.ctx, s.subID)
	s.ErrorIs(err, subscription.ErrSubscriptionNotFound)
}

func (s *StoreTestSuite) TestGetByAccountOnlyLiveRows() {
	s.mock.ExpectQuery(`FROM subscriptions\s+WHERE account_id = \$1 AND deleted_at IS NULL`).
		WithArgs(s.accountID).
		WillReturnRows(s.activeRow())

	sub, err := s.store.GetByAccount(s.ctx, s.accountID)
	s.Require().NoError(err)
	s.Equal(s.accountID, sub.AccountID)
}

func (s *StoreTestSuite) TestGetByGatewaySubscriptionIDPrefersLiveRow() {
	s.mock.ExpectQuery(`WHERE gateway_subscription_id = \$1\s+ORDER BY deleted_at IS NULL DESC, created_at DESC\s+LIMIT 1`).
		WithArgs("sub_1").
		WillReturnRows(s.activeRow())

	sub, err := s.store.GetByGatewaySubscriptionID(s.ctx, "sub_1")
	s.Require().NoError(err)
	s.Equal("sub_1", sub.GatewaySubscriptionID)
}

func (s *StoreTestSuite) TestGetByEmptyGatewayID() {
	_, err := s.store.GetByGatewaySubscriptionID(s.ctx, "")
	s.ErrorIs(err, subscription.ErrSubscriptionNotFound)
}

func (s *StoreTestSuite) TestCreate() {
	sub := s.trial()
	s.mock.ExpectQuery(`INSERT INTO subscriptions`).
		WithArgs(
			s.subID, s.accountID, "solo", "TRIAL", s.now, s.now.AddDate(0, 0, 7),
			pgxmock.AnyArg(), pgxmock.AnyArg(), int64(0), "MONTHLY", 0,
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "ACCOUNT", pgxmock.AnyArg(),
		).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(s.now, s.now))

	s.Require().NoError(s.store.Create(s.ctx, sub))
	s.Equal(int64(1), sub.Version)
	s.Equal(s.now, sub.CreatedAt)
}

func (s *StoreTestSuite) TestCreateSecondLiveRow() {
	s.mock.ExpectQuery(`INSERT INTO subscriptions`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "subscriptions_live_account_idx"})

	err := s.store.Create(s.ctx, s.trial())
	s.ErrorIs(err, subscription.ErrSubscriptionAlreadyExists)
}

func (s *StoreTestSuite) TestSave() {
	sub := s.trial()
	sub.Version = 3
	sub.Status = subscription.StatusActive
	sub.GatewaySubscriptionID = "sub_9"
	sub.ChargeAmount = subscription.Reais(99, 90)

	s.mock.ExpectQuery(`UPDATE subscriptions SET.+COALESCE\(gateway_customer_id, \$10\).+WHERE id = \$1 AND version = \$2`).
		WithArgs(
			s.subID, int64(3), "solo", "ACTIVE", pgxmock.AnyArg(), pgxmock.AnyArg(),
			int64(9990), "MONTHLY", 0, pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			"ACCOUNT", pgxmock.AnyArg(),
		).
		WillReturnRows(pgxmock.NewRows([]string{"version", "updated_at", "trial_ends_at", "gateway_customer_id"}).
			AddRow(int64(4), s.now.Add(time.Minute), s.now.AddDate(0, 0, 7), nil))

	s.Require().NoError(s.store.Save(s.ctx, sub))
	s.Equal(int64(4), sub.Version)
	s.Equal(s.now.Add(time.Minute), sub.UpdatedAt)
	s.Empty(sub.GatewayCustomerID)
}

func (s *StoreTestSuite) TestSaveKeepsStoredCustomerAndTrialEnd() {
	sub := s.trial()
	sub.Version = 1
	sub.GatewayCustomerID = "cus_new"
	sub.TrialEndsAt = s.now.AddDate(1, 0, 0)

	stored := "cus_old"
	s.mock.ExpectQuery(`UPDATE subscriptions SET`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "updated_at", "trial_ends_at", "gateway_customer_id"}).
			AddRow(int64(2), s.now, s.now.AddDate(0, 0, 7), &stored))

	s.Require().NoError(s.store.Save(s.ctx, sub))
	s.Equal("cus_old", sub.GatewayCustomerID)
	s.Equal(s.now.AddDate(0, 0, 7), sub.TrialEndsAt)
}

func (s *StoreTestSuite) TestSaveStaleVersion() {
	sub := s.trial()
	sub.Version = 1

	s.mock.ExpectQuery(`UPDATE subscriptions SET`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "updated_at", "trial_ends_at", "gateway_customer_id"}))
	s.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(s.subID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	err := s.store.Save(s.ctx, sub)
	s.ErrorIs(err, subscription.ErrVersionConflict)
	s.Equal(int64(1), sub.Version)
}

func (s *StoreTestSuite) TestSaveMissingRow() {
	sub := s.trial()

	s.mock.ExpectQuery(`UPDATE subscriptions SET`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "updated_at", "trial_ends_at", "gateway_customer_id"}))
	s.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(s.subID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	err := s.store.Save(s.ctx, sub)
	s.ErrorIs(err, subscription.ErrSubscriptionNotFound)
}

func (s *StoreTestSuite) TestReplace() {
	prev := s.trial()
	prev.Status = subscription.StatusCanceled
	prev.Version = 5
	next := s.trial()
	next.ID = uuid.New()
	deletedAt := s.now.Add(time.Hour)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`UPDATE subscriptions SET\s+deleted_at = now\(\)`).
		WithArgs(s.subID, int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"version", "deleted_at"}).AddRow(int64(6), deletedAt))
	s.mock.ExpectQuery(`INSERT INTO subscriptions`).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(deletedAt, deletedAt))
	s.mock.ExpectCommit()

	s.Require().NoError(s.store.Replace(s.ctx, prev, next))
	s.Equal(int64(6), prev.Version)
	s.Require().NotNil(prev.DeletedAt)
	s.Equal(deletedAt, *prev.DeletedAt)
	s.Equal(int64(1), next.Version)
}

func (s *StoreTestSuite) TestReplaceStalePrevious() {
	prev := s.trial()
	prev.Version = 2
	next := s.trial()
	next.ID = uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`UPDATE subscriptions SET\s+deleted_at = now\(\)`).
		WithArgs(s.subID, int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"version", "deleted_at"}))
	s.mock.ExpectRollback()

	err := s.store.Replace(s.ctx, prev, next)
	s.ErrorIs(err, subscription.ErrVersionConflict)
	s.Nil(prev.DeletedAt)
	s.Equal(int64(0), next.Version)
}

func (s *StoreTestSuite) TestReplaceInsertFailureRollsBack() {
	prev := s.trial()
	next := s.trial()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`UPDATE subscriptions SET\s+deleted_at = now\(\)`).
		WillReturnRows(pgxmock.NewRows([]string{"version", "deleted_at"}).AddRow(int64(1), s.now))
	s.mock.ExpectQuery(`INSERT INTO subscriptions`).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	s.mock.ExpectRollback()

	err := s.store.Replace(s.ctx, prev, next)
	s.ErrorIs(err, subscription.ErrSubscriptionAlreadyExists)
	s.Nil(prev.DeletedAt)
}

func (s *StoreTestSuite) TestCustomerID() {
	s.mock.ExpectQuery(`SELECT gateway_customer_id FROM billing_customers WHERE account_id = \$1`).
		WithArgs(s.accountID).
		WillReturnRows(pgxmock.NewRows([]string{"gateway_customer_id"}).AddRow("cus_1"))

	id, err := s.store.CustomerID(s.ctx, s.accountID)
	s.Require().NoError(err)
	s.Equal("cus_1", id)
}

func (s *StoreTestSuite) TestCustomerIDNotLinked() {
	s.mock.ExpectQuery(`FROM billing_customers`).
		WithArgs(s.accountID).
		WillReturnRows(pgxmock.NewRows([]string{"gateway_customer_id"}))

	id, err := s.store.CustomerID(s.ctx, s.accountID)
	s.Require().NoError(err)
	s.Empty(id)
}

func (s *StoreTestSuite) TestCustomerIDQueryError() {
	boom := errors.New("connection reset")
	s.mock.ExpectQuery(`FROM billing_customers`).
		WillReturnError(boom)

	_, err := s.store.CustomerID(s.ctx, s.accountID)
	s.ErrorIs(err, boom)
}

func (s *StoreTestSuite) TestSetCustomerID() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO billing_customers .+ON CONFLICT \(account_id\)`).
		WithArgs(s.accountID, "cus_1").
		WillReturnRows(pgxmock.NewRows([]string{"gateway_customer_id"}).AddRow("cus_1"))
	s.mock.ExpectExec(`UPDATE subscriptions SET gateway_customer_id = \$2\s+WHERE account_id = \$1 AND deleted_at IS NULL AND gateway_customer_id IS NULL`).
		WithArgs(s.accountID, "cus_1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	id, err := s.store.SetCustomerID(s.ctx, s.accountID, "cus_1")
	s.Require().NoError(err)
	s.Equal("cus_1", id)
}

func (s *StoreTestSuite) TestSetCustomerIDKeepsExistingLink() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO billing_customers`).
		WithArgs(s.accountID, "cus_late").
		WillReturnRows(pgxmock.NewRows([]string{"gateway_customer_id"}).AddRow("cus_first"))
	s.mock.ExpectExec(`UPDATE subscriptions SET gateway_customer_id`).
		WithArgs(s.accountID, "cus_first").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	s.mock.ExpectCommit()

	id, err := s.store.SetCustomerID(s.ctx, s.accountID, "cus_late")
	s.Require().NoError(err)
	s.Equal("cus_first", id)
}

func (s *StoreTestSuite) TestSetCustomerIDUsedByAnotherAccount() {
	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`INSERT INTO billing_customers`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "billing_customers_gateway_customer_id_key"})
	s.mock.ExpectRollback()

	_, err := s.store.SetCustomerID(s.ctx, s.accountID, "cus_taken")
	s.ErrorIs(err, subscription.ErrCustomerConflict)
}
