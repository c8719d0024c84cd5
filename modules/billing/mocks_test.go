package billing_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/imobflow/billing/pkg/subscription"
)

type mockService struct {
	mock.Mock
}

var _ subscription.Service = (*mockService)(nil)

func (m *mockService) GetAccessStatus(ctx context.Context, id uuid.UUID) (subscription.AccessStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(subscription.AccessStatus), args.Error(1)
}

func (m *mockService) GetAccountAccess(ctx context.Context, accountID uuid.UUID) (subscription.AccessStatus, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(subscription.AccessStatus), args.Error(1)
}

func (m *mockService) GetSubscription(ctx context.Context, accountID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockService) Plans() []subscription.Plan {
	args := m.Called()
	return args.Get(0).([]subscription.Plan)
}

func (m *mockService) Plan(id string) (subscription.Plan, error) {
	args := m.Called(id)
	return args.Get(0).(subscription.Plan), args.Error(1)
}

func (m *mockService) StartTrial(ctx context.Context, accountID uuid.UUID, planID string, payer subscription.Payer) (*subscription.Subscription, error) {
	args := m.Called(ctx, accountID, planID, payer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockService) EnsureCustomer(ctx context.Context, tenant subscription.Tenant) (string, error) {
	args := m.Called(ctx, tenant)
	return args.String(0), args.Error(1)
}

func (m *mockService) ProcessUpgrade(ctx context.Context, in subscription.PaymentIntent) (*subscription.UpgradeResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.UpgradeResult), args.Error(1)
}

func (m *mockService) Reactivate(ctx context.Context, in subscription.PaymentIntent) (*subscription.UpgradeResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.UpgradeResult), args.Error(1)
}

func (m *mockService) Cancel(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockService) ResolveInvoice(links subscription.InvoiceLinks) (*subscription.Invoice, error) {
	args := m.Called(links)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Invoice), args.Error(1)
}

func (m *mockService) ResolveRaw(raw map[string]any) (*subscription.Invoice, error) {
	args := m.Called(raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Invoice), args.Error(1)
}

func (m *mockService) OpenInvoice(url string, opts subscription.OpenOptions) (subscription.OpenResult, error) {
	args := m.Called(url, opts)
	return args.Get(0).(subscription.OpenResult), args.Error(1)
}

func (m *mockService) UpdateStatus(ctx context.Context, id uuid.UUID, status subscription.Status, meta subscription.GatewayMetadata) (*subscription.Subscription, error) {
	args := m.Called(ctx, id, status, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockService) HandleGatewayEvent(ctx context.Context, event subscription.GatewayEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
