package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imobflow/billing/pkg/subscription"
)

var fixedNow = time.Date(2025, time.January, 12, 12, 0, 0, 0, time.UTC)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateCustomer(ctx context.Context, req subscription.CustomerRequest) (*subscription.GatewayCustomer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.GatewayCustomer), args.Error(1)
}

func (m *mockGateway) CreateSubscription(ctx context.Context, req subscription.SubscriptionRequest) (*subscription.GatewaySubscription, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.GatewaySubscription), args.Error(1)
}

func (m *mockGateway) UpdateSubscription(ctx context.Context, id string, req subscription.SubscriptionRequest) (*subscription.GatewaySubscription, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.GatewaySubscription), args.Error(1)
}

func (m *mockGateway) DeleteSubscription(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// racingStore runs hook once, right before the next Save, to simulate a
// concurrent writer such as the webhook receiver.
type racingStore struct {
	*subscription.MemoryStore
	hook func()
}

func (r *racingStore) Save(ctx context.Context, sub *subscription.Subscription) error {
	if hook := r.hook; hook != nil {
		r.hook = nil
		hook()
	}
	return r.MemoryStore.Save(ctx, sub)
}

// staleStore rejects every Save as if another writer always got there
// first.
type staleStore struct {
	*subscription.MemoryStore
}

func (staleStore) Save(context.Context, *subscription.Subscription) error {
	return subscription.ErrVersionConflict
}

func annual(m subscription.Money) *subscription.Money { return &m }

func testPlans() []subscription.Plan {
	return []subscription.Plan{
		{
			ID:           "solo",
			Code:         "SOLO",
			Name:         "Corretor Solo",
			MonthlyPrice: subscription.Reais(99, 90),
			MaxAgents:    1,
			Family:       subscription.FamilyIndividual,
			Features:     map[string]any{"whatsapp": true, "max_properties": 200},
			Active:       true,
		},
		{
			ID:           "agency",
			Code:         "AGENCY",
			Name:         "Imobiliária",
			MonthlyPrice: subscription.Reais(299, 90),
			AnnualPrice:  annual(subscription.Reais(2999, 0)),
			MaxAgents:    20,
			Family:       subscription.FamilyAgency,
			Active:       true,
		},
		{
			ID:           "legacy",
			Name:         "Legacy",
			MonthlyPrice: subscription.Reais(49, 0),
			Family:       subscription.FamilyIndividual,
			Active:       false,
		},
	}
}

func newTestService(t *testing.T, gw subscription.Gateway, store subscription.Store, opts ...subscription.ServiceOption) subscription.Service {
	t.Helper()
	opts = append([]subscription.ServiceOption{
		subscription.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	svc, err := subscription.NewService(context.Background(), subscription.NewInMemSource(testPlans()...), gw, store, opts...)
	require.NoError(t, err)
	return svc
}

func validTenant(accountID uuid.UUID) subscription.Tenant {
	return subscription.Tenant{
		AccountID: accountID,
		Name:      "Maria Souza",
		Email:     "maria@imobiliaria.com.br",
		Document:  "529.982.247-25",
		Phone:     "(11) 98765-4321",
		Payer:     subscription.PayerAccount,
	}
}

func boletoIntent(accountID uuid.UUID) subscription.PaymentIntent {
	return subscription.PaymentIntent{
		AccountID: accountID,
		Tenant:    validTenant(accountID),
		PlanID:    "solo",
		Cycle:     subscription.CycleMonthly,
		Method:    subscription.MethodBoleto,
	}
}

func cardIntent(accountID uuid.UUID) subscription.PaymentIntent {
	in := boletoIntent(accountID)
	in.Method = subscription.MethodCreditCard
	in.RemoteIP = "203.0.113.7"
	in.Card = &subscription.Card{
		HolderName:  "MARIA SOUZA",
		Number:      "4111 1111 1111 1111",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		CVV:         "123",
	}
	in.Holder = &subscription.CardHolder{
		Name:          "Maria Souza",
		Email:         "maria@imobiliaria.com.br",
		Document:      "52998224725",
		PostalCode:    "01310-100",
		AddressNumber: "1000",
		Phone:         "11987654321",
	}
	return in
}

func seedSubscription(t *testing.T, store subscription.Store, accountID uuid.UUID, status subscription.Status) *subscription.Subscription {
	t.Helper()
	sub := &subscription.Subscription{
		ID:          uuid.New(),
		AccountID:   accountID,
		PlanID:      "solo",
		Status:      status,
		StartedAt:   fixedNow.AddDate(0, 0, -2),
		TrialEndsAt: fixedNow.AddDate(0, 0, 5),
		Cycle:       subscription.CycleMonthly,
		Payer:       subscription.PayerAccount,
	}
	require.NoError(t, store.Create(context.Background(), sub))
	return sub
}

func gatewaySub(id string) *subscription.GatewaySubscription {
	return &subscription.GatewaySubscription{
		ID:     id,
		Status: "ACTIVE",
		Links: subscription.InvoiceLinks{
			PaymentLink: "https://sandbox.asaas.com/c/" + id,
		},
	}
}
