package subscription

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/imobflow/billing/pkg/locker"
	"github.com/imobflow/billing/pkg/logger"
)

// Service is the billing engine as seen by the UI backend and by the
// external webhook receiver.
type Service interface {
	// Status
	GetAccessStatus(ctx context.Context, subscriptionID uuid.UUID) (AccessStatus, error)
	GetAccountAccess(ctx context.Context, accountID uuid.UUID) (AccessStatus, error)
	GetSubscription(ctx context.Context, accountID uuid.UUID) (*Subscription, error)

	// Catalog
	Plans() []Plan
	Plan(id string) (Plan, error)

	// Lifecycle
	StartTrial(ctx context.Context, accountID uuid.UUID, planID string, payer Payer) (*Subscription, error)
	EnsureCustomer(ctx context.Context, tenant Tenant) (string, error)
	ProcessUpgrade(ctx context.Context, intent PaymentIntent) (*UpgradeResult, error)
	Reactivate(ctx context.Context, intent PaymentIntent) (*UpgradeResult, error)
	Cancel(ctx context.Context, subscriptionID uuid.UUID) (*Subscription, error)

	// Invoices
	ResolveInvoice(links InvoiceLinks) (*Invoice, error)
	ResolveRaw(raw map[string]any) (*Invoice, error)
	OpenInvoice(url string, opts OpenOptions) (OpenResult, error)

	// Gateway reconciliation
	UpdateStatus(ctx context.Context, subscriptionID uuid.UUID, status Status, meta GatewayMetadata) (*Subscription, error)
	HandleGatewayEvent(ctx context.Context, event GatewayEvent) error
}

// PlansListSource loads the plan catalog keyed by plan id.
type PlansListSource interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

const defaultTrialDays = 7

type service struct {
	plans    map[string]Plan
	gateway  Gateway
	store    Store
	locker   locker.Locker
	invoices *InvoiceResolver
	opener   WindowOpener
	qr       QREncoder
	log      *slog.Logger
	now      func() time.Time

	trialDays int
}

// NewService loads and validates the plan catalog and returns the engine.
// It panics when a required dependency is nil.
func NewService(ctx context.Context, src PlansListSource, gateway Gateway, store Store, opts ...ServiceOption) (Service, error) {
	if src == nil {
		panic("subscription: PlansListSource is required")
	}
	if gateway == nil {
		panic("subscription: Gateway is required")
	}
	if store == nil {
		panic("subscription: Store is required")
	}

	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}

	s := &service{
		plans:     plans,
		gateway:   gateway,
		store:     store,
		locker:    locker.NewMemory(),
		opener:    HeadlessOpener{},
		log:       logger.Discard(),
		now:       func() time.Time { return time.Now().UTC() },
		trialDays: defaultTrialDays,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.log = s.log.With(logger.Component("subscription"))
	s.invoices = NewInvoiceResolver(s.opener, s.qr)

	return s, nil
}

func (s *service) GetAccessStatus(ctx context.Context, subscriptionID uuid.UUID) (AccessStatus, error) {
	sub, err := s.store.Get(ctx, subscriptionID)
	if err != nil {
		return AccessStatus{}, err
	}
	if sub.IsDeleted() {
		return AccessStatus{}, ErrSubscriptionNotFound
	}
	return Classify(sub, s.now()), nil
}

// GetAccountAccess classifies the account's live subscription. An account
// without one is classified as having no subscription at all.
func (s *service) GetAccountAccess(ctx context.Context, accountID uuid.UUID) (AccessStatus, error) {
	sub, err := s.store.GetByAccount(ctx, accountID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return Classify(nil, s.now()), nil
	}
	if err != nil {
		return AccessStatus{}, err
	}
	return Classify(sub, s.now()), nil
}

func (s *service) GetSubscription(ctx context.Context, accountID uuid.UUID) (*Subscription, error) {
	return s.store.GetByAccount(ctx, accountID)
}

// Plans returns active plans ordered by family then monthly price.
func (s *service) Plans() []Plan {
	out := make([]Plan, 0, len(s.plans))
	for _, id := range slices.Sorted(maps.Keys(s.plans)) {
		if p := s.plans[id]; p.Active {
			out = append(out, p.clone())
		}
	}
	slices.SortStableFunc(out, func(a, b Plan) int {
		return cmp.Or(
			cmp.Compare(a.Family, b.Family),
			cmp.Compare(a.MonthlyPrice, b.MonthlyPrice),
		)
	})
	return out
}

// Plan returns an active plan.
func (s *service) Plan(id string) (Plan, error) {
	p, ok := s.plans[id]
	if !ok || !p.Active {
		return Plan{}, ErrPlanNotFound
	}
	return p.clone(), nil
}

func (s *service) ResolveInvoice(links InvoiceLinks) (*Invoice, error) {
	return s.invoices.Resolve(links)
}

func (s *service) ResolveRaw(raw map[string]any) (*Invoice, error) {
	return s.invoices.ResolveRaw(raw)
}

func (s *service) OpenInvoice(url string, opts OpenOptions) (OpenResult, error) {
	return s.invoices.Open(url, opts)
}
