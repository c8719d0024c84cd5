package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/validator"
)

// UpgradeResult is returned by ProcessUpgrade and Reactivate.
type UpgradeResult struct {
	SubscriptionID        uuid.UUID  `json:"subscription_id"`
	CustomerID            string     `json:"customer_id"`
	GatewaySubscriptionID string     `json:"gateway_subscription_id"`
	InvoiceURL            string     `json:"invoice_url,omitempty"`
	Status                Status     `json:"status"`
	ChargeAmount          Money      `json:"charge_amount"`
	Cycle                 Cycle      `json:"cycle"`
	NextDueAt             *time.Time `json:"next_due_at,omitempty"`
	// RequiresFollowUp is true when the tenant still has to pay the
	// returned instrument (BOLETO, PIX).
	RequiresFollowUp bool     `json:"requires_follow_up"`
	Invoice          *Invoice `json:"invoice,omitempty"`
}

var errLinkedElsewhere = errors.New("subscription is linked to another gateway subscription")

// activation is what a successful gateway call contributes to the local row.
type activation struct {
	intent     PaymentIntent
	plan       Plan
	customerID string
	gateway    *GatewaySubscription
	invoice    *Invoice
	amount     Money
	nextDue    time.Time
	now        time.Time
}

// ProcessUpgrade moves a TRIAL or ACTIVE subscription onto the chosen plan,
// cycle and payment method. Input is validated before any I/O. The gateway
// customer is provisioned before the gateway subscription is created. No
// local state is written when the gateway call fails.
func (s *service) ProcessUpgrade(ctx context.Context, in PaymentIntent) (*UpgradeResult, error) {
	now := s.now()
	in = normalizeIntent(in)

	if err := validateIntent(in, now); err != nil {
		s.log.DebugContext(ctx, "upgrade rejected", logger.TenantID(in.AccountID), logger.Error(err))
		return nil, err
	}

	release, err := s.lockAccount(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	defer release()

	sub, err := s.store.GetByAccount(ctx, in.AccountID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, errors.Join(ErrNoEligibleSubscription, err)
	}
	if err != nil {
		return nil, err
	}
	if sub.Status != StatusTrial && sub.Status != StatusActive {
		return nil, errors.Join(ErrNoEligibleSubscription,
			fmt.Errorf("subscription is %s", sub.Status))
	}

	plan, err := s.Plan(in.PlanID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.EnsureCustomer(ctx, in.Tenant)
	if err != nil {
		return nil, err
	}

	act := activation{
		intent:     in,
		plan:       plan,
		customerID: customerID,
		amount:     plan.ChargeAmount(in.Cycle),
		nextDue:    NextDueAt(in.Cycle, now),
		now:        now,
	}
	req := act.request(sub.ID)

	created := false
	if sub.Status == StatusActive && sub.GatewaySubscriptionID != "" {
		act.gateway, err = s.gateway.UpdateSubscription(ctx, sub.GatewaySubscriptionID, req)
	} else {
		act.gateway, err = s.gateway.CreateSubscription(ctx, req)
		created = true
	}
	if err != nil {
		s.log.ErrorContext(ctx, "gateway subscription request failed",
			logger.TenantID(in.AccountID),
			logger.SubscriptionID(sub.ID),
			logger.PaymentMethod(string(in.Method)),
			logger.Error(err),
		)
		return nil, errors.Join(ErrPaymentProcessing, err)
	}
	act.invoice = s.resolveQuietly(act.gateway.Links)

	saved, err := s.saveActivation(ctx, sub, act)
	if err != nil {
		s.log.ErrorContext(ctx, "gateway subscription created but local state not saved",
			logger.TenantID(in.AccountID),
			logger.SubscriptionID(sub.ID),
			logger.GatewaySubscriptionID(act.gateway.ID),
			logger.Error(err),
		)
		// Nothing local will ever point at the new gateway subscription.
		if created && (errors.Is(err, errLinkedElsewhere) || errors.Is(err, ErrSubscriptionNotFound)) {
			s.discardGatewaySubscription(ctx, in.AccountID, act.gateway.ID)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription upgraded",
		logger.TenantID(in.AccountID),
		logger.SubscriptionID(saved.ID),
		logger.PlanID(plan.ID),
		logger.PaymentMethod(string(in.Method)),
		logger.Transition(string(sub.Status), string(saved.Status)),
		logger.GatewaySubscriptionID(saved.GatewaySubscriptionID),
	)

	return act.result(saved), nil
}

// saveActivation writes the activation with a version check. If the row
// moved underneath us and the webhook already reconciled the same gateway
// subscription, the webhook's state is kept and only the commercial terms
// are filled in. Otherwise the activation is applied once more to the
// fresh row.
func (s *service) saveActivation(ctx context.Context, sub *Subscription, act activation) (*Subscription, error) {
	working := sub.Clone()
	if err := act.apply(working); err != nil {
		return nil, err
	}
	err := s.store.Save(ctx, working)
	if err == nil {
		return working, nil
	}
	if !errors.Is(err, ErrVersionConflict) {
		return nil, err
	}

	fresh, err := s.store.Get(ctx, sub.ID)
	if err != nil {
		return nil, err
	}
	if fresh.IsDeleted() {
		return nil, errors.Join(ErrVersionConflict, ErrSubscriptionNotFound)
	}

	if fresh.GatewaySubscriptionID == act.gateway.ID {
		act.applyTerms(fresh)
	} else if err := act.apply(fresh); err != nil {
		return nil, errors.Join(ErrVersionConflict, err)
	}

	if err := s.store.Save(ctx, fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Reactivate starts a new activation for a canceled or expired account. The
// previous row is soft-deleted and replaced by a new one that keeps the
// trial end date and the gateway customer but gets a new gateway
// subscription.
func (s *service) Reactivate(ctx context.Context, in PaymentIntent) (*UpgradeResult, error) {
	now := s.now()
	in = normalizeIntent(in)

	if err := validateIntent(in, now); err != nil {
		s.log.DebugContext(ctx, "reactivation rejected", logger.TenantID(in.AccountID), logger.Error(err))
		return nil, err
	}

	release, err := s.lockAccount(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	defer release()

	prev, err := s.store.GetByAccount(ctx, in.AccountID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, errors.Join(ErrNoEligibleSubscription, err)
	}
	if err != nil {
		return nil, err
	}

	effective := EffectiveStatus(prev, now)
	if !CanTransition(effective, EventReactivate) {
		return nil, errors.Join(ErrNoEligibleSubscription,
			fmt.Errorf("subscription is %s", effective))
	}

	plan, err := s.Plan(in.PlanID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.EnsureCustomer(ctx, in.Tenant)
	if err != nil {
		return nil, err
	}

	next := prev.successor(now)
	next.Status = effective
	next.Cycle = in.Cycle

	act := activation{
		intent:     in,
		plan:       plan,
		customerID: customerID,
		amount:     plan.ChargeAmount(in.Cycle),
		nextDue:    NextDueAt(in.Cycle, now),
		now:        now,
	}

	act.gateway, err = s.gateway.CreateSubscription(ctx, act.request(next.ID))
	if err != nil {
		s.log.ErrorContext(ctx, "gateway subscription request failed",
			logger.TenantID(in.AccountID),
			logger.PaymentMethod(string(in.Method)),
			logger.Error(err),
		)
		return nil, errors.Join(ErrPaymentProcessing, err)
	}
	act.invoice = s.resolveQuietly(act.gateway.Links)

	if err := act.apply(next); err != nil {
		return nil, err
	}
	if err := s.store.Replace(ctx, prev, next); err != nil {
		s.log.ErrorContext(ctx, "gateway subscription created but reactivation not saved",
			logger.TenantID(in.AccountID),
			logger.GatewaySubscriptionID(act.gateway.ID),
			logger.Error(err),
		)
		s.discardGatewaySubscription(ctx, in.AccountID, act.gateway.ID)
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription reactivated",
		logger.TenantID(in.AccountID),
		logger.SubscriptionID(next.ID),
		logger.Group("previous", logger.SubscriptionID(prev.ID)),
		logger.Transition(string(effective), string(next.Status)),
		logger.GatewaySubscriptionID(next.GatewaySubscriptionID),
	)

	return act.result(next), nil
}

// Cancel deletes the gateway subscription and marks the row CANCELED.
// Access continues until the already paid NextDueAt.
func (s *service) Cancel(ctx context.Context, subscriptionID uuid.UUID) (*Subscription, error) {
	sub, err := s.store.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.IsDeleted() {
		return nil, ErrSubscriptionNotFound
	}
	if !CanTransition(sub.Status, EventCancel) {
		return nil, errors.Join(ErrNoEligibleSubscription,
			fmt.Errorf("subscription is %s", sub.Status))
	}

	if sub.GatewaySubscriptionID != "" {
		if err := s.gateway.DeleteSubscription(ctx, sub.GatewaySubscriptionID); err != nil {
			gwErr, ok := GatewayErrorFrom(err)
			if !ok || gwErr.StatusCode != http.StatusNotFound {
				s.log.ErrorContext(ctx, "gateway subscription deletion failed",
					logger.SubscriptionID(sub.ID),
					logger.GatewaySubscriptionID(sub.GatewaySubscriptionID),
					logger.Error(err),
				)
				return nil, errors.Join(ErrPaymentProcessing, err)
			}
		}
	}

	now := s.now()
	saved, err := s.applyWithRetry(ctx, sub, func(target *Subscription) (bool, error) {
		if target.Status == StatusCanceled {
			return false, nil
		}
		return true, Transition(target, EventCancel, now)
	})
	if err != nil {
		if sub.GatewaySubscriptionID != "" {
			s.log.ErrorContext(ctx, "gateway subscription deleted but cancellation not saved",
				logger.TenantID(sub.AccountID),
				logger.SubscriptionID(sub.ID),
				logger.GatewaySubscriptionID(sub.GatewaySubscriptionID),
				logger.Error(err),
			)
		}
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription canceled",
		logger.TenantID(saved.AccountID),
		logger.SubscriptionID(saved.ID),
		logger.Transition(string(sub.Status), string(saved.Status)),
	)
	return saved, nil
}

// StartTrial creates the TRIAL row of a new account. The trial end date is
// fixed here and never changes afterwards.
func (s *service) StartTrial(ctx context.Context, accountID uuid.UUID, planID string, payer Payer) (*Subscription, error) {
	if payer == "" {
		payer = PayerAccount
	}
	if err := validator.Apply(
		validator.NotZero("account_id", accountID),
		validator.RequiredString("plan_id", planID),
		validator.OneOf("payer", payer, PayerAccount, PayerAdmin),
	); err != nil {
		return nil, errors.Join(ErrValidation, err)
	}

	plan, err := s.Plan(planID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.store.CustomerID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sub := &Subscription{
		ID:                uuid.New(),
		AccountID:         accountID,
		PlanID:            plan.ID,
		Status:            StatusTrial,
		StartedAt:         now,
		TrialEndsAt:       now.AddDate(0, 0, s.trialDays),
		Cycle:             CycleMonthly,
		GatewayCustomerID: customerID,
		Payer:             payer,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "trial started",
		logger.TenantID(accountID),
		logger.SubscriptionID(sub.ID),
		logger.PlanID(plan.ID),
		slog.Time("trial_ends_at", sub.TrialEndsAt),
	)
	return sub, nil
}

// applyWithRetry runs mutate on sub and saves it, re-reading and re-running
// mutate on a version conflict. mutate returns false to skip the write.
func (s *service) applyWithRetry(ctx context.Context, sub *Subscription, mutate func(*Subscription) (bool, error)) (*Subscription, error) {
	const attempts = 3

	current := sub
	for i := range attempts {
		working := current.Clone()
		write, err := mutate(working)
		if err != nil {
			return nil, err
		}
		if !write {
			return working, nil
		}

		err = s.store.Save(ctx, working)
		if err == nil {
			return working, nil
		}
		if !errors.Is(err, ErrVersionConflict) || i == attempts-1 {
			return nil, err
		}

		current, err = s.store.Get(ctx, sub.ID)
		if err != nil {
			return nil, err
		}
		if current.IsDeleted() {
			return nil, ErrSubscriptionNotFound
		}
	}
	return nil, ErrVersionConflict
}

// lockAccount serializes activations of one account across the read, the
// gateway call and the save.
func (s *service) lockAccount(ctx context.Context, accountID uuid.UUID) (func(), error) {
	release, err := s.locker.Lock(ctx, "subscription:"+accountID.String())
	if err != nil {
		return nil, errors.Join(ErrVersionConflict, err)
	}
	return release, nil
}

// discardGatewaySubscription deletes a gateway subscription that no local
// row references. Failure is logged and otherwise ignored.
func (s *service) discardGatewaySubscription(ctx context.Context, accountID uuid.UUID, id string) {
	if err := s.gateway.DeleteSubscription(context.WithoutCancel(ctx), id); err != nil {
		s.log.ErrorContext(ctx, "unreferenced gateway subscription not deleted",
			logger.TenantID(accountID),
			logger.GatewaySubscriptionID(id),
			logger.Error(err),
		)
		return
	}
	s.log.WarnContext(ctx, "unreferenced gateway subscription deleted",
		logger.TenantID(accountID),
		logger.GatewaySubscriptionID(id),
	)
}

// resolveQuietly resolves the invoice of a gateway response. Card charges
// usually carry no link, which is not an error.
func (s *service) resolveQuietly(links InvoiceLinks) *Invoice {
	inv, err := s.invoices.Resolve(links)
	if err != nil {
		return nil
	}
	return inv
}

func (a activation) request(subscriptionID uuid.UUID) SubscriptionRequest {
	req := SubscriptionRequest{
		CustomerID:        a.customerID,
		Method:            a.intent.Method,
		Value:             a.amount,
		Cycle:             a.intent.Cycle,
		NextDueDate:       a.nextDue,
		Description:       description(a.plan, a.intent.Cycle),
		ExternalReference: subscriptionID.String(),
		RemoteIP:          a.intent.RemoteIP,
	}
	if a.intent.Method == MethodCreditCard {
		req.Card = a.intent.Card
		req.Holder = a.intent.Holder
	}
	return req
}

// apply moves target into the activated state. A TRIAL row goes through the
// activate transition and a CANCELED/EXPIRED replacement row through
// reactivate; an ACTIVE row stays ACTIVE with refreshed terms.
func (a activation) apply(target *Subscription) error {
	if target.GatewaySubscriptionID != "" && target.GatewaySubscriptionID != a.gateway.ID {
		return errors.Join(ErrVersionConflict, errLinkedElsewhere)
	}

	target.Cycle = a.intent.Cycle
	switch target.Status {
	case StatusTrial:
		if err := Transition(target, EventActivate, a.now); err != nil {
			return err
		}
	case StatusCanceled, StatusExpired:
		if err := Transition(target, EventReactivate, a.now); err != nil {
			return err
		}
	case StatusActive:
		target.FailedAttempts = 0
		target.PaymentConfirmedAt = nil
	default:
		return errors.Join(ErrInvalidTransition,
			fmt.Errorf("cannot activate a %s subscription", target.Status))
	}

	target.GatewaySubscriptionID = a.gateway.ID
	target.NextDueAt = timePtr(a.nextDue)
	if a.intent.Method.Synchronous() {
		target.PaymentConfirmedAt = timePtr(a.now)
	}
	a.applyTerms(target)
	return nil
}

// applyTerms writes the commercial terms of the activation without touching
// lifecycle state.
func (a activation) applyTerms(target *Subscription) {
	target.PlanID = a.plan.ID
	target.Cycle = a.intent.Cycle
	target.ChargeAmount = a.amount
	if target.GatewayCustomerID == "" {
		target.GatewayCustomerID = a.customerID
	}
	if a.invoice != nil {
		target.InvoiceURL = a.invoice.PrimaryURL
	} else {
		target.InvoiceURL = ""
	}
}

func (a activation) result(sub *Subscription) *UpgradeResult {
	return &UpgradeResult{
		SubscriptionID:        sub.ID,
		CustomerID:            a.customerID,
		GatewaySubscriptionID: sub.GatewaySubscriptionID,
		InvoiceURL:            sub.InvoiceURL,
		Status:                sub.Status,
		ChargeAmount:          sub.ChargeAmount,
		Cycle:                 sub.Cycle,
		NextDueAt:             cloneTime(sub.NextDueAt),
		RequiresFollowUp:      !a.intent.Method.Synchronous(),
		Invoice:               a.invoice,
	}
}

// normalizeIntent fills the tenant's account from the intent when the UI
// sent only one of them.
func normalizeIntent(in PaymentIntent) PaymentIntent {
	if in.Tenant.AccountID == uuid.Nil {
		in.Tenant.AccountID = in.AccountID
	}
	if in.AccountID == uuid.Nil {
		in.AccountID = in.Tenant.AccountID
	}
	return in
}
