package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/imobflow/billing/pkg/i18n"
	"github.com/imobflow/billing/pkg/subscription"
)

// Amounts are centavos. The *_display fields are rendered for the request
// locale.

type PlanView struct {
	subscription.Plan
	YearlyPrice    subscription.Money `json:"yearly_price"`
	MonthlyDisplay string             `json:"monthly_display"`
	YearlyDisplay  string             `json:"yearly_display"`
}

func newPlanView(ctx context.Context, p subscription.Plan) PlanView {
	tag := i18n.GetLocale(ctx)
	yearly := p.ChargeAmount(subscription.CycleYearly)
	return PlanView{
		Plan:           p,
		YearlyPrice:    yearly,
		MonthlyDisplay: i18n.T(ctx, i18n.MsgPriceMonthly, i18n.FormatBRL(tag, p.MonthlyPrice.Cents())),
		YearlyDisplay:  i18n.T(ctx, i18n.MsgPriceYearly, i18n.FormatBRL(tag, yearly.Cents())),
	}
}

type AccessView struct {
	subscription.AccessStatus
	Message string `json:"message,omitempty"`
}

func newAccessView(ctx context.Context, st subscription.AccessStatus) AccessView {
	v := AccessView{AccessStatus: st}
	if st.HasAccess && st.EffectiveStatus == subscription.StatusTrial {
		v.Message = i18n.T(ctx, i18n.MsgTrialDaysLeft, st.DaysRemaining)
	}
	return v
}

type SubscriptionView struct {
	ID                    uuid.UUID           `json:"id"`
	AccountID             uuid.UUID           `json:"account_id"`
	PlanID                string              `json:"plan_id"`
	Status                subscription.Status `json:"status"`
	StartedAt             time.Time           `json:"started_at"`
	TrialEndsAt           time.Time           `json:"trial_ends_at"`
	NextDueAt             *time.Time          `json:"next_due_at,omitempty"`
	CanceledAt            *time.Time          `json:"canceled_at,omitempty"`
	ChargeAmount          subscription.Money  `json:"charge_amount"`
	ChargeDisplay         string              `json:"charge_display,omitempty"`
	Cycle                 subscription.Cycle  `json:"cycle,omitempty"`
	GatewaySubscriptionID string              `json:"gateway_subscription_id,omitempty"`
	InvoiceURL            string              `json:"invoice_url,omitempty"`
	Payer                 subscription.Payer  `json:"payer"`
	Version               int64               `json:"version"`
}

func newSubscriptionView(ctx context.Context, s *subscription.Subscription) SubscriptionView {
	v := SubscriptionView{
		ID:                    s.ID,
		AccountID:             s.AccountID,
		PlanID:                s.PlanID,
		Status:                s.Status,
		StartedAt:             s.StartedAt,
		TrialEndsAt:           s.TrialEndsAt,
		NextDueAt:             s.NextDueAt,
		CanceledAt:            s.CanceledAt,
		ChargeAmount:          s.ChargeAmount,
		Cycle:                 s.Cycle,
		GatewaySubscriptionID: s.GatewaySubscriptionID,
		InvoiceURL:            s.InvoiceURL,
		Payer:                 s.Payer,
		Version:               s.Version,
	}
	if s.ChargeAmount > 0 {
		v.ChargeDisplay = chargeDisplay(ctx, s.ChargeAmount, s.Cycle)
	}
	return v
}

type UpgradeView struct {
	*subscription.UpgradeResult
	ChargeDisplay string `json:"charge_display"`
}

func newUpgradeView(ctx context.Context, res *subscription.UpgradeResult) UpgradeView {
	return UpgradeView{
		UpgradeResult: res,
		ChargeDisplay: chargeDisplay(ctx, res.ChargeAmount, res.Cycle),
	}
}

func chargeDisplay(ctx context.Context, amount subscription.Money, cycle subscription.Cycle) string {
	key := i18n.MsgPriceMonthly
	if cycle == subscription.CycleYearly {
		key = i18n.MsgPriceYearly
	}
	return i18n.T(ctx, key, i18n.FormatBRL(i18n.GetLocale(ctx), amount.Cents()))
}
