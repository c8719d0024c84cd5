package billing

import (
	"github.com/google/uuid"

	"github.com/imobflow/billing/pkg/subscription"
)

type subscriptionPath struct {
	ID uuid.UUID `path:"id" json:"-"`
}

type accountPath struct {
	AccountID uuid.UUID `path:"account_id" json:"-"`
}

type planPath struct {
	ID string `path:"id" json:"-"`
}

// TrialRequest opens the TRIAL row of a freshly created account.
type TrialRequest struct {
	AccountID uuid.UUID          `json:"account_id"`
	PlanID    string             `json:"plan_id"`
	Payer     subscription.Payer `json:"payer"`
}

// PaymentRequest is the body of upgrade and reactivation calls.
type PaymentRequest struct {
	subscription.PaymentIntent
}

// InvoiceRequest is a raw gateway charge or subscription payload.
type InvoiceRequest map[string]any
