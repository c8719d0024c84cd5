package subscription

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/imobflow/billing/pkg/validator"
)

// Tenant is the billed account, passed explicitly into every call.
type Tenant struct {
	AccountID uuid.UUID `json:"account_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Document  string    `json:"document"`
	Phone     string    `json:"phone"`
	Payer     Payer     `json:"payer"`
}

// Card is raw card data. It is handed to the gateway once and never stored
// or logged.
type Card struct {
	HolderName  string `json:"holder_name"`
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// CardHolder is the billing identity and address attached to a card charge.
type CardHolder struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Document      string `json:"document"`
	PostalCode    string `json:"postal_code"`
	AddressNumber string `json:"address_number"`
	Phone         string `json:"phone"`
}

// PaymentIntent is the upgrade request collected by the UI. It is consumed
// by a single call and never persisted.
type PaymentIntent struct {
	AccountID uuid.UUID     `json:"account_id"`
	Tenant    Tenant        `json:"tenant"`
	PlanID    string        `json:"plan_id"`
	Cycle     Cycle         `json:"cycle"`
	Method    PaymentMethod `json:"method"`
	Card      *Card         `json:"card,omitempty"`
	Holder    *CardHolder   `json:"holder,omitempty"`
	RemoteIP  string        `json:"remote_ip,omitempty"`
}

func validateTenant(t Tenant) error {
	err := validator.Apply(
		validator.NotZero("tenant.account_id", t.AccountID),
		validator.RequiredString("tenant.document", t.Document),
		validator.ValidTaxDocument("tenant.document", t.Document),
		validator.RequiredString("tenant.email", t.Email),
		validator.ValidEmail("tenant.email", t.Email),
		validator.ValidPhone("tenant.phone", t.Phone),
	)
	if err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

func validateIntent(in PaymentIntent, now time.Time) error {
	rules := []validator.Rule{
		validator.NotZero("account_id", in.AccountID),
		validator.OneOf("tenant.account_id", in.Tenant.AccountID, in.AccountID),
		validator.RequiredString("plan_id", in.PlanID),
		validator.OneOf("cycle", in.Cycle, CycleMonthly, CycleYearly),
		validator.OneOf("method", in.Method, MethodCreditCard, MethodBoleto, MethodPix),
	}

	if in.Method == MethodCreditCard {
		rules = append(rules,
			validator.NotNil("card", in.Card),
			validator.NotNil("holder", in.Holder),
		)
		if c := in.Card; c != nil {
			rules = append(rules,
				validator.RequiredString("card.holder_name", c.HolderName),
				validator.ValidCardNumber("card.number", c.Number),
				validator.RequiredString("card.cvv", c.CVV),
				validator.ValidCVV("card.cvv", c.CVV),
				validator.ValidCardExpiry("card.expiry", c.ExpiryMonth, c.ExpiryYear, now),
			)
		}
		if h := in.Holder; h != nil {
			rules = append(rules,
				validator.RequiredString("holder.name", h.Name),
				validator.ValidEmail("holder.email", h.Email),
				validator.ValidTaxDocument("holder.document", h.Document),
				validator.ValidPostalCode("holder.postal_code", h.PostalCode),
				validator.RequiredString("holder.address_number", h.AddressNumber),
				validator.RequiredString("holder.phone", h.Phone),
				validator.ValidPhone("holder.phone", h.Phone),
			)
		}
	}

	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrValidation, err)
	}
	return nil
}

// description is the text shown on the tenant's gateway invoices.
func description(plan Plan, cycle Cycle) string {
	period := "mensal"
	if cycle == CycleYearly {
		period = "anual"
	}
	return strings.TrimSpace(plan.Name) + " (" + period + ")"
}
