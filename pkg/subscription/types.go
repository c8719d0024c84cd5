package subscription

import (
	"fmt"
)

// Money is an amount in centavos. The gateway receives it as a decimal
// number of reais.
type Money int64

// Reais builds Money from whole reais and centavos, e.g. Reais(199, 90).
func Reais(units, cents int64) Money {
	return Money(units*100 + cents)
}

func (m Money) Cents() int64 { return int64(m) }

// String renders the amount as a plain decimal ("199.90"), the format the
// gateway expects for the value field.
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// Status is the stored lifecycle state of a subscription.
type Status string

const (
	StatusTrial          Status = "TRIAL"
	StatusActive         Status = "ACTIVE"
	StatusPaused         Status = "PAUSED"
	StatusCanceled       Status = "CANCELED"
	StatusExpired        Status = "EXPIRED"
	StatusPaymentPending Status = "PAYMENT_PENDING"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusPaused, StatusCanceled, StatusExpired, StatusPaymentPending:
		return true
	}
	return false
}

// Cycle is the billing recurrence.
type Cycle string

const (
	CycleMonthly Cycle = "MONTHLY"
	CycleYearly  Cycle = "YEARLY"
)

func (c Cycle) Valid() bool {
	return c == CycleMonthly || c == CycleYearly
}

// PaymentMethod is the gateway billing type.
type PaymentMethod string

const (
	MethodCreditCard PaymentMethod = "CREDIT_CARD"
	MethodBoleto     PaymentMethod = "BOLETO"
	MethodPix        PaymentMethod = "PIX"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCreditCard, MethodBoleto, MethodPix:
		return true
	}
	return false
}

// Synchronous reports whether the gateway settles the charge while creating
// the subscription. BOLETO and PIX hand back a payment instrument instead.
func (m PaymentMethod) Synchronous() bool {
	return m == MethodCreditCard
}

// Payer designates who is billed for the account.
type Payer string

const (
	PayerAccount Payer = "ACCOUNT"
	PayerAdmin   Payer = "ADMIN"
)

func (p Payer) Valid() bool {
	return p == PayerAccount || p == PayerAdmin
}

// PlanFamily groups plans by the kind of tenant they target.
type PlanFamily string

const (
	FamilyIndividual PlanFamily = "INDIVIDUAL"
	FamilyAgency     PlanFamily = "AGENCY"
)

func (f PlanFamily) Valid() bool {
	return f == FamilyIndividual || f == FamilyAgency
}
