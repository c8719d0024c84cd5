package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is the single live billing record of a tenant account.
// Replaced rows are kept with DeletedAt set.
type Subscription struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	PlanID    string
	Status    Status

	StartedAt   time.Time
	TrialEndsAt time.Time // set at creation, never changed
	NextDueAt   *time.Time
	CanceledAt  *time.Time

	ChargeAmount   Money
	Cycle          Cycle
	FailedAttempts int

	GatewayCustomerID     string // set once
	GatewaySubscriptionID string // set once per activation
	InvoiceURL            string

	Payer Payer

	// PaymentConfirmedAt is set when the gateway reports that money moved.
	// It is nil while an activation is only accepted by the gateway.
	PaymentConfirmedAt *time.Time

	// Version is incremented by every successful save. Saves carrying a
	// stale version fail with ErrVersionConflict.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func (s *Subscription) IsTrial() bool    { return s.Status == StatusTrial }
func (s *Subscription) IsActive() bool   { return s.Status == StatusActive }
func (s *Subscription) IsCanceled() bool { return s.Status == StatusCanceled }
func (s *Subscription) IsDeleted() bool  { return s.DeletedAt != nil }

// IsPaymentConfirmed reports whether the current activation has been
// confirmed by a gateway payment event.
func (s *Subscription) IsPaymentConfirmed() bool {
	return s.PaymentConfirmedAt != nil
}

// Clone returns a deep copy.
func (s *Subscription) Clone() *Subscription {
	if s == nil {
		return nil
	}
	out := *s
	out.NextDueAt = cloneTime(s.NextDueAt)
	out.CanceledAt = cloneTime(s.CanceledAt)
	out.PaymentConfirmedAt = cloneTime(s.PaymentConfirmedAt)
	out.DeletedAt = cloneTime(s.DeletedAt)
	return &out
}

// successor builds the row that replaces s on reactivation. The trial end
// date and the gateway customer are carried over; everything tied to the
// previous activation is left behind.
func (s *Subscription) successor(now time.Time) *Subscription {
	return &Subscription{
		ID:                uuid.New(),
		AccountID:         s.AccountID,
		PlanID:            s.PlanID,
		Status:            s.Status,
		StartedAt:         now,
		TrialEndsAt:       s.TrialEndsAt,
		Cycle:             s.Cycle,
		GatewayCustomerID: s.GatewayCustomerID,
		Payer:             s.Payer,
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timePtr(t time.Time) *time.Time {
	return &t
}
