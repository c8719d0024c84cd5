package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/imobflow/billing/pkg/logger"
)

// Gateway event names handled by HandleGatewayEvent. Any other event is
// ignored. PAYMENT_DELETED and PAYMENT_REFUNDED concern a single charge and
// leave the subscription as it is.
const (
	GatewayEventPaymentReceived            = "PAYMENT_RECEIVED"
	GatewayEventPaymentReceivedInCash      = "PAYMENT_RECEIVED_IN_CASH"
	GatewayEventPaymentConfirmed           = "PAYMENT_CONFIRMED"
	GatewayEventPaymentOverdue             = "PAYMENT_OVERDUE"
	GatewayEventPaymentDeleted             = "PAYMENT_DELETED"
	GatewayEventPaymentRefunded            = "PAYMENT_REFUNDED"
	GatewayEventPaymentChargebackRequested = "PAYMENT_CHARGEBACK_REQUESTED"
	GatewayEventPaymentChargebackDispute   = "PAYMENT_CHARGEBACK_DISPUTE"
	GatewayEventSubscriptionDeleted        = "SUBSCRIPTION_DELETED"
	GatewayEventSubscriptionInactivated    = "SUBSCRIPTION_INACTIVATED"
)

var eventStatus = map[string]Status{
	GatewayEventPaymentReceived:            StatusActive,
	GatewayEventPaymentReceivedInCash:      StatusActive,
	GatewayEventPaymentConfirmed:           StatusActive,
	GatewayEventPaymentOverdue:             StatusPaymentPending,
	GatewayEventPaymentChargebackRequested: StatusPaymentPending,
	GatewayEventPaymentChargebackDispute:   StatusPaymentPending,
	GatewayEventSubscriptionDeleted:        StatusCanceled,
	GatewayEventSubscriptionInactivated:    StatusCanceled,
}

// StatusForEvent maps a gateway event name to the status it implies.
func StatusForEvent(event string) (Status, bool) {
	st, ok := eventStatus[event]
	return st, ok
}

// GatewayMetadata describes the gateway event behind a status update.
type GatewayMetadata struct {
	Event                 string     `json:"event,omitempty"`
	PaymentID             string     `json:"payment_id,omitempty"`
	GatewaySubscriptionID string     `json:"gateway_subscription_id,omitempty"`
	InvoiceURL            string     `json:"invoice_url,omitempty"`
	NextDueAt             *time.Time `json:"next_due_at,omitempty"`
}

// GatewayEvent is a payment or subscription notification from the gateway
// after parsing.
type GatewayEvent struct {
	Event                 string
	PaymentID             string
	GatewaySubscriptionID string
	// ExternalReference is the local subscription id sent when the gateway
	// subscription was created.
	ExternalReference string
	// PaymentDueDate is the due date of the payment the event is about.
	PaymentDueDate *time.Time
	// NextDueDate is the subscription's next due date, when reported.
	NextDueDate *time.Time
	InvoiceURL  string
}

// ParseGatewayEvent decodes a webhook body of the form
// {"event": "...", "payment": {...}} or {"event": "...", "subscription": {...}}.
func ParseGatewayEvent(payload []byte) (GatewayEvent, error) {
	var body struct {
		Event   string `json:"event"`
		Payment *struct {
			ID                string `json:"id"`
			Subscription      string `json:"subscription"`
			ExternalReference string `json:"externalReference"`
			DueDate           string `json:"dueDate"`
			InvoiceURL        string `json:"invoiceUrl"`
		} `json:"payment"`
		Subscription *struct {
			ID                string `json:"id"`
			ExternalReference string `json:"externalReference"`
			NextDueDate       string `json:"nextDueDate"`
		} `json:"subscription"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return GatewayEvent{}, errors.Join(ErrValidation, fmt.Errorf("malformed gateway event: %w", err))
	}
	if body.Event == "" {
		return GatewayEvent{}, errors.Join(ErrValidation, errors.New("gateway event name is missing"))
	}

	ev := GatewayEvent{Event: body.Event}
	switch {
	case body.Payment != nil:
		ev.PaymentID = body.Payment.ID
		ev.GatewaySubscriptionID = body.Payment.Subscription
		ev.ExternalReference = body.Payment.ExternalReference
		ev.InvoiceURL = body.Payment.InvoiceURL
		ev.PaymentDueDate = parseDate(body.Payment.DueDate)
	case body.Subscription != nil:
		ev.GatewaySubscriptionID = body.Subscription.ID
		ev.ExternalReference = body.Subscription.ExternalReference
		ev.NextDueDate = parseDate(body.Subscription.NextDueDate)
	}
	return ev, nil
}

// UpdateStatus applies a gateway-reported status to a subscription. It is
// the write path of the external webhook receiver and is authoritative:
// every write bumps the version so a late optimistic write from an upgrade
// fails its version check instead of overwriting this state.
//
// Reporting the current status again is allowed: ACTIVE records a payment
// confirmation, PAYMENT_PENDING counts another failed attempt, and any
// other status is a no-op.
func (s *service) UpdateStatus(ctx context.Context, subscriptionID uuid.UUID, status Status, meta GatewayMetadata) (*Subscription, error) {
	if !status.Valid() {
		return nil, errors.Join(ErrValidation, fmt.Errorf("unknown status %q", status))
	}

	sub, err := s.store.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.IsDeleted() {
		return nil, ErrSubscriptionNotFound
	}

	if meta.GatewaySubscriptionID != "" && sub.GatewaySubscriptionID != "" &&
		meta.GatewaySubscriptionID != sub.GatewaySubscriptionID {
		s.log.WarnContext(ctx, "ignoring status update for another gateway subscription",
			logger.SubscriptionID(sub.ID),
			logger.GatewaySubscriptionID(sub.GatewaySubscriptionID),
			logger.Event(meta.Event),
		)
		return sub, nil
	}

	now := s.now()
	saved, err := s.applyWithRetry(ctx, sub, func(target *Subscription) (bool, error) {
		event, ok, err := eventFor(target.Status, status)
		if err != nil || !ok {
			return false, err
		}
		if err := Transition(target, event, now); err != nil {
			return false, err
		}

		switch event {
		case EventActivate:
			// The gateway only reports ACTIVE once money moved.
			target.PaymentConfirmedAt = timePtr(now)
			fallthrough
		case EventConfirmPayment, EventRegularize, EventResume:
			if meta.NextDueAt != nil {
				target.NextDueAt = cloneTime(meta.NextDueAt)
			}
		}

		if target.GatewaySubscriptionID == "" {
			target.GatewaySubscriptionID = meta.GatewaySubscriptionID
		}
		if meta.InvoiceURL != "" {
			target.InvoiceURL = meta.InvoiceURL
		}
		return true, nil
	})
	if err != nil {
		s.log.WarnContext(ctx, "gateway status update rejected",
			logger.SubscriptionID(sub.ID),
			logger.Event(meta.Event),
			logger.Transition(string(sub.Status), string(status)),
			logger.Error(err),
		)
		return nil, err
	}

	s.log.InfoContext(ctx, "subscription status updated by gateway",
		logger.TenantID(saved.AccountID),
		logger.SubscriptionID(saved.ID),
		logger.Event(meta.Event),
		logger.Transition(string(sub.Status), string(saved.Status)),
	)
	return saved, nil
}

// HandleGatewayEvent maps a gateway event to a status and applies it with
// UpdateStatus. Unknown events and events for replaced subscriptions are
// ignored.
func (s *service) HandleGatewayEvent(ctx context.Context, ev GatewayEvent) error {
	status, ok := StatusForEvent(ev.Event)
	if !ok {
		switch ev.Event {
		case GatewayEventPaymentDeleted, GatewayEventPaymentRefunded:
			s.log.InfoContext(ctx, "payment withdrawn, subscription unchanged",
				logger.Event(ev.Event),
				logger.GatewaySubscriptionID(ev.GatewaySubscriptionID),
				slog.String("payment_id", ev.PaymentID),
			)
		default:
			s.log.DebugContext(ctx, "ignoring gateway event", logger.Event(ev.Event))
		}
		return nil
	}

	sub, err := s.findEventSubscription(ctx, ev)
	if err != nil {
		return err
	}
	if sub.IsDeleted() {
		s.log.InfoContext(ctx, "ignoring gateway event for replaced subscription",
			logger.SubscriptionID(sub.ID),
			logger.Event(ev.Event),
		)
		return nil
	}

	// A received payment covers one period starting at its due date.
	next := ev.NextDueDate
	if next == nil && ev.PaymentDueDate != nil && status == StatusActive {
		next = timePtr(NextDueAt(sub.Cycle, *ev.PaymentDueDate))
	}

	_, err = s.UpdateStatus(ctx, sub.ID, status, GatewayMetadata{
		Event:                 ev.Event,
		PaymentID:             ev.PaymentID,
		GatewaySubscriptionID: ev.GatewaySubscriptionID,
		InvoiceURL:            ev.InvoiceURL,
		NextDueAt:             next,
	})
	return err
}

func (s *service) findEventSubscription(ctx context.Context, ev GatewayEvent) (*Subscription, error) {
	if id, err := uuid.Parse(ev.ExternalReference); err == nil {
		sub, err := s.store.Get(ctx, id)
		if err == nil {
			return sub, nil
		}
		if !errors.Is(err, ErrSubscriptionNotFound) {
			return nil, err
		}
	}
	if ev.GatewaySubscriptionID != "" {
		return s.store.GetByGatewaySubscriptionID(ctx, ev.GatewaySubscriptionID)
	}
	return nil, ErrSubscriptionNotFound
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
