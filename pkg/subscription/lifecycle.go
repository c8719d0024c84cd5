package subscription

import (
	"errors"
	"fmt"
	"time"
)

// Event drives a lifecycle transition.
type Event string

const (
	EventActivate       Event = "activate"
	EventConfirmPayment Event = "confirm_payment"
	EventOverdue        Event = "overdue"
	EventRegularize     Event = "regularize"
	EventCancel         Event = "cancel"
	EventReactivate     Event = "reactivate"
	EventPause          Event = "pause"
	EventResume         Event = "resume"
)

type transitionKey struct {
	from  Status
	event Event
}

// transitions is the full lifecycle table. EXPIRED never appears as a
// target: a lapsed trial is only reported as EXPIRED on read.
var transitions = map[transitionKey]Status{
	{StatusTrial, EventActivate}: StatusActive,

	{StatusActive, EventConfirmPayment}: StatusActive,
	{StatusActive, EventOverdue}:        StatusPaymentPending,
	{StatusActive, EventCancel}:         StatusCanceled,
	{StatusActive, EventPause}:          StatusPaused,

	{StatusPaymentPending, EventOverdue}:    StatusPaymentPending,
	{StatusPaymentPending, EventRegularize}: StatusActive,
	{StatusPaymentPending, EventCancel}:     StatusCanceled,

	{StatusPaused, EventResume}: StatusActive,

	{StatusCanceled, EventReactivate}: StatusActive,
	{StatusExpired, EventReactivate}:  StatusActive,
}

// CanTransition reports whether event is allowed from status.
func CanTransition(from Status, event Event) bool {
	_, ok := transitions[transitionKey{from, event}]
	return ok
}

// Transition applies event to sub and its side effects. sub is left
// untouched when the pair is not in the table. For reactivation the caller
// passes the replacement row, still carrying the previous status.
func Transition(sub *Subscription, event Event, now time.Time) error {
	from := sub.Status
	to, ok := transitions[transitionKey{from, event}]
	if !ok {
		return errors.Join(ErrInvalidTransition,
			fmt.Errorf("%s does not apply to a %s subscription", event, from))
	}

	switch event {
	case EventActivate, EventReactivate:
		sub.FailedAttempts = 0
		sub.NextDueAt = timePtr(NextDueAt(sub.Cycle, now))
		sub.CanceledAt = nil
		sub.PaymentConfirmedAt = nil
	case EventConfirmPayment:
		sub.PaymentConfirmedAt = timePtr(now)
	case EventOverdue:
		sub.FailedAttempts++
	case EventRegularize:
		sub.FailedAttempts = 0
		sub.NextDueAt = timePtr(NextDueAt(sub.Cycle, now))
		sub.PaymentConfirmedAt = timePtr(now)
	case EventResume:
		sub.NextDueAt = timePtr(NextDueAt(sub.Cycle, now))
	case EventCancel:
		sub.CanceledAt = timePtr(now)
	}

	sub.Status = to
	return nil
}

// eventFor maps a requested status change, as reported by the gateway, to
// a lifecycle event. ok is false for a no-op (same terminal status reported
// twice); err is set when no event produces the change.
func eventFor(from, to Status) (event Event, ok bool, err error) {
	switch {
	case from == to:
		switch from {
		case StatusActive:
			return EventConfirmPayment, true, nil
		case StatusPaymentPending:
			return EventOverdue, true, nil
		default:
			return "", false, nil
		}
	case to == StatusActive:
		switch from {
		case StatusTrial:
			return EventActivate, true, nil
		case StatusPaymentPending:
			return EventRegularize, true, nil
		case StatusPaused:
			return EventResume, true, nil
		}
	case to == StatusPaymentPending:
		return EventOverdue, true, nil
	case to == StatusCanceled:
		return EventCancel, true, nil
	case to == StatusPaused:
		return EventPause, true, nil
	}

	return "", false, errors.Join(ErrInvalidTransition,
		fmt.Errorf("no transition from %s to %s", from, to))
}
