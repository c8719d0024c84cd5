package subscription

import (
	"math"
	"time"
)

// trialExpiringDays is the window in which a trial is flagged as expiring.
const trialExpiringDays = 2

// AccessStatus is the access decision shown to the tenant.
type AccessStatus struct {
	HasAccess     bool   `json:"has_access"`
	DaysRemaining int    `json:"days_remaining"`
	TrialExpiring bool   `json:"trial_expiring"`
	TrialExpired  bool   `json:"trial_expired"`
	NeedsUpgrade  bool   `json:"needs_upgrade"`
	Status        Status `json:"status,omitempty"`
	// EffectiveStatus is Status with a lapsed trial reported as EXPIRED.
	EffectiveStatus Status `json:"effective_status,omitempty"`
}

// Classify derives the access decision for sub at now. It does no I/O and
// is deterministic for a fixed now. A nil sub means the account never had a
// subscription.
func Classify(sub *Subscription, now time.Time) AccessStatus {
	if sub == nil {
		return AccessStatus{
			HasAccess:    false,
			TrialExpired: true,
			NeedsUpgrade: true,
		}
	}

	days := daysRemaining(sub.TrialEndsAt, now)
	trial := sub.Status == StatusTrial

	st := AccessStatus{
		DaysRemaining:   days,
		TrialExpiring:   trial && days > 0 && days <= trialExpiringDays,
		TrialExpired:    trial && days <= 0,
		Status:          sub.Status,
		EffectiveStatus: EffectiveStatus(sub, now),
	}

	switch sub.Status {
	case StatusActive:
		st.HasAccess = true
	case StatusTrial:
		st.HasAccess = days > 0
	case StatusCanceled:
		// Access runs until the end of the period already paid for. An
		// unpaid boleto or pix leaves nothing paid for.
		st.HasAccess = sub.IsPaymentConfirmed() &&
			sub.NextDueAt != nil && now.Before(*sub.NextDueAt)
	}

	switch sub.Status {
	case StatusTrial, StatusExpired, StatusCanceled:
		st.NeedsUpgrade = true
	}

	return st
}

// EffectiveStatus reports EXPIRED for a trial whose end date has passed and
// the stored status otherwise. EXPIRED is never written for a lapsed trial.
func EffectiveStatus(sub *Subscription, now time.Time) Status {
	if sub == nil {
		return StatusExpired
	}
	if sub.Status == StatusTrial && daysRemaining(sub.TrialEndsAt, now) <= 0 {
		return StatusExpired
	}
	return sub.Status
}

// daysRemaining is max(0, ceil((end - now) / 24h)).
func daysRemaining(end, now time.Time) int {
	d := end.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
