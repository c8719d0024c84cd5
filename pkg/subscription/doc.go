// Package subscription is the billing engine of the CRM: it decides what a
// tenant may access, provisions the tenant at the payment gateway and keeps
// the local subscription row in step with the gateway.
//
// # Access
//
// Classify turns a Subscription and a wall-clock time into an AccessStatus
// without any I/O. A trial whose end date has passed is reported as EXPIRED
// by EffectiveStatus; that state is never written.
//
//	st := subscription.Classify(sub, time.Now())
//	if !st.HasAccess {
//		// show the upgrade screen
//	}
//
// # Lifecycle
//
// Status changes go through the table in lifecycle.go:
//
//	TRIAL           --activate-->   ACTIVE
//	ACTIVE          --overdue-->    PAYMENT_PENDING
//	PAYMENT_PENDING --overdue-->    PAYMENT_PENDING
//	PAYMENT_PENDING --regularize--> ACTIVE
//	ACTIVE|PAYMENT_PENDING --cancel--> CANCELED
//	CANCELED|EXPIRED --reactivate--> ACTIVE (new row)
//	ACTIVE          --pause-->      PAUSED
//	PAUSED          --resume-->     ACTIVE
//
// # Provisioning and upgrades
//
// Service.EnsureCustomer creates the gateway customer of an account at most
// once. The stored id is the idempotency anchor: it is read before and,
// under a per-tenant lock, again right before the gateway call, and it is
// persisted before the id is returned.
//
// Service.ProcessUpgrade validates the PaymentIntent locally, provisions the
// customer, creates (or updates) the gateway subscription and then writes
// the local row with a version check. Card data only travels to the
// gateway; it is never stored or logged.
//
// # Gateway reconciliation
//
// The webhook receiver lives outside this module. It calls
// Service.UpdateStatus, or Service.HandleGatewayEvent with an event parsed
// by ParseGatewayEvent. Those writes are authoritative: they bump the row
// version, so an upgrade that read the row earlier cannot overwrite them.
//
// # Errors
//
// Errors are sentinel values combined with errors.Join. Gateway failures
// also carry a *GatewayError with the gateway's structured error list:
//
//	res, err := svc.ProcessUpgrade(ctx, intent)
//	switch {
//	case errors.Is(err, subscription.ErrValidation):
//		fields := validator.ExtractValidationErrors(err)
//	case errors.Is(err, subscription.ErrInvalidDocument):
//		// ask the tenant to fix the CPF/CNPJ
//	case errors.Is(err, subscription.ErrPaymentProcessing):
//		gwErr, _ := subscription.GatewayErrorFrom(err)
//	}
package subscription
