package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store persists subscriptions and the per-account gateway customer anchor.
type Store interface {
	// Get returns a subscription by id, including soft-deleted rows.
	Get(ctx context.Context, id uuid.UUID) (*Subscription, error)

	// GetByAccount returns the live subscription of an account or
	// ErrSubscriptionNotFound.
	GetByAccount(ctx context.Context, accountID uuid.UUID) (*Subscription, error)

	// GetByGatewaySubscriptionID returns the row linked to a gateway
	// subscription, including soft-deleted rows.
	GetByGatewaySubscriptionID(ctx context.Context, gatewayID string) (*Subscription, error)

	// Create inserts a new row with Version 1. It fails with
	// ErrSubscriptionAlreadyExists when the account already has a live row.
	Create(ctx context.Context, sub *Subscription) error

	// Save writes sub if the stored version still equals sub.Version and
	// then increments sub.Version. A stale version yields ErrVersionConflict.
	// TrialEndsAt is never updated and GatewayCustomerID only fills an
	// empty column.
	Save(ctx context.Context, sub *Subscription) error

	// Replace soft-deletes prev (with the same version check as Save) and
	// inserts next, atomically.
	Replace(ctx context.Context, prev, next *Subscription) error

	// CustomerID returns the gateway customer linked to the account, or ""
	// when none is.
	CustomerID(ctx context.Context, accountID uuid.UUID) (string, error)

	// SetCustomerID links customerID to the account unless a customer is
	// already linked. It returns the id that is stored afterwards.
	SetCustomerID(ctx context.Context, accountID uuid.UUID, customerID string) (string, error)
}
