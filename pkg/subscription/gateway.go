package subscription

import (
	"context"
	"time"
)

// Gateway is the payment gateway API the engine depends on. Implementations
// must not retry; every failure is returned as a *GatewayError.
type Gateway interface {
	CreateCustomer(ctx context.Context, req CustomerRequest) (*GatewayCustomer, error)
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*GatewaySubscription, error)
	UpdateSubscription(ctx context.Context, id string, req SubscriptionRequest) (*GatewaySubscription, error)
	DeleteSubscription(ctx context.Context, id string) error
}

type CustomerRequest struct {
	Name              string
	Email             string
	Document          string
	Phone             string
	ExternalReference string
}

type GatewayCustomer struct {
	ID string
}

// SubscriptionRequest carries card data only for CREDIT_CARD; it lives for
// the duration of one gateway call.
type SubscriptionRequest struct {
	CustomerID        string
	Method            PaymentMethod
	Value             Money
	Cycle             Cycle
	NextDueDate       time.Time
	Description       string
	ExternalReference string
	Card              *Card
	Holder            *CardHolder
	RemoteIP          string
}

// GatewaySubscription is the gateway's view of a created or updated
// subscription. Links holds every URL field the response carried.
type GatewaySubscription struct {
	ID     string
	Status string
	Links  InvoiceLinks
}
