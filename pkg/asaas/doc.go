// Package asaas is a client for the Asaas v3 payments API. It implements
// subscription.Gateway: customers, recurring subscriptions and their first
// payment links.
//
// The client never retries. Every non-2xx response is returned as a
// *subscription.GatewayError carrying the API's error list, and transport
// failures are returned as a GatewayError with StatusCode 0.
//
//	cfg := config.MustLoad[asaas.Config]()
//	client, err := asaas.New(cfg, asaas.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	svc, err := subscription.NewService(ctx, plans, client, store)
package asaas
