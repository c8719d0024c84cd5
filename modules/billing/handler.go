package billing

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imobflow/billing/handler"
	"github.com/imobflow/billing/pkg/binder"
	"github.com/imobflow/billing/pkg/clientip"
	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/subscription"
)

// Handler exposes the subscription service as a JSON API.
type Handler struct {
	svc    subscription.Service
	log    *slog.Logger
	errors handler.ErrorHandler[handler.Context]
}

type Option func(*Handler)

// WithLogger sets the logger used for error responses.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler panics when svc is nil.
func NewHandler(svc subscription.Service, opts ...Option) *Handler {
	if svc == nil {
		panic("billing: subscription service is required")
	}
	h := &Handler{svc: svc, log: logger.Discard()}
	for _, opt := range opts {
		opt(h)
	}
	h.errors = handler.NewErrorHandler(h.log, ClassifyError)
	return h
}

func (h *Handler) Handle() http.Handler {
	r := chi.NewRouter()

	r.Get("/plans", handler.Wrap(h.plans,
		handler.WithErrorHandler[handler.Context, struct{}](h.errors),
	))
	r.Get("/plans/{id}", handler.Wrap(h.plan,
		handler.WithBinder[handler.Context, planPath](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, planPath](h.errors),
	))

	r.Get("/accounts/{account_id}/access", handler.Wrap(h.accountAccess,
		handler.WithBinder[handler.Context, accountPath](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, accountPath](h.errors),
	))
	r.Get("/accounts/{account_id}/subscription", handler.Wrap(h.accountSubscription,
		handler.WithBinder[handler.Context, accountPath](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, accountPath](h.errors),
	))

	r.Route("/subscriptions", func(r chi.Router) {
		r.Post("/trial", handler.Wrap(h.startTrial,
			handler.WithBinder[handler.Context, TrialRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, TrialRequest](h.errors),
		))
		r.Post("/upgrade", handler.Wrap(h.upgrade,
			handler.WithBinder[handler.Context, PaymentRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, PaymentRequest](h.errors),
		))
		r.Post("/reactivate", handler.Wrap(h.reactivate,
			handler.WithBinder[handler.Context, PaymentRequest](binder.JSON()),
			handler.WithErrorHandler[handler.Context, PaymentRequest](h.errors),
		))
		r.Get("/{id}/access", handler.Wrap(h.access,
			handler.WithBinder[handler.Context, subscriptionPath](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, subscriptionPath](h.errors),
		))
		r.Post("/{id}/cancel", handler.Wrap(h.cancel,
			handler.WithBinder[handler.Context, subscriptionPath](binder.Path(chi.URLParam)),
			handler.WithErrorHandler[handler.Context, subscriptionPath](h.errors),
		))
	})

	r.Post("/invoices/resolve", handler.Wrap(h.resolveInvoice,
		handler.WithBinder[handler.Context, InvoiceRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, InvoiceRequest](h.errors),
	))

	return r
}

func (h *Handler) plans(ctx handler.Context, _ struct{}) handler.Response {
	plans := h.svc.Plans()
	views := make([]PlanView, 0, len(plans))
	for _, p := range plans {
		views = append(views, newPlanView(ctx, p))
	}
	return handler.JSON(views)
}

func (h *Handler) plan(ctx handler.Context, req planPath) handler.Response {
	p, err := h.svc.Plan(req.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newPlanView(ctx, p))
}

func (h *Handler) access(ctx handler.Context, req subscriptionPath) handler.Response {
	st, err := h.svc.GetAccessStatus(ctx, req.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newAccessView(ctx, st))
}

func (h *Handler) accountAccess(ctx handler.Context, req accountPath) handler.Response {
	st, err := h.svc.GetAccountAccess(ctx, req.AccountID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newAccessView(ctx, st))
}

func (h *Handler) accountSubscription(ctx handler.Context, req accountPath) handler.Response {
	sub, err := h.svc.GetSubscription(ctx, req.AccountID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionView(ctx, sub))
}

func (h *Handler) startTrial(ctx handler.Context, req TrialRequest) handler.Response {
	sub, err := h.svc.StartTrial(ctx, req.AccountID, req.PlanID, req.Payer)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionView(ctx, sub), handler.WithJSONStatus(http.StatusCreated))
}

func (h *Handler) upgrade(ctx handler.Context, req PaymentRequest) handler.Response {
	res, err := h.svc.ProcessUpgrade(ctx, withRemoteIP(ctx, req.PaymentIntent))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newUpgradeView(ctx, res))
}

func (h *Handler) reactivate(ctx handler.Context, req PaymentRequest) handler.Response {
	res, err := h.svc.Reactivate(ctx, withRemoteIP(ctx, req.PaymentIntent))
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newUpgradeView(ctx, res))
}

func (h *Handler) cancel(ctx handler.Context, req subscriptionPath) handler.Response {
	sub, err := h.svc.Cancel(ctx, req.ID)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(newSubscriptionView(ctx, sub))
}

func (h *Handler) resolveInvoice(ctx handler.Context, req InvoiceRequest) handler.Response {
	inv, err := h.svc.ResolveRaw(req)
	if err != nil {
		return handler.Error(err)
	}
	return handler.JSON(inv)
}

// withRemoteIP falls back to the connection address when the client sent
// none. The gateway requires it for card charges.
func withRemoteIP(ctx handler.Context, in subscription.PaymentIntent) subscription.PaymentIntent {
	if in.RemoteIP == "" {
		in.RemoteIP = clientip.FromContext(ctx)
	}
	return in
}
