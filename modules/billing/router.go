package billing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/imobflow/billing/pkg/clientip"
	"github.com/imobflow/billing/pkg/i18n"
	"github.com/imobflow/billing/pkg/requestid"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures the billing API router.
type RouterOptions struct {
	// Billing is mounted at the root when set.
	Billing Mountable
	// ClientIP selects the proxy headers trusted for the caller address.
	ClientIP clientip.Config
	// Lang negotiates the response language. Nil means cookie, query
	// parameter and Accept-Language in that order.
	Lang i18n.LangExtractor
}

// Router builds the HTTP surface of the billing engine.
//
//	r := chi.NewRouter()
//	r.Mount("/billing", billing.Router(billing.RouterOptions{
//	    Billing:  billing.NewHandler(svc, billing.WithLogger(log)),
//	    ClientIP: cfg.ClientIP,
//	}))
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		requestid.Middleware,
		clientip.Middleware(opts.ClientIP),
		i18n.Middleware(opts.Lang),
	)

	if opts.Billing != nil {
		r.Mount("/", opts.Billing.Handle())
	}
	return r
}
