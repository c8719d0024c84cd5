// Package i18n localizes the user-facing strings of the billing API.
//
// Messages live in a golang.org/x/text catalog keyed by Key. Brazilian
// Portuguese is the default language and English the only other supported
// one. Request language is negotiated from a cookie, a query parameter or
// the Accept-Language header and stored in the request context by
// Middleware:
//
//	r.Use(i18n.Middleware(nil))
//
//	func (h *Handler) ... {
//		msg := i18n.T(ctx, i18n.MsgVersionConflict)
//		price := i18n.FormatBRL(i18n.GetLocale(ctx), 19990) // "R$ 199,90"
//	}
package i18n
