// Package binder decodes HTTP requests into typed request structs for the
// handler package.
//
//   - JSON() decodes a strict application/json body (unknown fields and
//     trailing data are rejected, 1MB limit).
//   - Path(extractor) fills fields tagged `path:"name"` using a router
//     specific extractor such as chi.URLParam.
//
// Path supports basic kinds, pointers and any encoding.TextUnmarshaler, so
// uuid.UUID fields bind directly:
//
//	type cancelRequest struct {
//		ID     uuid.UUID `path:"id" json:"-"`
//		Reason string    `json:"reason"`
//	}
//
//	r.Post("/subscriptions/{id}/cancel", handler.Wrap(h.cancel,
//		handler.WithBinders[handler.Context, cancelRequest](
//			binder.Path(chi.URLParam),
//			binder.JSON(),
//		),
//	))
//
// Errors wrap ErrInvalidJSON, ErrInvalidPath, ErrMissingContentType or
// ErrUnsupportedMediaType. A binder returning ErrBinderNotApplicable is
// skipped by handler.Wrap.
package binder
