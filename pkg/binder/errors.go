package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidJSON          = errors.New("failed to parse JSON request body")
	ErrInvalidPath          = errors.New("failed to parse path parameters")

	// ErrBinderNotApplicable tells handler.Wrap to skip the binder.
	ErrBinderNotApplicable = errors.New("binder not applicable to this request")
)
