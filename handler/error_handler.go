package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/imobflow/billing/pkg/binder"
	"github.com/imobflow/billing/pkg/i18n"
	"github.com/imobflow/billing/pkg/logger"
	"github.com/imobflow/billing/pkg/requestid"
	"github.com/imobflow/billing/pkg/validator"
)

// ErrorInfo is the HTTP shape of an error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message i18n.Key
	Details map[string][]string
}

// Classifier maps the errors of one domain. It reports false for errors it
// does not know so the next classifier can try.
type Classifier func(err error) (ErrorInfo, bool)

// Classify runs classifiers in order and falls back to the built-in mapping
// of HTTPError, validation and binding errors. Anything else is a 500.
func Classify(err error, classifiers ...Classifier) ErrorInfo {
	for _, classify := range classifiers {
		if info, ok := classify(err); ok {
			return info
		}
	}
	return classifyBuiltin(err)
}

func classifyBuiltin(err error) ErrorInfo {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{Status: httpErr.Status, Code: httpErr.Code, Message: httpErr.Message}
	}

	if verrs := validator.ExtractValidationErrors(err); len(verrs) > 0 {
		return ErrorInfo{
			Status:  http.StatusUnprocessableEntity,
			Code:    "validation_error",
			Message: i18n.MsgValidation,
			Details: verrs.Map(),
		}
	}

	switch {
	case errors.Is(err, binder.ErrMissingContentType), errors.Is(err, binder.ErrUnsupportedMediaType):
		return ErrorInfo{Status: http.StatusUnsupportedMediaType, Code: "unsupported_media_type", Message: i18n.MsgBadRequest}
	case errors.Is(err, binder.ErrInvalidJSON), errors.Is(err, binder.ErrInvalidPath):
		return ErrorInfo{
			Status:  http.StatusBadRequest,
			Code:    "bad_request",
			Message: i18n.MsgBadRequest,
			Details: map[string][]string{"request": {err.Error()}},
		}
	}

	return ErrorInfo{Status: http.StatusInternalServerError, Code: "internal_error", Message: i18n.MsgInternal}
}

// NewErrorHandler renders errors as localized JSON envelopes and logs them.
// Validation failures are logged at Debug, other client errors at Warn and
// server errors at Error.
func NewErrorHandler(log *slog.Logger, classifiers ...Classifier) ErrorHandler[Context] {
	if log == nil {
		log = logger.Discard()
	}
	return func(ctx Context, err error) {
		renderError(log, classifiers, ctx.ResponseWriter(), ctx.Request(), err)
	}
}

func renderError(log *slog.Logger, classifiers []Classifier, w http.ResponseWriter, r *http.Request, err error) {
	reqCtx := r.Context()
	info := Classify(err, classifiers...)

	log.LogAttrs(reqCtx, logLevel(info.Status), "request failed",
		logger.Error(err),
		slog.Int("status", info.Status),
		slog.String("code", info.Code),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		logger.Component("http"),
	)

	detail := &ErrorDetail{
		Code:      info.Code,
		Message:   i18n.T(reqCtx, info.Message),
		Details:   info.Details,
		RequestID: requestid.FromContext(reqCtx),
	}
	if renderErr := jsonError(info.Status, detail).Render(w, r); renderErr != nil {
		log.LogAttrs(reqCtx, slog.LevelError, "failed to render error response",
			logger.Error(renderErr),
			logger.Component("http"),
		)
	}
}

func logLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status == http.StatusUnprocessableEntity:
		return slog.LevelDebug
	default:
		return slog.LevelWarn
	}
}
