// Package handler provides typed HTTP handlers for the billing API.
//
// A HandlerFunc receives a Context and a request struct filled by binders
// (see pkg/binder) and returns a Response: JSON for data, Empty for bodiless
// replies and Error for failures. Wrap turns it into an http.HandlerFunc.
//
// Every error, whether from a binder, a rendering failure or Error(err),
// reaches the ErrorHandler. NewErrorHandler classifies it into an ErrorInfo
// (status, code, catalog key, field details), localizes the message with
// pkg/i18n and writes the JSON envelope:
//
//	{"error":{"code":"validation_error","message":"Dados inválidos...","details":{"tenant.document":["..."]},"request_id":"..."}}
//
// Domain packages contribute a Classifier for their sentinel errors:
//
//	errs := handler.NewErrorHandler(log, billing.ClassifyError)
package handler
