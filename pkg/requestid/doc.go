// Package requestid tags every API request with a correlation id.
//
// Middleware reuses a well-formed X-Request-ID (or X-Correlation-ID) sent by
// the UI backend and generates a UUID otherwise. The id is echoed in the
// response header, stored in the request context and added to log records
// through LoggerExtractor:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r.Use(requestid.Middleware)
package requestid
