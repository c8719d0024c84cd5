// Package billing mounts the subscription engine as a JSON API.
//
// Routes, relative to the mount point:
//
//	GET  /plans
//	GET  /plans/{id}
//	GET  /accounts/{account_id}/access
//	GET  /accounts/{account_id}/subscription
//	POST /subscriptions/trial
//	POST /subscriptions/upgrade
//	POST /subscriptions/reactivate
//	GET  /subscriptions/{id}/access
//	POST /subscriptions/{id}/cancel
//	POST /invoices/resolve
//
// Successful responses wrap the payload in {"data": ...}. Failures carry
// {"error": {"code", "message", "details", "request_id"}} with the message
// localized for the negotiated language (pt-BR unless the client asks for
// English). Money amounts are centavos; *_display fields are formatted for
// the same language.
package billing
