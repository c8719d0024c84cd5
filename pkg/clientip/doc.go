// Package clientip resolves the tenant's IP address. Card upgrades forward
// it to the payment gateway as remoteIp for fraud analysis.
//
// Proxy headers are trusted only when listed in Config.TrustedHeaders; the
// first header carrying a valid address wins, and the connection's remote
// address is the fallback.
//
//	r.Use(clientip.Middleware(cfg))
//	ip := clientip.FromContext(ctx)
package clientip
