// Package logger builds *slog.Logger instances for the billing services and
// provides attribute helpers so tenant, subscription and gateway identifiers
// are logged under the same keys everywhere.
//
// New creates a logger configured by Option functions (format, level, output,
// static attributes, context extractors). The resulting handler is wrapped in
// a decorator that pulls request-scoped values, such as a request id, out of
// context.Context on every record.
//
//	log := logger.New(logger.WithEnvironment(cfg.Env, "billing"))
//	log.InfoContext(ctx, "subscription activated",
//	    logger.SubscriptionID(sub.ID),
//	    logger.TenantID(sub.AccountID),
//	    logger.PaymentMethod(string(intent.Method)),
//	)
//
// Attribute helpers return an empty slog.Attr for nil input, which slog drops.
package logger
