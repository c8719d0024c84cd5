// Package pg wires the billing engine to PostgreSQL through pgx/v5.
//
// Connect opens a pool and retries while the database is still starting.
// Migrate applies the goose migrations embedded in the binary (see the
// migrations package) before the HTTP surface starts. WithTx runs a callback
// inside a transaction and is what the subscription store uses to keep the
// customer-id write and the subscription row in step.
//
// Error helpers classify *pgconn.PgError values:
//
//	if pg.IsDuplicateKeyError(err) {
//		// a live subscription already exists for the tenant
//	}
package pg
