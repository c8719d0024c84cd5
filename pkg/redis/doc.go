// Package redis connects the billing engine to Redis, which backs the
// distributed per-tenant locks taken while provisioning gateway customers.
//
// Leave REDIS_URL empty to run a single instance with in-process locks.
package redis
