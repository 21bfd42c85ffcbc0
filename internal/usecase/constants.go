package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// ReconcileTimeout bounds the full-rebuild batch job.
	ReconcileTimeout = 60 * time.Second

	// BalanceCacheTTL is how long cached balance reads stay valid.
	BalanceCacheTTL = 30 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Cache key prefixes.
const (
	balanceCacheKeyPrefix  = "balance:"
	pairwiseCacheKeyPrefix = "pairwise:"
)
