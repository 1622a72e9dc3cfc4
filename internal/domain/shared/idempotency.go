package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client supplied idempotency keys so a retried
// submission is not recorded twice
type IdempotencyStore interface {
	// MarkProcessed claims a key for ttl.
	// Returns true if the key was newly claimed, false if it was already taken.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been claimed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release frees a key so the submission can be retried after a failure
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for idempotency handling
type IdempotencyConfig struct {
	// TTL is how long a key stays claimed. Default: 24 hours
	TTL time.Duration

	// Enabled determines whether keys are checked. Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}

// Locker serializes work on a key between concurrent callers
type Locker interface {
	// Lock blocks until key is held or ctx is done.
	// The returned func releases the key and must be called exactly once.
	Lock(ctx context.Context, key string) (func(), error)
}
