package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/shared"
	"github.com/erp/pricing/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const defaultLockRetry = 25 * time.Millisecond

// StoreLocker implements shared.Locker on top of an idempotency store. With
// the Redis store every instance of the service competes for the same keys.
// A holder that dies keeps the key until ttl expires.
type StoreLocker struct {
	store shared.IdempotencyStore
	ttl   time.Duration
	retry time.Duration
}

// NewStoreLocker creates a locker holding keys for at most ttl
func NewStoreLocker(store shared.IdempotencyStore, ttl time.Duration) *StoreLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &StoreLocker{store: store, ttl: ttl, retry: defaultLockRetry}
}

// Lock polls the store until the key is claimed
func (l *StoreLocker) Lock(ctx context.Context, key string) (func(), error) {
	key = "lock:" + key
	for {
		ok, err := l.store.MarkProcessed(ctx, key, l.ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlocker(ctx, key), nil
		}

		wait := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			wait.Stop()
			return nil, ctx.Err()
		case <-wait.C:
		}
	}
}

func (l *StoreLocker) unlocker(ctx context.Context, key string) func() {
	ctx = context.WithoutCancel(ctx)
	return func() {
		if err := l.store.Release(ctx, key); err != nil {
			logger.FromContext(ctx).Warn("Failed to release lock, it expires with its ttl",
				zap.String("key", key),
				zap.Error(err))
		}
	}
}

var _ shared.Locker = (*StoreLocker)(nil)
