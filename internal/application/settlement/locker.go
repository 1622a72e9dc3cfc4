package settlement

import (
	"context"
	"sync"

	"github.com/erp/pricing/internal/domain/shared"
)

// localLocker serializes settlements inside one process. It is used when no
// shared locker is configured.
type localLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func newLocalLocker() *localLocker {
	return &localLocker{held: make(map[string]chan struct{})}
}

func (l *localLocker) Lock(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		busy, taken := l.held[key]
		if !taken {
			released := make(chan struct{})
			l.held[key] = released
			l.mu.Unlock()
			return func() {
				l.mu.Lock()
				delete(l.held, key)
				l.mu.Unlock()
				close(released)
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

var _ shared.Locker = (*localLocker)(nil)
