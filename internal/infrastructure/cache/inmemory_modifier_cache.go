package cache

import (
	"context"
	"sync"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
)

type modifierEntry struct {
	mods      []pricing.Modifier
	expiresAt time.Time
}

// InMemoryModifierCache implements pricing.ModifierCache in process memory.
// Expired entries are dropped on read.
type InMemoryModifierCache struct {
	mu      sync.RWMutex
	entries map[string]modifierEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewInMemoryModifierCache creates a cache. A zero ttl uses ten minutes.
func NewInMemoryModifierCache(ttl time.Duration) *InMemoryModifierCache {
	if ttl <= 0 {
		ttl = defaultModifierTTL
	}
	return &InMemoryModifierCache{
		entries: make(map[string]modifierEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns a copy of the cached modifiers of a sales area
func (c *InMemoryModifierCache) Get(_ context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.Modifier, bool, error) {
	key := modifierKey("", tenantID, salesAreaID)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]pricing.Modifier{}, e.mods...), true, nil
}

// Set caches the modifiers of a sales area
func (c *InMemoryModifierCache) Set(_ context.Context, tenantID, salesAreaID uuid.UUID, mods []pricing.Modifier) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[modifierKey("", tenantID, salesAreaID)] = modifierEntry{
		mods:      append([]pricing.Modifier{}, mods...),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

// Invalidate drops the cached modifiers of a sales area
func (c *InMemoryModifierCache) Invalidate(_ context.Context, tenantID, salesAreaID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, modifierKey("", tenantID, salesAreaID))
	return nil
}

var _ pricing.ModifierCache = (*InMemoryModifierCache)(nil)
