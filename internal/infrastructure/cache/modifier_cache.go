package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/pricing/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	defaultModifierPrefix = "pricing:modifiers:"
	defaultModifierTTL    = 10 * time.Minute
)

func modifierKey(prefix string, tenantID, salesAreaID uuid.UUID) string {
	return prefix + tenantID.String() + ":" + salesAreaID.String()
}

// RedisModifierCache implements pricing.ModifierCache with JSON values in Redis
type RedisModifierCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisModifierCache creates a cache on an existing client.
// A zero ttl uses ten minutes.
func NewRedisModifierCache(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisModifierCache {
	if keyPrefix == "" {
		keyPrefix = defaultModifierPrefix
	}
	if ttl <= 0 {
		ttl = defaultModifierTTL
	}
	return &RedisModifierCache{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Get returns the cached modifiers of a sales area
func (c *RedisModifierCache) Get(ctx context.Context, tenantID, salesAreaID uuid.UUID) ([]pricing.Modifier, bool, error) {
	data, err := c.client.Get(ctx, modifierKey(c.keyPrefix, tenantID, salesAreaID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read modifier cache: %w", err)
	}

	var mods []pricing.Modifier
	if err := json.Unmarshal(data, &mods); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached modifiers: %w", err)
	}
	return mods, true, nil
}

// Set caches the modifiers of a sales area
func (c *RedisModifierCache) Set(ctx context.Context, tenantID, salesAreaID uuid.UUID, mods []pricing.Modifier) error {
	if mods == nil {
		mods = []pricing.Modifier{}
	}
	data, err := json.Marshal(mods)
	if err != nil {
		return fmt.Errorf("failed to encode modifiers: %w", err)
	}
	if err := c.client.Set(ctx, modifierKey(c.keyPrefix, tenantID, salesAreaID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write modifier cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached modifiers of a sales area
func (c *RedisModifierCache) Invalidate(ctx context.Context, tenantID, salesAreaID uuid.UUID) error {
	if err := c.client.Del(ctx, modifierKey(c.keyPrefix, tenantID, salesAreaID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate modifier cache: %w", err)
	}
	return nil
}

var _ pricing.ModifierCache = (*RedisModifierCache)(nil)
