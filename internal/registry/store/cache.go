package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"echoid/internal/registry/derive"
)

const cacheKeyPrefix = "echoid:account:"

// Cache is a read-through Redis layer over another Store. Lookups by derived
// identifier are hot (every resolve recomputes the same key), while writes
// are rare, so cached reads with write-time invalidation fit well.
//
// Redis failures degrade to the inner store: the cache can go away without
// affecting correctness, only latency.
type Cache struct {
	inner  Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCache wraps inner with a Redis read-through cache.
func NewCache(inner Store, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Cache {
	return &Cache{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

// cacheEnvelope is the Redis value: the account's kind plus its JSON payload.
type cacheEnvelope struct {
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (c *Cache) Create(ctx context.Context, account *Account) error {
	if err := c.inner.Create(ctx, account); err != nil {
		return err
	}
	c.invalidate(ctx, account.ID)
	return nil
}

func (c *Cache) Get(ctx context.Context, id derive.AccountID) (*Account, error) {
	if cached, ok := c.lookup(ctx, id); ok {
		return cached, nil
	}

	account, err := c.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.fill(ctx, account)
	return account, nil
}

func (c *Cache) Mutate(ctx context.Context, id derive.AccountID, fn func(*Account) error) (*Account, error) {
	account, err := c.inner.Mutate(ctx, id, fn)
	if err != nil {
		return nil, err
	}
	// Invalidate rather than refill: the next read repopulates, and a lost
	// DEL only costs one stale TTL window.
	c.invalidate(ctx, id)
	return account, nil
}

func (c *Cache) lookup(ctx context.Context, id derive.AccountID) (*Account, bool) {
	raw, err := c.rdb.Get(ctx, cacheKeyPrefix+id.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "alias cache read failed", "error", err)
		}
		return nil, false
	}

	var env cacheEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.WarnContext(ctx, "alias cache entry corrupt", "error", err)
		c.invalidate(ctx, id)
		return nil, false
	}

	account := &Account{ID: id, CreatedAt: env.CreatedAt, UpdatedAt: env.UpdatedAt}
	if err := account.setPayload(env.Kind, env.Payload); err != nil {
		c.logger.WarnContext(ctx, "alias cache entry corrupt", "error", err)
		c.invalidate(ctx, id)
		return nil, false
	}
	return account, true
}

func (c *Cache) fill(ctx context.Context, account *Account) {
	payload, err := account.payload()
	if err != nil {
		return
	}
	raw, err := json.Marshal(cacheEnvelope{
		Kind:      account.Kind,
		Payload:   payload,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKeyPrefix+account.ID.String(), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "alias cache write failed", "error", err)
	}
}

func (c *Cache) invalidate(ctx context.Context, id derive.AccountID) {
	if err := c.rdb.Del(ctx, cacheKeyPrefix+id.String()).Err(); err != nil {
		c.logger.WarnContext(ctx, "alias cache invalidation failed", "error", err)
	}
}
