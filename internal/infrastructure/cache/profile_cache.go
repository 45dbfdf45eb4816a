package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-account-service/internal/application"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

const keyPrefix = "user:profile:"

// ProfileCache keeps sanitized user views in Redis. Entries expire after ttl and are
// overwritten on every profile write, so a stale read lasts at most one ttl.
type ProfileCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewProfileCache(rdb redis.Cmdable, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func Key(userID string) string { return keyPrefix + userID }

func (c *ProfileCache) Get(ctx context.Context, userID string) (*application.UserView, bool, error) {
	var v application.UserView
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, Key(userID), &v)
	if err != nil || !ok {
		return nil, false, err
	}
	return &v, true, nil
}

func (c *ProfileCache) Set(ctx context.Context, v *application.UserView) error {
	return helpers.RedisSetJSON(ctx, c.rdb, Key(v.ID), v, c.ttl)
}

func (c *ProfileCache) Delete(ctx context.Context, userID string) error {
	return helpers.RedisDel(ctx, c.rdb, Key(userID))
}

var _ application.ProfileCache = (*ProfileCache)(nil)
