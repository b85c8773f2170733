// Package cache is the read-through cache coordinator for task detail,
// list and stats queries. It is strictly an optimization: every fault
// degrades to a miss on read and a no-op on write or invalidation, and
// no method ever surfaces an error to the caller.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache wraps a Redis client. A nil client disables caching entirely;
// all methods then behave as permanent misses.
type Cache struct {
	rdb *redis.Client
	log *logrus.Logger
}

// New builds a Cache over rdb. rdb may be nil.
func New(rdb *redis.Client, log *logrus.Logger) *Cache {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Cache{rdb: rdb, log: log}
}

// Get loads the JSON value at key into dest. It returns false on a
// miss, a decode failure or any Redis fault.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	if c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.log.WithField("key", key).Debug("cache: dropping undecodable entry")
		return false
	}
	return true
}

// Set stores v as JSON under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.log.WithField("key", key).WithError(err).Debug("cache: set failed")
	}
}

// Del removes the given keys.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if c.rdb == nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.WithError(err).Debug("cache: del failed")
	}
}

// DelByPattern removes every key matching the glob pattern, scanning
// in batches so large keyspaces do not block the server.
func (c *Cache) DelByPattern(ctx context.Context, pattern string) {
	if c.rdb == nil {
		return
	}
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.log.WithField("pattern", pattern).WithError(err).Debug("cache: scan failed")
			return
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				c.log.WithError(err).Debug("cache: del failed")
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
