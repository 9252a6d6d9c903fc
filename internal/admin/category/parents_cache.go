// Copyright (c) 2026 Shopdesk. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package category

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/shopdesk/internal/platform/constants"
	"github.com/taibuivan/shopdesk/internal/platform/ctxutil"
	"github.com/taibuivan/shopdesk/internal/platform/metrics"
)

// ParentCache holds the parent-selection list between category mutations.
//
// Implementations never fail the caller: a broken cache behaves as a miss.
type ParentCache interface {
	Get(ctx context.Context) ([]Node, bool)
	Set(ctx context.Context, parents []Node)
	Invalidate(ctx context.Context)
}

// RedisParentCache implements [ParentCache] on Redis.
type RedisParentCache struct {
	client    *redis.Client
	ttl       time.Duration
	collector *metrics.Collector
}

// NewRedisParentCache constructs a Redis backed [ParentCache]. A nil collector disables metrics.
func NewRedisParentCache(client *redis.Client, ttl time.Duration, collector *metrics.Collector) *RedisParentCache {
	return &RedisParentCache{client: client, ttl: ttl, collector: collector}
}

// Get returns the cached list if present and decodable.
func (cache *RedisParentCache) Get(ctx context.Context) ([]Node, bool) {
	payload, err := cache.client.Get(ctx, constants.RedisPrefixParents).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "parent_cache_read_failed", slog.Any("error", err))
		}
		cache.miss()
		return nil, false
	}

	var parents []Node
	if err := json.Unmarshal(payload, &parents); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "parent_cache_corrupt", slog.Any("error", err))
		cache.miss()
		return nil, false
	}

	cache.hit()
	return parents, true
}

// Set stores the list with the configured TTL.
func (cache *RedisParentCache) Set(ctx context.Context, parents []Node) {
	payload, err := json.Marshal(parents)
	if err != nil {
		return
	}
	if err := cache.client.Set(ctx, constants.RedisPrefixParents, payload, cache.ttl).Err(); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "parent_cache_write_failed", slog.Any("error", err))
	}
}

// Invalidate drops the cached list.
func (cache *RedisParentCache) Invalidate(ctx context.Context) {
	if err := cache.client.Del(ctx, constants.RedisPrefixParents).Err(); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "parent_cache_invalidate_failed", slog.Any("error", err))
	}
}

func (cache *RedisParentCache) hit() {
	if cache.collector != nil {
		cache.collector.CacheHits.Inc()
	}
}

func (cache *RedisParentCache) miss() {
	if cache.collector != nil {
		cache.collector.CacheMisses.Inc()
	}
}
