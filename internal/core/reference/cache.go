// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/taibuivan/refcatalog/internal/platform/constants"
	"github.com/taibuivan/refcatalog/internal/platform/ctxutil"
)

// # Read Cache

// Cache stores serialized views keyed by reference id and load options.
// Implementations are best-effort: failures degrade to cache misses.
type Cache interface {
	Get(ctx context.Context, id int64, opts LoadOptions) (*View, bool)
	Set(ctx context.Context, id int64, opts LoadOptions, view *View)
	// Invalidate drops every cached view of the reference.
	Invalidate(ctx context.Context, id int64)
}

// NoopCache never stores anything.
type NoopCache struct{}

func (NoopCache) Get(context.Context, int64, LoadOptions) (*View, bool) { return nil, false }
func (NoopCache) Set(context.Context, int64, LoadOptions, *View)        {}
func (NoopCache) Invalidate(context.Context, int64)                     {}

// RedisCache keeps msgpack-encoded views in Redis. Each reference has an index
// set listing its view keys so a write can drop all of them at once.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a cache over client with the given entry lifetime.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// CacheKey is the Redis key of one view: prefix, id and a hash of the options.
func CacheKey(id int64, opts LoadOptions) string {
	return fmt.Sprintf("%s%d:%016x", constants.RedisPrefixReference, id, xxhash.Sum64String(opts.Key()))
}

// indexKey is the Redis set holding every view key of one reference.
func indexKey(id int64) string {
	return constants.RedisPrefixReference + strconv.FormatInt(id, 10) + constants.RedisSuffixReferenceIndex
}

func (cache *RedisCache) Get(ctx context.Context, id int64, opts LoadOptions) (*View, bool) {
	data, err := cache.client.Get(ctx, CacheKey(id, opts)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			ctxutil.GetLogger(ctx).WarnContext(ctx, "reference_cache_get_failed", slog.Int64("reference_id", id), slog.Any("error", err))
		}
		return nil, false
	}

	view := &View{}
	if err := msgpack.Unmarshal(data, view); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "reference_cache_decode_failed", slog.Int64("reference_id", id), slog.Any("error", err))
		return nil, false
	}
	return view, true
}

func (cache *RedisCache) Set(ctx context.Context, id int64, opts LoadOptions, view *View) {
	data, err := msgpack.Marshal(view)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "reference_cache_encode_failed", slog.Int64("reference_id", id), slog.Any("error", err))
		return
	}

	key := CacheKey(id, opts)
	_, err = cache.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, cache.ttl)
		pipe.SAdd(ctx, indexKey(id), key)
		pipe.Expire(ctx, indexKey(id), cache.ttl)
		return nil
	})
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "reference_cache_set_failed", slog.Int64("reference_id", id), slog.Any("error", err))
	}
}

func (cache *RedisCache) Invalidate(ctx context.Context, id int64) {
	index := indexKey(id)

	keys, err := cache.client.SMembers(ctx, index).Result()
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "reference_cache_invalidate_failed", slog.Int64("reference_id", id), slog.Any("error", err))
		return
	}

	if err := cache.client.Del(ctx, append(keys, index)...).Err(); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "reference_cache_invalidate_failed", slog.Int64("reference_id", id), slog.Any("error", err))
	}
}
