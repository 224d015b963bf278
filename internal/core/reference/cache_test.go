// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package reference_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/refcatalog/internal/core/reference"
	"github.com/taibuivan/refcatalog/internal/platform/constants"
	"github.com/taibuivan/refcatalog/pkg/pointer"
)

// memoryCache is a [reference.Cache] that records its calls.
type memoryCache struct {
	mu          sync.Mutex
	views       map[string]*reference.View
	hits        int
	invalidated []int64
}

func newMemoryCache() *memoryCache {
	return &memoryCache{views: map[string]*reference.View{}}
}

func (cache *memoryCache) Get(_ context.Context, id int64, opts reference.LoadOptions) (*reference.View, bool) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	view, ok := cache.views[reference.CacheKey(id, opts)]
	if ok {
		cache.hits++
	}
	return view, ok
}

func (cache *memoryCache) Set(_ context.Context, id int64, opts reference.LoadOptions, view *reference.View) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.views[reference.CacheKey(id, opts)] = view
}

func (cache *memoryCache) Invalidate(_ context.Context, id int64) {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	cache.invalidated = append(cache.invalidated, id)
	for _, opts := range []reference.LoadOptions{{}, reference.All()} {
		delete(cache.views, reference.CacheKey(id, opts))
	}
}

func TestCacheKey(t *testing.T) {
	all := reference.CacheKey(12, reference.All())
	none := reference.CacheKey(12, reference.LoadOptions{})

	assert.True(t, strings.HasPrefix(all, constants.RedisPrefixReference+"12:"))
	assert.Equal(t, all, reference.CacheKey(12, reference.All()), "keys must be stable")
	assert.NotEqual(t, all, none)
	assert.NotEqual(t, all, reference.CacheKey(13, reference.All()))
	assert.NotEqual(t,
		reference.CacheKey(12, reference.LoadOptions{Authors: true}),
		reference.CacheKey(12, reference.LoadOptions{Tags: true}),
	)
}

/*
TestGetReferenceView_Cache checks read-through caching and invalidation on writes.
*/
func TestGetReferenceView_Cache(t *testing.T) {
	f := newFixture(t)
	cache := newMemoryCache()
	f.service = reference.NewService(f.store, reference.WithCache(cache), reference.WithClock(func() time.Time { return f.now }))

	created := f.create(photoInput("Temples", "Kyoto", "film"))

	first, err := f.service.GetReferenceView(f.ctx, created.ID, reference.All())
	require.NoError(t, err)
	second, err := f.service.GetReferenceView(f.ctx, created.ID, reference.All())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.hits)

	_, err = f.service.UpdateReferenceByID(f.ctx, created.ID, reference.UpdateInput{Name: pointer.To("Shrines")})
	require.NoError(t, err)
	assert.Equal(t, []int64{created.ID}, cache.invalidated)

	third, err := f.service.GetReferenceView(f.ctx, created.ID, reference.All())
	require.NoError(t, err)
	assert.Equal(t, "Shrines", third.Name)

	_, err = f.service.DeleteReferenceByID(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{created.ID, created.ID}, cache.invalidated)

	_, err = f.service.GetReferenceView(f.ctx, created.ID, reference.All())
	require.Error(t, err)
}

/*
TestGetReferenceView_SharedSeries checks that attaching a publisher to a series
drops the cached views of every reference already filed under it.
*/
func TestGetReferenceView_SharedSeries(t *testing.T) {
	f := newFixture(t)
	cache := newMemoryCache()
	f.service = reference.NewService(f.store, reference.WithCache(cache), reference.WithClock(func() time.Time { return f.now }))

	publisherID := f.publisher("Ace")
	seriesID := f.series("Dune", nil)

	first := f.create(bookInput("First", &reference.BookInput{SeriesID: pointer.To(seriesID)}))
	cached, err := f.service.GetReferenceView(f.ctx, first.ID, reference.All())
	require.NoError(t, err)
	require.NotNil(t, cached.Book.Series)
	assert.Nil(t, cached.Book.Series.PublisherID)

	f.create(bookInput("Second", &reference.BookInput{PublisherID: pointer.To(publisherID), SeriesID: pointer.To(seriesID)}))
	assert.Contains(t, cache.invalidated, first.ID)

	view, err := f.service.GetReferenceView(f.ctx, first.ID, reference.All())
	require.NoError(t, err)
	assert.Equal(t, publisherID, pointer.Val(view.Book.Series.PublisherID))
	assert.Equal(t, publisherID, pointer.Val(view.Book.PublisherID))
}

/*
TestRedisCache_Unreachable checks that a dead Redis degrades to cache misses.
*/
func TestRedisCache_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cache := reference.NewRedisCache(client, time.Minute)
	ctx := context.Background()

	assert.NotPanics(t, func() {
		cache.Set(ctx, 1, reference.All(), &reference.View{ID: 1})
		cache.Invalidate(ctx, 1)
	})

	view, ok := cache.Get(ctx, 1, reference.All())
	assert.False(t, ok)
	assert.Nil(t, view)
}
