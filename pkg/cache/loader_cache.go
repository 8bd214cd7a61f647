// Package cache provides a bounded, expiring loader cache. Concurrent misses for the same key
// share one load.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// ErrInvalidSize is returned when the cache is created with a non-positive size.
var ErrInvalidSize = errors.New("cache: size must be positive")

// LoaderCache caches values by key, loading on miss. Entries are evicted by LRU order once
// maxEntries is reached and expire after ttl (0 disables expiry).
type LoaderCache[K comparable, V any] struct {
	lru         *expirable.LRU[string, V]
	group       singleflight.Group
	keyToString func(K) string
}

// NewLoaderCache creates a loader cache with the given capacity, entry TTL and key serializer.
func NewLoaderCache[K comparable, V any](maxEntries int, ttl time.Duration, keyToString func(K) string) (*LoaderCache[K, V], error) {
	if maxEntries <= 0 {
		return nil, ErrInvalidSize
	}

	return &LoaderCache[K, V]{
		lru:         expirable.NewLRU[string, V](maxEntries, nil, ttl),
		keyToString: keyToString,
	}, nil
}

// Get returns the value for key, loading it on miss.
func (c *LoaderCache[K, V]) Get(ctx context.Context, key K, load func(context.Context, K) (V, error)) (V, error) {
	v, _, err := c.GetWithStats(ctx, key, load)

	return v, err
}

// GetWithStats is like Get and also reports whether the value was served from cache.
// Failed loads are not cached.
func (c *LoaderCache[K, V]) GetWithStats(ctx context.Context, key K, load func(context.Context, K) (V, error)) (V, bool, error) {
	keyStr := c.keyToString(key)
	if v, ok := c.lru.Get(keyStr); ok {
		return v, true, nil
	}

	val, err, _ := c.group.Do(keyStr, func() (any, error) {
		loaded, loadErr := load(ctx, key)
		if loadErr != nil {
			return nil, loadErr
		}

		c.lru.Add(keyStr, loaded)

		return loaded, nil
	})
	if err != nil {
		var zero V

		return zero, false, err
	}

	return val.(V), false, nil //nolint:forcetypeassert // only V is stored by the loader above
}

// Invalidate removes the entry for key.
func (c *LoaderCache[K, V]) Invalidate(key K) {
	c.lru.Remove(c.keyToString(key))
}

// InvalidateAll removes all entries.
func (c *LoaderCache[K, V]) InvalidateAll() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *LoaderCache[K, V]) Len() int {
	return c.lru.Len()
}
