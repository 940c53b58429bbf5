package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

var sf singleflight.Group

const (
	postsListKey   = "feeds:posts"
	patronsListKey = "feeds:patrons"
	lastUpdatedKey = "feeds:last_updated"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// loadWithSingleflight coalesces concurrent misses for key into one loader call
// and caches the result.
func loadWithSingleflight[T any](cache ports.Cache, ctx context.Context, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	if v, ok := cacheGet[T](cache, ctx, key); ok {
		return *v, nil
	}
	res, err, _ := sf.Do(key, func() (any, error) {
		if v, ok := cacheGet[T](cache, ctx, key); ok {
			return *v, nil
		}
		v, err := loader()
		if err != nil {
			return nil, err
		}
		cacheSetSilently(cache, ctx, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected type from singleflight result")
	}
	return v, nil
}

// CachingFeedRepository decorates a FeedRepository with cache-aside reads.
// Every write drops all cached keys.
type CachingFeedRepository struct {
	inner ports.FeedRepository
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingFeedRepository(inner ports.FeedRepository, cache ports.Cache, ttl time.Duration) *CachingFeedRepository {
	return &CachingFeedRepository{inner: inner, cache: cache, ttl: ttl}
}

func (c *CachingFeedRepository) invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	_ = c.cache.Delete(ctx, postsListKey)
	_ = c.cache.Delete(ctx, patronsListKey)
	_ = c.cache.Delete(ctx, lastUpdatedKey)
}

func (c *CachingFeedRepository) ListPosts(ctx context.Context) ([]feed.Post, error) {
	return loadWithSingleflight(c.cache, ctx, postsListKey, c.ttl, func() ([]feed.Post, error) {
		return c.inner.ListPosts(ctx)
	})
}

func (c *CachingFeedRepository) CreatePost(ctx context.Context, post *feed.Post) error {
	if err := c.inner.CreatePost(ctx, post); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingFeedRepository) DeletePost(ctx context.Context, id string) error {
	if err := c.inner.DeletePost(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingFeedRepository) ListPatrons(ctx context.Context) ([]feed.Patron, error) {
	return loadWithSingleflight(c.cache, ctx, patronsListKey, c.ttl, func() ([]feed.Patron, error) {
		return c.inner.ListPatrons(ctx)
	})
}

func (c *CachingFeedRepository) ReplacePatrons(ctx context.Context, patrons []feed.Patron) error {
	if err := c.inner.ReplacePatrons(ctx, patrons); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachingFeedRepository) LastUpdated(ctx context.Context) (time.Time, error) {
	return loadWithSingleflight(c.cache, ctx, lastUpdatedKey, c.ttl, func() (time.Time, error) {
		return c.inner.LastUpdated(ctx)
	})
}

func (c *CachingFeedRepository) Touch(ctx context.Context, at time.Time) error {
	if err := c.inner.Touch(ctx, at); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

var _ ports.FeedRepository = (*CachingFeedRepository)(nil)
