package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// FeedCacheRepository stores one CachedFeed per kind in a ports.Cache under
// kind.CacheKey(), encoded as {"age":..., "content":[...]}.
type FeedCacheRepository[T any] struct {
	cache ports.Cache
}

func NewFeedCacheRepository[T any](cache ports.Cache) *FeedCacheRepository[T] {
	return &FeedCacheRepository[T]{cache: cache}
}

func (r *FeedCacheRepository[T]) Get(ctx context.Context, kind feed.Kind) (*feed.CachedFeed[T], bool, error) {
	b, ok, err := r.cache.Get(ctx, kind.CacheKey())
	if err != nil || !ok {
		return nil, false, err
	}
	var entry feed.CachedFeed[T]
	if err := json.Unmarshal(b, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached %s: %w", kind, err)
	}
	return &entry, true, nil
}

func (r *FeedCacheRepository[T]) Set(ctx context.Context, kind feed.Kind, entry *feed.CachedFeed[T]) error {
	if entry.Content == nil {
		entry = &feed.CachedFeed[T]{Age: entry.Age, Content: []T{}}
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode cached %s: %w", kind, err)
	}
	return r.cache.Set(ctx, kind.CacheKey(), b, 0)
}

func (r *FeedCacheRepository[T]) Clear(ctx context.Context, kind feed.Kind) error {
	return r.cache.Delete(ctx, kind.CacheKey())
}

var (
	_ ports.FeedCache[feed.Post]   = (*FeedCacheRepository[feed.Post])(nil)
	_ ports.FeedCache[feed.Patron] = (*FeedCacheRepository[feed.Patron])(nil)
)
