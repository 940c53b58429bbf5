package health

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/wildlander/launcher/internal/core/ports"
	infraDB "github.com/wildlander/launcher/internal/infrastructure/db"
)

// checker adapts a check function to ports.HealthChecker.
type checker struct {
	name  string
	check func(ctx context.Context) error
}

func (c *checker) Name() string { return c.name }

func (c *checker) Check(ctx context.Context) error {
	if err := c.check(ctx); err != nil {
		return fmt.Errorf("%s check failed: %w", c.name, err)
	}
	return nil
}

// NewDBHealthChecker pings the database the feed tables live in.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker {
	return &checker{name: "database", check: db.Ping}
}

// NewFeedStoreHealthChecker reads the last-updated marker every launcher
// polls. It fails when the schema is missing even though the database answers
// pings. Pass the uncached repository so the read reaches storage.
func NewFeedStoreHealthChecker(repo ports.FeedRepository) ports.HealthChecker {
	return &checker{name: "feed_store", check: func(ctx context.Context) error {
		_, err := repo.LastUpdated(ctx)
		return err
	}}
}

// NewRedisHealthChecker pings the read cache and rate limit store.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &checker{name: "redis", check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}
