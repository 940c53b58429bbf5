package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/wildlander/launcher/internal/core/ports"
)

// SQLCache stores entries in the cache_entries table. It is the launcher's
// on-disk store and survives restarts.
type SQLCache struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLCache(db *sqlx.DB) *SQLCache {
	return &SQLCache{db: db, now: time.Now}
}

type cacheRow struct {
	Value     string `db:"value"`
	ExpiresAt int64  `db:"expires_at"`
}

func (c *SQLCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row cacheRow
	query := c.db.Rebind(`SELECT value, expires_at FROM cache_entries WHERE key = ?`)
	if err := c.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cache entry %s: %w", key, err)
	}
	// expires_at is unix milliseconds; 0 never expires.
	if row.ExpiresAt > 0 && c.now().UnixMilli() >= row.ExpiresAt {
		return nil, false, nil
	}
	return []byte(row.Value), true, nil
}

func (c *SQLCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = c.now().Add(ttl).UnixMilli()
	}
	query := c.db.Rebind(`
		INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`)
	if _, err := c.db.ExecContext(ctx, query, key, string(value), expiresAt); err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", key, err)
	}
	return nil
}

func (c *SQLCache) Delete(ctx context.Context, key string) error {
	query := c.db.Rebind(`DELETE FROM cache_entries WHERE key = ?`)
	if _, err := c.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("failed to delete cache entry %s: %w", key, err)
	}
	return nil
}

var _ ports.Cache = (*SQLCache)(nil)
