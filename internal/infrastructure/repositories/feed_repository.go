package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
	"github.com/wildlander/launcher/internal/infrastructure/db"
)

// feedsMetaName is the feed_meta row bumped on every write.
const feedsMetaName = "feeds"

// FeedRepository implements ports.FeedRepository on postgres or sqlite.
// Timestamps are stored as unix milliseconds.
type FeedRepository struct {
	db     *db.Database
	logger *logrus.Logger
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(database *db.Database, logger *logrus.Logger) *FeedRepository {
	return &FeedRepository{db: database, logger: logger}
}

type postRow struct {
	ID        string `db:"id"`
	Title     string `db:"title"`
	Content   string `db:"content"`
	Published int64  `db:"published"`
	URL       string `db:"url"`
	Tags      string `db:"tags"`
}

func (row postRow) toPost() (feed.Post, error) {
	p := feed.Post{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		Published: time.UnixMilli(row.Published).UTC(),
		URL:       row.URL,
		Tags:      []string{},
	}
	if row.Tags != "" {
		if err := json.Unmarshal([]byte(row.Tags), &p.Tags); err != nil {
			return feed.Post{}, fmt.Errorf("failed to parse tags of post %s: %w", row.ID, err)
		}
	}
	return p, nil
}

// ListPosts returns posts newest first.
func (r *FeedRepository) ListPosts(ctx context.Context) ([]feed.Post, error) {
	var rows []postRow
	query := `SELECT id, title, content, published, url, tags FROM posts ORDER BY published DESC, created_at DESC`
	if err := r.db.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	posts := make([]feed.Post, 0, len(rows))
	for _, row := range rows {
		p, err := row.toPost()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (r *FeedRepository) CreatePost(ctx context.Context, post *feed.Post) error {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("failed to marshal tags: %w", err)
	}
	query := r.db.DB.Rebind(`
		INSERT INTO posts (id, title, content, published, url, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.DB.ExecContext(ctx, query,
		post.ID, post.Title, post.Content, post.Published.UnixMilli(), post.URL, string(tagsJSON), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

// DeletePost returns feed.ErrNotFound when no post has the id.
func (r *FeedRepository) DeletePost(ctx context.Context, id string) error {
	res, err := r.db.DB.ExecContext(ctx, r.db.DB.Rebind(`DELETE FROM posts WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("post %s: %w", id, feed.ErrNotFound)
	}
	return nil
}

// ListPatrons returns patrons in the order they were last stored.
func (r *FeedRepository) ListPatrons(ctx context.Context) ([]feed.Patron, error) {
	patrons := []feed.Patron{}
	if err := r.db.DB.SelectContext(ctx, &patrons, `SELECT name, tier FROM patrons ORDER BY position`); err != nil {
		return nil, fmt.Errorf("failed to list patrons: %w", err)
	}
	return patrons, nil
}

// ReplacePatrons swaps the whole list in one transaction.
func (r *FeedRepository) ReplacePatrons(ctx context.Context, patrons []feed.Patron) (err error) {
	tx, err := r.db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && r.logger != nil {
				r.logger.WithError(rbErr).Warn("failed to roll back patron replace")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM patrons`); err != nil {
		return fmt.Errorf("failed to clear patrons: %w", err)
	}
	insert := tx.Rebind(`INSERT INTO patrons (position, name, tier) VALUES (?, ?, ?)`)
	for i, p := range patrons {
		if _, err = tx.ExecContext(ctx, insert, i, p.Name, string(p.Tier)); err != nil {
			return fmt.Errorf("failed to insert patron %q: %w", p.Name, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit patrons: %w", err)
	}
	return nil
}

func (r *FeedRepository) LastUpdated(ctx context.Context) (time.Time, error) {
	var ms int64
	err := r.db.DB.GetContext(ctx, &ms, r.db.DB.Rebind(`SELECT updated_at FROM feed_meta WHERE name = ?`), feedsMetaName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read last updated: %w", err)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func (r *FeedRepository) Touch(ctx context.Context, at time.Time) error {
	query := r.db.DB.Rebind(`
		INSERT INTO feed_meta (name, updated_at) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET updated_at = excluded.updated_at`)
	if _, err := r.db.DB.ExecContext(ctx, query, feedsMetaName, at.UnixMilli()); err != nil {
		return fmt.Errorf("failed to touch feeds: %w", err)
	}
	return nil
}

var _ ports.FeedRepository = (*FeedRepository)(nil)
