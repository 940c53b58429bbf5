// Package rss serves the news feed from an RSS or Atom document.
package rss

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// ErrNoTimestamp is returned by LastUpdated when neither the feed nor any
// item carries a date.
var ErrNoTimestamp = errors.New("rss feed has no timestamp")

// Source parses one RSS/Atom URL. It supplies both the posts and the
// freshness signal, taken from the feed's updated date or else its newest item.
type Source struct {
	url     string
	parser  *gofeed.Parser
	timeout time.Duration
}

// NewSource returns a Source for url. A zero timeout defaults to 15s.
func NewSource(url string, timeout time.Duration) *Source {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Source{url: url, parser: gofeed.NewParser(), timeout: timeout}
}

func (s *Source) parse(ctx context.Context) (*gofeed.Feed, error) {
	parseCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	parsed, err := s.parser.ParseURLWithContext(s.url, parseCtx)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.url, err)
	}
	return parsed, nil
}

func (s *Source) FetchPosts(ctx context.Context) ([]feed.Post, error) {
	parsed, err := s.parse(ctx)
	if err != nil {
		return nil, err
	}
	posts := make([]feed.Post, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		posts = append(posts, toPost(item))
	}
	return posts, nil
}

func (s *Source) LastUpdated(ctx context.Context) (feed.Freshness, error) {
	parsed, err := s.parse(ctx)
	if err != nil {
		return feed.Freshness{}, err
	}
	latest := newest(parsed)
	if latest.IsZero() {
		return feed.Freshness{}, ErrNoTimestamp
	}
	return feed.FreshnessAt(latest), nil
}

func newest(f *gofeed.Feed) time.Time {
	var latest time.Time
	if f.UpdatedParsed != nil {
		latest = *f.UpdatedParsed
	}
	for _, item := range f.Items {
		for _, t := range []*time.Time{item.UpdatedParsed, item.PublishedParsed} {
			if t != nil && t.After(latest) {
				latest = *t
			}
		}
	}
	return latest
}

func toPost(item *gofeed.Item) feed.Post {
	p := feed.Post{
		ID:      itemID(item),
		Title:   item.Title,
		Content: item.Content,
		URL:     item.Link,
		Tags:    []string{},
	}
	if p.Content == "" {
		p.Content = item.Description
	}
	switch {
	case item.PublishedParsed != nil:
		p.Published = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		p.Published = item.UpdatedParsed.UTC()
	}
	if len(item.Categories) > 0 {
		p.Tags = append(p.Tags, item.Categories...)
	}
	return p
}

// itemID is stable across fetches so a re-parsed item keeps its id.
func itemID(item *gofeed.Item) string {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:8])
}

var (
	_ ports.PostSource      = (*Source)(nil)
	_ ports.FreshnessSource = (*Source)(nil)
)
