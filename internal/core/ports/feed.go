package ports

import (
	"context"
	"time"

	"github.com/wildlander/launcher/internal/core/domain/feed"
)

// FreshnessSource reports when the remote feed content last changed.
type FreshnessSource interface {
	LastUpdated(ctx context.Context) (feed.Freshness, error)
}

// PostSource fetches the news feed.
type PostSource interface {
	FetchPosts(ctx context.Context) ([]feed.Post, error)
}

// PatronSource fetches the patron list.
type PatronSource interface {
	FetchPatrons(ctx context.Context) ([]feed.Patron, error)
}

// FeedCache persists one CachedFeed per feed kind.
type FeedCache[T any] interface {
	// Get returns ok=false when nothing is cached for kind.
	Get(ctx context.Context, kind feed.Kind) (entry *feed.CachedFeed[T], ok bool, err error)
	Set(ctx context.Context, kind feed.Kind, entry *feed.CachedFeed[T]) error
	Clear(ctx context.Context, kind feed.Kind) error
}

// GateMetrics observes gate decisions and failures.
type GateMetrics interface {
	Decision(kind feed.Kind, d feed.Decision)
	FetchFailed(kind feed.Kind)
	Superseded(kind feed.Kind)
}

// NoopGateMetrics discards every observation.
type NoopGateMetrics struct{}

func (NoopGateMetrics) Decision(feed.Kind, feed.Decision) {}
func (NoopGateMetrics) FetchFailed(feed.Kind)             {}
func (NoopGateMetrics) Superseded(feed.Kind)              {}

// FeedRepository stores the posts and patrons served by the feed backend.
type FeedRepository interface {
	ListPosts(ctx context.Context) ([]feed.Post, error)
	CreatePost(ctx context.Context, post *feed.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPatrons(ctx context.Context) ([]feed.Patron, error)
	ReplacePatrons(ctx context.Context, patrons []feed.Patron) error
	// LastUpdated is the time of the latest write; zero when nothing was written.
	LastUpdated(ctx context.Context) (time.Time, error)
	Touch(ctx context.Context, at time.Time) error
}

// FeedService is the backend's feed business logic.
type FeedService interface {
	Snapshot(ctx context.Context) (*feed.PatreonResponse, error)
	LastUpdated(ctx context.Context) (feed.Freshness, error)
	PublishPost(ctx context.Context, req *feed.CreatePostRequest) (*feed.Post, error)
	DeletePost(ctx context.Context, id string) error
	ReplacePatrons(ctx context.Context, patrons []feed.Patron) error
}
