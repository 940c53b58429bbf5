package services

import (
	"context"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// PatreonService is the launcher-side view of the Patreon feeds.
type PatreonService struct {
	posts   ports.PostSource
	patrons ports.PatronSource
	shuffle func([]feed.Patron)
}

// NewPatreonService wires the post and patron sources. Patrons are shuffled
// after every fetch so no one is always listed first.
func NewPatreonService(posts ports.PostSource, patrons ports.PatronSource) *PatreonService {
	return &PatreonService{
		posts:   posts,
		patrons: patrons,
		shuffle: func(p []feed.Patron) {
			rand.Shuffle(len(p), func(i, j int) { p[i], p[j] = p[j], p[i] })
		},
	}
}

func (s *PatreonService) FetchPosts(ctx context.Context) ([]feed.Post, error) {
	return s.posts.FetchPosts(ctx)
}

func (s *PatreonService) FetchPatrons(ctx context.Context) ([]feed.Patron, error) {
	patrons, err := s.patrons.FetchPatrons(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]feed.Patron, len(patrons))
	copy(out, patrons)
	s.shuffle(out)
	return out, nil
}

// LauncherFeeds holds the two gates the launcher home page loads.
type LauncherFeeds struct {
	News    *FeedGate[feed.Post]
	Patrons *FeedGate[feed.Patron]
}

type LauncherFeedsDeps struct {
	Patreon   *PatreonService
	Freshness ports.FreshnessSource
	// NewsFreshness overrides Freshness for the news gate, for news that does
	// not come from the feed API.
	NewsFreshness ports.FreshnessSource
	PostCache     ports.FeedCache[feed.Post]
	PatronCache   ports.FeedCache[feed.Patron]
	Metrics       ports.GateMetrics
	Logger        *logrus.Logger
}

func NewLauncherFeeds(deps LauncherFeedsDeps) *LauncherFeeds {
	newsFreshness := deps.NewsFreshness
	if newsFreshness == nil {
		newsFreshness = deps.Freshness
	}
	return &LauncherFeeds{
		News: NewFeedGate(FeedGateConfig[feed.Post]{
			Kind:      feed.KindPosts,
			Cache:     deps.PostCache,
			Freshness: newsFreshness,
			Fetch:     deps.Patreon.FetchPosts,
			Metrics:   deps.Metrics,
			Logger:    deps.Logger,
		}),
		Patrons: NewFeedGate(FeedGateConfig[feed.Patron]{
			Kind:      feed.KindPatrons,
			Cache:     deps.PatronCache,
			Freshness: deps.Freshness,
			Fetch:     deps.Patreon.FetchPatrons,
			Metrics:   deps.Metrics,
			Logger:    deps.Logger,
		}),
	}
}
