package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/wildlander/launcher/internal/application/services"
	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/test/mocks"
)

func TestFeedService_Snapshot(t *testing.T) {
	t.Run("empty repository yields empty arrays", func(t *testing.T) {
		svc := impl.NewFeedService(&mocks.FeedRepositoryMock{}, nil, nil)
		snap, err := svc.Snapshot(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, snap.Posts)
		assert.NotNil(t, snap.Patrons)
		assert.Empty(t, snap.Posts)
		assert.Empty(t, snap.Patrons)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		boom := errors.New("db locked")
		svc := impl.NewFeedService(&mocks.FeedRepositoryMock{
			ListPatronsFn: func(ctx context.Context) ([]feed.Patron, error) { return nil, boom },
		}, nil, nil)
		_, err := svc.Snapshot(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestFeedService_LastUpdated(t *testing.T) {
	at := time.Unix(1_700_000_000, 0)
	svc := impl.NewFeedService(&mocks.FeedRepositoryMock{
		LastUpdatedFn: func(ctx context.Context) (time.Time, error) { return at, nil },
	}, nil, nil)
	f, err := svc.LastUpdated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(1_700_000_000), f.LastUpdated)

	never := impl.NewFeedService(&mocks.FeedRepositoryMock{}, nil, nil)
	f, err = never.LastUpdated(context.Background())
	require.NoError(t, err)
	assert.Zero(t, f.LastUpdated)
}

func TestFeedService_LastUpdatedKeepsMilliseconds(t *testing.T) {
	// A write late in the same second a launcher cached its feed.
	svc := impl.NewFeedService(&mocks.FeedRepositoryMock{
		LastUpdatedFn: func(ctx context.Context) (time.Time, error) { return time.UnixMilli(1_700_000_000_900), nil },
	}, nil, nil)
	f, err := svc.LastUpdated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_000_900), f.LastUpdatedMillis())

	cacheAge := int64(1_700_000_000_300)
	assert.Equal(t, feed.DecisionFetchAndReplace, feed.Decide(&cacheAge, &f))

	cacheAge = 1_700_000_000_900
	assert.Equal(t, feed.DecisionUseCacheOnly, feed.Decide(&cacheAge, &f))
}

func TestFeedService_PublishPost(t *testing.T) {
	var (
		created *feed.Post
		touched time.Time
		sent    *feed.Post
	)
	repo := &mocks.FeedRepositoryMock{
		CreatePostFn: func(ctx context.Context, post *feed.Post) error { created = post; return nil },
		TouchFn:      func(ctx context.Context, at time.Time) error { touched = at; return nil },
	}
	announce := &mocks.AnnouncementServiceMock{AnnouncePostFn: func(ctx context.Context, post *feed.Post) error {
		sent = post
		return nil
	}}
	svc := impl.NewFeedService(repo, announce, nil)

	before := time.Now().Add(-time.Second)
	post, err := svc.PublishPost(context.Background(), &feed.CreatePostRequest{Title: "Patch 1.2", URL: "/news/patch-1-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, "Patch 1.2", post.Title)
	assert.NotNil(t, post.Tags)
	assert.Equal(t, time.UTC, post.Published.Location())
	assert.False(t, post.Published.Before(before.Truncate(time.Second)))
	assert.Same(t, post, created)
	assert.Same(t, post, sent)
	assert.False(t, touched.IsZero())
}

func TestFeedService_PublishPostKeepsGivenDate(t *testing.T) {
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	svc := impl.NewFeedService(&mocks.FeedRepositoryMock{}, nil, nil)
	post, err := svc.PublishPost(context.Background(), &feed.CreatePostRequest{
		Title:     "Old news",
		URL:       "/news/old",
		Published: &published,
		Tags:      []string{"release"},
	})
	require.NoError(t, err)
	assert.True(t, post.Published.Equal(published))
	assert.Equal(t, time.UTC, post.Published.Location())
	assert.Equal(t, []string{"release"}, post.Tags)
}

func TestFeedService_PublishPostValidation(t *testing.T) {
	var calls int
	svc := impl.NewFeedService(&mocks.FeedRepositoryMock{
		CreatePostFn: func(ctx context.Context, post *feed.Post) error { calls++; return nil },
	}, nil, nil)
	_, err := svc.PublishPost(context.Background(), &feed.CreatePostRequest{URL: "/x"})
	assert.ErrorIs(t, err, feed.ErrInvalidPost)
	assert.Zero(t, calls)
}

func TestFeedService_AnnouncementFailureDoesNotFailPublish(t *testing.T) {
	svc := impl.NewFeedService(&mocks.FeedRepositoryMock{}, &mocks.AnnouncementServiceMock{
		AnnouncePostFn: func(ctx context.Context, post *feed.Post) error { return errors.New("sendgrid 500") },
	}, nil)
	post, err := svc.PublishPost(context.Background(), &feed.CreatePostRequest{Title: "t", URL: "/t"})
	require.NoError(t, err)
	assert.NotNil(t, post)
}

func TestFeedService_PublishPostTouchFailure(t *testing.T) {
	svc := impl.NewFeedService(&mocks.FeedRepositoryMock{
		TouchFn: func(ctx context.Context, at time.Time) error { return errors.New("readonly") },
	}, nil, nil)
	_, err := svc.PublishPost(context.Background(), &feed.CreatePostRequest{Title: "t", URL: "/t"})
	assert.Error(t, err)
}

func TestFeedService_DeletePost(t *testing.T) {
	var touches int
	repo := &mocks.FeedRepositoryMock{
		DeletePostFn: func(ctx context.Context, id string) error {
			if id != "known" {
				return fmt.Errorf("post %s: %w", id, feed.ErrNotFound)
			}
			return nil
		},
		TouchFn: func(ctx context.Context, at time.Time) error { touches++; return nil },
	}
	svc := impl.NewFeedService(repo, nil, nil)

	require.NoError(t, svc.DeletePost(context.Background(), "known"))
	assert.Equal(t, 1, touches)

	err := svc.DeletePost(context.Background(), "missing")
	assert.ErrorIs(t, err, feed.ErrNotFound)
	assert.Equal(t, 1, touches)
}

func TestFeedService_ReplacePatrons(t *testing.T) {
	var stored []feed.Patron
	var touches int
	repo := &mocks.FeedRepositoryMock{
		ReplacePatronsFn: func(ctx context.Context, patrons []feed.Patron) error { stored = patrons; return nil },
		TouchFn:          func(ctx context.Context, at time.Time) error { touches++; return nil },
	}
	svc := impl.NewFeedService(repo, nil, nil)

	patrons := []feed.Patron{{Name: "Lydia", Tier: feed.TierSuperPatron}, {Name: "Farkas", Tier: feed.TierPatron}}
	require.NoError(t, svc.ReplacePatrons(context.Background(), patrons))
	assert.Equal(t, patrons, stored)
	assert.Equal(t, 1, touches)

	err := svc.ReplacePatrons(context.Background(), []feed.Patron{{Name: "Lydia", Tier: "Gold"}})
	assert.ErrorIs(t, err, feed.ErrInvalidPatron)
	assert.Equal(t, 1, touches)
}
