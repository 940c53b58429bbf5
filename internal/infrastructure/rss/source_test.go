package rss_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildlander/launcher/internal/infrastructure/rss"
)

const newsRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Wildlander News</title>
    <link>https://www.wildlandermod.com</link>
    <description>Release notes</description>
    <item>
      <title>Wildlander 1.2</title>
      <link>https://www.wildlandermod.com/news/1-2</link>
      <guid>news-1-2</guid>
      <description>Patch notes for 1.2</description>
      <pubDate>Sat, 01 Jun 2024 18:30:00 GMT</pubDate>
      <category>release</category>
      <category>patch</category>
    </item>
    <item>
      <title>Wildlander 1.1</title>
      <link>https://www.wildlandermod.com/news/1-1</link>
      <description>Older notes</description>
      <pubDate>Mon, 01 Jan 2024 00:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

const undatedRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Empty</title>
    <link>https://example.com</link>
    <description>none</description>
  </channel>
</rss>`

func serve(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestSource_FetchPosts(t *testing.T) {
	src := rss.NewSource(serve(t, newsRSS), time.Second)

	posts, err := src.FetchPosts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "Wildlander 1.2", first.Title)
	assert.Equal(t, "Patch notes for 1.2", first.Content)
	assert.Equal(t, "https://www.wildlandermod.com/news/1-2", first.URL)
	assert.Equal(t, []string{"release", "patch"}, first.Tags)
	assert.True(t, first.Published.Equal(time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)))
	assert.Len(t, first.ID, 16)

	assert.NotNil(t, posts[1].Tags)
	assert.NotEqual(t, first.ID, posts[1].ID)

	// ids are stable across fetches
	again, err := src.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.ID, again[0].ID)
}

func TestSource_LastUpdatedUsesNewestItem(t *testing.T) {
	src := rss.NewSource(serve(t, newsRSS), time.Second)
	f, err := src.LastUpdated(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC).Unix()), f.LastUpdated)
}

func TestSource_LastUpdatedWithoutDates(t *testing.T) {
	src := rss.NewSource(serve(t, undatedRSS), time.Second)
	_, err := src.LastUpdated(context.Background())
	assert.ErrorIs(t, err, rss.ErrNoTimestamp)

	posts, err := src.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSource_FetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := rss.NewSource(srv.URL, time.Second).FetchPosts(context.Background())
	assert.Error(t, err)
}
