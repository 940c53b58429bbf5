package patreonapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/infrastructure/patreonapi"
)

func newBackend(t *testing.T, patreon, lastUpdated string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "WildlanderLauncher/feeds", r.Header.Get("User-Agent"))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/patreon":
			_, _ = w.Write([]byte(patreon))
		case "/api/last-updated":
			_, _ = w.Write([]byte(lastUpdated))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchesFeeds(t *testing.T) {
	srv := newBackend(t, `{
		"posts": [{"id":"1","title":"Wildlander 1.2","content":"notes","published":"2024-06-01T18:30:00Z","url":"/news/1-2","tags":["release"]}],
		"patrons": [{"name":"Lydia","tier":"Super Patron"},{"name":"Farkas","tier":"Patron"}]
	}`, `{"last_updated": 1717266600.25}`, http.StatusOK)
	client := patreonapi.NewClient(srv.URL+"/", 0)
	ctx := context.Background()

	posts, err := client.FetchPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Wildlander 1.2", posts[0].Title)
	assert.Equal(t, []string{"release"}, posts[0].Tags)
	assert.True(t, posts[0].Published.Equal(time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC)))

	patrons, err := client.FetchPatrons(ctx)
	require.NoError(t, err)
	assert.Equal(t, []feed.Patron{{Name: "Lydia", Tier: feed.TierSuperPatron}, {Name: "Farkas", Tier: feed.TierPatron}}, patrons)

	fresh, err := client.LastUpdated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1717266600.25, fresh.LastUpdated)
	assert.Equal(t, int64(1717266600250), fresh.LastUpdatedMillis())
}

func TestClient_MissingFieldsAreEmpty(t *testing.T) {
	srv := newBackend(t, `{}`, `{}`, http.StatusOK)
	client := patreonapi.NewClient(srv.URL, time.Second)

	posts, err := client.FetchPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)

	patrons, err := client.FetchPatrons(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, patrons)
	assert.Empty(t, patrons)
}

func TestClient_Non200IsAnError(t *testing.T) {
	srv := newBackend(t, "", "", http.StatusBadGateway)
	client := patreonapi.NewClient(srv.URL, time.Second)

	_, err := client.FetchPosts(context.Background())
	assert.ErrorContains(t, err, "non-200")
	_, err = client.LastUpdated(context.Background())
	assert.Error(t, err)
}

func TestClient_MalformedBody(t *testing.T) {
	srv := newBackend(t, `{"posts": "nope"}`, `not json`, http.StatusOK)
	client := patreonapi.NewClient(srv.URL, time.Second)

	_, err := client.FetchPosts(context.Background())
	assert.ErrorContains(t, err, "decode")
	_, err = client.LastUpdated(context.Background())
	assert.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := patreonapi.NewClient(url, time.Second).FetchPatrons(context.Background())
	assert.Error(t, err)
}
