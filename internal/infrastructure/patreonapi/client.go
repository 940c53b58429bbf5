// Package patreonapi is the launcher's client for the feed backend.
package patreonapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

const (
	patreonPath     = "/api/patreon"
	lastUpdatedPath = "/api/last-updated"
	userAgent       = "WildlanderLauncher/feeds"
)

// Client talks to /api/patreon and /api/last-updated.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient returns a client for baseURL. A zero timeout defaults to 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("github.com/wildlander/launcher/patreonapi"),
	}
}

func (c *Client) getJSON(ctx context.Context, path string, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "patreonapi GET "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: non-200: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// LastUpdated reads the backend's last-updated signal.
func (c *Client) LastUpdated(ctx context.Context) (feed.Freshness, error) {
	var out feed.Freshness
	if err := c.getJSON(ctx, lastUpdatedPath, &out); err != nil {
		return feed.Freshness{}, err
	}
	return out, nil
}

func (c *Client) snapshot(ctx context.Context) (*feed.PatreonResponse, error) {
	var out feed.PatreonResponse
	if err := c.getJSON(ctx, patreonPath, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchPosts returns the posts of /api/patreon. A missing posts field is an
// empty feed.
func (c *Client) FetchPosts(ctx context.Context) ([]feed.Post, error) {
	res, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if res.Posts == nil {
		return []feed.Post{}, nil
	}
	return res.Posts, nil
}

func (c *Client) FetchPatrons(ctx context.Context) ([]feed.Patron, error) {
	res, err := c.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if res.Patrons == nil {
		return []feed.Patron{}, nil
	}
	return res.Patrons, nil
}

var (
	_ ports.FreshnessSource = (*Client)(nil)
	_ ports.PostSource      = (*Client)(nil)
	_ ports.PatronSource    = (*Client)(nil)
)
