package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/wildlander/launcher/internal/core/domain/auth"
	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/core/ports"
)

// FreshnessSourceMock is a lightweight mock for FreshnessSource
type FreshnessSourceMock struct {
	LastUpdatedFn func(ctx context.Context) (feed.Freshness, error)
}

func (m *FreshnessSourceMock) LastUpdated(ctx context.Context) (feed.Freshness, error) {
	if m.LastUpdatedFn != nil {
		return m.LastUpdatedFn(ctx)
	}
	return feed.Freshness{}, nil
}

// PostSourceMock is a lightweight mock for PostSource
type PostSourceMock struct {
	FetchPostsFn func(ctx context.Context) ([]feed.Post, error)
}

func (m *PostSourceMock) FetchPosts(ctx context.Context) ([]feed.Post, error) {
	if m.FetchPostsFn != nil {
		return m.FetchPostsFn(ctx)
	}
	return []feed.Post{}, nil
}

// PatronSourceMock is a lightweight mock for PatronSource
type PatronSourceMock struct {
	FetchPatronsFn func(ctx context.Context) ([]feed.Patron, error)
}

func (m *PatronSourceMock) FetchPatrons(ctx context.Context) ([]feed.Patron, error) {
	if m.FetchPatronsFn != nil {
		return m.FetchPatronsFn(ctx)
	}
	return []feed.Patron{}, nil
}

// CacheMock is a lightweight mock for Cache
type CacheMock struct {
	GetFn    func(ctx context.Context, key string) ([]byte, bool, error)
	SetFn    func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteFn func(ctx context.Context, key string) error
}

func (m *CacheMock) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	return nil, false, nil
}
func (m *CacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.SetFn != nil {
		return m.SetFn(ctx, key, value, ttl)
	}
	return nil
}
func (m *CacheMock) Delete(ctx context.Context, key string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, key)
	}
	return nil
}

// FeedRepositoryMock is a lightweight mock for FeedRepository
type FeedRepositoryMock struct {
	ListPostsFn      func(ctx context.Context) ([]feed.Post, error)
	CreatePostFn     func(ctx context.Context, post *feed.Post) error
	DeletePostFn     func(ctx context.Context, id string) error
	ListPatronsFn    func(ctx context.Context) ([]feed.Patron, error)
	ReplacePatronsFn func(ctx context.Context, patrons []feed.Patron) error
	LastUpdatedFn    func(ctx context.Context) (time.Time, error)
	TouchFn          func(ctx context.Context, at time.Time) error
}

func (m *FeedRepositoryMock) ListPosts(ctx context.Context) ([]feed.Post, error) {
	if m.ListPostsFn != nil {
		return m.ListPostsFn(ctx)
	}
	return nil, nil
}
func (m *FeedRepositoryMock) CreatePost(ctx context.Context, post *feed.Post) error {
	if m.CreatePostFn != nil {
		return m.CreatePostFn(ctx, post)
	}
	return nil
}
func (m *FeedRepositoryMock) DeletePost(ctx context.Context, id string) error {
	if m.DeletePostFn != nil {
		return m.DeletePostFn(ctx, id)
	}
	return nil
}
func (m *FeedRepositoryMock) ListPatrons(ctx context.Context) ([]feed.Patron, error) {
	if m.ListPatronsFn != nil {
		return m.ListPatronsFn(ctx)
	}
	return nil, nil
}
func (m *FeedRepositoryMock) ReplacePatrons(ctx context.Context, patrons []feed.Patron) error {
	if m.ReplacePatronsFn != nil {
		return m.ReplacePatronsFn(ctx, patrons)
	}
	return nil
}
func (m *FeedRepositoryMock) LastUpdated(ctx context.Context) (time.Time, error) {
	if m.LastUpdatedFn != nil {
		return m.LastUpdatedFn(ctx)
	}
	return time.Time{}, nil
}
func (m *FeedRepositoryMock) Touch(ctx context.Context, at time.Time) error {
	if m.TouchFn != nil {
		return m.TouchFn(ctx, at)
	}
	return nil
}

// FeedServiceMock is a lightweight mock for FeedService
type FeedServiceMock struct {
	SnapshotFn       func(ctx context.Context) (*feed.PatreonResponse, error)
	LastUpdatedFn    func(ctx context.Context) (feed.Freshness, error)
	PublishPostFn    func(ctx context.Context, req *feed.CreatePostRequest) (*feed.Post, error)
	DeletePostFn     func(ctx context.Context, id string) error
	ReplacePatronsFn func(ctx context.Context, patrons []feed.Patron) error
}

func (m *FeedServiceMock) Snapshot(ctx context.Context) (*feed.PatreonResponse, error) {
	if m.SnapshotFn != nil {
		return m.SnapshotFn(ctx)
	}
	return &feed.PatreonResponse{Posts: []feed.Post{}, Patrons: []feed.Patron{}}, nil
}
func (m *FeedServiceMock) LastUpdated(ctx context.Context) (feed.Freshness, error) {
	if m.LastUpdatedFn != nil {
		return m.LastUpdatedFn(ctx)
	}
	return feed.Freshness{}, nil
}
func (m *FeedServiceMock) PublishPost(ctx context.Context, req *feed.CreatePostRequest) (*feed.Post, error) {
	if m.PublishPostFn != nil {
		return m.PublishPostFn(ctx, req)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *FeedServiceMock) DeletePost(ctx context.Context, id string) error {
	if m.DeletePostFn != nil {
		return m.DeletePostFn(ctx, id)
	}
	return nil
}
func (m *FeedServiceMock) ReplacePatrons(ctx context.Context, patrons []feed.Patron) error {
	if m.ReplacePatronsFn != nil {
		return m.ReplacePatronsFn(ctx, patrons)
	}
	return nil
}

// AdminAuthServiceMock is a lightweight mock for AdminAuthService
type AdminAuthServiceMock struct {
	LoginFn         func(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
	LogoutFn        func(ctx context.Context, token string) error
}

func (m *AdminAuthServiceMock) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
	if m.LoginFn != nil {
		return m.LoginFn(ctx, req)
	}
	return nil, auth.ErrInvalidCredentials
}
func (m *AdminAuthServiceMock) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, fmt.Errorf("invalid token")
}
func (m *AdminAuthServiceMock) Logout(ctx context.Context, token string) error {
	if m.LogoutFn != nil {
		return m.LogoutFn(ctx, token)
	}
	return nil
}

// AnnouncementServiceMock is a lightweight mock for AnnouncementService
type AnnouncementServiceMock struct {
	AnnouncePostFn func(ctx context.Context, post *feed.Post) error
}

func (m *AnnouncementServiceMock) AnnouncePost(ctx context.Context, post *feed.Post) error {
	if m.AnnouncePostFn != nil {
		return m.AnnouncePostFn(ctx, post)
	}
	return nil
}

// RateLimitRepositoryMock is a lightweight mock for RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, clientKey string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, clientKey, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// RateLimiterServiceMock is a lightweight mock for RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, clientKey)
	}
	return true, 1, 1, time.Now(), nil
}

// HealthCheckerMock is a lightweight mock for HealthChecker
type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}

var (
	_ ports.FreshnessSource     = (*FreshnessSourceMock)(nil)
	_ ports.PostSource          = (*PostSourceMock)(nil)
	_ ports.PatronSource        = (*PatronSourceMock)(nil)
	_ ports.Cache               = (*CacheMock)(nil)
	_ ports.FeedRepository      = (*FeedRepositoryMock)(nil)
	_ ports.FeedService         = (*FeedServiceMock)(nil)
	_ ports.AdminAuthService    = (*AdminAuthServiceMock)(nil)
	_ ports.AnnouncementService = (*AnnouncementServiceMock)(nil)
	_ ports.RateLimitRepository = (*RateLimitRepositoryMock)(nil)
	_ ports.RateLimiterService  = (*RateLimiterServiceMock)(nil)
	_ ports.HealthChecker       = (*HealthCheckerMock)(nil)
)
