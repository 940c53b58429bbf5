package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/wildlander/launcher/internal/core/domain/auth"
	"github.com/wildlander/launcher/internal/infrastructure/httpserver/helpers"
	"github.com/wildlander/launcher/internal/infrastructure/httpserver/middleware"
	tmocks "github.com/wildlander/launcher/test/mocks"
)

func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestJWTMiddleware_MissingTokenReturns401(t *testing.T) {
	e := echo.New()
	m := middleware.NewJWTMiddleware(&tmocks.AdminAuthServiceMock{}, logrus.New())
	handler := m.RequireJWT()(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := handler(c)
	require.Error(t, err)
	htErr, isHTTP := err.(*echo.HTTPError)
	require.True(t, isHTTP)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestJWTMiddleware_MalformedHeaderReturns401(t *testing.T) {
	e := echo.New()
	m := middleware.NewJWTMiddleware(&tmocks.AdminAuthServiceMock{}, logrus.New())
	handler := m.RequireJWT()(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	c := e.NewContext(req, httptest.NewRecorder())
	err := handler(c)
	require.Error(t, err)
	htErr, isHTTP := err.(*echo.HTTPError)
	require.True(t, isHTTP)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestJWTMiddleware_InvalidTokenReturns401(t *testing.T) {
	e := echo.New()
	authMock := &tmocks.AdminAuthServiceMock{ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
		return nil, errors.New("bad")
	}}
	m := middleware.NewJWTMiddleware(authMock, logrus.New())
	handler := m.RequireJWT()(ok)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	c := e.NewContext(req, httptest.NewRecorder())
	err := handler(c)
	require.Error(t, err)
	htErr, isHTTP := err.(*echo.HTTPError)
	require.True(t, isHTTP)
	require.Equal(t, http.StatusUnauthorized, htErr.Code)
}

func TestJWTMiddleware_ValidTokenSetsClaims(t *testing.T) {
	e := echo.New()
	authMock := &tmocks.AdminAuthServiceMock{ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
		require.Equal(t, "good", token)
		c := &auth.Claims{Scope: auth.ScopePublish}
		c.Subject = auth.AdminSubject
		return c, nil
	}}
	m := middleware.NewJWTMiddleware(authMock, logrus.New())
	var claims *auth.Claims
	handler := m.RequireJWT()(func(c echo.Context) error {
		var err error
		claims, err = helpers.GetClaimsFromContext(c)
		if err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	require.NoError(t, handler(e.NewContext(req, rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, claims)
	require.Equal(t, auth.ScopePublish, claims.Scope)
}

func TestRateLimitMiddleware_BlocksOverLimit(t *testing.T) {
	e := echo.New()
	reset := time.Unix(1_700_000_060, 0)
	var key string
	limiter := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
		key = clientKey
		return false, 0, 60, reset, nil
	}}
	h := middleware.NewRateLimitMiddleware(limiter, logrus.New()).Handler()(ok)
	req := httptest.NewRequest(http.MethodGet, "/api/patreon", nil)
	req.Header.Set("X-Real-IP", "203.0.113.7")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	err := h(c)
	require.Error(t, err)
	htErr, isHTTP := err.(*echo.HTTPError)
	require.True(t, isHTTP)
	require.Equal(t, http.StatusTooManyRequests, htErr.Code)
	require.Equal(t, "203.0.113.7", key)
	require.Equal(t, "203.0.113.7", helpers.GetClientIP(c))
	require.Equal(t, "60", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.Equal(t, "1700000060", rec.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitMiddleware_FailsOpen(t *testing.T) {
	e := echo.New()
	limiter := &tmocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, clientKey string) (bool, int, int, time.Time, error) {
		return true, 0, 60, time.Now(), errors.New("redis down")
	}}
	h := middleware.NewRateLimitMiddleware(limiter, logrus.New()).Handler()(ok)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitMiddleware_NilLimiterPassesThrough(t *testing.T) {
	e := echo.New()
	h := middleware.NewRateLimitMiddleware(nil, nil).Handler()(ok)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

// counters flattens a gathered counter family into "label=value,..." keys.
func counters(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			var parts []string
			for _, lp := range m.GetLabel() {
				parts = append(parts, lp.GetName()+"="+lp.GetValue())
			}
			out[strings.Join(parts, ",")] += m.GetCounter().GetValue()
		}
	}
	return out
}

func TestMetricsMiddleware_CountsRequests(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_duration_seconds"}, []string{"method", "endpoint"})
	polls := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_feed_polls_total"}, []string{"feed", "outcome"})
	reg := prometheus.NewRegistry()
	reg.MustRegister(total, duration, polls)

	e := echo.New()
	e.Use(middleware.NewMetricsMiddleware(total, duration, polls).CollectHTTPMetrics())
	e.GET("/api/patreon", ok)
	e.GET("/api/last-updated", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")
	})
	e.GET("/api/v1/posts", func(c echo.Context) error { return errors.New("boom") })
	e.GET("/health", ok)
	e.GET("/metrics", ok)

	get := func(path string) {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	for i := 0; i < 3; i++ {
		get("/api/patreon")
	}
	get("/api/last-updated")
	get("/api/v1/posts")
	get("/health")
	get("/health")
	get("/metrics")

	require.Equal(t, map[string]float64{
		"endpoint=/api/patreon,method=GET,status=200":      3,
		"endpoint=/api/last-updated,method=GET,status=429": 1,
		"endpoint=/api/v1/posts,method=GET,status=500":     1,
	}, counters(t, reg, "test_requests_total"))
	require.Equal(t, map[string]float64{
		"feed=patreon,outcome=served":       3,
		"feed=last_updated,outcome=limited": 1,
	}, counters(t, reg, "test_feed_polls_total"))
}

func TestMetricsMiddleware_NilFeedPolls(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_duration_seconds"}, []string{"method", "endpoint"})
	reg := prometheus.NewRegistry()
	reg.MustRegister(total, duration)

	e := echo.New()
	e.Use(middleware.NewMetricsMiddleware(total, duration, nil).CollectHTTPMetrics())
	e.GET("/api/patreon", ok)
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/patreon", nil))

	require.Equal(t, map[string]float64{
		"endpoint=/api/patreon,method=GET,status=200": 1,
	}, counters(t, reg, "test_requests_total"))
}
