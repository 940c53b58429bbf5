package middleware

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// feedEndpoints maps the public read routes launchers poll to their feed label.
var feedEndpoints = map[string]string{
	"/api/patreon":      "patreon",
	"/api/last-updated": "last_updated",
}

// Health checks and scrapes are not counted.
var unmeteredPaths = map[string]bool{
	"/metrics": true,
	"/health":  true,
}

type MetricsMiddleware struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	// feedPolls is labelled by feed and outcome; nil disables it.
	feedPolls *prometheus.CounterVec
}

func NewMetricsMiddleware(requestsTotal *prometheus.CounterVec, requestDuration *prometheus.HistogramVec, feedPolls *prometheus.CounterVec) *MetricsMiddleware {
	return &MetricsMiddleware{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		feedPolls:       feedPolls,
	}
}

// CollectHTTPMetrics records request counts and latencies per route, and
// counts launcher polls of the feed endpoints by outcome.
func (m *MetricsMiddleware) CollectHTTPMetrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			if unmeteredPaths[path] {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			status := responseStatus(c, err)

			m.requestsTotal.WithLabelValues(c.Request().Method, path, strconv.Itoa(status)).Inc()
			m.requestDuration.WithLabelValues(c.Request().Method, path).Observe(time.Since(start).Seconds())
			if name, ok := feedEndpoints[path]; ok && m.feedPolls != nil {
				m.feedPolls.WithLabelValues(name, pollOutcome(status)).Inc()
			}
			return err
		}
	}
}

// responseStatus is the status the client will see. Errors returned by the
// handler are written by echo after the middleware chain unwinds.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func pollOutcome(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "limited"
	case status >= http.StatusInternalServerError:
		return "error"
	case status >= http.StatusBadRequest:
		return "rejected"
	default:
		return "served"
	}
}
