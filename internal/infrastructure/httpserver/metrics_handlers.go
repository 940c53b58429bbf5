package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "The total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "http_request_duration_seconds",
			Help: "The HTTP request latencies in seconds",
		},
		[]string{"method", "endpoint"},
	)

	feedPollsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_polls_total",
			Help: "Launcher polls of the public feed endpoints by outcome",
		},
		[]string{"feed", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, feedPollsTotal)
}

// GetRequestsTotal returns the requests total metric for middleware use
func GetRequestsTotal() *prometheus.CounterVec {
	return requestsTotal
}

// GetRequestDuration returns the request duration metric for middleware use
func GetRequestDuration() *prometheus.HistogramVec {
	return requestDuration
}

func GetFeedPolls() *prometheus.CounterVec {
	return feedPollsTotal
}

func (s *Server) LogMetricsInitialization() {
	if s.logger != nil {
		s.logger.WithField("endpoint", "/metrics").Info("Prometheus metrics registered")
	}
}

// metricsEndpoint serves the default Prometheus registry.
func (s *Server) metricsEndpoint(c echo.Context) error {
	promhttp.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
