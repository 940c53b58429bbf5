package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const serviceName = "wildlander-feeds"

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status       string                      `json:"status"`
	Timestamp    string                      `json:"timestamp"`
	Service      string                      `json:"service"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// healthCheck probes every dependency. Any failure reports "degraded" with 503.
func (s *Server) healthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	res := healthResponse{
		Status:       "healthy",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Service:      serviceName,
		Dependencies: make(map[string]dependencyStatus),
	}
	for _, hc := range s.healthCheckers {
		if hc == nil {
			continue
		}
		if err := hc.Check(ctx); err != nil {
			res.Dependencies[hc.Name()] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			res.Status = "degraded"
			continue
		}
		res.Dependencies[hc.Name()] = dependencyStatus{Status: "healthy"}
	}
	code := http.StatusOK
	if res.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, res)
}
