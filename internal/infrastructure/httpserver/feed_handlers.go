package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// getPatreon returns every post and patron in one body.
func (s *Server) getPatreon(c echo.Context) error {
	snapshot, err := s.feedService.Snapshot(c.Request().Context())
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to load feed snapshot")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load feeds")
	}
	return c.JSON(http.StatusOK, snapshot)
}

func (s *Server) getLastUpdated(c echo.Context) error {
	freshness, err := s.feedService.LastUpdated(c.Request().Context())
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("failed to load last updated")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load last updated")
	}
	// Launchers poll this on every page load.
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.JSON(http.StatusOK, freshness)
}

func (s *Server) logFields(c echo.Context) logrus.Fields {
	return logrus.Fields{"ip": c.RealIP(), "path": c.Path()}
}
