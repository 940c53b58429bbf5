package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wildlander/launcher/internal/core/domain/auth"
	"github.com/wildlander/launcher/internal/core/domain/feed"
	"github.com/wildlander/launcher/internal/infrastructure/httpserver/helpers"
)

func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "password is required")
	}

	tokens, err := s.authSvc.Login(c.Request().Context(), &req)
	if err != nil {
		if s.logger != nil && !errors.Is(err, auth.ErrInvalidCredentials) {
			s.logger.WithFields(s.logFields(c)).WithError(err).Error("login failed")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	return c.JSON(http.StatusOK, tokens)
}

func (s *Server) logout(c echo.Context) error {
	token, err := helpers.GetJWTTokenFromContext(c)
	if err != nil {
		return err
	}
	if err := s.authSvc.Logout(c.Request().Context(), token); err != nil {
		if s.logger != nil {
			s.logger.WithFields(s.logFields(c)).WithError(err).Error("logout failed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to logout")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) publishPost(c echo.Context) error {
	var req feed.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	post, err := s.feedService.PublishPost(c.Request().Context(), &req)
	if err != nil {
		return s.feedError(c, err)
	}
	return c.JSON(http.StatusCreated, post)
}

func (s *Server) deletePost(c echo.Context) error {
	if err := s.feedService.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return s.feedError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) replacePatrons(c echo.Context) error {
	var req struct {
		Patrons []feed.Patron `json:"patrons"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Patrons == nil {
		req.Patrons = []feed.Patron{}
	}
	if err := s.feedService.ReplacePatrons(c.Request().Context(), req.Patrons); err != nil {
		return s.feedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": len(req.Patrons)})
}

// feedError maps feed service errors to HTTP errors.
func (s *Server) feedError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, feed.ErrInvalidPost), errors.Is(err, feed.ErrInvalidPatron):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, feed.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "post not found")
	default:
		if s.logger != nil {
			s.logger.WithFields(s.logFields(c)).WithError(err).Error("feed write failed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
