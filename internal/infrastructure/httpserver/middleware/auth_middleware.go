package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/wildlander/launcher/internal/core/ports"
	"github.com/wildlander/launcher/internal/infrastructure/httpserver/helpers"
)

type JWTMiddleware struct {
	authService ports.AdminAuthService
	logger      *logrus.Logger
}

func NewJWTMiddleware(authService ports.AdminAuthService, logger *logrus.Logger) *JWTMiddleware {
	return &JWTMiddleware{authService: authService, logger: logger}
}

// RequireJWT rejects requests without a valid publisher token and stores its
// claims on the context.
func (m *JWTMiddleware) RequireJWT() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetJWTTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.authService.ValidateToken(c.Request().Context(), tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("JWT validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			helpers.SetClaims(c, claims)
			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"subject": claims.Subject, "jti": claims.ID}).Debug("jwt validated")
			}
			return next(c)
		}
	}
}
