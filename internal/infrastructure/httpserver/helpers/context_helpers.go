package helpers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wildlander/launcher/internal/core/domain/auth"
)

func GetClaimsFromContext(c echo.Context) (*auth.Claims, error) {
	cl, ok := GetClaimsRaw(c)
	if !ok || cl == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid publisher context")
	}
	return cl, nil
}

// GetClientIP returns the IP set by the rate limiter, falling back to RealIP.
func GetClientIP(c echo.Context) string {
	if ip, ok := GetClientIPRaw(c); ok && ip != "" {
		return ip
	}
	return c.RealIP()
}

func GetJWTTokenFromContext(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}
