package helpers

import (
	"github.com/labstack/echo/v4"

	"github.com/wildlander/launcher/internal/core/domain/auth"
)

type ctxKey string

const (
	keyClaims   ctxKey = "claims"
	keyClientIP ctxKey = "client_ip"
)

func SetClaims(c echo.Context, claims *auth.Claims) { c.Set(string(keyClaims), claims) }
func GetClaimsRaw(c echo.Context) (*auth.Claims, bool) {
	v := c.Get(string(keyClaims))
	cl, ok := v.(*auth.Claims)
	return cl, ok
}

func SetClientIP(c echo.Context, ip string) { c.Set(string(keyClientIP), ip) }
func GetClientIPRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyClientIP))
	s, ok := v.(string)
	return s, ok
}
