package ports

import (
	"context"
	"time"

	"github.com/wildlander/launcher/internal/core/domain/auth"
)

// AdminAuthService guards the publishing endpoints of the feed backend.
type AdminAuthService interface {
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	// Logout revokes the token until it would have expired anyway.
	Logout(ctx context.Context, token string) error
}

// TokenRevocationRepository remembers revoked token IDs until their expiry.
type TokenRevocationRepository interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
