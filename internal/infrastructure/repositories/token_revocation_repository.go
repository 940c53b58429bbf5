package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wildlander/launcher/internal/core/ports"
)

const revokedTokenPrefix = "auth:revoked"

// TokenRevocationRepository keeps revoked token IDs in a ports.Cache, each
// entry expiring with the token it blocks.
type TokenRevocationRepository struct {
	cache  ports.Cache
	logger *logrus.Logger
	now    func() time.Time
}

func NewTokenRevocationRepository(cache ports.Cache, logger *logrus.Logger) *TokenRevocationRepository {
	return &TokenRevocationRepository{cache: cache, logger: logger, now: time.Now}
}

func (r *TokenRevocationRepository) key(tokenID string) string {
	return fmt.Sprintf("%s:%s", revokedTokenPrefix, tokenID)
}

func (r *TokenRevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		// Already unusable.
		return nil
	}
	if err := r.cache.Set(ctx, r.key(tokenID), []byte("1"), ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"jti": tokenID, "ttl": ttl.String()}).Debug("token revoked")
	}
	return nil
}

func (r *TokenRevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok, err := r.cache.Get(ctx, r.key(tokenID))
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return ok, nil
}

var _ ports.TokenRevocationRepository = (*TokenRevocationRepository)(nil)
