package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	config "github.com/wildlander/launcher/configs"
	"github.com/wildlander/launcher/internal/core/domain/auth"
	"github.com/wildlander/launcher/internal/core/ports"
)

// AdminAuthService authenticates the single feed publisher.
type AdminAuthService struct {
	passwordHash []byte
	jwtConfig    *config.JWTConfig
	revocations  ports.TokenRevocationRepository
	logger       *logrus.Logger
	now          func() time.Time
}

// NewAdminAuthService creates the publisher auth service. revocations may be
// nil, in which case Logout is refused and tokens live until they expire.
func NewAdminAuthService(adminCfg *config.AdminConfig, jwtConfig *config.JWTConfig, revocations ports.TokenRevocationRepository, logger *logrus.Logger) *AdminAuthService {
	return &AdminAuthService{
		passwordHash: []byte(adminCfg.PasswordHash),
		jwtConfig:    jwtConfig,
		revocations:  revocations,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *AdminAuthService) Login(ctx context.Context, req *auth.LoginRequest) (*auth.AuthTokens, error) {
	if req == nil || req.Password == "" || len(s.passwordHash) == 0 {
		return nil, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(req.Password)); err != nil {
		if s.logger != nil {
			s.logger.Warn("publisher login rejected")
		}
		return nil, auth.ErrInvalidCredentials
	}

	now := s.now()
	claims := &auth.Claims{
		Scope: auth.ScopePublish,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   auth.AdminSubject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.AccessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"jti": claims.ID}).Info("publisher logged in")
	}
	return &auth.AuthTokens{
		AccessToken: signed,
		ExpiresIn:   int64(s.jwtConfig.AccessTokenTTL.Seconds()),
	}, nil
}

func (s *AdminAuthService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure the token's signing method is HMAC (prevent alg confusion)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject != auth.AdminSubject || claims.Scope != auth.ScopePublish {
		return nil, fmt.Errorf("token is not a publisher token")
	}
	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, fmt.Errorf("token has been revoked")
		}
	}
	return claims, nil
}

func (s *AdminAuthService) Logout(ctx context.Context, tokenString string) error {
	if s.revocations == nil {
		return fmt.Errorf("token revocation is not configured")
	}
	claims, err := s.ValidateToken(ctx, tokenString)
	if err != nil {
		return err
	}
	expiresAt := s.now().Add(s.jwtConfig.AccessTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return s.revocations.Revoke(ctx, claims.ID, expiresAt)
}

var _ ports.AdminAuthService = (*AdminAuthService)(nil)
